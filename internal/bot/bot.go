package bot

import (
	"context"
	"errors"
	"fmt"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/xaenox/discipline-bot/internal/conversation"
	"github.com/xaenox/discipline-bot/internal/models"
	"go.uber.org/zap"
)

// API is the subset of *tgbotapi.BotAPI the bot relies on.
type API interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
	Request(c tgbotapi.Chattable) (*tgbotapi.APIResponse, error)
	GetUpdatesChan(config tgbotapi.UpdateConfig) tgbotapi.UpdatesChannel
	StopReceivingUpdates()
}

type Handler interface {
	HandleAction(ctx context.Context, user models.UserID, action conversation.Action) conversation.Reply
	HandleText(ctx context.Context, user models.UserID, text string) conversation.Reply
}

type Config struct {
	Token         string
	UpdateTimeout int
	Workers       int
	QueueSize     int
}

type Bot struct {
	api           API
	handler       Handler
	updateTimeout int
	workers       int
	queueSize     int
	logger        *zap.Logger
}

func New(cfg Config, handler Handler, logger *zap.Logger) (*Bot, error) {
	api, err := tgbotapi.NewBotAPI(cfg.Token)
	if err != nil {
		return nil, fmt.Errorf("failed to create bot: %w", err)
	}
	logger.Info("Authorized on Telegram", zap.String("username", api.Self.UserName))

	return NewWithAPI(api, cfg, handler, logger), nil
}

func NewWithAPI(api API, cfg Config, handler Handler, logger *zap.Logger) *Bot {
	if cfg.UpdateTimeout <= 0 {
		cfg.UpdateTimeout = 60
	}
	if cfg.Workers <= 0 {
		cfg.Workers = 4
	}
	if cfg.QueueSize <= 0 {
		cfg.QueueSize = 64
	}
	return &Bot{
		api:           api,
		handler:       handler,
		updateTimeout: cfg.UpdateTimeout,
		workers:       cfg.Workers,
		queueSize:     cfg.QueueSize,
		logger:        logger,
	}
}

// Run polls for updates until ctx is cancelled, then drains queued events.
func (b *Bot) Run(ctx context.Context) error {
	u := tgbotapi.NewUpdate(0)
	u.Timeout = b.updateTimeout

	updates := b.api.GetUpdatesChan(u)
	d := newDispatcher(b.workers, b.queueSize, b.logger)
	defer d.stop()

	// Handlers outlive shutdown so that queued events still get answered.
	handlerCtx := context.WithoutCancel(ctx)

	for {
		select {
		case <-ctx.Done():
			b.api.StopReceivingUpdates()
			b.logger.Info("Stopped receiving updates")
			return nil
		case update, ok := <-updates:
			if !ok {
				return errors.New("telegram updates channel closed")
			}
			user, ok := updateUser(update)
			if !ok {
				continue
			}
			d.submit(user, func() { b.handleUpdate(handlerCtx, update) })
		}
	}
}

// SendText delivers a plain message to the user's private chat.
func (b *Bot) SendText(ctx context.Context, user models.UserID, text string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if _, err := b.api.Send(tgbotapi.NewMessage(user, text)); err != nil {
		return fmt.Errorf("send to %d: %w", user, err)
	}
	return nil
}

func updateUser(update tgbotapi.Update) (models.UserID, bool) {
	switch {
	case update.Message != nil && update.Message.From != nil:
		return update.Message.From.ID, true
	case update.CallbackQuery != nil && update.CallbackQuery.From != nil:
		return update.CallbackQuery.From.ID, true
	}
	return 0, false
}

func (b *Bot) handleUpdate(ctx context.Context, update tgbotapi.Update) {
	switch {
	case update.CallbackQuery != nil:
		b.handleCallback(ctx, update.CallbackQuery)
	case update.Message != nil:
		b.handleMessage(ctx, update.Message)
	}
}

func (b *Bot) handleMessage(ctx context.Context, message *tgbotapi.Message) {
	if message.IsCommand() {
		b.handleCommand(ctx, message)
		return
	}

	// Get content from message
	content := message.Text
	if content == "" {
		content = message.Caption
	}

	reply := b.handler.HandleText(ctx, message.From.ID, content)
	b.sendReply(message.Chat.ID, reply)
}

func (b *Bot) handleCommand(ctx context.Context, message *tgbotapi.Message) {
	var action conversation.Action
	switch message.Command() {
	case "start":
		action = conversation.Start()
	case "menu":
		action = conversation.ShowMenu()
	case "help":
		b.sendMessage(message.Chat.ID, helpText)
		return
	default:
		b.sendMessage(message.Chat.ID, "Unknown command. Use /help to see available commands.")
		return
	}

	reply := b.handler.HandleAction(ctx, message.From.ID, action)
	b.sendReply(message.Chat.ID, reply)
}

func (b *Bot) handleCallback(ctx context.Context, query *tgbotapi.CallbackQuery) {
	action, err := conversation.ParseAction(query.Data)
	if err != nil {
		b.logger.Warn("Unknown callback data",
			zap.Error(err),
			zap.Int64("user_id", query.From.ID))
		b.answerCallback(query.ID, "Unknown action")
		return
	}

	reply := b.handler.HandleAction(ctx, query.From.ID, action)
	b.answerCallback(query.ID, "")

	if query.Message == nil || query.Message.Chat == nil {
		b.sendReply(query.From.ID, reply)
		return
	}
	b.editReply(query.Message.Chat.ID, query.Message.MessageID, reply)
}

func (b *Bot) answerCallback(id, text string) {
	if _, err := b.api.Request(tgbotapi.NewCallback(id, text)); err != nil {
		b.logger.Debug("Failed to answer callback", zap.Error(err))
	}
}

// editReply replaces the message that carried the pressed button, falling
// back to a fresh message when Telegram refuses the edit.
func (b *Bot) editReply(chatID int64, messageID int, reply conversation.Reply) {
	var edit tgbotapi.EditMessageTextConfig
	if reply.Menu != nil {
		edit = tgbotapi.NewEditMessageTextAndMarkup(chatID, messageID, reply.Text, inlineKeyboard(reply.Menu))
	} else {
		edit = tgbotapi.NewEditMessageText(chatID, messageID, reply.Text)
	}

	if _, err := b.api.Send(edit); err != nil {
		b.logger.Debug("Failed to edit message, sending a new one",
			zap.Error(err),
			zap.Int64("chat_id", chatID))
		b.sendReply(chatID, reply)
	}
}

func (b *Bot) sendReply(chatID int64, reply conversation.Reply) {
	msg := tgbotapi.NewMessage(chatID, reply.Text)
	if reply.Menu != nil {
		msg.ReplyMarkup = inlineKeyboard(reply.Menu)
	}
	if _, err := b.api.Send(msg); err != nil {
		b.logger.Error("Failed to send reply",
			zap.Error(err),
			zap.Int64("chat_id", chatID))
	}
}

func (b *Bot) sendMessage(chatID int64, text string) {
	msg := tgbotapi.NewMessage(chatID, text)
	if _, err := b.api.Send(msg); err != nil {
		b.logger.Error("Failed to send message",
			zap.Error(err),
			zap.Int64("chat_id", chatID))
	}
}

func inlineKeyboard(menu conversation.Menu) tgbotapi.InlineKeyboardMarkup {
	rows := make([][]tgbotapi.InlineKeyboardButton, 0, len(menu))
	for _, row := range menu {
		buttons := make([]tgbotapi.InlineKeyboardButton, 0, len(row))
		for _, btn := range row {
			buttons = append(buttons, tgbotapi.NewInlineKeyboardButtonData(btn.Label, btn.Action.Tag()))
		}
		rows = append(rows, tgbotapi.NewInlineKeyboardRow(buttons...))
	}
	return tgbotapi.NewInlineKeyboardMarkup(rows...)
}

const helpText = `Available commands:
/start - Start the bot and choose a category
/menu - Show the category menu
/help - Show this help message

Pick a category, then add, view or delete your tasks.
Every few minutes I'll send you a quote about discipline.`
