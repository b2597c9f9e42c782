package main

import (
	"context"

	"github.com/xaenox/discipline-bot/internal/bot"
	"github.com/xaenox/discipline-bot/internal/broadcast"
	"github.com/xaenox/discipline-bot/internal/conversation"
	"github.com/xaenox/discipline-bot/internal/health"
	"github.com/xaenox/discipline-bot/internal/quotes"
	"github.com/xaenox/discipline-bot/pkg/config"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// runServe wires every component and blocks until ctx is cancelled.
func runServe(ctx context.Context, configPath string) error {
	// Load configuration
	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		return err
	}
	if err := cfg.RequireToken(); err != nil {
		return err
	}

	// Initialize logger
	logger, err := newLogger(cfg.Log)
	if err != nil {
		return err
	}
	defer logger.Sync()

	// Initialize storage; this also migrates older schemas
	store, err := openStorage(cfg.Database, logger)
	if err != nil {
		logger.Error("Failed to initialize storage", zap.Error(err))
		return err
	}
	defer store.Close()

	// Load the quote pool once
	sources := []quotes.Source{
		quotes.NewScraper(cfg.Quotes.URL, cfg.Quotes.SelectorClass, cfg.Quotes.Timeout),
	}
	if cfg.OpenAI.Enabled() {
		sources = append(sources, quotes.NewGenerator(
			cfg.OpenAI.APIKey,
			cfg.OpenAI.Model,
			cfg.OpenAI.MaxTokens,
			cfg.OpenAI.Temperature,
			cfg.OpenAI.QuoteCount,
			logger,
		))
	}
	pool := quotes.Load(ctx, logger.Named("quotes"), cfg.Quotes.Fallback, sources...)

	sessions := conversation.NewSessions(cfg.Session.TTL)
	machine := conversation.NewMachine(store, sessions, logger.Named("conversation"))

	// Initialize bot
	b, err := bot.New(bot.Config{
		Token:         cfg.Telegram.Token,
		UpdateTimeout: cfg.Telegram.UpdateTimeout,
		Workers:       cfg.Telegram.Workers,
	}, machine, logger.Named("bot"))
	if err != nil {
		logger.Error("Failed to create bot", zap.Error(err))
		return err
	}

	broadcaster := broadcast.New(store, b, pool, logger.Named("broadcast"),
		broadcast.WithInterval(cfg.Broadcast.Interval),
		broadcast.WithPrefix(cfg.Broadcast.Prefix),
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error { return broadcaster.Run(gctx) })
	g.Go(func() error { return b.Run(gctx) })
	g.Go(func() error {
		sessions.RunJanitor(gctx, cfg.Session.SweepInterval, func(removed int) {
			logger.Debug("Evicted idle sessions", zap.Int("count", removed))
		})
		return nil
	})
	if cfg.Health.Addr != "" {
		srv := health.NewServer(cfg.Health.Addr, store, sessions.Len, len(pool), logger.Named("health"))
		g.Go(func() error { return srv.Run(gctx) })
	}

	logger.Info("Bot started")
	err = g.Wait()
	logger.Info("Bot stopped", zap.Error(err))
	return err
}
