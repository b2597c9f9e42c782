// Package broadcast periodically pushes a random quote to every known user.
package broadcast

import (
	"context"
	"fmt"
	"math/rand"
	"time"

	"github.com/google/uuid"
	"github.com/xaenox/discipline-bot/internal/models"
	"go.uber.org/zap"
)

const (
	DefaultInterval = 5 * time.Minute
	DefaultPrefix   = "💡 Quote on discipline:\n"
)

type UserLister interface {
	ListUsers(ctx context.Context) ([]models.UserID, error)
}

type Sender interface {
	SendText(ctx context.Context, user models.UserID, text string) error
}

// CycleResult summarises one broadcast cycle.
type CycleResult struct {
	Quote  string
	Sent   int
	Failed int
}

type Broadcaster struct {
	users    UserLister
	sender   Sender
	quotes   []string
	interval time.Duration
	prefix   string
	pick     func(n int) int
	logger   *zap.Logger
}

type Option func(*Broadcaster)

func WithInterval(d time.Duration) Option {
	return func(b *Broadcaster) {
		if d > 0 {
			b.interval = d
		}
	}
}

func WithPrefix(p string) Option {
	return func(b *Broadcaster) { b.prefix = p }
}

// WithPicker replaces the uniform random quote choice.
func WithPicker(pick func(n int) int) Option {
	return func(b *Broadcaster) { b.pick = pick }
}

// New copies quotes; the pool is immutable afterwards.
func New(users UserLister, sender Sender, quotes []string, logger *zap.Logger, opts ...Option) *Broadcaster {
	b := &Broadcaster{
		users:    users,
		sender:   sender,
		quotes:   append([]string(nil), quotes...),
		interval: DefaultInterval,
		prefix:   DefaultPrefix,
		pick:     rand.Intn,
		logger:   logger,
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Run broadcasts immediately and then once per interval until ctx is
// cancelled. A cancelled cycle lets the in-flight send finish.
func (b *Broadcaster) Run(ctx context.Context) error {
	b.logger.Info("Broadcaster started",
		zap.Duration("interval", b.interval),
		zap.Int("quotes", len(b.quotes)))

	ticker := time.NewTicker(b.interval)
	defer ticker.Stop()

	for {
		b.Cycle(ctx)

		select {
		case <-ctx.Done():
			b.logger.Info("Broadcaster stopped")
			return nil
		case <-ticker.C:
		}
	}
}

// Cycle sends one quote to every registered user. Per-user delivery
// failures are logged and skipped.
func (b *Broadcaster) Cycle(ctx context.Context) CycleResult {
	if len(b.quotes) == 0 {
		return CycleResult{}
	}

	logger := b.logger.With(zap.String("cycle_id", uuid.NewString()))
	quote := b.quotes[b.pick(len(b.quotes))]
	result := CycleResult{Quote: quote}

	users, err := b.users.ListUsers(ctx)
	if err != nil {
		logger.Error("Failed to list users for broadcast", zap.Error(err))
		return result
	}

	text := b.prefix + quote
	// Sends are detached from cancellation; shutdown drains the in-flight one.
	sendCtx := context.WithoutCancel(ctx)
	for _, user := range users {
		if ctx.Err() != nil {
			logger.Info("Broadcast cycle interrupted",
				zap.Int("sent", result.Sent),
				zap.Int("remaining", len(users)-result.Sent-result.Failed))
			break
		}
		if err := b.sendOne(sendCtx, user, text); err != nil {
			result.Failed++
			logger.Warn("Failed to deliver quote",
				zap.Error(err),
				zap.Int64("user_id", user))
			continue
		}
		result.Sent++
	}

	logger.Debug("Broadcast cycle finished",
		zap.Int("sent", result.Sent),
		zap.Int("failed", result.Failed))
	return result
}

func (b *Broadcaster) sendOne(ctx context.Context, user models.UserID, text string) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic while sending: %v", r)
		}
	}()
	return b.sender.SendText(ctx, user, text)
}
