// Package quotes supplies the pool of motivational quotes pushed by the broadcaster.
package quotes

import (
	"context"
	"errors"

	"go.uber.org/zap"
)

// DefaultFallback is used whenever no source yields a quote.
const DefaultFallback = "Discipline is the decision to do what you really don't want to do in order to achieve what you really want to achieve."

var ErrFetchFailed = errors.New("quote fetch failed")

type Source interface {
	Fetch(ctx context.Context) ([]string, error)
}

// Load asks each source in turn and returns the first non-empty result.
// Failures are logged; the result always holds at least one quote.
func Load(ctx context.Context, logger *zap.Logger, fallback string, sources ...Source) []string {
	if fallback == "" {
		fallback = DefaultFallback
	}

	for _, src := range sources {
		quotes, err := src.Fetch(ctx)
		if err != nil {
			logger.Warn("Failed to load quotes", zap.Error(err))
			continue
		}
		if len(quotes) == 0 {
			logger.Warn("Quote source returned no quotes")
			continue
		}
		logger.Info("Loaded quotes", zap.Int("count", len(quotes)))
		return quotes
	}

	logger.Info("Using fallback quote")
	return []string{fallback}
}
