package inputcache

import (
	"context"
	"log/slog"
	"time"

	"github.com/caustin-usgs/lcmap-gaia/internal/domain/chip"
	"github.com/caustin-usgs/lcmap-gaia/pkg/metrics"
)

// CachedSource serves chip inputs from a Store and falls back to the wrapped Source on a miss.
// Cache errors are logged and never fail a fetch.
type CachedSource struct {
	source chip.Source
	store  Store
	ttl    time.Duration
	logger *slog.Logger
}

// NewCachedSource wraps source with store.
func NewCachedSource(source chip.Source, store Store, ttl time.Duration, logger *slog.Logger) *CachedSource {
	return &CachedSource{source: source, store: store, ttl: ttl, logger: logger.With("component", "inputcache")}
}

func (c *CachedSource) Fetch(ctx context.Context, cx, cy int64) (chip.Inputs, error) {
	inputs, found, err := c.store.Get(ctx, cx, cy)
	switch {
	case err != nil:
		metrics.InputCache.WithLabelValues("error").Inc()
		c.logger.Warn("input cache read failed", "cx", cx, "cy", cy, "error", err)
	case found:
		metrics.InputCache.WithLabelValues("hit").Inc()
		return inputs, nil
	default:
		metrics.InputCache.WithLabelValues("miss").Inc()
	}

	inputs, err = c.source.Fetch(ctx, cx, cy)
	if err != nil {
		return chip.Inputs{}, err
	}
	if err := c.store.Save(ctx, cx, cy, inputs, c.ttl); err != nil {
		c.logger.Warn("input cache write failed", "cx", cx, "cy", cy, "error", err)
	}
	return inputs, nil
}

var _ chip.Source = (*CachedSource)(nil)
