package spot

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/etnz/equity/market"
)

// DefaultStaleness is how long a fetched quote is served from memory.
const DefaultStaleness = 24 * time.Hour

type entry struct {
	snap      *market.Snapshot
	fetchedAt time.Time
}

// Cached keeps quotes of an underlying provider in memory until they are stale.
// Failed fetches are not cached.
type Cached struct {
	base      market.SpotProvider
	staleness time.Duration
	now       func() time.Time
	log       *zap.Logger

	mu      sync.RWMutex
	entries map[string]entry
}

// NewCached wraps base. A zero staleness means DefaultStaleness.
func NewCached(base market.SpotProvider, staleness time.Duration, log *zap.Logger) *Cached {
	if staleness <= 0 {
		staleness = DefaultStaleness
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Cached{
		base:      base,
		staleness: staleness,
		now:       time.Now,
		log:       log,
		entries:   make(map[string]entry),
	}
}

func (c *Cached) Snapshot(ctx context.Context, ticker string) (*market.Snapshot, error) {
	now := c.now()
	c.mu.RLock()
	e, ok := c.entries[ticker]
	c.mu.RUnlock()
	if ok && now.Sub(e.fetchedAt) < c.staleness {
		return e.snap, nil
	}

	snap, err := c.base.Snapshot(ctx, ticker)
	if err != nil {
		if ok {
			c.log.Warn("spot refresh failed, serving stale quote", zap.String("ticker", ticker), zap.Error(err))
			return e.snap, nil
		}
		return nil, err
	}
	c.mu.Lock()
	c.entries[ticker] = entry{snap: snap, fetchedAt: now}
	c.mu.Unlock()
	return snap, nil
}

// Clear drops every cached quote.
func (c *Cached) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = make(map[string]entry)
}
