package spot

import (
	"context"
	"time"

	"github.com/etnz/equity/market"
)

// Static serves fixed quotes, typically from configuration.
type Static struct {
	Prices map[string]float64
	AsOf   time.Time
}

func (s Static) Snapshot(ctx context.Context, ticker string) (*market.Snapshot, error) {
	p, ok := s.Prices[ticker]
	if !ok || p <= 0 {
		return nil, nil
	}
	return &market.Snapshot{Ticker: ticker, Price: p, AsOf: s.AsOf}, nil
}

// Chain asks each provider in turn and returns the first snapshot found.
// Errors are returned only if no provider has a snapshot.
type Chain []market.SpotProvider

func (c Chain) Snapshot(ctx context.Context, ticker string) (*market.Snapshot, error) {
	var firstErr error
	for _, p := range c {
		s, err := p.Snapshot(ctx, ticker)
		if err != nil {
			if firstErr == nil {
				firstErr = err
			}
			continue
		}
		if s != nil {
			return s, nil
		}
	}
	return nil, firstErr
}
