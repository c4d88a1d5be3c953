// Package market defines where closing prices and live quotes come from.
//
// A PriceStore serves historical daily closes for tickers with full history.
// A SpotProvider serves the latest quote for any ticker. Tickers are expected to
// be normalized by the caller.
package market

import (
	"context"
	"time"

	"github.com/etnz/equity/date"
)

// Close is a daily closing price.
type Close struct {
	Date  date.Date `json:"date"`
	Close float64   `json:"close"`
}

// Snapshot is the latest known quote of a ticker.
type Snapshot struct {
	Ticker string    `json:"ticker"`
	Price  float64   `json:"price"`
	AsOf   time.Time `json:"asOf"`
}

// PriceStore gives access to historical daily closes.
type PriceStore interface {
	// DailyCloses returns one close per calendar day in [from, to] restricted to the
	// ticker coverage, forward filled over non trading days.
	DailyCloses(ctx context.Context, ticker string, from, to date.Date) ([]Close, error)
	// TickerDateRange returns the first and last observed day, nil when the ticker is unknown.
	TickerDateRange(ctx context.Context, ticker string) (*date.Range, error)
	// BatchLoadDailyCloses returns the raw trading day observations in [from, to]
	// for every known ticker. Unknown tickers are absent from the result.
	BatchLoadDailyCloses(ctx context.Context, tickers []string, from, to date.Date) (map[string][]Close, error)
	// LatestClose returns the last observed close.
	LatestClose(ctx context.Context, ticker string) (price float64, ok bool, err error)
}

// SpotProvider gives access to live quotes.
type SpotProvider interface {
	// Snapshot returns the latest quote, nil without error when the ticker has none.
	Snapshot(ctx context.Context, ticker string) (*Snapshot, error)
}

// SpotFunc adapts a function to a SpotProvider.
type SpotFunc func(ctx context.Context, ticker string) (*Snapshot, error)

func (f SpotFunc) Snapshot(ctx context.Context, ticker string) (*Snapshot, error) {
	return f(ctx, ticker)
}

// fill expands raw observations into one close per day in [from, to], starting
// at the first observation and ending at the last one.
func fill(obs []Close, from, to date.Date) []Close {
	if len(obs) == 0 {
		return nil
	}
	first, last := obs[0].Date, obs[len(obs)-1].Date
	if from.Before(first) {
		from = first
	}
	if to.After(last) {
		to = last
	}
	if to.Before(from) {
		return nil
	}
	res := make([]Close, 0, to.Sub(from)+1)
	i := 0
	var current float64
	for day := from; !day.After(to); day = day.Add(1) {
		for i < len(obs) && !obs[i].Date.After(day) {
			current = obs[i].Close
			i++
		}
		res = append(res, Close{Date: day, Close: current})
	}
	return res
}
