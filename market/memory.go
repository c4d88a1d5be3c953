package market

import (
	"context"
	"sort"
	"sync"

	"github.com/etnz/equity/date"
)

// Memory is a PriceStore held in memory. Its zero value is ready to use.
type Memory struct {
	mu     sync.RWMutex
	prices map[string]*date.History[float64]
}

// NewMemory returns an empty store.
func NewMemory() *Memory { return &Memory{prices: make(map[string]*date.History[float64])} }

// Append records a close, the last write for a given day wins.
func (m *Memory) Append(ticker string, on date.Date, price float64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.prices == nil {
		m.prices = make(map[string]*date.History[float64])
	}
	h, ok := m.prices[ticker]
	if !ok {
		h = new(date.History[float64])
		m.prices[ticker] = h
	}
	h.Append(on, price)
}

// Put records closes of a ticker.
func (m *Memory) Put(_ context.Context, ticker string, closes ...Close) error {
	for _, c := range closes {
		m.Append(ticker, c.Date, c.Close)
	}
	return nil
}

// Tickers returns all known tickers in alphabetical order.
func (m *Memory) Tickers() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	tickers := make([]string, 0, len(m.prices))
	for t := range m.prices {
		tickers = append(tickers, t)
	}
	sort.Strings(tickers)
	return tickers
}

// History returns the raw observations of a ticker.
func (m *Memory) History(ticker string) []Close {
	m.mu.RLock()
	defer m.mu.RUnlock()
	h, ok := m.prices[ticker]
	if !ok {
		return nil
	}
	res := make([]Close, 0, h.Len())
	for on, v := range h.Values() {
		res = append(res, Close{on, v})
	}
	return res
}

func (m *Memory) between(ticker string, from, to date.Date) []Close {
	h, ok := m.prices[ticker]
	if !ok {
		return nil
	}
	var res []Close
	for on, v := range h.Between(from, to) {
		res = append(res, Close{on, v})
	}
	return res
}

func (m *Memory) DailyCloses(ctx context.Context, ticker string, from, to date.Date) ([]Close, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	h, ok := m.prices[ticker]
	if !ok {
		return nil, nil
	}
	if r, ok := h.Range(); !ok || from.After(r.To) {
		return nil, nil
	}
	obs := m.between(ticker, from, to)
	// the observation before from seeds the forward fill.
	if v, ok := h.ValueAsOf(from); ok && (len(obs) == 0 || obs[0].Date != from) {
		obs = append([]Close{{from, v}}, obs...)
	}
	return fill(obs, from, to), nil
}

func (m *Memory) TickerDateRange(ctx context.Context, ticker string) (*date.Range, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	h, ok := m.prices[ticker]
	if !ok {
		return nil, nil
	}
	r, ok := h.Range()
	if !ok {
		return nil, nil
	}
	return &r, nil
}

func (m *Memory) BatchLoadDailyCloses(ctx context.Context, tickers []string, from, to date.Date) (map[string][]Close, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	res := make(map[string][]Close, len(tickers))
	for _, t := range tickers {
		if obs := m.between(t, from, to); len(obs) > 0 {
			res[t] = obs
		}
	}
	return res, nil
}

func (m *Memory) LatestClose(ctx context.Context, ticker string) (float64, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	h, ok := m.prices[ticker]
	if !ok || h.Len() == 0 {
		return 0, false, nil
	}
	_, v := h.Latest()
	return v, true, nil
}

var _ PriceStore = (*Memory)(nil)
