package equity

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/shopspring/decimal"

	"github.com/etnz/equity/date"
	"github.com/etnz/equity/market"
	"github.com/etnz/equity/spot"
)

var d = date.MustParse

// today is a Wednesday.
var today = time.Date(2024, time.January, 10, 15, 30, 0, 0, time.UTC)

func clock() time.Time { return today }

// testStore has SPY on every trading day from Jan 2 to Jan 10 2024, AAPL until
// Jan 5 only, and QQQ starting on Jan 4.
func testStore() *market.Memory {
	m := market.NewMemory()
	spy := map[string]float64{
		"2023-12-29": 475, "2024-01-02": 470, "2024-01-03": 468, "2024-01-04": 467,
		"2024-01-05": 468, "2024-01-08": 474, "2024-01-09": 473, "2024-01-10": 476,
	}
	for day, v := range spy {
		m.Append("SPY", d(day), v)
	}
	for day, v := range map[string]float64{"2024-01-02": 185, "2024-01-03": 184, "2024-01-04": 181, "2024-01-05": 182} {
		m.Append("AAPL", d(day), v)
	}
	for day, v := range map[string]float64{"2024-01-04": 400, "2024-01-05": 402, "2024-01-08": 408, "2024-01-09": 409, "2024-01-10": 410} {
		m.Append("QQQ", d(day), v)
	}
	for day, v := range map[string]float64{"2024-01-02": 350, "2024-01-10": 370} {
		m.Append("META", d(day), v)
	}
	return m
}

func testSpot() spot.Static {
	return spot.Static{Prices: map[string]float64{"AAPL": 190, "PLTR": 20}, AsOf: today}
}

func newTestEngine(opts ...Option) *Engine {
	opts = append([]Option{WithClock(clock), WithFullHistory("SPY", "AAPL", "QQQ", "META")}, opts...)
	return NewEngine(testStore(), testSpot(), opts...)
}

func tx(day string, typ TxType, ticker string, qty, price float64) Transaction {
	return Transaction{
		Date:     d(day),
		Ticker:   ticker,
		Type:     typ,
		Quantity: decimal.NewFromFloat(qty),
		Price:    decimal.NewFromFloat(price),
	}
}

// countingStore counts batch loads.
type countingStore struct {
	market.PriceStore
	batches atomic.Int32
}

func (c *countingStore) BatchLoadDailyCloses(ctx context.Context, tickers []string, from, to date.Date) (map[string][]market.Close, error) {
	c.batches.Add(1)
	return c.PriceStore.BatchLoadDailyCloses(ctx, tickers, from, to)
}

// failingStore is a price store that cannot be reached.
type failingStore struct{ market.PriceStore }

func (failingStore) BatchLoadDailyCloses(context.Context, []string, date.Date, date.Date) (map[string][]market.Close, error) {
	return nil, errUnreachable
}

func (failingStore) LatestClose(context.Context, string) (float64, bool, error) {
	return 0, false, errUnreachable
}

type unreachable struct{}

func (unreachable) Error() string { return "connection refused" }

var errUnreachable error = unreachable{}

func dates(series []Point) []date.Date {
	res := make([]date.Date, len(series))
	for i, p := range series {
		res[i] = p.Date
	}
	return res
}

func values(series []Point) []float64 {
	res := make([]float64, len(series))
	for i, p := range series {
		res[i] = p.Value
	}
	return res
}
