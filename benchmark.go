package equity

import (
	"context"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/etnz/equity/date"
)

// Benchmark is what the portfolio would be worth had every trade been made in
// the benchmark ticker instead.
type Benchmark struct {
	Ticker             string  `json:"ticker"`
	Series             []Point `json:"series"`
	Status             Status  `json:"status"`
	AllTimeReturnPct   float64 `json:"allTimeReturnPct"`
	PortfolioReturnPct float64 `json:"portfolioReturnPct"`
	ExcessReturnPct    float64 `json:"excessReturnPct"`
	MirroredTradeCount int     `json:"mirroredTradeCount"`
	SkippedTradeCount  int     `json:"skippedTradeCount"`
}

// Benchmark mirrors every buy and sell of txs into the benchmark ticker at its
// close of the trade day, and builds the value series of those mirrored trades.
// Trades made before the benchmark has a close are skipped.
func (a *Aggregator) Benchmark(ctx context.Context, txs []Transaction) *Benchmark {
	e := a.engine
	b := &Benchmark{Ticker: a.benchmark}
	portfolio := e.Build(ctx, txs)
	b.PortfolioReturnPct = AllTimeReturn(portfolio.Series)

	trades, _ := e.prepare(txs)
	var closes date.History[float64]
	if e.store != nil && len(trades) > 0 {
		cs, err := e.store.DailyCloses(ctx, a.benchmark, trades[0].Date.Add(-lookbackDays), e.Today())
		if err != nil {
			a.log.Warn("benchmark closes unavailable", zap.String("ticker", a.benchmark), zap.Error(err))
		}
		for _, c := range cs {
			closes.Append(c.Date, c.Close)
		}
	}

	var mirrored []Transaction
	for _, tx := range trades {
		if !tx.Type.AffectsShares() {
			continue
		}
		close, ok := closes.ValueAsOf(tx.Date)
		if !ok || !valid(close) {
			b.SkippedTradeCount++
			continue
		}
		price := decimal.NewFromFloat(close)
		mirrored = append(mirrored, Transaction{
			Date:     tx.Date,
			Ticker:   a.benchmark,
			Type:     tx.Type,
			Quantity: tx.Amount().Div(price),
			Price:    price,
		})
	}
	b.MirroredTradeCount = len(mirrored)

	r := e.Build(ctx, mirrored)
	b.Series, b.Status = r.Series, r.Status
	if b.SkippedTradeCount > 0 {
		b.Status.warn(WarnMissingPrice, a.benchmark, date.Date{}, "%d trades made before %s has a close were not mirrored", b.SkippedTradeCount, a.benchmark)
	}
	b.AllTimeReturnPct = AllTimeReturn(b.Series)
	b.ExcessReturnPct = b.PortfolioReturnPct - b.AllTimeReturnPct
	return b
}
