package equity

import (
	"context"
	"math"
	"slices"
	"sort"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/etnz/equity/date"
)

const (
	// DefaultFallbackPrice values a position that has neither a close nor a
	// quote, so the dashboard always shows a number. It is never used to build
	// the historical series.
	DefaultFallbackPrice = 100.0
	// ReconciliationTolerance is the accepted gap between the series tail and
	// the live total.
	ReconciliationTolerance = 0.01
)

// Holding is the live performance of a position.
type Holding struct {
	Ticker          string     `json:"ticker"`
	Sector          string     `json:"sector"`
	Shares          float64    `json:"shares"`
	Price           float64    `json:"price"`
	Source          Provenance `json:"source"`
	MarketValue     float64    `json:"marketValue"`
	CostBasis       float64    `json:"costBasis"`
	UnrealizedPL    float64    `json:"unrealizedPL"`
	ReturnPct       float64    `json:"returnPct"`
	Weight          float64    `json:"weight"`          // share of the total value, in [0, 1]
	ContributionPct float64    `json:"contributionPct"` // Weight × ReturnPct
}

// Allocation is the market value of a sector.
type Allocation struct {
	Sector string  `json:"sector"`
	Value  float64 `json:"value"`
	Weight float64 `json:"weight"`
}

// LiveMetrics are the dashboard figures.
type LiveMetrics struct {
	AsOf             date.Date    `json:"asOf"`
	TotalValue       float64      `json:"totalValue"`
	TotalCost        float64      `json:"totalCost"`
	UnrealizedPL     float64      `json:"unrealizedPL"`
	YTDReturnPct     float64      `json:"ytdReturnPct"`
	AllTimeReturnPct float64      `json:"allTimeReturnPct"`
	CAGR             []CAGR       `json:"cagr"`
	Allocation       []Allocation `json:"allocation"`
	Holdings         []Holding    `json:"holdings"`
	Series           []Point      `json:"series"`
	Status           Status       `json:"status"`
	// Drift is the series tail minus the live total, before reconciliation.
	Drift      float64 `json:"drift"`
	Reconciled bool    `json:"reconciled"`
}

// Aggregator computes live metrics.
type Aggregator struct {
	engine        *Engine
	sectors       map[string]string
	fallbackPrice float64
	benchmark     string
	period        date.Period
	log           *zap.Logger
}

// AggregatorOption configures an Aggregator.
type AggregatorOption func(*Aggregator)

// WithSectors sets the sector of tickers.
func WithSectors(sectors map[string]string) AggregatorOption {
	return func(a *Aggregator) { a.sectors = sectors }
}

// WithFallbackPrice sets the last resort price of live valuation.
func WithFallbackPrice(p float64) AggregatorOption {
	return func(a *Aggregator) { a.fallbackPrice = p }
}

// WithBenchmark sets the benchmark ticker.
func WithBenchmark(ticker string) AggregatorOption {
	return func(a *Aggregator) { a.benchmark = ticker }
}

// WithLabelPeriod sets the label format of CAGR windows.
func WithLabelPeriod(p date.Period) AggregatorOption {
	return func(a *Aggregator) { a.period = p }
}

// NewAggregator returns an aggregator using engine for series and prices.
func NewAggregator(engine *Engine, opts ...AggregatorOption) *Aggregator {
	a := &Aggregator{
		engine:        engine,
		fallbackPrice: DefaultFallbackPrice,
		benchmark:     "SPY",
		period:        date.Monthly,
		log:           engine.log,
	}
	for _, opt := range opts {
		opt(a)
	}
	if a.sectors == nil {
		a.sectors = map[string]string{}
	}
	a.benchmark = engine.Normalize(a.benchmark)
	return a
}

// Engine returns the engine used by the aggregator.
func (a *Aggregator) Engine() *Engine { return a.engine }

// Sector returns the sector of a ticker.
func (a *Aggregator) Sector(ticker string) string {
	if s, ok := a.sectors[ticker]; ok && s != "" {
		return s
	}
	return UnknownSector
}

// Positions derives positions from transactions.
func (a *Aggregator) Positions(txs []Transaction) []Position {
	return PositionsFromTransactions(txs, a.engine.Normalize, a.sectors)
}

// currentPrices prices every ticker for today: the latest stored close for
// full history tickers, then a spot quote, then the fallback price.
func (a *Aggregator) currentPrices(ctx context.Context, tickers []string, st *Status) (map[string]float64, map[string]Provenance) {
	e := a.engine
	today := e.Today()
	price := make(map[string]float64, len(tickers))
	source := make(map[string]Provenance, len(tickers))
	var needSpot []string
	for _, t := range tickers {
		if e.full[t] && e.store != nil {
			v, ok, err := e.store.LatestClose(ctx, t)
			if err != nil {
				a.log.Warn("latest close unavailable", zap.String("ticker", t), zap.Error(err))
			}
			if err == nil && ok && valid(v) {
				price[t], source[t] = v, FromTimeseries
				continue
			}
		}
		needSpot = append(needSpot, t)
	}
	spots := e.fetchSpots(ctx, needSpot, today, st)
	for _, t := range needSpot {
		if v, ok := spots[t]; ok {
			price[t], source[t] = v, FromSpot
			continue
		}
		price[t], source[t] = a.fallbackPrice, FromFallback
		st.warn(WarnFallbackPrice, t, today, "no close nor quote for %s, valued at the fallback price %.2f", t, a.fallbackPrice)
	}
	return price, source
}

// Compute values positions now, builds the series of txs and reconciles both:
// when the series tail differs from the live total by more than a cent, the
// tail is forced to the live total and a warning is recorded.
// If positions is nil they are derived from txs.
func (a *Aggregator) Compute(ctx context.Context, positions []Position, txs []Transaction) *LiveMetrics {
	e := a.engine
	if positions == nil {
		positions = a.Positions(txs)
	}
	r := e.Build(ctx, txs)
	m := &LiveMetrics{
		AsOf:       e.Today(),
		Series:     r.Series,
		Status:     r.Status,
		Holdings:   make([]Holding, 0, len(positions)),
		Allocation: []Allocation{},
	}

	positions = slices.Clone(positions)
	tickers := make([]string, 0, len(positions))
	for i := range positions {
		positions[i].Ticker = e.Normalize(positions[i].Ticker)
		tickers = append(tickers, positions[i].Ticker)
	}
	price, source := a.currentPrices(ctx, tickers, &m.Status)

	var total, cost decimal.Decimal
	for _, p := range positions {
		if !p.Shares.IsPositive() {
			continue
		}
		value := p.Shares.Mul(decimal.NewFromFloat(price[p.Ticker]))
		total = total.Add(value)
		cost = cost.Add(p.CostBasis)
		sector := p.Sector
		if sector == "" {
			sector = a.Sector(p.Ticker)
		}
		h := Holding{
			Ticker:       p.Ticker,
			Sector:       sector,
			Shares:       p.Shares.InexactFloat64(),
			Price:        price[p.Ticker],
			Source:       source[p.Ticker],
			MarketValue:  value.InexactFloat64(),
			CostBasis:    p.CostBasis.InexactFloat64(),
			UnrealizedPL: value.Sub(p.CostBasis).InexactFloat64(),
		}
		h.ReturnPct = pctChange(h.CostBasis, h.MarketValue)
		m.Holdings = append(m.Holdings, h)
	}
	m.TotalValue = total.InexactFloat64()
	m.TotalCost = cost.InexactFloat64()
	m.UnrealizedPL = total.Sub(cost).InexactFloat64()

	sectors := make(map[string]float64)
	for i := range m.Holdings {
		h := &m.Holdings[i]
		if m.TotalValue > 0 {
			h.Weight = h.MarketValue / m.TotalValue
		}
		h.ContributionPct = h.Weight * h.ReturnPct
		sectors[h.Sector] += h.MarketValue
	}
	sort.Slice(m.Holdings, func(i, j int) bool {
		if m.Holdings[i].MarketValue != m.Holdings[j].MarketValue {
			return m.Holdings[i].MarketValue > m.Holdings[j].MarketValue
		}
		return m.Holdings[i].Ticker < m.Holdings[j].Ticker
	})
	for s, v := range sectors {
		al := Allocation{Sector: s, Value: v}
		if m.TotalValue > 0 {
			al.Weight = v / m.TotalValue
		}
		m.Allocation = append(m.Allocation, al)
	}
	sort.Slice(m.Allocation, func(i, j int) bool {
		if m.Allocation[i].Value != m.Allocation[j].Value {
			return m.Allocation[i].Value > m.Allocation[j].Value
		}
		return m.Allocation[i].Sector < m.Allocation[j].Sector
	})

	a.reconcile(m)

	m.YTDReturnPct = YTDReturn(m.Series, m.AsOf)
	m.AllTimeReturnPct = AllTimeReturn(m.Series)
	m.CAGR = FixedWindowCAGRs(m.Series, a.period)
	return m
}

// reconcile forces the series tail to the live total when they drift apart.
func (a *Aggregator) reconcile(m *LiveMetrics) {
	n := len(m.Series)
	if n == 0 {
		return
	}
	last := &m.Series[n-1]
	m.Drift = last.Value - m.TotalValue
	if math.Abs(m.Drift) <= ReconciliationTolerance {
		return
	}
	a.log.Warn("series tail does not match the live total, forcing the tail",
		zap.Stringer("date", last.Date),
		zap.Float64("series", last.Value),
		zap.Float64("live", m.TotalValue),
		zap.Float64("drift", m.Drift),
	)
	m.Status.warn(WarnReconciliation, "", last.Date,
		"series value %.2f on %s differs from the live total %.2f by %.2f, the series tail was aligned on the live total",
		last.Value, last.Date, m.TotalValue, m.Drift)
	last.Value = m.TotalValue
	m.Reconciled = true
	for i := range m.Series {
		m.Series[i].CumulativeReturnPct = nil
	}
	cumulativeReturns(m.Series)
}
