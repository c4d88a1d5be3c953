package equity

import (
	"context"
	"math"
	"slices"
	"sort"
	"sync"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"

	"github.com/etnz/equity/date"
	"github.com/etnz/equity/market"
)

const (
	defaultSpotTimeout     = 5 * time.Second
	defaultSpotParallelism = 8
	// closes are loaded a little before the first trade so that a trade made on
	// a non trading day can be valued with the previous close.
	lookbackDays = 7
)

// Engine builds daily value series from transactions.
// It is safe for concurrent use.
type Engine struct {
	store       market.PriceStore
	spot        market.SpotProvider
	full        map[string]bool
	aliases     map[string]string
	now         func() time.Time
	log         *zap.Logger
	spotTimeout time.Duration
	parallelism int

	mu       sync.Mutex
	cache    map[string]Result
	cacheDay date.Date
	group    singleflight.Group
}

// Option configures an Engine.
type Option func(*Engine)

// WithClock sets the clock used to decide what "today" is.
func WithClock(now func() time.Time) Option { return func(e *Engine) { e.now = now } }

// WithFullHistory replaces the set of tickers served by the price store.
func WithFullHistory(tickers ...string) Option {
	return func(e *Engine) {
		e.full = make(map[string]bool, len(tickers))
		for _, t := range tickers {
			e.full[NormalizeTicker(t, nil)] = true
		}
	}
}

// WithAliases replaces the alias table.
func WithAliases(aliases map[string]string) Option {
	return func(e *Engine) {
		e.aliases = make(map[string]string, len(aliases))
		for k, v := range aliases {
			e.aliases[NormalizeTicker(k, nil)] = NormalizeTicker(v, nil)
		}
	}
}

func WithLogger(l *zap.Logger) Option { return func(e *Engine) { e.log = l } }

// WithSpotTimeout bounds each spot quote fetch.
func WithSpotTimeout(d time.Duration) Option { return func(e *Engine) { e.spotTimeout = d } }

// WithSpotParallelism bounds the number of concurrent spot quote fetches.
func WithSpotParallelism(n int) Option { return func(e *Engine) { e.parallelism = n } }

// NewEngine returns an engine reading closes from store and quotes from spot.
// Either can be nil, the missing prices are then reported in the status.
func NewEngine(store market.PriceStore, spot market.SpotProvider, opts ...Option) *Engine {
	e := &Engine{
		store:       store,
		spot:        spot,
		now:         time.Now,
		spotTimeout: defaultSpotTimeout,
		parallelism: defaultSpotParallelism,
		cache:       make(map[string]Result),
	}
	WithFullHistory(DefaultFullHistory...)(e)
	WithAliases(DefaultAliases)(e)
	for _, opt := range opts {
		opt(e)
	}
	if e.log == nil {
		e.log = zap.NewNop()
	}
	if e.spotTimeout <= 0 {
		e.spotTimeout = defaultSpotTimeout
	}
	if e.parallelism <= 0 {
		e.parallelism = defaultSpotParallelism
	}
	return e
}

// Today returns the engine's current day.
func (e *Engine) Today() date.Date { return date.Of(e.now()) }

// Normalize returns the ticker as price sources know it.
func (e *Engine) Normalize(ticker string) string { return NormalizeTicker(ticker, e.aliases) }

// IsFullHistory reports whether a normalized ticker is served by the price store.
func (e *Engine) IsFullHistory(ticker string) bool { return e.full[ticker] }

// prepare normalizes, validates and sorts a copy of txs.
func (e *Engine) prepare(txs []Transaction) ([]Transaction, []Warning) {
	var warnings []Warning
	res := make([]Transaction, 0, len(txs))
	for _, tx := range txs {
		tx.Ticker = e.Normalize(tx.Ticker)
		if err := tx.Validate(); err != nil {
			warnings = append(warnings, Warning{Kind: WarnInvalid, Ticker: tx.Ticker, Date: tx.Date, Message: err.Error()})
			continue
		}
		res = append(res, tx)
	}
	sort.SliceStable(res, func(i, j int) bool { return res[i].Date.Before(res[j].Date) })
	return res, warnings
}

// Build returns the daily value series of txs. It never fails: anomalies are
// reported in the status. Identical transaction sets on the same day are served
// from a cache.
func (e *Engine) Build(ctx context.Context, txs []Transaction) Result {
	today := e.Today()
	norm, invalid := e.prepare(txs)
	key := hashTransactions(norm, today)

	e.mu.Lock()
	e.expire(today)
	cached, ok := e.cache[key]
	e.mu.Unlock()
	if ok {
		r := cached.clone()
		r.Status.Cached = true
		return withInvalid(r, invalid)
	}

	// The build is shared by every caller of the flight, it must not depend on
	// the first caller staying around.
	v, _, _ := e.group.Do(key, func() (any, error) {
		r := e.build(context.WithoutCancel(ctx), norm, today)
		r.Status.Hash = key
		e.mu.Lock()
		e.expire(today)
		e.cache[key] = r
		e.mu.Unlock()
		return r, nil
	})
	return withInvalid(v.(Result).clone(), invalid)
}

// withInvalid reports transactions rejected before the build.
func withInvalid(r Result, invalid []Warning) Result {
	if len(invalid) > 0 {
		r.Status.Warnings = append(invalid, r.Status.Warnings...)
	}
	return r
}

// expire drops the cached series of previous days. e.mu must be held.
func (e *Engine) expire(today date.Date) {
	if e.cacheDay != today {
		e.cache = make(map[string]Result)
		e.cacheDay = today
	}
}

// ClearCache forgets every built series.
func (e *Engine) ClearCache() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.cache = make(map[string]Result)
}

// ValueOn returns the portfolio value on day, or on the latest valued day before it.
// It returns 0 if nothing was valued by then.
func (e *Engine) ValueOn(ctx context.Context, txs []Transaction, day date.Date) float64 {
	r := e.Build(ctx, txs)
	i := sort.Search(len(r.Series), func(i int) bool { return r.Series[i].Date.After(day) })
	if i == 0 {
		return 0
	}
	return r.Series[i-1].Value
}

// LatestValue returns the value of the last point of the series, 0 if empty.
func (e *Engine) LatestValue(ctx context.Context, txs []Transaction) float64 {
	if p, ok := e.Build(ctx, txs).Last(); ok {
		return p.Value
	}
	return 0
}

// prices holds everything preloaded for a build.
type prices struct {
	closes   map[string]*date.History[float64]
	coverage map[string]date.Range
	spot     map[string]float64
}

// resolve prices ticker on day: the stored close inside its coverage first,
// then the spot quote held constant, otherwise missing.
func (p *prices) resolve(ticker string, day date.Date) (float64, Provenance) {
	if h, ok := p.closes[ticker]; ok {
		if cov, ok := p.coverage[ticker]; ok && cov.Contains(day) {
			if v, ok := h.ValueAsOf(day); ok && v > 0 {
				return v, FromTimeseries
			}
		}
	}
	if v, ok := p.spot[ticker]; ok {
		return v, FromSpot
	}
	return 0, Missing
}

func (e *Engine) build(ctx context.Context, txs []Transaction, today date.Date) Result {
	st := Status{
		SpotTickers:   []string{},
		BridgedDates:  []date.Date{},
		MissingPrices: []MissingPrice{},
		Warnings:      []Warning{},
	}
	trades := slices.DeleteFunc(slices.Clone(txs), func(tx Transaction) bool { return !tx.Type.AffectsShares() })
	st.TradeCount = len(trades)
	if len(trades) == 0 {
		return Result{Series: []Point{}, Status: st}
	}
	earliest := trades[0].Date

	// partition tickers, keeping the first trade day of each.
	firstTrade := make(map[string]date.Date)
	var full, spotOnly []string
	for _, tx := range trades {
		if _, seen := firstTrade[tx.Ticker]; seen {
			continue
		}
		firstTrade[tx.Ticker] = tx.Date
		if e.full[tx.Ticker] {
			full = append(full, tx.Ticker)
		} else {
			spotOnly = append(spotOnly, tx.Ticker)
		}
	}
	sort.Strings(full)
	sort.Strings(spotOnly)

	p := &prices{
		closes:   make(map[string]*date.History[float64]),
		coverage: make(map[string]date.Range),
	}
	e.preload(ctx, p, full, earliest, today, &st)

	needSpot := slices.Clone(spotOnly)
	for _, t := range full {
		cov, ok := p.coverage[t]
		if !ok || cov.To.Before(today) || cov.From.After(firstTrade[t]) {
			needSpot = append(needSpot, t)
		}
	}
	sort.Strings(needSpot)
	p.spot = e.fetchSpots(ctx, needSpot, today, &st)

	// processing calendar: trading days, trade days and today.
	days := make([][]date.Date, 0, len(p.closes)+2)
	for _, t := range full {
		if h, ok := p.closes[t]; ok {
			days = append(days, slices.DeleteFunc(slices.Clone(h.Days()), func(d date.Date) bool {
				return d.Before(earliest) || d.After(today)
			}))
		}
	}
	byDay := make(map[date.Date][]Transaction)
	tradeDays := make([]date.Date, 0, len(trades))
	for _, tx := range trades {
		if _, ok := byDay[tx.Date]; !ok {
			tradeDays = append(tradeDays, tx.Date)
		}
		byDay[tx.Date] = append(byDay[tx.Date], tx)
	}
	days = append(days, tradeDays, []date.Date{today})

	holdings := make(map[string]decimal.Decimal)
	spotUsed := make(map[string]bool)
	missingWarned := make(map[string]bool)
	series := make([]Point, 0, max(today.Sub(earliest)+1, 0))

	for day := range date.Union(days...) {
		if ts, ok := byDay[day]; ok {
			for _, tx := range CombineSameDay(ts) {
				applyTrade(holdings, tx, &st, e.log)
			}
		}

		var total decimal.Decimal
		held, priced, bridged := false, false, false
		for _, t := range sortedTickers(holdings) {
			shares := holdings[t]
			if shares.IsZero() {
				continue
			}
			held = true
			price, prov := p.resolve(t, day)
			switch prov {
			case FromSpot:
				spotUsed[t], bridged = true, true
			case Missing:
				st.MissingPrices = append(st.MissingPrices, MissingPrice{Ticker: t, Date: day})
				if !missingWarned[t] {
					missingWarned[t] = true
					st.warn(WarnMissingPrice, t, day, "no price for %s on %s, excluded from the valuation", t, day)
				}
				continue
			}
			total = total.Add(shares.Mul(decimal.NewFromFloat(price)))
			priced = true
		}
		// a day with holdings but no price at all is unknown, not worth zero.
		// Once everything is sold the portfolio is really worth zero.
		if held && !priced {
			continue
		}
		if bridged {
			st.BridgedDates = append(st.BridgedDates, day)
		}
		series = append(series, Point{Date: day, Value: total.InexactFloat64()})
	}

	cumulativeReturns(series)

	for t := range spotUsed {
		st.SpotTickers = append(st.SpotTickers, t)
	}
	sort.Strings(st.SpotTickers)
	for i := len(series) - 1; i >= 0; i-- {
		if series[i].Value > 0 {
			st.ValuedThrough = series[i].Date
			break
		}
	}
	if len(series) > 0 {
		st.Covered = date.Range{From: series[0].Date, To: series[len(series)-1].Date}
	}

	e.log.Debug("equity series built",
		zap.Int("trades", st.TradeCount),
		zap.Int("points", len(series)),
		zap.Strings("spot_tickers", st.SpotTickers),
		zap.Int("missing_prices", len(st.MissingPrices)),
		zap.Int("warnings", len(st.Warnings)),
	)
	return Result{Series: series, Status: st}
}

// preload loads the closes of all full history tickers in a single batch.
func (e *Engine) preload(ctx context.Context, p *prices, full []string, earliest, today date.Date, st *Status) {
	if len(full) == 0 {
		return
	}
	if e.store == nil {
		st.warn(WarnDataUnavailable, "", today, "no price store, %d tickers valued with spot quotes only", len(full))
		return
	}
	batch, err := e.store.BatchLoadDailyCloses(ctx, full, earliest.Add(-lookbackDays), today)
	if err != nil {
		e.log.Warn("price store unavailable", zap.Error(err))
		st.warn(WarnDataUnavailable, "", today, "price store unavailable: %v", err)
		return
	}
	for _, t := range full {
		obs := batch[t]
		if len(obs) == 0 {
			continue
		}
		h := new(date.History[float64])
		for _, c := range obs {
			if c.Close > 0 && !math.IsNaN(c.Close) && !math.IsInf(c.Close, 0) {
				h.Append(c.Date, c.Close)
			}
		}
		if h.Len() == 0 {
			continue
		}
		p.closes[t] = h
		cov, err := e.store.TickerDateRange(ctx, t)
		if err != nil {
			e.log.Warn("cannot read ticker coverage", zap.String("ticker", t), zap.Error(err))
			cov = nil
		}
		if cov == nil {
			// fall back on the span of what was loaded.
			r, _ := h.Range()
			cov = &r
		}
		p.coverage[t] = *cov
	}
}

// fetchSpots fetches quotes concurrently, each bounded by the spot timeout.
func (e *Engine) fetchSpots(ctx context.Context, tickers []string, today date.Date, st *Status) map[string]float64 {
	res := make(map[string]float64, len(tickers))
	if len(tickers) == 0 {
		return res
	}
	if e.spot == nil {
		st.warn(WarnDataUnavailable, "", today, "no spot provider, %d tickers cannot be bridged", len(tickers))
		return res
	}
	snaps := make([]*market.Snapshot, len(tickers))
	errs := make([]error, len(tickers))
	var g errgroup.Group
	g.SetLimit(e.parallelism)
	for i, t := range tickers {
		g.Go(func() error {
			fctx, cancel := context.WithTimeout(ctx, e.spotTimeout)
			defer cancel()
			snaps[i], errs[i] = e.spot.Snapshot(fctx, t)
			return nil
		})
	}
	g.Wait()

	for i, t := range tickers {
		switch s := snaps[i]; {
		case errs[i] != nil:
			e.log.Warn("spot quote failed", zap.String("ticker", t), zap.Error(errs[i]))
			st.warn(WarnSpotUnavailable, t, today, "spot quote for %s failed: %v", t, errs[i])
		case s != nil && s.Price > 0 && !math.IsInf(s.Price, 0):
			res[t] = s.Price
		}
	}
	return res
}

// CombineSameDay merges the trades of a single day into one trade per ticker
// and side, at the volume weighted average price. Buys come before sells.
func CombineSameDay(txs []Transaction) []Transaction {
	type key struct {
		ticker string
		side   TxType
	}
	groups := make(map[key]*Transaction)
	var keys []key
	for _, tx := range txs {
		if !tx.Type.AffectsShares() {
			continue
		}
		k := key{tx.Ticker, tx.Type}
		g, ok := groups[k]
		if !ok {
			c := tx
			c.Price = tx.Amount() // accumulates the gross amount until the division below.
			groups[k] = &c
			keys = append(keys, k)
			continue
		}
		g.Quantity = g.Quantity.Add(tx.Quantity)
		g.Price = g.Price.Add(tx.Amount())
		g.Fees = g.Fees.Add(tx.Fees)
	}
	sort.Slice(keys, func(i, j int) bool {
		if keys[i].side != keys[j].side {
			return keys[i].side == Buy
		}
		return keys[i].ticker < keys[j].ticker
	})
	res := make([]Transaction, 0, len(keys))
	for _, k := range keys {
		g := *groups[k]
		g.Price = g.Price.Div(g.Quantity)
		res = append(res, g)
	}
	return res
}

// applyTrade updates holdings. A sell larger than the position clamps it to zero.
func applyTrade(holdings map[string]decimal.Decimal, tx Transaction, st *Status, log *zap.Logger) {
	held := holdings[tx.Ticker]
	switch tx.Type {
	case Buy:
		holdings[tx.Ticker] = held.Add(tx.Quantity)
	case Sell:
		if tx.Quantity.GreaterThan(held) {
			log.Warn("oversell clamped to zero", zap.String("ticker", tx.Ticker), zap.Stringer("date", tx.Date),
				zap.String("held", held.String()), zap.String("sold", tx.Quantity.String()))
			st.warn(WarnOversell, tx.Ticker, tx.Date, "sold %s %s but only %s held, position clamped to zero", tx.Quantity, tx.Ticker, held)
			holdings[tx.Ticker] = decimal.Zero
			return
		}
		holdings[tx.Ticker] = held.Sub(tx.Quantity)
	}
}

func sortedTickers(holdings map[string]decimal.Decimal) []string {
	tickers := make([]string, 0, len(holdings))
	for t := range holdings {
		tickers = append(tickers, t)
	}
	sort.Strings(tickers)
	return tickers
}
