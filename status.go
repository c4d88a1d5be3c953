package equity

import (
	"fmt"
	"slices"

	"github.com/etnz/equity/date"
)

// Point is the portfolio market value at the close of a day.
type Point struct {
	Date  date.Date `json:"date"`
	Value float64   `json:"value"`
	// CumulativeReturnPct is the return since the first point, nil when undefined.
	CumulativeReturnPct *float64 `json:"cumulativeReturnPct,omitempty"`
}

// Provenance tells where a price came from.
type Provenance string

const (
	FromTimeseries Provenance = "timeseries"
	FromSpot       Provenance = "spot"
	FromFallback   Provenance = "fallback" // live metrics only
	Missing        Provenance = "missing"
)

// WarningKind classifies anomalies found while valuing.
type WarningKind string

const (
	WarnMissingPrice    WarningKind = "missing_price"
	WarnOversell        WarningKind = "oversell"
	WarnReconciliation  WarningKind = "reconciliation"
	WarnDataUnavailable WarningKind = "data_unavailable"
	WarnSpotUnavailable WarningKind = "spot_unavailable"
	WarnFallbackPrice   WarningKind = "fallback_price"
	WarnInvalid         WarningKind = "invalid_transaction"
)

// Warning is a recoverable anomaly.
type Warning struct {
	Kind    WarningKind `json:"kind"`
	Ticker  string      `json:"ticker,omitempty"`
	Date    date.Date   `json:"date,omitzero"`
	Message string      `json:"message"`
}

func (w Warning) String() string { return fmt.Sprintf("%s: %s", w.Kind, w.Message) }

// MissingPrice is a (ticker, day) that could not be priced.
type MissingPrice struct {
	Ticker string    `json:"ticker"`
	Date   date.Date `json:"date"`
}

// Status describes the quality of a built series.
type Status struct {
	// ValuedThrough is the latest day with a positive value, zero if none.
	ValuedThrough date.Date      `json:"valuedThrough,omitzero"`
	SpotTickers   []string       `json:"spotTickers"`
	BridgedDates  []date.Date    `json:"bridgedDates"`
	MissingPrices []MissingPrice `json:"missingPrices"`
	Warnings      []Warning      `json:"warnings"`
	TradeCount    int            `json:"tradeCount"`
	Covered       date.Range     `json:"covered"`
	// Hash identifies the normalized transaction set.
	Hash   string `json:"hash"`
	Cached bool   `json:"cached"`
}

// Result is a built series with its status.
type Result struct {
	Series []Point `json:"series"`
	Status Status  `json:"status"`
}

func (s *Status) warn(kind WarningKind, ticker string, on date.Date, format string, args ...any) {
	s.Warnings = append(s.Warnings, Warning{Kind: kind, Ticker: ticker, Date: on, Message: fmt.Sprintf(format, args...)})
}

// Last returns the last point, false if the series is empty.
func (r Result) Last() (Point, bool) {
	if len(r.Series) == 0 {
		return Point{}, false
	}
	return r.Series[len(r.Series)-1], true
}

// clone deep copies r so cached results cannot be altered by callers.
func (r Result) clone() Result {
	c := r
	c.Series = make([]Point, len(r.Series))
	for i, p := range r.Series {
		if p.CumulativeReturnPct != nil {
			v := *p.CumulativeReturnPct
			p.CumulativeReturnPct = &v
		}
		c.Series[i] = p
	}
	c.Status.SpotTickers = slices.Clone(r.Status.SpotTickers)
	c.Status.BridgedDates = slices.Clone(r.Status.BridgedDates)
	c.Status.MissingPrices = slices.Clone(r.Status.MissingPrices)
	c.Status.Warnings = slices.Clone(r.Status.Warnings)
	return c
}

// cumulativeReturns sets the return of every point relative to the first one.
// It is left undefined when the first value is zero or there are fewer than 2 points.
func cumulativeReturns(series []Point) {
	if len(series) < 2 || series[0].Value == 0 {
		return
	}
	base := series[0].Value
	for i := range series {
		v := (series[i].Value - base) / base * 100
		series[i].CumulativeReturnPct = &v
	}
}
