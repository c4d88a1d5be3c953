package equity

import (
	"math"

	"github.com/etnz/equity/date"
)

// FixedWindows are the CAGR windows, in years, shown on the dashboard.
var FixedWindows = []int{1, 3, 5, 10}

// CAGR is the compound annual growth rate over a window of a series.
// CAGRPct is nil when the window cannot be computed.
type CAGR struct {
	Years        int      `json:"years"`
	CAGRPct      *float64 `json:"cagrPct"`
	StartLabel   string   `json:"startLabel"`
	EndLabel     string   `json:"endLabel"`
	StartValue   *float64 `json:"startValue,omitempty"`
	EndValue     *float64 `json:"endValue,omitempty"`
	ElapsedYears *float64 `json:"elapsedYears,omitempty"`
}

func valid(v float64) bool { return v > 0 && !math.IsInf(v, 0) && !math.IsNaN(v) }

// WindowCAGR computes the CAGR over the last windowYears years of series.
//
// Only strictly positive finite points are considered. The end is the latest
// of them, the start the latest point at least windowYears calendar years
// before the end. Elapsed time is measured between those two points in
// 365.25-day years. The result is nil when the series does not reach back far
// enough or the rate is not finite. period selects how labels are formatted.
func WindowCAGR(series []Point, windowYears int, period date.Period) CAGR {
	res := CAGR{Years: windowYears}
	pts := make([]Point, 0, len(series))
	for _, p := range series {
		if valid(p.Value) {
			pts = append(pts, p)
		}
	}
	if len(pts) < 2 || windowYears <= 0 {
		return res
	}
	end := pts[len(pts)-1]
	res.EndLabel = end.Date.Label(period)
	res.EndValue = &end.Value

	target := end.Date.AddYears(-windowYears)
	i := len(pts) - 2
	for i >= 0 && pts[i].Date.After(target) {
		i--
	}
	if i < 0 {
		return res
	}
	start := pts[i]
	res.StartLabel = start.Date.Label(period)
	res.StartValue = &start.Value

	elapsed := end.Date.YearsSince(start.Date)
	res.ElapsedYears = &elapsed
	cagr := (math.Pow(end.Value/start.Value, 1/elapsed) - 1) * 100
	if math.IsNaN(cagr) || math.IsInf(cagr, 0) {
		return res
	}
	res.CAGRPct = &cagr
	return res
}

// FixedWindowCAGRs computes WindowCAGR for every FixedWindows.
func FixedWindowCAGRs(series []Point, period date.Period) []CAGR {
	res := make([]CAGR, 0, len(FixedWindows))
	for _, n := range FixedWindows {
		res = append(res, WindowCAGR(series, n, period))
	}
	return res
}

func pctChange(from, to float64) float64 {
	if !valid(from) || math.IsNaN(to) || math.IsInf(to, 0) {
		return 0
	}
	return (to - from) / from * 100
}

// YTDReturn is the return of the series since the first point of today's year.
// Without any point this year the first point of the series is the baseline.
func YTDReturn(series []Point, today date.Date) float64 {
	if len(series) == 0 {
		return 0
	}
	jan1 := today.StartOf(date.Yearly)
	base := series[0]
	for _, p := range series {
		if !p.Date.Before(jan1) {
			base = p
			break
		}
	}
	return pctChange(base.Value, series[len(series)-1].Value)
}

// AllTimeReturn is the return from the first to the last point.
func AllTimeReturn(series []Point) float64 {
	if len(series) == 0 {
		return 0
	}
	return pctChange(series[0].Value, series[len(series)-1].Value)
}
