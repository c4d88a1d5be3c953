package renderer

import (
	"fmt"
	"io"
	"strings"

	"github.com/etnz/equity"
	"github.com/etnz/equity/date"
)

// Sample keeps the last point of every period.
func Sample(series []equity.Point, period date.Period) []equity.Point {
	var res []equity.Point
	for i, p := range series {
		if i+1 < len(series) && series[i+1].Date.StartOf(period) == p.Date.StartOf(period) {
			continue
		}
		res = append(res, p)
	}
	return res
}

// RenderSeries renders the value at the end of each period.
func RenderSeries(series []equity.Point, period date.Period, currency string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "# %s Value\n\n", title(period.String()))
	if len(series) == 0 {
		fmt.Fprintln(&b, "*No valued day.*")
		return b.String()
	}
	fmt.Fprintln(&b, "| Period | Value | Change | Cumulative |")
	fmt.Fprintln(&b, "|:---|---:|---:|---:|")
	var prev float64
	for i, p := range Sample(series, period) {
		change := "-"
		if i > 0 && prev != 0 {
			change = Percent((p.Value - prev) / prev * 100)
		}
		cumulative := "-"
		if p.CumulativeReturnPct != nil {
			cumulative = Percent(*p.CumulativeReturnPct)
		}
		fmt.Fprintf(&b, "| %s | %s | %s | %s |\n", p.Date.Label(period), Money(p.Value, currency), change, cumulative)
		prev = p.Value
	}
	return b.String()
}

// RenderStatus renders the quality of a series: what was bridged, what is missing.
// It renders nothing for a series valued from daily closes only.
func RenderStatus(st equity.Status) string {
	var b strings.Builder
	ConditionalBlock(&b, func(w io.Writer) bool {
		if len(st.SpotTickers) == 0 {
			return false
		}
		fmt.Fprintf(w, "Valued from a present-day quote on %d days: %s\n\n", len(st.BridgedDates), strings.Join(st.SpotTickers, ", "))
		return true
	})
	ConditionalBlock(&b, func(w io.Writer) bool {
		if len(st.MissingPrices) == 0 {
			return false
		}
		fmt.Fprintln(w, "| Ticker | Unpriced Day |")
		fmt.Fprintln(w, "|:---|:---|")
		for _, m := range st.MissingPrices {
			fmt.Fprintf(w, "| %s | %s |\n", m.Ticker, m.Date)
		}
		fmt.Fprintln(w)
		return true
	})
	return b.String()
}

// RenderBenchmark renders the comparison of the portfolio with its benchmark.
func RenderBenchmark(bm *equity.Benchmark, currency string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "# Benchmark %s\n\n", bm.Ticker)
	fmt.Fprintln(&b, "| | Return |")
	fmt.Fprintln(&b, "|:---|---:|")
	fmt.Fprintf(&b, "| Portfolio | %s |\n", Percent(bm.PortfolioReturnPct))
	fmt.Fprintf(&b, "| %s | %s |\n", bm.Ticker, Percent(bm.AllTimeReturnPct))
	fmt.Fprintf(&b, "| **Excess** | **%s** |\n\n", Percent(bm.ExcessReturnPct))
	if last, ok := (equity.Result{Series: bm.Series}).Last(); ok {
		fmt.Fprintf(&b, "The same cash flows invested in %s would be worth %s on %s.\n", bm.Ticker, Money(last.Value, currency), last.Date)
	}
	if bm.SkippedTradeCount > 0 {
		fmt.Fprintf(&b, "\n%d of %d trades were made before %s has a close and are not mirrored.\n",
			bm.SkippedTradeCount, bm.SkippedTradeCount+bm.MirroredTradeCount, bm.Ticker)
	}
	return b.String()
}

func title(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
