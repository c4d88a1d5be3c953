package equity

import (
	"math"
	"testing"

	"github.com/etnz/equity/date"
)

func pts(kv ...any) []Point {
	var res []Point
	for i := 0; i < len(kv); i += 2 {
		res = append(res, Point{Date: d(kv[i].(string)), Value: float64(kv[i+1].(int))})
	}
	return res
}

func TestWindowCAGR(t *testing.T) {
	got := WindowCAGR(pts("2020-01-01", 1000, "2024-01-01", 1500), 4, date.Daily)
	if got.CAGRPct == nil {
		t.Fatalf("WindowCAGR() = nil, want a rate")
	}
	if want := (math.Pow(1.5, 0.25) - 1) * 100; math.Abs(*got.CAGRPct-want) > 1e-9 {
		t.Errorf("WindowCAGR() = %v, want %v", *got.CAGRPct, want)
	}
	if math.Abs(*got.CAGRPct-10.67) > 0.01 {
		t.Errorf("WindowCAGR() = %.4f, want about 10.67", *got.CAGRPct)
	}
	if got.ElapsedYears == nil || math.Abs(*got.ElapsedYears-4) > 1e-9 {
		t.Errorf("ElapsedYears = %v, want 4", got.ElapsedYears)
	}
	if got.StartLabel != "2020-01-01" || got.EndLabel != "2024-01-01" {
		t.Errorf("labels = %q, %q", got.StartLabel, got.EndLabel)
	}
	if *got.StartValue != 1000 || *got.EndValue != 1500 {
		t.Errorf("values = %v, %v", *got.StartValue, *got.EndValue)
	}
}

func TestWindowCAGRNull(t *testing.T) {
	testCases := []struct {
		name   string
		series []Point
		years  int
	}{
		{"empty", nil, 1},
		{"single point", pts("2024-01-01", 100), 1},
		{"all non positive", pts("2020-01-01", 0, "2022-01-01", -5, "2024-01-01", 0), 1},
		{"single positive point", pts("2020-01-01", 0, "2024-01-01", 100), 1},
		{"window longer than data", pts("2020-01-01", 1000, "2024-01-01", 1500), 5},
		{"window just longer than data", pts("2020-01-02", 1000, "2024-01-01", 1500), 4},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			if got := WindowCAGR(tc.series, tc.years, date.Daily); got.CAGRPct != nil {
				t.Errorf("WindowCAGR() = %v, want nil", *got.CAGRPct)
			}
		})
	}
}

func TestWindowCAGRPicksLatestEligibleStart(t *testing.T) {
	series := pts(
		"2021-06-01", 500,
		"2022-12-30", 800,
		"2023-01-03", 900, // after the target, not eligible
		"2023-03-01", 0, // not a valid point
		"2023-06-01", 950,
		"2024-01-01", 1000,
	)
	got := WindowCAGR(series, 1, date.Monthly)
	if got.CAGRPct == nil {
		t.Fatalf("WindowCAGR() = nil, want a rate")
	}
	if got.StartLabel != "Dec 2022" || got.EndLabel != "Jan 2024" {
		t.Errorf("labels = %q, %q want Dec 2022, Jan 2024", got.StartLabel, got.EndLabel)
	}
	elapsed := 367 / date.DaysPerYear
	want := (math.Pow(1000.0/800, 1/elapsed) - 1) * 100
	if math.Abs(*got.CAGRPct-want) > 1e-9 {
		t.Errorf("WindowCAGR() = %v, want %v", *got.CAGRPct, want)
	}
}

func TestFixedWindowCAGRs(t *testing.T) {
	got := FixedWindowCAGRs(pts("2020-01-01", 1000, "2023-01-01", 1200, "2024-01-01", 1500), date.Yearly)
	if len(got) != 4 {
		t.Fatalf("FixedWindowCAGRs() returned %d windows, want 4", len(got))
	}
	for i, wantNil := range []bool{false, false, true, true} {
		// 1y: 2023 -> 2024, 3y: 2020 -> 2024 (2021 target), 5y and 10y: too long.
		if (got[i].CAGRPct == nil) != wantNil {
			t.Errorf("window %dy nil = %v, want %v", got[i].Years, got[i].CAGRPct == nil, wantNil)
		}
	}
	if want := (math.Pow(1.25, date.DaysPerYear/365) - 1) * 100; math.Abs(*got[0].CAGRPct-want) > 1e-9 {
		t.Errorf("1y CAGR = %v, want %v", *got[0].CAGRPct, want)
	}
}

func TestYTDReturn(t *testing.T) {
	testCases := []struct {
		name   string
		series []Point
		today  string
		want   float64
	}{
		{"first trading day of the year", pts("2023-12-29", 900, "2024-01-02", 1000, "2024-03-01", 1100), "2024-03-01", 10},
		{"jan 1 present", pts("2023-12-29", 900, "2024-01-01", 1000, "2024-03-01", 1200), "2024-03-01", 20},
		{"series starting mid year", pts("2024-06-03", 2000, "2024-07-01", 2100), "2024-07-01", 5},
		{"no point this year", pts("2022-06-01", 1000, "2023-06-01", 1500), "2024-02-01", 50},
		{"zero baseline", pts("2024-01-02", 0, "2024-02-01", 1500), "2024-02-01", 0},
		{"empty", nil, "2024-02-01", 0},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			if got := YTDReturn(tc.series, d(tc.today)); math.Abs(got-tc.want) > 1e-9 {
				t.Errorf("YTDReturn() = %v, want %v", got, tc.want)
			}
		})
	}
}

func TestAllTimeReturn(t *testing.T) {
	if got, want := AllTimeReturn(pts("2020-01-01", 1000, "2024-01-01", 1500)), 50.0; got != want {
		t.Errorf("AllTimeReturn() = %v, want %v", got, want)
	}
	if got := AllTimeReturn(pts("2020-01-01", 0, "2024-01-01", 1500)); got != 0 {
		t.Errorf("AllTimeReturn() with zero base = %v, want 0", got)
	}
	if got := AllTimeReturn(nil); got != 0 {
		t.Errorf("AllTimeReturn(nil) = %v, want 0", got)
	}
}
