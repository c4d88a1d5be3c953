package agent

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"google.golang.org/genai"

	"github.com/etnz/equity"
	"github.com/etnz/equity/date"
	"github.com/etnz/equity/market"
	"github.com/etnz/equity/spot"
)

func newTestLibrary() Library {
	store := market.NewMemory()
	for day, v := range map[string]float64{"2024-01-02": 100, "2024-01-03": 102, "2024-01-05": 110} {
		store.Append("SPY", date.MustParse(day), v)
	}
	now := time.Date(2024, 1, 5, 20, 0, 0, 0, time.UTC)
	e := equity.NewEngine(store, spot.Static{},
		equity.WithClock(func() time.Time { return now }),
		equity.WithFullHistory("SPY"))
	txs := []equity.Transaction{{
		Date: date.MustParse("2024-01-02"), Type: equity.Buy, Ticker: "SPY",
		Quantity: decimal.NewFromInt(10), Price: decimal.NewFromInt(100),
	}}
	return NewLibrary(Tools(equity.NewAggregator(e), txs))
}

func call(lib Library, name string, args map[string]any) *genai.FunctionResponse {
	return lib(context.Background(), &genai.FunctionCall{ID: "1", Name: name, Args: args})
}

func TestTools(t *testing.T) {
	lib := newTestLibrary()
	testCases := []struct {
		name string
		args map[string]any
		want string
	}{
		{"Metrics", nil, "$1,100.00"},
		{"Status", nil, "Every value comes from daily closes."},
		{"ValueOn", map[string]any{"date": "2024-01-04"}, "$1,020.00 on 2024-01-04"},
		{"ValueOn", nil, "$1,100.00 on 2024-01-05"},
		{"CAGR", map[string]any{"years": float64(1)}, "does not cover 1 years"},
		{"Benchmark", nil, "# Benchmark SPY"},
	}
	for _, tc := range testCases {
		resp := call(lib, tc.name, tc.args)
		out, ok := resp.Response["output"].(string)
		if !ok {
			t.Errorf("%s(%v) = %v, want an output", tc.name, tc.args, resp.Response)
			continue
		}
		if !strings.Contains(out, tc.want) {
			t.Errorf("%s(%v) = %q, want it to contain %q", tc.name, tc.args, out, tc.want)
		}
	}
}

func TestToolErrors(t *testing.T) {
	lib := newTestLibrary()
	testCases := []struct {
		name string
		args map[string]any
	}{
		{"ValueOn", map[string]any{"date": 20240104}},
		{"ValueOn", map[string]any{"date": "yesterday"}},
		{"CAGR", map[string]any{"years": 1.5}},
		{"CAGR", nil},
		{"Unknown", nil},
	}
	for _, tc := range testCases {
		resp := call(lib, tc.name, tc.args)
		if _, ok := resp.Response["error"]; !ok {
			t.Errorf("%s(%v) = %v, want an error", tc.name, tc.args, resp.Response)
		}
		if resp.ID != "1" || resp.Name != tc.name {
			t.Errorf("%s(%v) answered as %s/%s", tc.name, tc.args, resp.ID, resp.Name)
		}
	}
}
