package cmd

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/etnz/equity"
	"github.com/etnz/equity/date"
)

// workspace writes a configuration, a ledger with one SPY trade and a market
// folder in a temporary directory, and points the global flags at it.
// "{dir}" in extra is replaced by the directory.
func workspace(t *testing.T, extra string) string {
	t.Helper()
	dir := t.TempDir()
	market := filepath.Join(dir, "market")
	require.NoError(t, os.Mkdir(market, 0755))
	require.NoError(t, os.WriteFile(filepath.Join(market, "2024.jsonl"), []byte(
		`{"on":"2024-01-02","SPY":470}
{"on":"2024-01-03","SPY":468}
{"on":"2024-01-04","SPY":476}
`), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "transactions.jsonl"), []byte(
		`{"date":"2024-01-02","type":"BUY","ticker":"SPY","quantity":10,"price":470}
`), 0644))

	cfg := "ledger: " + filepath.Join(dir, "transactions.jsonl") + "\n" +
		"market:\n  folder: " + market + "\n" + strings.ReplaceAll(extra, "{dir}", dir)
	path := filepath.Join(dir, "dash.yaml")
	require.NoError(t, os.WriteFile(path, []byte(cfg), 0644))
	setGlobalFlags(t, path, filepath.Join(dir, ".env"), false)
	return dir
}

func TestNewApp(t *testing.T) {
	workspace(t, "journal: {dir}/runs.db\nspot:\n  static:\n    SPY: 500\n")
	a, err := newApp()
	require.NoError(t, err)
	defer a.Close()

	assert.NotNil(t, a.journal)
	assert.NotNil(t, a.spot)
	assert.Equal(t, date.Monthly, a.period)

	m, err := a.liveMetrics(context.Background())
	require.NoError(t, err)
	require.Len(t, m.Holdings, 1)
	assert.Equal(t, "SPY", m.Holdings[0].Ticker)
	assert.Greater(t, m.TotalValue, 0.0)
	assert.InDelta(t, 4700.0, m.TotalCost, 1e-9)

	id, err := a.journal.Record(context.Background(), m)
	require.NoError(t, err)
	assert.NotEmpty(t, id)
}

func TestNewAppWithoutSpot(t *testing.T) {
	workspace(t, "")
	a, err := newApp()
	require.NoError(t, err)
	defer a.Close()

	assert.Nil(t, a.spot)
	assert.Nil(t, a.journal)
	txs, err := a.transactions()
	require.NoError(t, err)
	assert.Len(t, txs, 1)
}

func TestNewAppInvalidPeriod(t *testing.T) {
	workspace(t, "period: hourly\n")
	_, err := newApp()
	assert.Error(t, err)
}

func TestExportWrite(t *testing.T) {
	m := &equity.LiveMetrics{
		AsOf:       date.New(2024, 1, 4),
		TotalValue: 4760,
		TotalCost:  4700,
		Holdings:   []equity.Holding{{Ticker: "SPY", Sector: "ETF", Shares: 10, Price: 476, MarketValue: 4760, CostBasis: 4700, Weight: 1}},
		Allocation: []equity.Allocation{{Sector: "ETF", Value: 4760, Weight: 1}},
		Series:     []equity.Point{{Date: date.New(2024, 1, 4), Value: 4760}},
	}

	tests := []struct {
		format string
		prefix string
	}{
		{"md", "#"},
		{"html", "<!DOCTYPE html>"},
		{"xlsx", "PK"}, // a zip archive
	}
	for _, tt := range tests {
		t.Run(tt.format, func(t *testing.T) {
			var b bytes.Buffer
			c := &exportCmd{format: tt.format}
			require.NoError(t, c.write(&b, m, "USD"))
			assert.True(t, strings.HasPrefix(b.String(), tt.prefix), "output starts with %q", b.String()[:min(b.Len(), 20)])
		})
	}

	var b bytes.Buffer
	assert.Error(t, (&exportCmd{format: "pdf"}).write(&b, m, "USD"))
}

func TestTradedTickers(t *testing.T) {
	workspace(t, "benchmark: QQQ\n")
	a, err := newApp()
	require.NoError(t, err)
	defer a.Close()

	txs, err := equity.DecodeLedger("test", strings.NewReader(
		`{"date":"2024-03-01","type":"BUY","ticker":"aapl","quantity":1,"price":180}
{"date":"2024-02-01","type":"BUY","ticker":"BRK.B","quantity":1,"price":400}
{"date":"2024-01-15","type":"DEPOSIT","quantity":1,"price":1000}
`))
	require.NoError(t, err)

	tickers, first := tradedTickers(a, txs)
	assert.Equal(t, []string{"AAPL", "BRK-B", "QQQ"}, tickers)
	assert.Equal(t, date.New(2024, 2, 1), first)
}
