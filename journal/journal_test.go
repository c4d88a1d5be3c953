package journal

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/etnz/equity"
	"github.com/etnz/equity/date"
)

func newTestJournal(t *testing.T) *Journal {
	t.Helper()
	j, err := Open(filepath.Join(t.TempDir(), "journal.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = j.Close() })
	return j
}

func metrics(total float64) *equity.LiveMetrics {
	return &equity.LiveMetrics{
		AsOf:       date.MustParse("2024-01-10"),
		TotalValue: total,
		TotalCost:  4700,
		Drift:      -400,
		Reconciled: true,
		Series: []equity.Point{
			{Date: date.MustParse("2024-01-02"), Value: 4700},
			{Date: date.MustParse("2024-01-10"), Value: total},
		},
		Status: equity.Status{
			Hash:       "abc",
			TradeCount: 1,
			Warnings: []equity.Warning{
				{Kind: equity.WarnFallbackPrice, Ticker: "UNKN", Date: date.MustParse("2024-01-10"), Message: "fallback"},
				{Kind: equity.WarnReconciliation, Message: "aligned"},
			},
		},
	}
}

func TestRecord(t *testing.T) {
	j := newTestJournal(t)
	ctx := context.Background()

	id, err := j.Record(ctx, metrics(5160))
	require.NoError(t, err)
	assert.Len(t, id, 26)

	runs, err := j.Runs(ctx, 0)
	require.NoError(t, err)
	require.Len(t, runs, 1)
	r := runs[0]
	assert.Equal(t, id, r.ID)
	assert.Equal(t, date.MustParse("2024-01-10"), r.AsOf)
	assert.Equal(t, "abc", r.Hash)
	assert.Equal(t, 5160.0, r.TotalValue)
	assert.Equal(t, -400.0, r.Drift)
	assert.True(t, r.Reconciled)
	assert.Equal(t, 2, r.Warnings)

	series, err := j.Series(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, metrics(5160).Series, series)

	warnings, err := j.Warnings(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, metrics(5160).Status.Warnings, warnings)
}

func TestRunsLatestFirst(t *testing.T) {
	j := newTestJournal(t)
	ctx := context.Background()
	now := time.Date(2024, 1, 10, 18, 0, 0, 0, time.UTC)
	j.now = func() time.Time { return now }

	var ids []string
	for _, total := range []float64{100, 200, 300} {
		id, err := j.Record(ctx, metrics(total))
		require.NoError(t, err)
		ids = append(ids, id)
	}
	assert.Less(t, ids[0], ids[1], "ids of the same millisecond still increase")
	assert.Less(t, ids[1], ids[2])

	runs, err := j.Runs(ctx, 2)
	require.NoError(t, err)
	require.Len(t, runs, 2)
	assert.Equal(t, 300.0, runs[0].TotalValue)
	assert.Equal(t, 200.0, runs[1].TotalValue)
}

func TestUnknownRun(t *testing.T) {
	j := newTestJournal(t)
	series, err := j.Series(context.Background(), "missing")
	require.NoError(t, err)
	assert.Empty(t, series)
}
