package market

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/etnz/equity/date"
)

var d = date.MustParse

// sample has closes on Tue 2 Jan, Wed 3 Jan and Fri 5 Jan 2024 for SPY, and a single day for AAPL.
func sample() *Memory {
	m := NewMemory()
	m.Append("SPY", d("2024-01-02"), 472.65)
	m.Append("SPY", d("2024-01-03"), 468.79)
	m.Append("SPY", d("2024-01-05"), 467.92)
	m.Append("AAPL", d("2024-01-03"), 184.25)
	return m
}

// testStore checks the PriceStore contract on any implementation loaded with sample().
func testStore(t *testing.T, s PriceStore) {
	ctx := context.Background()

	t.Run("DailyCloses forward fills inside coverage", func(t *testing.T) {
		got, err := s.DailyCloses(ctx, "SPY", d("2024-01-01"), d("2024-01-10"))
		require.NoError(t, err)
		want := []Close{
			{d("2024-01-02"), 472.65},
			{d("2024-01-03"), 468.79},
			{d("2024-01-04"), 468.79},
			{d("2024-01-05"), 467.92},
		}
		assert.Equal(t, want, got)
	})

	t.Run("DailyCloses seeds from the previous close", func(t *testing.T) {
		got, err := s.DailyCloses(ctx, "SPY", d("2024-01-04"), d("2024-01-04"))
		require.NoError(t, err)
		assert.Equal(t, []Close{{d("2024-01-04"), 468.79}}, got)
	})

	t.Run("DailyCloses after coverage is empty", func(t *testing.T) {
		got, err := s.DailyCloses(ctx, "SPY", d("2024-02-01"), d("2024-02-10"))
		require.NoError(t, err)
		assert.Empty(t, got)
	})

	t.Run("TickerDateRange", func(t *testing.T) {
		r, err := s.TickerDateRange(ctx, "SPY")
		require.NoError(t, err)
		require.NotNil(t, r)
		assert.Equal(t, date.Range{From: d("2024-01-02"), To: d("2024-01-05")}, *r)

		r, err = s.TickerDateRange(ctx, "NOPE")
		require.NoError(t, err)
		assert.Nil(t, r)
	})

	t.Run("BatchLoadDailyCloses returns raw observations", func(t *testing.T) {
		got, err := s.BatchLoadDailyCloses(ctx, []string{"SPY", "AAPL", "NOPE"}, d("2024-01-03"), d("2024-01-31"))
		require.NoError(t, err)
		assert.Len(t, got, 2)
		assert.Equal(t, []Close{{d("2024-01-03"), 468.79}, {d("2024-01-05"), 467.92}}, got["SPY"])
		assert.Equal(t, []Close{{d("2024-01-03"), 184.25}}, got["AAPL"])
	})

	t.Run("LatestClose", func(t *testing.T) {
		v, ok, err := s.LatestClose(ctx, "SPY")
		require.NoError(t, err)
		assert.True(t, ok)
		assert.Equal(t, 467.92, v)

		_, ok, err = s.LatestClose(ctx, "NOPE")
		require.NoError(t, err)
		assert.False(t, ok)
	})
}

func TestMemory(t *testing.T) { testStore(t, sample()) }

func TestSQLite(t *testing.T) {
	s, err := OpenSQLite(filepath.Join(t.TempDir(), "prices.db"))
	require.NoError(t, err)
	defer s.Close()
	require.NoError(t, s.Import(context.Background(), sample()))
	testStore(t, s)
}

func TestFolderRoundTrip(t *testing.T) {
	dir := t.TempDir()
	m := sample()
	m.Append("SPY", d("2023-12-29"), 475.31)
	require.NoError(t, EncodeFolder(dir, m))

	files, err := filepath.Glob(filepath.Join(dir, "*.jsonl"))
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{filepath.Join(dir, "2023.jsonl"), filepath.Join(dir, "2024.jsonl")}, files)

	back, err := DecodeFolder(dir)
	require.NoError(t, err)
	assert.Equal(t, m.Tickers(), back.Tickers())
	assert.Equal(t, m.History("SPY"), back.History("SPY"))
	assert.Equal(t, m.History("AAPL"), back.History("AAPL"))
}

func TestEncodeFolderRemovesStaleYears(t *testing.T) {
	dir := t.TempDir()
	m := NewMemory()
	m.Append("SPY", d("2022-06-01"), 410)
	require.NoError(t, EncodeFolder(dir, m))

	require.NoError(t, EncodeFolder(dir, sample()))
	files, err := filepath.Glob(filepath.Join(dir, "*.jsonl"))
	require.NoError(t, err)
	assert.Equal(t, []string{filepath.Join(dir, "2024.jsonl")}, files)
}

func TestDecodeFolderErrors(t *testing.T) {
	testCases := []struct {
		name string
		line string
	}{
		{"not json", `{"on":`},
		{"missing date", `{"SPY":1}`},
		{"invalid date", `{"on":"yesterday","SPY":1}`},
		{"string price", `{"on":"2024-01-02","SPY":"1"}`},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			dir := t.TempDir()
			require.NoError(t, writeFile(filepath.Join(dir, "2024.jsonl"), tc.line+"\n"))
			_, err := DecodeFolder(dir)
			assert.Error(t, err)
		})
	}
}
