package eodhd

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/etnz/equity/date"
	"github.com/etnz/equity/market"
)

func newServer(t *testing.T) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("api_token") != "secret" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		switch r.URL.Path {
		case "/eod/SPY.US":
			assert.Equal(t, "2024-01-01", r.URL.Query().Get("from"))
			assert.Equal(t, "2024-01-05", r.URL.Query().Get("to"))
			w.Header().Set("Content-Type", "application/json")
			w.Write([]byte(`[
				{"date":"2024-01-02","open":472.1,"close":472.65,"adjusted_close":465.1,"volume":1},
				{"date":"2024-01-03","open":470.4,"close":468.79,"adjusted_close":461.3,"volume":1},
				{"date":"2024-01-04","open":468.3,"close":0,"adjusted_close":0,"volume":0}
			]`))
		case "/eod/AIR.PA":
			w.Write([]byte(`[{"date":"2024-01-02","close":139.5}]`))
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestSymbol(t *testing.T) {
	c := New("", "", "", nil)
	assert.Equal(t, "AAPL.US", c.Symbol("AAPL"))
	assert.Equal(t, "AIR.PA", c.Symbol("AIR.PA"))
	assert.Equal(t, "AAPL.XETRA", New("", "", "XETRA", nil).Symbol("AAPL"))
}

func TestDailyCloses(t *testing.T) {
	srv := newServer(t)
	c := New(srv.URL, "secret", "", nil)
	ctx := context.Background()

	closes, err := c.DailyCloses(ctx, "SPY", date.New(2024, 1, 1), date.New(2024, 1, 5))
	require.NoError(t, err)
	// the zero close is dropped.
	assert.Equal(t, []market.Close{
		{Date: date.New(2024, 1, 2), Close: 472.65},
		{Date: date.New(2024, 1, 3), Close: 468.79},
	}, closes)

	closes, err = c.DailyCloses(ctx, "NOPE", date.New(2024, 1, 1), date.New(2024, 1, 5))
	require.NoError(t, err)
	assert.Empty(t, closes)

	_, err = New(srv.URL, "wrong", "", nil).DailyCloses(ctx, "SPY", date.New(2024, 1, 1), date.New(2024, 1, 5))
	assert.Error(t, err)
}

func TestFetch(t *testing.T) {
	srv := newServer(t)
	c := New(srv.URL+"/", "secret", "", nil)
	m := market.NewMemory()

	counts, err := c.Fetch(context.Background(), m, []string{"SPY", "NOPE"}, date.New(2024, 1, 1), date.New(2024, 1, 5))
	require.NoError(t, err)
	assert.Equal(t, map[string]int{"SPY": 2, "NOPE": 0}, counts)
	assert.Equal(t, []string{"SPY"}, m.Tickers())
	assert.Len(t, m.History("SPY"), 2)
}

func TestFetchFails(t *testing.T) {
	srv := newServer(t)
	c := New(srv.URL, "wrong", "", nil)
	_, err := c.Fetch(context.Background(), market.NewMemory(), []string{"SPY"}, date.New(2024, 1, 1), date.New(2024, 1, 5))
	assert.Error(t, err)
}
