// Package eodhd downloads daily closes from the EODHD end of day API.
package eodhd

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/etnz/equity/date"
	"github.com/etnz/equity/market"
)

const (
	DefaultURL      = "https://eodhd.com/api"
	DefaultExchange = "US"

	parallelism = 4
	timeout     = 30 * time.Second
)

// Sink stores downloaded closes. market.SQLite and market.Memory are sinks.
type Sink interface {
	Put(ctx context.Context, ticker string, closes ...market.Close) error
}

// Client queries the end of day endpoint.
type Client struct {
	baseURL  string
	apiKey   string
	exchange string
	client   *resty.Client
	log      *zap.Logger
}

// New returns a client. Empty baseURL and exchange take the defaults.
func New(baseURL, apiKey, exchange string, log *zap.Logger) *Client {
	if baseURL == "" {
		baseURL = DefaultURL
	}
	if exchange == "" {
		exchange = DefaultExchange
	}
	if log == nil {
		log = zap.NewNop()
	}
	client := resty.New()
	client.SetTimeout(timeout)
	client.SetHeader("Accept", "application/json")
	return &Client{
		baseURL:  strings.TrimSuffix(baseURL, "/"),
		apiKey:   apiKey,
		exchange: exchange,
		client:   client,
		log:      log,
	}
}

// Symbol returns the EODHD code of a ticker: "AAPL" is "AAPL.US".
// A ticker with an exchange suffix is kept as is.
func (c *Client) Symbol(ticker string) string {
	if strings.Contains(ticker, ".") {
		return ticker
	}
	return ticker + "." + c.exchange
}

// eod is an item of the end of day response:
//
//	{"date":"2024-02-13","open":675.06,"high":684.21,"low":648.65,"close":668.44,"adjusted_close":67.70,"volume":0}
type eod struct {
	Date  date.Date       `json:"date"`
	Close decimal.Decimal `json:"close"`
}

// DailyCloses returns the closes of ticker in [from, to], both included.
// An unknown ticker has no closes.
func (c *Client) DailyCloses(ctx context.Context, ticker string, from, to date.Date) ([]market.Close, error) {
	symbol := c.Symbol(ticker)
	resp, err := c.client.R().
		SetContext(ctx).
		SetQueryParams(map[string]string{
			"fmt":       "json",
			"api_token": c.apiKey,
			"from":      from.String(),
			"to":        to.String(),
		}).
		Get(c.baseURL + "/eod/" + url.PathEscape(symbol))
	if err != nil {
		return nil, errors.Wrapf(err, "eod %s", symbol)
	}
	switch code := resp.StatusCode(); {
	case code == http.StatusNotFound:
		c.log.Info("unknown ticker", zap.String("symbol", symbol))
		return nil, nil
	case code >= 300:
		return nil, fmt.Errorf("cannot http GET eod %v: %v", symbol, resp.Status())
	}

	var content []eod
	if err := json.Unmarshal(resp.Body(), &content); err != nil {
		return nil, errors.Wrapf(err, "invalid eod response for %s", symbol)
	}
	closes := make([]market.Close, 0, len(content))
	for _, e := range content {
		if !e.Close.IsPositive() {
			continue
		}
		closes = append(closes, market.Close{Date: e.Date, Close: e.Close.InexactFloat64()})
	}
	return closes, nil
}

// Fetch downloads the closes of tickers in [from, to] and stores them in sink.
// Downloads run concurrently, writes are sequential. It returns the number of
// closes stored per ticker.
func (c *Client) Fetch(ctx context.Context, sink Sink, tickers []string, from, to date.Date) (map[string]int, error) {
	results := make([][]market.Close, len(tickers))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(parallelism)
	for i, ticker := range tickers {
		g.Go(func() error {
			closes, err := c.DailyCloses(gctx, ticker, from, to)
			if err != nil {
				return err
			}
			results[i] = closes
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	counts := make(map[string]int, len(tickers))
	for i, ticker := range tickers {
		if err := sink.Put(ctx, ticker, results[i]...); err != nil {
			return counts, errors.Wrapf(err, "store closes of %s", ticker)
		}
		counts[ticker] = len(results[i])
		c.log.Debug("fetched closes", zap.String("ticker", ticker), zap.Int("count", len(results[i])))
	}
	return counts, nil
}
