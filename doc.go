// Package equity values a portfolio of stocks over time.
//
// The Engine replays a list of transactions day by day and produces a daily
// series of portfolio market value. Prices come from a market.PriceStore for
// tickers with full daily history, and from a market.SpotProvider, held
// constant, for the others. Days where nothing could be priced are skipped,
// never zero filled, and every degradation of the valuation is reported in the
// Status returned with the series.
//
// On top of the series the package computes returns (YTD, all time, CAGR over
// fixed windows) and live dashboard metrics (total value, allocation by sector,
// holdings performance) with a reconciliation between the series tail and the
// live total.
package equity
