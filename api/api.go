// Package api serves valuation results over HTTP as JSON.
package api

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/etnz/equity"
	"github.com/etnz/equity/axis"
	"github.com/etnz/equity/date"
	"github.com/etnz/equity/renderer"
)

// Source provides the transactions to value. It is called on every request
// so that ledger edits are picked up.
type Source interface {
	Transactions(ctx context.Context) ([]equity.Transaction, error)
}

// SourceFunc adapts a function to a Source.
type SourceFunc func(ctx context.Context) ([]equity.Transaction, error)

func (f SourceFunc) Transactions(ctx context.Context) ([]equity.Transaction, error) { return f(ctx) }

// Recorder keeps computed metrics.
type Recorder interface {
	Record(ctx context.Context, m *equity.LiveMetrics) (string, error)
}

// Handler serves the dashboard endpoints.
type Handler struct {
	agg      *equity.Aggregator
	source   Source
	recorder Recorder
	currency string
	log      *zap.Logger
}

// Option configures a Handler.
type Option func(*Handler)

// WithRecorder records every metrics computation, the run ID is returned in
// the X-Run-ID header.
func WithRecorder(r Recorder) Option { return func(h *Handler) { h.recorder = r } }

func WithLogger(l *zap.Logger) Option { return func(h *Handler) { h.log = l } }

// WithCurrency sets the currency of the HTML dashboard.
func WithCurrency(c string) Option { return func(h *Handler) { h.currency = c } }

// New returns a handler valuing the transactions of source.
func New(agg *equity.Aggregator, source Source, opts ...Option) *Handler {
	h := &Handler{agg: agg, source: source, currency: "USD"}
	for _, opt := range opts {
		opt(h)
	}
	if h.log == nil {
		h.log = zap.NewNop()
	}
	return h
}

// NewRouter returns a gin engine serving h under /api, the HTML dashboard on /
// and a health check.
func NewRouter(h *Handler) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), h.logRequests)
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/", h.Dashboard)
	h.SetupRoutes(r.Group("/api"))
	return r
}

// SetupRoutes registers the JSON endpoints on r.
func (h *Handler) SetupRoutes(r *gin.RouterGroup) {
	r.GET("/series", h.Series)
	r.GET("/status", h.Status)
	r.GET("/metrics", h.Metrics)
	r.GET("/cagr", h.CAGR)
	r.GET("/axis", h.Axis)
	r.GET("/benchmark", h.Benchmark)
	r.DELETE("/cache", h.ClearCache)
}

func (h *Handler) logRequests(c *gin.Context) {
	start := time.Now()
	c.Next()
	h.log.Info("request",
		zap.String("method", c.Request.Method),
		zap.String("path", c.Request.URL.Path),
		zap.Int("status", c.Writer.Status()),
		zap.Duration("elapsed", time.Since(start)),
	)
}

// transactions loads the ledger or aborts the request.
func (h *Handler) transactions(c *gin.Context) ([]equity.Transaction, bool) {
	txs, err := h.source.Transactions(c.Request.Context())
	if err != nil {
		h.log.Error("cannot load transactions", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "cannot load transactions: " + err.Error()})
		return nil, false
	}
	return txs, true
}

func (h *Handler) build(c *gin.Context) (equity.Result, bool) {
	txs, ok := h.transactions(c)
	if !ok {
		return equity.Result{}, false
	}
	return h.agg.Engine().Build(c.Request.Context(), txs), true
}

func (h *Handler) metrics(c *gin.Context) (*equity.LiveMetrics, bool) {
	txs, ok := h.transactions(c)
	if !ok {
		return nil, false
	}
	m := h.agg.Compute(c.Request.Context(), nil, txs)
	if h.recorder != nil {
		id, err := h.recorder.Record(c.Request.Context(), m)
		if err != nil {
			h.log.Warn("cannot record run", zap.Error(err))
		} else {
			c.Header("X-Run-ID", id)
		}
	}
	return m, true
}

// Series returns the daily value series and its status.
func (h *Handler) Series(c *gin.Context) {
	if r, ok := h.build(c); ok {
		c.JSON(http.StatusOK, r)
	}
}

// Status returns only the status of the series.
func (h *Handler) Status(c *gin.Context) {
	if r, ok := h.build(c); ok {
		c.JSON(http.StatusOK, r.Status)
	}
}

// Metrics returns the live metrics.
func (h *Handler) Metrics(c *gin.Context) {
	if m, ok := h.metrics(c); ok {
		c.JSON(http.StatusOK, m)
	}
}

// CAGR returns the CAGR over ?years=N, or over every fixed window without it.
// ?period= selects the label format.
func (h *Handler) CAGR(c *gin.Context) {
	period, err := date.ParsePeriod(c.DefaultQuery("period", "monthly"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	years := 0
	if y := c.Query("years"); y != "" {
		if years, err = strconv.Atoi(y); err != nil || years <= 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "years must be a positive integer"})
			return
		}
	}
	r, ok := h.build(c)
	if !ok {
		return
	}
	if years == 0 {
		c.JSON(http.StatusOK, equity.FixedWindowCAGRs(r.Series, period))
		return
	}
	c.JSON(http.StatusOK, equity.WindowCAGR(r.Series, years, period))
}

// Axis returns the value axis of ?source=series (default), returns or
// holdings, formatted for ?metric=.
func (h *Handler) Axis(c *gin.Context) {
	kind, err := axis.ParseMetricKind(c.Query("metric"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	var values []float64
	switch source := c.DefaultQuery("source", "series"); source {
	case "series", "returns":
		r, ok := h.build(c)
		if !ok {
			return
		}
		for _, p := range r.Series {
			switch {
			case source == "series":
				values = append(values, p.Value)
			case p.CumulativeReturnPct != nil:
				values = append(values, *p.CumulativeReturnPct)
			}
		}
	case "holdings":
		m, ok := h.metrics(c)
		if !ok {
			return
		}
		for _, hd := range m.Holdings {
			values = append(values, hd.MarketValue)
		}
	default:
		c.JSON(http.StatusBadRequest, gin.H{"error": "unknown source " + strconv.Quote(source)})
		return
	}
	c.JSON(http.StatusOK, axis.ComputeYAxisScale(values, kind))
}

// Benchmark compares the portfolio with the benchmark ticker.
func (h *Handler) Benchmark(c *gin.Context) {
	txs, ok := h.transactions(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, h.agg.Benchmark(c.Request.Context(), txs))
}

// ClearCache drops the memoized series.
func (h *Handler) ClearCache(c *gin.Context) {
	h.agg.Engine().ClearCache()
	c.Status(http.StatusNoContent)
}

// Dashboard renders the live metrics as an HTML page.
func (h *Handler) Dashboard(c *gin.Context) {
	m, ok := h.metrics(c)
	if !ok {
		return
	}
	md := renderer.RenderDashboard(m, renderer.Options{Currency: h.currency})
	page, err := renderer.Page("Portfolio on "+m.AsOf.String(), md)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.Data(http.StatusOK, "text/html; charset=utf-8", page)
}
