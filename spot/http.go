// Package spot provides live quote sources for tickers without stored history.
package spot

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/PaesslerAG/jsonpath"
	"github.com/go-resty/resty/v2"
	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/etnz/equity/date"
	"github.com/etnz/equity/market"
)

// HTTPConfig configures an HTTP quote source.
type HTTPConfig struct {
	// URL is the quote endpoint, "{ticker}" is replaced by the escaped ticker.
	URL string
	// PricePath is a JSONPath to the price in the response, e.g. "$.quote.price".
	PricePath string
	// TimePath is an optional JSONPath to the quote time (unix seconds or RFC3339).
	TimePath string
	// APIKey is sent as the X-API-Key header when set.
	APIKey string
	// Timeout bounds a single fetch, retries included.
	Timeout time.Duration
	// Retries is the number of retries after a failed attempt.
	Retries int
	// CacheDir enables a disk cache of responses expiring daily.
	CacheDir string
}

// HTTP fetches quotes from a JSON endpoint.
type HTTP struct {
	cfg    HTTPConfig
	client *resty.Client
	retry  *retrier
	log    *zap.Logger
	now    func() time.Time
}

// NewHTTP returns an HTTP quote source. A nil logger discards logs.
func NewHTTP(cfg HTTPConfig, log *zap.Logger) (*HTTP, error) {
	if !strings.Contains(cfg.URL, "{ticker}") {
		return nil, fmt.Errorf("spot url %q must contain a {ticker} placeholder", cfg.URL)
	}
	if cfg.PricePath == "" {
		return nil, fmt.Errorf("spot price path is required")
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 5 * time.Second
	}
	if log == nil {
		log = zap.NewNop()
	}

	client := resty.New()
	client.SetTimeout(cfg.Timeout)
	client.SetHeader("Accept", "application/json")
	if cfg.APIKey != "" {
		client.SetHeader("X-API-Key", cfg.APIKey)
	}
	if cfg.CacheDir != "" {
		if err := os.MkdirAll(cfg.CacheDir, 0o755); err != nil {
			return nil, errors.Wrapf(err, "create spot cache dir %q", cfg.CacheDir)
		}
		client.SetTransport(&diskCache{base: http.DefaultTransport, dir: cfg.CacheDir, today: date.Today, log: log})
	}

	return &HTTP{
		cfg:    cfg,
		client: client,
		retry:  newRetrier(cfg.Retries, 200*time.Millisecond),
		log:    log,
		now:    time.Now,
	}, nil
}

// Snapshot fetches the latest quote. A 404 or a missing price is a nil snapshot.
func (h *HTTP) Snapshot(ctx context.Context, ticker string) (*market.Snapshot, error) {
	ctx, cancel := context.WithTimeout(ctx, h.cfg.Timeout)
	defer cancel()

	addr := strings.ReplaceAll(h.cfg.URL, "{ticker}", url.QueryEscape(ticker))
	var jobj any
	err := h.retry.do(ctx, func(ctx context.Context) error {
		resp, err := h.client.R().SetContext(ctx).Get(addr)
		if err != nil {
			return err
		}
		switch code := resp.StatusCode(); {
		case code == http.StatusNotFound:
			jobj = nil
			return nil
		case code >= 500 || code == http.StatusTooManyRequests:
			return fmt.Errorf("cannot http GET %v: %v", ticker, resp.Status())
		case code >= 300:
			return permanent{fmt.Errorf("cannot http GET %v: %v", ticker, resp.Status())}
		}
		if err := json.Unmarshal(resp.Body(), &jobj); err != nil {
			return permanent{fmt.Errorf("invalid json quote for %v: %w", ticker, err)}
		}
		return nil
	})
	if err != nil {
		return nil, errors.Wrapf(err, "spot quote %s", ticker)
	}
	if jobj == nil {
		h.log.Debug("no spot quote", zap.String("ticker", ticker))
		return nil, nil
	}

	price, err := extractFloat(h.cfg.PricePath, jobj)
	if err != nil {
		h.log.Warn("spot quote has no price", zap.String("ticker", ticker), zap.Error(err))
		return nil, nil
	}
	if price <= 0 {
		return nil, nil
	}

	asOf := h.now()
	if h.cfg.TimePath != "" {
		if t, err := extractTime(h.cfg.TimePath, jobj); err == nil {
			asOf = t
		}
	}
	return &market.Snapshot{Ticker: ticker, Price: price, AsOf: asOf}, nil
}

// extract evaluates path on jobj. jsonpath may return a list of one answer or a
// single answer, the first one is kept.
func extract(path string, jobj any) (any, error) {
	jval, err := jsonpath.Get(path, jobj)
	if err != nil {
		return nil, fmt.Errorf("error parsing %q: %w", path, err)
	}
	if jlist, ok := jval.([]any); ok {
		if len(jlist) == 0 {
			return nil, fmt.Errorf("no value at %q", path)
		}
		jval = jlist[0]
	}
	return jval, nil
}

func extractFloat(path string, jobj any) (float64, error) {
	jval, err := extract(path, jobj)
	if err != nil {
		return 0, err
	}
	switch v := jval.(type) {
	case float64:
		return v, nil
	case string:
		// some quote sources publish numbers as strings, possibly with thousands separators.
		f, err := strconv.ParseFloat(strings.ReplaceAll(strings.TrimSpace(v), ",", ""), 64)
		if err != nil {
			return 0, fmt.Errorf("value at %q is not a number: %q", path, v)
		}
		return f, nil
	default:
		return 0, fmt.Errorf("value at %q is not a number: %v", path, jval)
	}
}

func extractTime(path string, jobj any) (time.Time, error) {
	jval, err := extract(path, jobj)
	if err != nil {
		return time.Time{}, err
	}
	switch v := jval.(type) {
	case float64:
		return time.Unix(int64(v), 0).UTC(), nil
	case string:
		return time.Parse(time.RFC3339, v)
	default:
		return time.Time{}, fmt.Errorf("value at %q is not a time: %v", path, jval)
	}
}

var _ market.SpotProvider = (*HTTP)(nil)
