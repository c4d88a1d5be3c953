package spot

import (
	"bufio"
	"bytes"
	"encoding/hex"
	"fmt"
	"net/http"
	"net/http/httputil"
	"os"
	"path/filepath"

	"github.com/zeebo/blake3"
	"go.uber.org/zap"

	"github.com/etnz/equity/date"
)

// diskCache is an http.RoundTripper that keeps successful responses on disk.
// Entries are keyed by day so they expire every day.
type diskCache struct {
	base  http.RoundTripper
	dir   string
	today func() date.Date
	log   *zap.Logger
}

func (c *diskCache) key(req *http.Request) string {
	sum := blake3.Sum256([]byte(fmt.Sprintf("%s %s %s", c.today(), req.Method, req.URL.String())))
	return "spot-" + hex.EncodeToString(sum[:16])
}

// RoundTrip checks for a cached response on disk first. Otherwise it performs
// the request and caches the response if it is successful.
func (c *diskCache) RoundTrip(req *http.Request) (*http.Response, error) {
	key := c.key(req)
	if resp, err := c.get(key, req); err == nil {
		return resp, nil
	}

	resp, err := c.base.RoundTrip(req)
	if err != nil {
		return nil, err
	}
	c.log.Debug("spot request", zap.String("method", req.Method), zap.String("host", req.URL.Host), zap.String("path", req.URL.Path), zap.String("status", resp.Status))
	if resp.StatusCode >= 300 {
		return resp, nil
	}
	if err := c.put(key, resp); err != nil {
		c.log.Warn("spot cache write failed (ignored)", zap.Error(err))
	}
	return resp, nil
}

func (c *diskCache) get(key string, req *http.Request) (*http.Response, error) {
	content, err := os.ReadFile(filepath.Join(c.dir, key))
	if err != nil {
		return nil, err
	}
	return http.ReadResponse(bufio.NewReader(bytes.NewReader(content)), req)
}

// put stores a response to disk. The response body stays readable.
func (c *diskCache) put(key string, resp *http.Response) error {
	content, err := httputil.DumpResponse(resp, true)
	if err != nil {
		return err
	}
	return os.WriteFile(filepath.Join(c.dir, key), content, 0o644)
}
