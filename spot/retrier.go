package spot

import (
	"context"
	"math/rand"
	"time"
)

// retrier implements exponential backoff with jitter.
type retrier struct {
	initialInterval time.Duration
	maxInterval     time.Duration
	multiplier      float64
	maxRetries      int
	jitter          float64
}

func newRetrier(maxRetries int, initial time.Duration) *retrier {
	return &retrier{
		initialInterval: initial,
		maxInterval:     5 * time.Second,
		multiplier:      2,
		maxRetries:      maxRetries,
		jitter:          0.1,
	}
}

// permanent marks an error that must not be retried.
type permanent struct{ err error }

func (p permanent) Error() string { return p.err.Error() }
func (p permanent) Unwrap() error { return p.err }

// do executes fn until it succeeds, returns a permanent error, the retries are
// exhausted or ctx is done.
func (r *retrier) do(ctx context.Context, fn func(ctx context.Context) error) error {
	var err error
	interval := r.initialInterval
	for attempt := 0; attempt <= r.maxRetries; attempt++ {
		if attempt > 0 {
			jitter := (rand.Float64()*2 - 1) * r.jitter * float64(interval)
			sleep := time.Duration(float64(interval) + jitter)
			if sleep < 0 {
				sleep = 0
			}
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(sleep):
			}
			interval = time.Duration(float64(interval) * r.multiplier)
			if interval > r.maxInterval {
				interval = r.maxInterval
			}
		}
		err = fn(ctx)
		if err == nil {
			return nil
		}
		if p, ok := err.(permanent); ok {
			return p.err
		}
	}
	return err
}
