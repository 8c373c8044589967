// Package retry implements the fetcher's exponential-backoff-with-jitter
// policy, grounded on the sibling infrastructure module's generic retry
// helper but specialized to the fetcher's exact backoff formula.
package retry

import (
	"context"
	"errors"
	"fmt"
	"math"
	"math/rand"
	"time"
)

// ErrMaxAttemptsExceeded is returned when the final attempt still failed.
var ErrMaxAttemptsExceeded = errors.New("retry: max attempts exceeded")

// ErrCancelled is returned when ctx is done during a backoff sleep.
var ErrCancelled = errors.New("retry: cancelled during backoff")

// Config configures the backoff schedule.
type Config struct {
	// MaxRetries is the number of retries after the first attempt (spec
	// default 3 — so up to 4 total attempts).
	MaxRetries int
	// BaseDelay is the backoff base (spec default 1000ms): delay(n) =
	// min(Cap, 2^n * BaseDelay + jitter[0, JitterMax]).
	BaseDelay time.Duration
	JitterMax time.Duration
	Cap       time.Duration
}

// DefaultConfig matches spec.md §4.3's retry formula.
func DefaultConfig() Config {
	return Config{
		MaxRetries: 3,
		BaseDelay:  1000 * time.Millisecond,
		JitterMax:  500 * time.Millisecond,
		Cap:        30 * time.Second,
	}
}

// Do runs fn, retrying on error up to cfg.MaxRetries additional times with
// exponential backoff plus jitter. It returns the last error, wrapped in
// ErrMaxAttemptsExceeded, once retries are exhausted. fn is invoked
// once per attempt (including the first) with the 1-based attempt number,
// useful for per-attempt run-log error entries.
func Do(ctx context.Context, cfg Config, fn func(attempt int) error) error {
	var lastErr error

	for attempt := 1; attempt <= cfg.MaxRetries+1; attempt++ {
		if err := ctx.Err(); err != nil {
			return fmt.Errorf("%w: %w", ErrCancelled, err)
		}

		err := fn(attempt)
		if err == nil {
			return nil
		}
		lastErr = err

		if attempt > cfg.MaxRetries {
			break
		}

		delay := backoffDelay(cfg, attempt)
		timer := time.NewTimer(delay)
		select {
		case <-ctx.Done():
			timer.Stop()
			return fmt.Errorf("%w: %w", ErrCancelled, ctx.Err())
		case <-timer.C:
		}
	}

	return fmt.Errorf("%w after %d attempts: %w", ErrMaxAttemptsExceeded, cfg.MaxRetries+1, lastErr)
}

func backoffDelay(cfg Config, attempt int) time.Duration {
	base := float64(cfg.BaseDelay) * math.Pow(2, float64(attempt))
	jitter := time.Duration(0)
	if cfg.JitterMax > 0 {
		jitter = time.Duration(rand.Int63n(int64(cfg.JitterMax)))
	}
	d := time.Duration(base) + jitter
	if cfg.Cap > 0 && d > cfg.Cap {
		return cfg.Cap
	}
	return d
}
