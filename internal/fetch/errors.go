// Package fetch implements one logical fetch: robots check, concurrency
// gate, rate-limit wait, retry/backoff, and (optionally) a headless-browser
// render path. Grounded on the worker pool's claim/fetch/classify pipeline.
package fetch

import (
	"errors"
	"fmt"
)

// ErrRobotsDisallowed mirrors robots.ErrRobotsDisallowed so callers that
// only import fetch can still classify the failure without a dependency on
// the robots package's own sentinel.
var ErrRobotsDisallowed = errors.New("fetch: disallowed by robots.txt")

// FetchError is raised once retries are exhausted (spec's ScrapingFetchError).
type FetchError struct {
	URL      string
	Attempts int
	Err      error
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("fetch %s failed after %d attempts: %v", e.URL, e.Attempts, e.Err)
}

func (e *FetchError) Unwrap() error {
	return e.Err
}
