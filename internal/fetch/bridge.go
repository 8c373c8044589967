package fetch

import (
	"context"
	"errors"
)

// TextFetcher adapts a Fetcher to the adapters.Fetcher capability: a plain
// fetch-and-decode-to-string call, with the headless/non-headless choice
// fixed at construction time.
type TextFetcher struct {
	fetcher     *Fetcher
	useHeadless bool
}

// NewTextFetcher wraps fetcher for adapter consumption.
func NewTextFetcher(fetcher *Fetcher, useHeadless bool) *TextFetcher {
	return &TextFetcher{fetcher: fetcher, useHeadless: useHeadless}
}

// FetchText runs the full fetch envelope and returns the response body
// decoded as UTF-8 text, plus the number of attempts the envelope made
// (>1 means earlier attempts failed and were retried), so the caller can
// stamp a RunError.RetryCount per failed attempt.
func (t *TextFetcher) FetchText(ctx context.Context, rawURL string) (string, int, error) {
	result, err := t.fetcher.Fetch(ctx, rawURL, Options{}, t.useHeadless)
	if err != nil {
		attempts := 0
		var fetchErr *FetchError
		if errors.As(err, &fetchErr) {
			attempts = fetchErr.Attempts
		}
		return "", attempts, err
	}
	return string(result.Body), result.Attempts, nil
}
