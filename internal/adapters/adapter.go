// Package adapters implements the SourceAdapter capability: fetch a feed
// endpoint, parse it, normalize entries to candidate ContentRecords, and
// apply the shared relevance filter. Grounded on the job-hunt engine's
// Fetcher capability interface (Name/Fetch) generalized from a job-board
// scrape to feed-endpoint polling.
package adapters

import (
	"context"
	"strings"
	"time"

	"github.com/contentradar/scraper/internal/domain"
)

// Batch is what one adapter run produces.
type Batch struct {
	Candidates    []domain.ContentRecord
	URLsProcessed int
	URLsFailed    int
	Errors        []domain.RunError
	Warnings      []domain.RunWarning
}

// Adapter is the single capability every source implements: run one
// scraping pass and yield candidate records. Shared fetch/robots/retry/
// rate-limit/filter behavior lives in Base, not in an inheritance chain.
type Adapter interface {
	Name() string
	SourceLabel() string
	Run(ctx context.Context) (Batch, error)
}

// Fetcher is the capability adapters need from the fetch package, kept
// narrow so adapters can be tested against a stub. attempts is the total
// number of attempts the fetch envelope made (>1 means earlier attempts
// failed and were retried before this call returned).
type Fetcher interface {
	FetchText(ctx context.Context, url string) (text string, attempts int, err error)
}

// Base holds the behavior shared by every concrete adapter: endpoint
// iteration, addItem's keyword gate, and candidate construction defaults.
// Concrete adapters are Base values built by NewBase with their own endpoint
// list and payload parser; this is a shared helper the adapter calls, not a parent
// class it extends, per spec.md §9.
type Base struct {
	name      string
	label     string
	endpoints []string
	keywords  []string
	fetcher   Fetcher
	parse     func(payload string, endpoint string) ([]domain.ContentRecord, error)
}

// NewBase builds the shared adapter plumbing.
func NewBase(
	name, label string,
	endpoints []string,
	keywords []string,
	fetcher Fetcher,
	parse func(payload, endpoint string) ([]domain.ContentRecord, error),
) Base {
	return Base{name: name, label: label, endpoints: endpoints, keywords: keywords, fetcher: fetcher, parse: parse}
}

func (b Base) Name() string        { return b.name }
func (b Base) SourceLabel() string { return b.label }

// Run iterates the endpoint list, parses each payload, and passes every
// candidate through addItem.
func (b Base) Run(ctx context.Context) (Batch, error) {
	var batch Batch

	for _, endpoint := range b.endpoints {
		payload, attempts, err := b.fetcher.FetchText(ctx, endpoint)
		if err != nil {
			batch.URLsFailed++
			batch.Errors = append(batch.Errors, domain.RunError{
				Timestamp: time.Now(), Kind: "fetch", Message: err.Error(), URL: endpoint, RetryCount: attempts,
			})
			continue
		}
		batch.URLsProcessed++

		for attempt := 1; attempt < attempts; attempt++ {
			batch.Errors = append(batch.Errors, domain.RunError{
				Timestamp: time.Now(), Kind: "retry", Message: "attempt failed, retrying", URL: endpoint, RetryCount: attempt,
			})
		}

		candidates, parseErr := b.parse(payload, endpoint)
		if parseErr != nil {
			batch.Warnings = append(batch.Warnings, domain.RunWarning{
				Kind: "parse", Message: parseErr.Error(), URL: endpoint,
			})
			continue
		}

		for _, c := range candidates {
			if b.addItem(&batch, c) {
				batch.Candidates = append(batch.Candidates, c)
			}
		}
	}

	return batch, nil
}

// addItem applies the spec's §4.4 gate: drop items missing title or URL,
// then keep only items whose composed text corpus contains a configured
// keyword substring.
func (b Base) addItem(batch *Batch, c domain.ContentRecord) bool {
	if strings.TrimSpace(c.Title) == "" || strings.TrimSpace(c.URL) == "" {
		return false
	}

	corpus := strings.ToLower(strings.Join(append([]string{
		c.Title, c.Description, c.SourceLabel,
	}, append(c.Tags, c.KeywordHits...)...), " "))

	keywords := b.keywords
	if len(keywords) == 0 {
		keywords = []string{"webmethods"}
	}
	for _, kw := range keywords {
		if kw == "" {
			continue
		}
		if strings.Contains(corpus, strings.ToLower(kw)) {
			return true
		}
	}
	return false
}
