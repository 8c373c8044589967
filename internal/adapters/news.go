package adapters

import (
	"net/url"

	"github.com/contentradar/scraper/internal/domain"
)

// NewsEndpoints is the static list of generic RSS/Atom news feeds this
// adapter polls, per spec.md §4.4 ("implementations hold a static list of
// feed endpoints").
var NewsEndpoints = []string{
	"https://news.ycombinator.com/rss",
	"https://www.infoq.com/feed/",
	"https://martinfowler.com/feed.atom",
}

// NewNews builds the generic news-feed adapter.
func NewNews(fetcher Fetcher, keywords []string) Adapter {
	return NewBase("newsadapter", "General News", NewsEndpoints, keywords, fetcher, parseNewsPayload)
}

func parseNewsPayload(payload, endpoint string) ([]domain.ContentRecord, error) {
	items, err := parseFeed(payload)
	if err != nil {
		return nil, err
	}

	host := "unknown"
	if u, uerr := url.Parse(endpoint); uerr == nil {
		host = u.Host
	}

	out := make([]domain.ContentRecord, 0, len(items))
	for _, it := range items {
		out = append(out, toCandidate(it, domain.CategoryNews, "General News", host))
	}
	return out, nil
}
