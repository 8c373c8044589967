package adapters

import (
	"net/url"

	"github.com/contentradar/scraper/internal/domain"
)

// DevBlogEndpoints is the static list of engineering-blog Atom/RSS feeds
// this adapter polls.
var DevBlogEndpoints = []string{
	"https://blog.cloudflare.com/rss/",
	"https://netflixtechblog.com/feed",
	"https://github.blog/engineering.atom",
}

// NewDevBlog builds the engineering-blog adapter.
func NewDevBlog(fetcher Fetcher, keywords []string) Adapter {
	return NewBase("devblog", "Engineering Blogs", DevBlogEndpoints, keywords, fetcher, parseDevBlogPayload)
}

func parseDevBlogPayload(payload, endpoint string) ([]domain.ContentRecord, error) {
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
		out = append(out, toCandidate(it, domain.CategoryBlog, "Engineering Blogs", host))
	}
	return out, nil
}
