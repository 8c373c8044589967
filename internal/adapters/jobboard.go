package adapters

import (
	"net/url"
	"strings"

	"github.com/contentradar/scraper/internal/domain"
)

// JobBoardEndpoints is the static list of job-board RSS feeds this adapter
// polls.
var JobBoardEndpoints = []string{
	"https://weworkremotely.com/categories/remote-programming-jobs.rss",
	"https://remoteok.com/remote-dev-jobs.rss",
}

// NewJobBoard builds the job-board adapter, which enriches each candidate
// with a JobDetail parsed from the "role - company - location" title
// convention named in spec.md §4.4.
func NewJobBoard(fetcher Fetcher, keywords []string) Adapter {
	return NewBase("jobboard", "Job Board Aggregate", JobBoardEndpoints, keywords, fetcher, parseJobBoardPayload)
}

func parseJobBoardPayload(payload, endpoint string) ([]domain.ContentRecord, error) {
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
		rec := toCandidate(it, domain.CategoryJob, "Job Board Aggregate", host)
		rec.Job = parseJobTitle(it.title)
		if rec.Job != nil {
			rec.Tags = append(rec.Tags, "job", rec.Job.Company)
		}
		out = append(out, rec)
	}
	return out, nil
}

// parseJobTitle splits a "role - company - location" title. Any segment
// count other than exactly 3 yields nil — callers keep the bare record.
func parseJobTitle(title string) *domain.JobDetail {
	parts := strings.Split(title, " - ")
	if len(parts) != 3 {
		return nil
	}
	location := strings.TrimSpace(parts[2])
	return &domain.JobDetail{
		Company:  strings.TrimSpace(parts[1]),
		Location: location,
		Remote:   strings.Contains(strings.ToLower(location), "remote"),
	}
}
