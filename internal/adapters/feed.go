package adapters

import (
	"encoding/xml"
	"fmt"
	"strings"
	"time"

	"github.com/araddon/dateparse"

	"github.com/contentradar/scraper/internal/domain"
)

// rssFeed is the minimal RSS 2.0 shape this parser understands.
type rssFeed struct {
	XMLName xml.Name  `xml:"rss"`
	Channel rssChannel `xml:"channel"`
}

type rssChannel struct {
	Items []rssItem `xml:"item"`
}

type rssItem struct {
	Title       string `xml:"title"`
	Link        string `xml:"link"`
	PubDate     string `xml:"pubDate"`
	Description string `xml:"description"`
	Author      string `xml:"author"`
	Encoded     string `xml:"encoded"`
	GUID        string `xml:"guid"`
}

// atomFeed is the minimal Atom 1.0 shape this parser understands.
type atomFeed struct {
	XMLName xml.Name    `xml:"feed"`
	Entries []atomEntry `xml:"entry"`
}

type atomEntry struct {
	Title     string     `xml:"title"`
	Links     []atomLink `xml:"link"`
	Updated   string     `xml:"updated"`
	Published string     `xml:"published"`
	Summary   string     `xml:"summary"`
	Content   string     `xml:"content"`
	Author    struct {
		Name string `xml:"name"`
	} `xml:"author"`
}

type atomLink struct {
	Href string `xml:"href,attr"`
	Rel  string `xml:"rel,attr"`
}

// feedItem is the payload-agnostic shape both RSS and Atom entries reduce
// to before becoming a candidate ContentRecord.
type feedItem struct {
	title       string
	link        string
	published   *time.Time
	description string
	author      string
	body        string
}

// parseFeed parses an RSS or Atom payload into a slice of feedItems. It
// tries RSS first, falling back to Atom — no pack repo imports a dedicated
// feed-parsing library, so this uses encoding/xml directly (see DESIGN.md).
func parseFeed(payload string) ([]feedItem, error) {
	var rss rssFeed
	if err := xml.Unmarshal([]byte(payload), &rss); err == nil && len(rss.Channel.Items) > 0 {
		items := make([]feedItem, 0, len(rss.Channel.Items))
		for _, it := range rss.Channel.Items {
			items = append(items, feedItem{
				title:       strings.TrimSpace(it.Title),
				link:        strings.TrimSpace(it.Link),
				published:   parsePubDate(it.PubDate),
				description: strings.TrimSpace(it.Description),
				author:      strings.TrimSpace(it.Author),
				body:        strings.TrimSpace(it.Encoded),
			})
		}
		return items, nil
	}

	var atom atomFeed
	if err := xml.Unmarshal([]byte(payload), &atom); err == nil && len(atom.Entries) > 0 {
		items := make([]feedItem, 0, len(atom.Entries))
		for _, e := range atom.Entries {
			items = append(items, feedItem{
				title:       strings.TrimSpace(e.Title),
				link:        strings.TrimSpace(bestAtomLink(e.Links)),
				published:   parsePubDate(firstNonEmpty(e.Published, e.Updated)),
				description: strings.TrimSpace(e.Summary),
				author:      strings.TrimSpace(e.Author.Name),
				body:        strings.TrimSpace(e.Content),
			})
		}
		return items, nil
	}

	return nil, fmt.Errorf("adapters: payload is neither valid RSS nor Atom")
}

func bestAtomLink(links []atomLink) string {
	for _, l := range links {
		if l.Rel == "" || l.Rel == "alternate" {
			return l.Href
		}
	}
	if len(links) > 0 {
		return links[0].Href
	}
	return ""
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}

// parsePubDate tolerates the many timestamp formats real-world feeds emit.
func parsePubDate(raw string) *time.Time {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil
	}
	t, err := dateparse.ParseAny(raw)
	if err != nil {
		return nil
	}
	return &t
}

// toCandidate builds the common ContentRecord shell for a feedItem, leaving
// adapter-specific enrichment (job-detail parsing, category) to the caller.
func toCandidate(item feedItem, category domain.Category, sourceLabel, sourceHost string) domain.ContentRecord {
	rec := domain.ContentRecord{
		Category:    category,
		Title:       item.title,
		Description: item.description,
		Body:        item.body,
		URL:         item.link,
		PublishedAt: item.published,
		SourceHost:  domain.NormalizeHost(sourceHost),
		SourceLabel: sourceLabel,
		Tags:        []string{string(category), "webmethods", "rss"},
		Relevance:   55,
		ScrapedAt:   time.Now(),
		Status:      domain.StatusActive,
	}
	rec.ContentHash = domain.ComputeContentHash(rec.URL, rec.Title)
	if item.author != "" {
		rec.Author = &domain.Author{Name: item.author}
	}
	return rec
}
