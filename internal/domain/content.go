// Package domain defines the core record types shared across the scraping
// pipeline: content records, run logs, and the robots/rate-limit state
// the politeness layer keys off of.
package domain

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"
	"time"
)

// Category is the closed set of content kinds a source adapter may emit.
type Category string

const (
	CategoryNews          Category = "news"
	CategoryJob           Category = "job"
	CategoryBlog          Category = "blog"
	CategoryArticle       Category = "article"
	CategoryDocumentation Category = "documentation"
	CategoryTutorial      Category = "tutorial"
	CategoryVideo         Category = "video"
	CategoryOther         Category = "other"
)

// Status is the lifecycle state of a persisted ContentRecord.
type Status string

const (
	StatusActive   Status = "active"
	StatusArchived Status = "archived"
	StatusDeleted  Status = "deleted"
	StatusFlagged  Status = "flagged"
)

const (
	// MaxTitleLen is the maximum accepted length for ContentRecord.Title.
	MaxTitleLen = 500
	// MaxDescriptionLen is the maximum accepted length for ContentRecord.Description.
	MaxDescriptionLen = 5000
)

// Author is the byline sub-record for a ContentRecord.
type Author struct {
	Name string  `bson:"name" json:"name"`
	URL  *string `bson:"url,omitempty" json:"url,omitempty"`
}

// JobDetail carries job-board-specific fields, populated only when
// Category == CategoryJob.
type JobDetail struct {
	Company        string  `bson:"company" json:"company"`
	Location       string  `bson:"location" json:"location"`
	Remote         bool    `bson:"remote" json:"remote"`
	EmploymentType string  `bson:"employmentType,omitempty" json:"employmentType,omitempty"`
	SalaryRange    *string `bson:"salaryRange,omitempty" json:"salaryRange,omitempty"`
	ApplyURL       string  `bson:"applyUrl,omitempty" json:"applyUrl,omitempty"`
}

// ContentRecord is a single scraped item, identity-keyed by ContentHash.
type ContentRecord struct {
	ContentHash string `bson:"contentHash" json:"contentHash"`

	Category    Category `bson:"category" json:"category"`
	Title       string   `bson:"title" json:"title"`
	Description string   `bson:"description,omitempty" json:"description,omitempty"`
	Body        string   `bson:"body,omitempty" json:"body,omitempty"`
	ImageURL    string   `bson:"imageUrl,omitempty" json:"imageUrl,omitempty"`
	URL         string   `bson:"url" json:"url"`
	Author      *Author  `bson:"author,omitempty" json:"author,omitempty"`

	PublishedAt *time.Time `bson:"publishedAt,omitempty" json:"publishedAt,omitempty"`

	SourceHost  string   `bson:"sourceHost" json:"sourceHost"`
	SourceLabel string   `bson:"sourceLabel" json:"sourceLabel"`
	Tags        []string `bson:"tags" json:"tags"`
	KeywordHits []string `bson:"keywordHits" json:"keywordHits"`
	Relevance   int      `bson:"relevance" json:"relevance"`

	Job *JobDetail `bson:"job,omitempty" json:"job,omitempty"`

	ScrapedBy string     `bson:"scrapedBy" json:"scrapedBy"`
	ScrapedAt time.Time  `bson:"scrapedAt" json:"scrapedAt"`
	ExpiresAt *time.Time `bson:"expiresAt,omitempty" json:"expiresAt,omitempty"`

	Status Status `bson:"status" json:"status"`

	ViewCount  int64 `bson:"viewCount" json:"viewCount"`
	ClickCount int64 `bson:"clickCount" json:"clickCount"`

	UpdatedAt time.Time `bson:"updatedAt" json:"updatedAt"`
}

// ComputeContentHash derives the stable identity hash for a URL/title pair:
// SHA-256(lowercased-trimmed-URL || "|" || lowercased-trimmed-title).
func ComputeContentHash(url, title string) string {
	norm := strings.ToLower(strings.TrimSpace(url)) + "|" + strings.ToLower(strings.TrimSpace(title))
	sum := sha256.Sum256([]byte(norm))
	return hex.EncodeToString(sum[:])
}

// NormalizeHost lower-cases a host and strips a leading "www." label.
func NormalizeHost(host string) string {
	host = strings.ToLower(strings.TrimSpace(host))
	return strings.TrimPrefix(host, "www.")
}
