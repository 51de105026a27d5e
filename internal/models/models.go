package models

import (
	"time"

	"github.com/google/uuid"
)

// StatusSnapshot is one poll of a search engine's indexing state for a site.
// A snapshot is immutable once written; the next poll supersedes it.
type StatusSnapshot struct {
	ID           uuid.UUID         `json:"id"`
	Site         string            `json:"site"`
	Timestamp    time.Time         `json:"timestamp"`
	CrawledCount int               `json:"crawled_count"`
	IndexedCount int               `json:"indexed_count"`
	CrawlErrors  int               `json:"crawl_errors"`
	Warnings     int               `json:"warnings"`
	PerURLStatus map[string]string `json:"per_url_status,omitempty"`
}

// NewStatusSnapshot creates an empty snapshot with generated UUID and timestamp.
func NewStatusSnapshot(site string) *StatusSnapshot {
	return &StatusSnapshot{
		ID:           uuid.New(),
		Site:         site,
		Timestamp:    time.Now().UTC(),
		PerURLStatus: make(map[string]string),
	}
}

// SubmissionRecord captures the outcome of one sitemap submission to one engine.
type SubmissionRecord struct {
	ID          uuid.UUID `json:"id"`
	SitemapURL  string    `json:"sitemap_url"`
	Engine      string    `json:"engine"`
	Success     bool      `json:"success"`
	StatusCode  int       `json:"status_code,omitempty"`
	Error       string    `json:"error,omitempty"`
	Retried     bool      `json:"retried"`
	SubmittedAt time.Time `json:"submitted_at"`
}

// Headline is a single news item for the site ticker.
type Headline struct {
	Title     string    `json:"title"`
	Link      string    `json:"link"`
	Source    string    `json:"source"`
	Published time.Time `json:"published,omitempty"`
}

// HeadlineFeed is the JSON document the ticker consumes.
type HeadlineFeed struct {
	GeneratedAt time.Time  `json:"generated_at"`
	Headlines   []Headline `json:"headlines"`
}
