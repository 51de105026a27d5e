// internal/models/sitemap.go
package models

import (
	"encoding/xml"
	"fmt"
	"strconv"
	"time"
)

// XMLNamespace is the sitemaps.org schema namespace.
const XMLNamespace = "http://www.sitemaps.org/schemas/sitemap/0.9"

// ValidChangeFreqs are the changefreq values the sitemaps.org schema allows.
var ValidChangeFreqs = []string{"always", "hourly", "daily", "weekly", "monthly", "yearly", "never"}

// Sitemap represents the structure of an XML sitemap.
type Sitemap struct {
	XMLName xml.Name `xml:"urlset"`
	Xmlns   string   `xml:"xmlns,attr"`
	URLs    []URL    `xml:"url"`
}

// URL represents a single URL entry in the sitemap.
type URL struct {
	Loc        string `xml:"loc"`
	LastMod    string `xml:"lastmod,omitempty"`
	ChangeFreq string `xml:"changefreq,omitempty"`
	Priority   string `xml:"priority,omitempty"`
}

// SitemapIndex represents a sitemap index document whose entries reference
// other sitemaps rather than pages.
type SitemapIndex struct {
	XMLName  xml.Name       `xml:"sitemapindex"`
	Xmlns    string         `xml:"xmlns,attr"`
	Sitemaps []SitemapEntry `xml:"sitemap"`
}

// SitemapEntry is a single <sitemap> reference in a sitemap index.
type SitemapEntry struct {
	Loc     string `xml:"loc"`
	LastMod string `xml:"lastmod,omitempty"`
}

// NewSitemap returns an empty urlset with the schema namespace set.
func NewSitemap() *Sitemap {
	return &Sitemap{Xmlns: XMLNamespace}
}

// NewSitemapIndex returns an empty sitemap index with the schema namespace set.
func NewSitemapIndex() *SitemapIndex {
	return &SitemapIndex{Xmlns: XMLNamespace}
}

// FormatLastMod renders a modification time the way sitemaps.org expects.
func FormatLastMod(t time.Time) string {
	return t.UTC().Format("2006-01-02")
}

// Validate checks a URL entry against the sitemaps.org constraints.
func (u *URL) Validate() error {
	if u.Loc == "" {
		return fmt.Errorf("url entry has empty loc")
	}
	if u.Priority != "" {
		p, err := strconv.ParseFloat(u.Priority, 64)
		if err != nil {
			return fmt.Errorf("invalid priority format %q for %s", u.Priority, u.Loc)
		}
		if p < 0.0 || p > 1.0 {
			return fmt.Errorf("priority %q out of range [0,1] for %s", u.Priority, u.Loc)
		}
	}
	if u.ChangeFreq != "" && !IsValidChangeFreq(u.ChangeFreq) {
		return fmt.Errorf("invalid changefreq %q for %s", u.ChangeFreq, u.Loc)
	}
	return nil
}

// IsValidChangeFreq reports whether v is an allowed changefreq value.
func IsValidChangeFreq(v string) bool {
	for _, f := range ValidChangeFreqs {
		if f == v {
			return true
		}
	}
	return false
}

// Encode renders the sitemap as indented XML with the standard header.
func (s *Sitemap) Encode() ([]byte, error) {
	return encodeXML(s)
}

// Encode renders the sitemap index as indented XML with the standard header.
func (si *SitemapIndex) Encode() ([]byte, error) {
	return encodeXML(si)
}

func encodeXML(v interface{}) ([]byte, error) {
	body, err := xml.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("error encoding sitemap XML: %w", err)
	}
	return append([]byte(xml.Header), append(body, '\n')...), nil
}
