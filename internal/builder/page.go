// internal/builder/page.go
package builder

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// pageMeta holds the sitemap-relevant metadata extracted from one HTML page.
type pageMeta struct {
	Title      string
	Canonical  string
	NoIndex    bool
	Priority   string
	ChangeFreq string
}

// extractPageMeta parses an HTML page and pulls out title, canonical URL,
// robots directives and per-page sitemap overrides.
func extractPageMeta(r io.Reader) (*pageMeta, error) {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return nil, fmt.Errorf("error parsing HTML: %w", err)
	}

	meta := &pageMeta{}

	meta.Title = strings.TrimSpace(doc.Find("title").First().Text())

	doc.Find("meta[name='robots']").Each(func(i int, s *goquery.Selection) {
		if content, exists := s.Attr("content"); exists {
			if strings.Contains(strings.ToLower(content), "noindex") {
				meta.NoIndex = true
			}
		}
	})

	doc.Find("link[rel='canonical']").Each(func(i int, s *goquery.Selection) {
		if href, exists := s.Attr("href"); exists {
			meta.Canonical = strings.TrimSpace(href)
		}
	})

	doc.Find("meta[name='sitemap-priority']").Each(func(i int, s *goquery.Selection) {
		if content, exists := s.Attr("content"); exists {
			meta.Priority = strings.TrimSpace(content)
		}
	})

	doc.Find("meta[name='sitemap-changefreq']").Each(func(i int, s *goquery.Selection) {
		if content, exists := s.Attr("content"); exists {
			meta.ChangeFreq = strings.TrimSpace(content)
		}
	})

	return meta, nil
}

// validPriority reports whether s parses as a float in [0,1].
func validPriority(s string) bool {
	p, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return false
	}
	return p >= 0.0 && p <= 1.0
}
