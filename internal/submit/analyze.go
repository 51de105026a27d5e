package submit

import (
	"context"
	"encoding/xml"
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"

	"github.com/studiofoks/siteops/internal/httpx"
	"github.com/studiofoks/siteops/internal/models"
)

// LoadSitemap reads a sitemap from a URL or a local path and parses it as
// either a urlset or a sitemap index.
func LoadSitemap(ctx context.Context, client *httpx.Client, ref string) (*models.Sitemap, *models.SitemapIndex, error) {
	var data []byte

	if strings.HasPrefix(ref, "http://") || strings.HasPrefix(ref, "https://") {
		res, err := client.Get(ctx, ref)
		if err != nil {
			return nil, nil, fmt.Errorf("error fetching sitemap %s: %w", ref, err)
		}
		data = res.Body
	} else {
		var err error
		data, err = os.ReadFile(ref)
		if err != nil {
			return nil, nil, fmt.Errorf("error reading sitemap file %s: %w", ref, err)
		}
	}

	return ParseSitemap(data)
}

// ParseSitemap decodes sitemap XML, distinguishing urlset from sitemapindex
// by the root element.
func ParseSitemap(data []byte) (*models.Sitemap, *models.SitemapIndex, error) {
	var probe struct {
		XMLName xml.Name
	}
	if err := xml.Unmarshal(data, &probe); err != nil {
		return nil, nil, fmt.Errorf("error parsing sitemap XML: %w", err)
	}

	switch probe.XMLName.Local {
	case "urlset":
		var sm models.Sitemap
		if err := xml.Unmarshal(data, &sm); err != nil {
			return nil, nil, fmt.Errorf("error parsing urlset: %w", err)
		}
		return &sm, nil, nil
	case "sitemapindex":
		var si models.SitemapIndex
		if err := xml.Unmarshal(data, &si); err != nil {
			return nil, nil, fmt.Errorf("error parsing sitemapindex: %w", err)
		}
		return nil, &si, nil
	default:
		return nil, nil, fmt.Errorf("not a sitemap document: root element is <%s>", probe.XMLName.Local)
	}
}

// Analysis summarizes a sitemap's contents and any schema issues found.
type Analysis struct {
	TotalURLs       int            `json:"total_urls"`
	WithLastMod     int            `json:"urls_with_lastmod"`
	WithPriority    int            `json:"urls_with_priority"`
	WithChangeFreq  int            `json:"urls_with_changefreq"`
	Protocols       map[string]int `json:"url_protocols"`
	Issues          []string       `json:"issues,omitempty"`
	Recommendations []string       `json:"recommendations,omitempty"`
}

// Analyze inspects every entry in a urlset: protocol breakdown, tag
// coverage, and invalid priority/changefreq values.
func Analyze(sm *models.Sitemap) *Analysis {
	a := &Analysis{
		TotalURLs: len(sm.URLs),
		Protocols: make(map[string]int),
	}

	for _, entry := range sm.URLs {
		if u, err := url.Parse(entry.Loc); err == nil {
			a.Protocols[u.Scheme]++
			if u.Scheme != "http" && u.Scheme != "https" {
				a.Issues = append(a.Issues, fmt.Sprintf("invalid URL protocol: %s", entry.Loc))
			}
		} else {
			a.Issues = append(a.Issues, fmt.Sprintf("unparsable URL: %s", entry.Loc))
		}

		if entry.LastMod != "" {
			a.WithLastMod++
		}
		if entry.Priority != "" {
			a.WithPriority++
			if p, err := strconv.ParseFloat(entry.Priority, 64); err != nil {
				a.Issues = append(a.Issues, fmt.Sprintf("invalid priority format: %s", entry.Priority))
			} else if p < 0.0 || p > 1.0 {
				a.Issues = append(a.Issues, fmt.Sprintf("invalid priority value: %s", entry.Priority))
			}
		}
		if entry.ChangeFreq != "" {
			a.WithChangeFreq++
			if !models.IsValidChangeFreq(entry.ChangeFreq) {
				a.Issues = append(a.Issues, fmt.Sprintf("invalid changefreq value: %s", entry.ChangeFreq))
			}
		}
	}

	if a.TotalURLs > 0 {
		if a.WithLastMod < a.TotalURLs*8/10 {
			a.Recommendations = append(a.Recommendations, "consider adding <lastmod> tags to more URLs")
		}
		if a.WithPriority < a.TotalURLs/2 {
			a.Recommendations = append(a.Recommendations, "consider adding <priority> tags to important URLs")
		}
	}
	if a.TotalURLs > 50000 {
		a.Recommendations = append(a.Recommendations, "sitemap exceeds 50k URLs, consider splitting")
	}
	if a.Protocols["http"] > 0 {
		a.Recommendations = append(a.Recommendations, "consider migrating HTTP URLs to HTTPS")
	}

	return a
}
