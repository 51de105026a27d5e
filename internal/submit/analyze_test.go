package submit

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/studiofoks/siteops/internal/httpx"
	"github.com/studiofoks/siteops/internal/models"
	"github.com/studiofoks/siteops/internal/utils"
)

const sampleURLSet = `<?xml version="1.0" encoding="UTF-8"?>
<urlset xmlns="http://www.sitemaps.org/schemas/sitemap/0.9">
  <url><loc>https://example.com/</loc><lastmod>2026-01-01</lastmod><priority>0.8</priority><changefreq>weekly</changefreq></url>
  <url><loc>http://example.com/legacy</loc><priority>3.0</priority><changefreq>sometimes</changefreq></url>
</urlset>`

const sampleIndex = `<?xml version="1.0" encoding="UTF-8"?>
<sitemapindex xmlns="http://www.sitemaps.org/schemas/sitemap/0.9">
  <sitemap><loc>https://example.com/sitemap.xml</loc></sitemap>
  <sitemap><loc>https://blog.example.com/sitemap.xml</loc></sitemap>
</sitemapindex>`

func TestParseSitemapURLSet(t *testing.T) {
	sm, si, err := ParseSitemap([]byte(sampleURLSet))
	require.NoError(t, err)
	require.Nil(t, si)
	require.Len(t, sm.URLs, 2)
	require.Equal(t, "https://example.com/", sm.URLs[0].Loc)
}

func TestParseSitemapIndex(t *testing.T) {
	sm, si, err := ParseSitemap([]byte(sampleIndex))
	require.NoError(t, err)
	require.Nil(t, sm)
	require.Len(t, si.Sitemaps, 2)
}

func TestParseSitemapRejectsOtherXML(t *testing.T) {
	_, _, err := ParseSitemap([]byte(`<rss version="2.0"></rss>`))
	require.Error(t, err)
	require.Contains(t, err.Error(), "not a sitemap document")
}

func TestParseSitemapRejectsGarbage(t *testing.T) {
	_, _, err := ParseSitemap([]byte(`{"not": "xml"}`))
	require.Error(t, err)
}

func TestAnalyzeFindsIssues(t *testing.T) {
	sm, _, err := ParseSitemap([]byte(sampleURLSet))
	require.NoError(t, err)

	a := Analyze(sm)
	require.Equal(t, 2, a.TotalURLs)
	require.Equal(t, 1, a.WithLastMod)
	require.Equal(t, 2, a.WithPriority)
	require.Equal(t, 1, a.Protocols["http"])
	require.Equal(t, 1, a.Protocols["https"])
	require.Contains(t, a.Issues, "invalid priority value: 3.0")
	require.Contains(t, a.Issues, "invalid changefreq value: sometimes")
	require.Contains(t, a.Recommendations, "consider migrating HTTP URLs to HTTPS")
}

func TestLoadSitemapFromURL(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(sampleURLSet))
	}))
	defer srv.Close()

	client := httpx.New(5 * time.Second)
	sm, _, err := LoadSitemap(context.Background(), client, srv.URL+"/sitemap.xml")
	require.NoError(t, err)
	require.Len(t, sm.URLs, 2)
}

func TestValidateLinksReportsBrokenOnes(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/ok":
			w.WriteHeader(http.StatusOK)
		case "/headless":
			// Refuses HEAD, accepts GET.
			if r.Method == http.MethodHead {
				w.WriteHeader(http.StatusMethodNotAllowed)
				return
			}
			w.WriteHeader(http.StatusOK)
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	defer srv.Close()

	sm := models.NewSitemap()
	sm.URLs = []models.URL{
		{Loc: srv.URL + "/ok"},
		{Loc: srv.URL + "/headless"},
		{Loc: srv.URL + "/missing"},
	}

	checker := NewLinkChecker(httpx.New(5*time.Second), 100, utils.NewDiscardLogger())
	problems := checker.ValidateLinks(context.Background(), sm)

	require.Len(t, problems, 1)
	require.Equal(t, srv.URL+"/missing", problems[0].URL)
	require.Equal(t, http.StatusNotFound, problems[0].Status)
}
