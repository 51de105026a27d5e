package builder

import (
	"context"
	"net/http"
	"time"

	"github.com/studiofoks/siteops/internal/httpx"
	"github.com/studiofoks/siteops/internal/models"
	"github.com/studiofoks/siteops/internal/utils"
)

// BuildIndex merges the main sitemap URL and the configured per-project
// sitemap URLs into one index document, in configured order. Every reference
// is HEAD-checked; unreachable ones are logged but still included, since the
// index is best-effort rather than authoritative.
func BuildIndex(ctx context.Context, mainSitemapURL string, projectURLs []string, client *httpx.Client, logger *utils.RunLogger) *models.SitemapIndex {
	index := models.NewSitemapIndex()
	now := models.FormatLastMod(time.Now())

	refs := make([]string, 0, len(projectURLs)+1)
	if mainSitemapURL != "" {
		refs = append(refs, mainSitemapURL)
	}
	refs = append(refs, projectURLs...)

	for _, ref := range refs {
		status, err := client.Head(ctx, ref)
		switch {
		case err != nil:
			logger.LogWarn("referenced sitemap %s is unreachable: %v", ref, err)
		case status < 200 || status > 299:
			logger.LogWarn("referenced sitemap %s returned HTTP %d", ref, status)
		case status == http.StatusOK:
			logger.LogDebug("referenced sitemap %s is reachable", ref)
		}

		index.Sitemaps = append(index.Sitemaps, models.SitemapEntry{
			Loc:     ref,
			LastMod: now,
		})
	}

	logger.LogInfo("built sitemap index with %d entries", len(index.Sitemaps))
	return index
}
