package builder

import (
	"fmt"
	"net/url"
	"sort"
	"strconv"
	"sync"
	"time"

	"github.com/gocolly/colly/v2"

	"github.com/studiofoks/siteops/internal/models"
	"github.com/studiofoks/siteops/internal/utils"
)

type CrawlOptions struct {
	SiteURL           string
	UserAgent         string
	MaxDepth          int
	AllowedDomains    []string
	DefaultPriority   float64
	DefaultChangeFreq string
}

// Crawl discovers publishable URLs by walking the live site instead of a
// content root. Used when the deployed site is the source of truth.
func Crawl(opts CrawlOptions, logger *utils.RunLogger) (*models.Sitemap, error) {
	start, err := url.Parse(opts.SiteURL)
	if err != nil {
		return nil, fmt.Errorf("invalid site URL %q: %w", opts.SiteURL, err)
	}
	if opts.DefaultPriority == 0 {
		opts.DefaultPriority = 0.5
	}
	if opts.DefaultChangeFreq == "" {
		opts.DefaultChangeFreq = "weekly"
	}

	allowed := opts.AllowedDomains
	if len(allowed) == 0 {
		allowed = []string{start.Host}
	}

	c := colly.NewCollector(
		colly.UserAgent(opts.UserAgent),
		colly.MaxDepth(opts.MaxDepth),
		colly.AllowedDomains(allowed...),
	)

	c.Limit(&colly.LimitRule{
		DomainGlob:  "*",
		Parallelism: 2,
		RandomDelay: 1 * time.Second,
	})

	var mu sync.Mutex
	seen := make(map[string]models.URL)
	now := time.Now()

	c.OnHTML("a[href]", func(e *colly.HTMLElement) {
		link := e.Request.AbsoluteURL(e.Attr("href"))
		if !IsPageURL(link) {
			return
		}
		if err := e.Request.Visit(link); err != nil {
			// Already-visited and depth-limit errors are expected noise.
			logger.LogDebug("not following %s: %v", link, err)
		}
	})

	c.OnResponse(func(r *colly.Response) {
		key, err := NormalizeURL(r.Request.URL.String())
		if err != nil {
			logger.LogWarn("skipping crawled URL %s: %v", r.Request.URL, err)
			return
		}

		mu.Lock()
		defer mu.Unlock()
		if _, dup := seen[key]; dup {
			return
		}
		seen[key] = models.URL{
			Loc:        key,
			LastMod:    models.FormatLastMod(now),
			ChangeFreq: opts.DefaultChangeFreq,
			Priority:   strconv.FormatFloat(opts.DefaultPriority, 'f', 1, 64),
		}
	})

	c.OnError(func(r *colly.Response, err error) {
		logger.LogWarn("crawl error for %s: %v", r.Request.URL, err)
	})

	if err := c.Visit(opts.SiteURL); err != nil {
		return nil, fmt.Errorf("crawl of %s failed to start: %w", opts.SiteURL, err)
	}
	c.Wait()

	sitemap := models.NewSitemap()
	for _, entry := range seen {
		sitemap.URLs = append(sitemap.URLs, entry)
	}
	sort.Slice(sitemap.URLs, func(i, j int) bool {
		return sitemap.URLs[i].Loc < sitemap.URLs[j].Loc
	})

	logger.LogInfo("crawl discovered %d URLs starting from %s", len(sitemap.URLs), opts.SiteURL)
	return sitemap, nil
}
