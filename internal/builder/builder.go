// Package builder produces sitemap documents, either by scanning a content
// root of publishable HTML pages or by crawling the live site.
package builder

import (
	"fmt"
	"io/fs"
	"net/url"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/studiofoks/siteops/internal/models"
	"github.com/studiofoks/siteops/internal/utils"
)

type Options struct {
	SiteURL           string
	DefaultPriority   float64
	DefaultChangeFreq string
}

type Builder struct {
	opts   Options
	logger *utils.RunLogger
}

func NewBuilder(opts Options, logger *utils.RunLogger) (*Builder, error) {
	if opts.SiteURL == "" {
		return nil, fmt.Errorf("builder requires a site URL")
	}
	if _, err := url.Parse(opts.SiteURL); err != nil {
		return nil, fmt.Errorf("invalid site URL %q: %w", opts.SiteURL, err)
	}
	if opts.DefaultPriority == 0 {
		opts.DefaultPriority = 0.5
	}
	if opts.DefaultChangeFreq == "" {
		opts.DefaultChangeFreq = "weekly"
	}
	return &Builder{opts: opts, logger: logger}, nil
}

// Build scans the content root and returns a sitemap with one entry per
// publishable page, deduplicated by normalized URL and sorted for
// deterministic output. One bad page never fails the whole run.
func (b *Builder) Build(root string) (*models.Sitemap, error) {
	info, err := os.Stat(root)
	if err != nil {
		return nil, fmt.Errorf("cannot read content root %s: %w", root, err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("content root %s is not a directory", root)
	}

	seen := make(map[string]models.URL)

	walkErr := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			b.logger.LogWarn("skipping unreadable path %s: %v", path, err)
			return nil
		}
		if d.IsDir() || !isHTMLFile(path) {
			return nil
		}

		entry, err := b.buildEntry(root, path)
		if err != nil {
			b.logger.LogWarn("skipping page %s: %v", path, err)
			return nil
		}
		if entry == nil {
			return nil
		}

		key, err := NormalizeURL(entry.Loc)
		if err != nil {
			b.logger.LogWarn("skipping page %s: %v", path, err)
			return nil
		}
		if _, dup := seen[key]; dup {
			b.logger.LogWarn("duplicate URL %s from %s, keeping first occurrence", key, path)
			return nil
		}
		entry.Loc = key
		seen[key] = *entry
		return nil
	})
	if walkErr != nil {
		return nil, fmt.Errorf("error walking content root %s: %w", root, walkErr)
	}

	sitemap := models.NewSitemap()
	for _, entry := range seen {
		sitemap.URLs = append(sitemap.URLs, entry)
	}
	sort.Slice(sitemap.URLs, func(i, j int) bool {
		return sitemap.URLs[i].Loc < sitemap.URLs[j].Loc
	})

	b.logger.LogInfo("built sitemap with %d entries from %s", len(sitemap.URLs), root)
	return sitemap, nil
}

// buildEntry converts one HTML file into a sitemap entry. A nil entry with a
// nil error means the page opted out of indexing.
func (b *Builder) buildEntry(root, path string) (*models.URL, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("cannot open page: %w", err)
	}
	defer f.Close()

	meta, err := extractPageMeta(f)
	if err != nil {
		return nil, err
	}
	if meta.NoIndex {
		b.logger.LogDebug("page %s is marked noindex", path)
		return nil, nil
	}
	if meta.Title == "" {
		b.logger.LogWarn("page %s has no <title>", path)
	}

	loc, err := b.pageURL(root, path)
	if err != nil {
		return nil, err
	}
	if meta.Canonical != "" {
		if _, err := url.Parse(meta.Canonical); err == nil && strings.HasPrefix(meta.Canonical, "http") {
			loc = meta.Canonical
		} else {
			b.logger.LogWarn("ignoring invalid canonical %q on %s", meta.Canonical, path)
		}
	}

	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("cannot stat page: %w", err)
	}

	entry := &models.URL{
		Loc:        loc,
		LastMod:    models.FormatLastMod(info.ModTime()),
		ChangeFreq: b.opts.DefaultChangeFreq,
		Priority:   strconv.FormatFloat(b.opts.DefaultPriority, 'f', 1, 64),
	}

	if meta.Priority != "" {
		if validPriority(meta.Priority) {
			entry.Priority = meta.Priority
		} else {
			b.logger.LogWarn("ignoring invalid sitemap-priority %q on %s", meta.Priority, path)
		}
	}
	if meta.ChangeFreq != "" {
		if models.IsValidChangeFreq(meta.ChangeFreq) {
			entry.ChangeFreq = meta.ChangeFreq
		} else {
			b.logger.LogWarn("ignoring invalid sitemap-changefreq %q on %s", meta.ChangeFreq, path)
		}
	}

	return entry, nil
}

// pageURL maps a content-root file path onto the public site URL. index
// files map to their directory URL.
func (b *Builder) pageURL(root, path string) (string, error) {
	rel, err := filepath.Rel(root, path)
	if err != nil {
		return "", fmt.Errorf("cannot relativize %s: %w", path, err)
	}
	rel = filepath.ToSlash(rel)

	if base := strings.ToLower(filepath.Base(rel)); base == "index.html" || base == "index.htm" {
		rel = strings.TrimSuffix(rel, filepath.Base(rel))
	}

	base, err := url.Parse(b.opts.SiteURL)
	if err != nil {
		return "", fmt.Errorf("invalid site URL: %w", err)
	}
	ref, err := url.Parse(rel)
	if err != nil {
		return "", fmt.Errorf("cannot build URL for %s: %w", rel, err)
	}
	return base.ResolveReference(ref).String(), nil
}

func isHTMLFile(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".html", ".htm":
		return true
	}
	return false
}
