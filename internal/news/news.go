// Package news fetches headlines for the site ticker from configured RSS and
// Atom feeds.
package news

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"time"

	"github.com/mmcdole/gofeed"

	"github.com/studiofoks/siteops/internal/models"
	"github.com/studiofoks/siteops/internal/utils"
)

type Fetcher struct {
	parser *gofeed.Parser
	logger *utils.RunLogger
}

func NewFetcher(logger *utils.RunLogger) *Fetcher {
	parser := gofeed.NewParser()
	parser.UserAgent = "siteops-news/1.0"
	return &Fetcher{parser: parser, logger: logger}
}

// Fetch pulls every configured feed and merges the newest items, capped at
// limit. A failing feed is a warning; the ticker still gets the rest.
func (f *Fetcher) Fetch(ctx context.Context, feedURLs []string, limit int) *models.HeadlineFeed {
	if limit <= 0 {
		limit = 10
	}

	var headlines []models.Headline

	for _, feedURL := range feedURLs {
		feed, err := f.parser.ParseURLWithContext(feedURL, ctx)
		if err != nil {
			f.logger.LogWarn("skipping feed %s: %v", feedURL, err)
			continue
		}

		for _, item := range feed.Items {
			if item.Title == "" || item.Link == "" {
				continue
			}
			h := models.Headline{
				Title:  item.Title,
				Link:   item.Link,
				Source: feed.Title,
			}
			if item.PublishedParsed != nil {
				h.Published = item.PublishedParsed.UTC()
			}
			headlines = append(headlines, h)
		}
		f.logger.LogInfo("feed %s contributed %d items", feedURL, len(feed.Items))
	}

	sort.SliceStable(headlines, func(i, j int) bool {
		return headlines[i].Published.After(headlines[j].Published)
	})
	if len(headlines) > limit {
		headlines = headlines[:limit]
	}

	return &models.HeadlineFeed{
		GeneratedAt: time.Now().UTC(),
		Headlines:   headlines,
	}
}

// WriteHeadlines persists the ticker document atomically.
func WriteHeadlines(feed *models.HeadlineFeed, path string) error {
	data, err := json.MarshalIndent(feed, "", "  ")
	if err != nil {
		return fmt.Errorf("error encoding headlines: %w", err)
	}
	data = append(data, '\n')

	if err := utils.WriteFileAtomic(path, data, 0644); err != nil {
		return fmt.Errorf("error writing headlines to %s: %w", path, err)
	}
	return nil
}
