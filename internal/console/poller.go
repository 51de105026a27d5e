package console

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/studiofoks/siteops/internal/models"
	"github.com/studiofoks/siteops/internal/utils"
)

// Poller derives an indexing status snapshot from the console API. Each run
// is independent; the snapshot it writes supersedes the previous one.
type Poller struct {
	client *Client
	logger *utils.RunLogger
}

func NewPoller(client *Client, logger *utils.RunLogger) *Poller {
	return &Poller{client: client, logger: logger}
}

// Poll queries crawl/index counts and per-sitemap errors for site and folds
// them into one snapshot.
func (p *Poller) Poll(ctx context.Context, site string) (*models.StatusSnapshot, error) {
	statuses, err := p.client.ListSitemaps(ctx, site)
	if err != nil {
		return nil, fmt.Errorf("poll of %s failed: %w", site, err)
	}

	snapshot := models.NewStatusSnapshot(site)

	for _, st := range statuses {
		snapshot.CrawlErrors += int(st.Errors)
		snapshot.Warnings += int(st.Warnings)
		for _, c := range st.Contents {
			snapshot.CrawledCount += int(c.Submitted)
			snapshot.IndexedCount += int(c.Indexed)
		}

		switch {
		case st.Errors > 0:
			snapshot.PerURLStatus[st.Path] = fmt.Sprintf("errors:%d", int(st.Errors))
		case st.IsPending:
			snapshot.PerURLStatus[st.Path] = "pending"
		case st.Warnings > 0:
			snapshot.PerURLStatus[st.Path] = fmt.Sprintf("warnings:%d", int(st.Warnings))
		default:
			snapshot.PerURLStatus[st.Path] = "ok"
		}
	}

	p.logger.LogInfo("poll of %s: crawled=%d indexed=%d errors=%d",
		site, snapshot.CrawledCount, snapshot.IndexedCount, snapshot.CrawlErrors)
	return snapshot, nil
}

// WriteSnapshot persists the snapshot as JSON, atomically, so a killed run
// never leaves a half-written file for the next one to trip over.
func WriteSnapshot(snapshot *models.StatusSnapshot, path string) error {
	data, err := json.MarshalIndent(snapshot, "", "  ")
	if err != nil {
		return fmt.Errorf("error encoding snapshot: %w", err)
	}
	data = append(data, '\n')

	if err := utils.WriteFileAtomic(path, data, 0644); err != nil {
		return fmt.Errorf("error writing snapshot to %s: %w", path, err)
	}
	return nil
}

// ReadSnapshot loads a snapshot file written by WriteSnapshot.
func ReadSnapshot(path string) (*models.StatusSnapshot, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("error reading snapshot %s: %w", path, err)
	}

	var snapshot models.StatusSnapshot
	if err := json.Unmarshal(data, &snapshot); err != nil {
		return nil, fmt.Errorf("error parsing snapshot %s: %w", path, err)
	}
	if snapshot.Site == "" {
		return nil, fmt.Errorf("snapshot %s is missing the site field", path)
	}
	return &snapshot, nil
}
