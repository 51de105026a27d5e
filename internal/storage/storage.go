package storage

import (
	"context"

	"github.com/studiofoks/siteops/internal/models"
)

// Store persists snapshot history and submission outcomes so the status API
// and trend reports can look back past the latest batch run.
type Store interface {
	Initialize() error
	Close() error

	// Snapshot operations
	SaveSnapshot(ctx context.Context, snapshot *models.StatusSnapshot) error
	LatestSnapshot(ctx context.Context, site string) (*models.StatusSnapshot, error)
	ListSnapshots(ctx context.Context, site string, limit int) ([]*models.StatusSnapshot, error)

	// Submission operations
	SaveSubmissions(ctx context.Context, records []models.SubmissionRecord) error
	ListSubmissions(ctx context.Context, limit int) ([]*models.SubmissionRecord, error)
}
