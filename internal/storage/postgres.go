package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	_ "github.com/lib/pq"

	"github.com/studiofoks/siteops/internal/models"
)

type PostgresStore struct {
	db *sql.DB
}

func NewPostgresStore(dbURL string) (*PostgresStore, error) {
	db, err := sql.Open("postgres", dbURL)
	if err != nil {
		return nil, err
	}

	if err := db.Ping(); err != nil {
		return nil, err
	}

	return &PostgresStore{db: db}, nil
}

func (s *PostgresStore) Initialize() error {
	queries := []string{
		`CREATE TABLE IF NOT EXISTS snapshots (
            id UUID PRIMARY KEY,
            site TEXT NOT NULL,
            timestamp TIMESTAMPTZ NOT NULL,
            crawled_count INTEGER NOT NULL DEFAULT 0,
            indexed_count INTEGER NOT NULL DEFAULT 0,
            crawl_errors INTEGER NOT NULL DEFAULT 0,
            warnings INTEGER NOT NULL DEFAULT 0,
            per_url_status JSONB
        )`,
		`CREATE INDEX IF NOT EXISTS idx_snapshots_site_time ON snapshots(site, timestamp)`,
		`CREATE TABLE IF NOT EXISTS submissions (
            id UUID PRIMARY KEY,
            sitemap_url TEXT NOT NULL,
            engine TEXT NOT NULL,
            success BOOLEAN NOT NULL,
            status_code INTEGER,
            error TEXT,
            retried BOOLEAN NOT NULL DEFAULT FALSE,
            submitted_at TIMESTAMPTZ NOT NULL
        )`,
		`CREATE INDEX IF NOT EXISTS idx_submissions_time ON submissions(submitted_at)`,
	}

	for _, query := range queries {
		if _, err := s.db.Exec(query); err != nil {
			return fmt.Errorf("error executing query %s: %w", query, err)
		}
	}

	return nil
}

func (s *PostgresStore) SaveSnapshot(ctx context.Context, snapshot *models.StatusSnapshot) error {
	statusJSON, err := json.Marshal(snapshot.PerURLStatus)
	if err != nil {
		return err
	}

	query := `
        INSERT INTO snapshots (id, site, timestamp, crawled_count, indexed_count, crawl_errors, warnings, per_url_status)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
    `

	_, err = s.db.ExecContext(ctx, query,
		snapshot.ID,
		snapshot.Site,
		snapshot.Timestamp,
		snapshot.CrawledCount,
		snapshot.IndexedCount,
		snapshot.CrawlErrors,
		snapshot.Warnings,
		string(statusJSON),
	)

	return err
}

func (s *PostgresStore) LatestSnapshot(ctx context.Context, site string) (*models.StatusSnapshot, error) {
	query := `
        SELECT id, site, timestamp, crawled_count, indexed_count, crawl_errors, warnings, per_url_status
        FROM snapshots
        WHERE site = $1
        ORDER BY timestamp DESC
        LIMIT 1
    `

	snapshot, err := scanSnapshot(s.db.QueryRowContext(ctx, query, site))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	return snapshot, err
}

func (s *PostgresStore) ListSnapshots(ctx context.Context, site string, limit int) ([]*models.StatusSnapshot, error) {
	query := `
        SELECT id, site, timestamp, crawled_count, indexed_count, crawl_errors, warnings, per_url_status
        FROM snapshots
        WHERE site = $1
        ORDER BY timestamp DESC
        LIMIT $2
    `

	rows, err := s.db.QueryContext(ctx, query, site, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var snapshots []*models.StatusSnapshot
	for rows.Next() {
		snapshot, err := scanSnapshot(rows)
		if err != nil {
			return nil, err
		}
		snapshots = append(snapshots, snapshot)
	}
	return snapshots, rows.Err()
}

func (s *PostgresStore) SaveSubmissions(ctx context.Context, records []models.SubmissionRecord) error {
	query := `
        INSERT INTO submissions (id, sitemap_url, engine, success, status_code, error, retried, submitted_at)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
    `

	for _, rec := range records {
		if _, err := s.db.ExecContext(ctx, query,
			rec.ID,
			rec.SitemapURL,
			rec.Engine,
			rec.Success,
			rec.StatusCode,
			rec.Error,
			rec.Retried,
			rec.SubmittedAt,
		); err != nil {
			return err
		}
	}
	return nil
}

func (s *PostgresStore) ListSubmissions(ctx context.Context, limit int) ([]*models.SubmissionRecord, error) {
	query := `
        SELECT id, sitemap_url, engine, success, status_code, error, retried, submitted_at
        FROM submissions
        ORDER BY submitted_at DESC
        LIMIT $1
    `

	rows, err := s.db.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var records []*models.SubmissionRecord
	for rows.Next() {
		rec := &models.SubmissionRecord{}
		var idStr string
		if err := rows.Scan(
			&idStr,
			&rec.SitemapURL,
			&rec.Engine,
			&rec.Success,
			&rec.StatusCode,
			&rec.Error,
			&rec.Retried,
			&rec.SubmittedAt,
		); err != nil {
			return nil, err
		}
		rec.ID, _ = uuid.Parse(idStr)
		records = append(records, rec)
	}
	return records, rows.Err()
}

func (s *PostgresStore) Close() error {
	return s.db.Close()
}
