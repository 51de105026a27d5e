package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"

	"github.com/studiofoks/siteops/internal/models"
)

type SQLiteStore struct {
	db *sql.DB
}

func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, err
	}

	if err := db.Ping(); err != nil {
		return nil, err
	}

	return &SQLiteStore{db: db}, nil
}

func (s *SQLiteStore) Initialize() error {
	queries := []string{
		`CREATE TABLE IF NOT EXISTS snapshots (
            id TEXT PRIMARY KEY,
            site TEXT NOT NULL,
            timestamp DATETIME NOT NULL,
            crawled_count INTEGER NOT NULL DEFAULT 0,
            indexed_count INTEGER NOT NULL DEFAULT 0,
            crawl_errors INTEGER NOT NULL DEFAULT 0,
            warnings INTEGER NOT NULL DEFAULT 0,
            per_url_status TEXT
        )`,
		`CREATE INDEX IF NOT EXISTS idx_snapshots_site_time ON snapshots(site, timestamp)`,
		`CREATE TABLE IF NOT EXISTS submissions (
            id TEXT PRIMARY KEY,
            sitemap_url TEXT NOT NULL,
            engine TEXT NOT NULL,
            success INTEGER NOT NULL,
            status_code INTEGER,
            error TEXT,
            retried INTEGER NOT NULL DEFAULT 0,
            submitted_at DATETIME NOT NULL
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

func (s *SQLiteStore) SaveSnapshot(ctx context.Context, snapshot *models.StatusSnapshot) error {
	statusJSON, err := json.Marshal(snapshot.PerURLStatus)
	if err != nil {
		return err
	}

	query := `
        INSERT INTO snapshots (id, site, timestamp, crawled_count, indexed_count, crawl_errors, warnings, per_url_status)
        VALUES (?, ?, ?, ?, ?, ?, ?, ?)
    `

	_, err = s.db.ExecContext(ctx, query,
		snapshot.ID.String(),
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

func (s *SQLiteStore) LatestSnapshot(ctx context.Context, site string) (*models.StatusSnapshot, error) {
	query := `
        SELECT id, site, timestamp, crawled_count, indexed_count, crawl_errors, warnings, per_url_status
        FROM snapshots
        WHERE site = ?
        ORDER BY timestamp DESC
        LIMIT 1
    `

	snapshot, err := scanSnapshot(s.db.QueryRowContext(ctx, query, site))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	return snapshot, err
}

func (s *SQLiteStore) ListSnapshots(ctx context.Context, site string, limit int) ([]*models.StatusSnapshot, error) {
	query := `
        SELECT id, site, timestamp, crawled_count, indexed_count, crawl_errors, warnings, per_url_status
        FROM snapshots
        WHERE site = ?
        ORDER BY timestamp DESC
        LIMIT ?
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

func (s *SQLiteStore) SaveSubmissions(ctx context.Context, records []models.SubmissionRecord) error {
	query := `
        INSERT INTO submissions (id, sitemap_url, engine, success, status_code, error, retried, submitted_at)
        VALUES (?, ?, ?, ?, ?, ?, ?, ?)
    `

	for _, rec := range records {
		if _, err := s.db.ExecContext(ctx, query,
			rec.ID.String(),
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

func (s *SQLiteStore) ListSubmissions(ctx context.Context, limit int) ([]*models.SubmissionRecord, error) {
	query := `
        SELECT id, sitemap_url, engine, success, status_code, error, retried, submitted_at
        FROM submissions
        ORDER BY submitted_at DESC
        LIMIT ?
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

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// rowScanner covers both *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanSnapshot(row rowScanner) (*models.StatusSnapshot, error) {
	snapshot := &models.StatusSnapshot{}
	var idStr string
	var statusJSON string

	if err := row.Scan(
		&idStr,
		&snapshot.Site,
		&snapshot.Timestamp,
		&snapshot.CrawledCount,
		&snapshot.IndexedCount,
		&snapshot.CrawlErrors,
		&snapshot.Warnings,
		&statusJSON,
	); err != nil {
		return nil, err
	}

	snapshot.ID, _ = uuid.Parse(idStr)
	if statusJSON != "" {
		json.Unmarshal([]byte(statusJSON), &snapshot.PerURLStatus)
	}
	return snapshot, nil
}
