package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/lib/pq"

	"settings-hub/pkg/settings"
)

// HistoryStore persists load reports in PostgreSQL. Setting values are never written.
type HistoryStore struct {
	DB *sql.DB
}

// LoadRecord is one row of settings_load_history.
type LoadRecord struct {
	RunID          string
	AppName        string
	Environment    string
	RemoteEligible bool
	FailedSources  []string
	Sources        []settings.SourceReport
}

// NewHistoryStore creates a new HistoryStore.
func NewHistoryStore(db *sql.DB) *HistoryStore {
	return &HistoryStore{DB: db}
}

// EnsureSchema creates the settings_load_history table.
func (s *HistoryStore) EnsureSchema(ctx context.Context) error {
	_, err := s.DB.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS settings_load_history (
			run_id UUID PRIMARY KEY,
			app_name TEXT NOT NULL,
			environment TEXT NOT NULL,
			remote_eligible BOOLEAN NOT NULL,
			failed_sources TEXT[] NOT NULL DEFAULT '{}',
			sources JSONB NOT NULL,
			started_at TIMESTAMPTZ NOT NULL,
			finished_at TIMESTAMPTZ NOT NULL
		);
	`)
	if err != nil {
		return fmt.Errorf("schema_init_failed: %w", err)
	}
	return nil
}

// RecordLoad inserts one load report. Recording the same run twice is a no-op.
func (s *HistoryStore) RecordLoad(ctx context.Context, report settings.LoadReport) error {
	if report.RunID == "" {
		return fmt.Errorf("load report has no run id")
	}

	sources := report.Sources
	if sources == nil {
		sources = []settings.SourceReport{}
	}
	sourcesJSON, err := json.Marshal(sources)
	if err != nil {
		return fmt.Errorf("failed to marshal sources: %w", err)
	}

	failed := []string{}
	for _, src := range report.Failed() {
		failed = append(failed, src.Label)
	}

	_, err = s.DB.ExecContext(ctx, `
		INSERT INTO settings_load_history (run_id, app_name, environment, remote_eligible, failed_sources, sources, started_at, finished_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (run_id) DO NOTHING`,
		report.RunID, report.AppName, report.Environment, report.RemoteEligible,
		pq.Array(failed), sourcesJSON, report.StartedAt, report.FinishedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert load history: %w", err)
	}
	return nil
}

// RecentLoads returns the latest load records for appName, newest first.
func (s *HistoryStore) RecentLoads(ctx context.Context, appName string, limit int) ([]LoadRecord, error) {
	if limit <= 0 {
		limit = 10
	}

	rows, err := s.DB.QueryContext(ctx, `
		SELECT run_id, app_name, environment, remote_eligible, failed_sources, sources
		FROM settings_load_history
		WHERE app_name = $1
		ORDER BY started_at DESC
		LIMIT $2`, appName, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query load history: %w", err)
	}
	defer rows.Close()

	var records []LoadRecord
	for rows.Next() {
		var (
			rec         LoadRecord
			sourcesJSON []byte
		)
		if err := rows.Scan(&rec.RunID, &rec.AppName, &rec.Environment, &rec.RemoteEligible, pq.Array(&rec.FailedSources), &sourcesJSON); err != nil {
			return nil, fmt.Errorf("failed to scan load history: %w", err)
		}
		if err := json.Unmarshal(sourcesJSON, &rec.Sources); err != nil {
			return nil, fmt.Errorf("failed to decode sources: %w", err)
		}
		records = append(records, rec)
	}
	return records, rows.Err()
}
