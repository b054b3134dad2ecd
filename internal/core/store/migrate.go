package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

var schemaStatements = []string{
	`CREATE TABLE IF NOT EXISTS transcript_cache (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		video_id TEXT NOT NULL,
		language_code TEXT NOT NULL,
		language_name TEXT,
		auto_generated INTEGER NOT NULL DEFAULT 0,
		entries_json TEXT NOT NULL,
		fetched_at INTEGER NOT NULL,
		expires_at INTEGER NOT NULL,
		UNIQUE(video_id, language_code)
	);`,
	`CREATE INDEX IF NOT EXISTS idx_transcript_cache_expires ON transcript_cache(expires_at);`,
	`CREATE INDEX IF NOT EXISTS idx_transcript_cache_video ON transcript_cache(video_id);`,
	`CREATE TABLE IF NOT EXISTS rate_limits (
		user_id TEXT PRIMARY KEY,
		request_count INTEGER NOT NULL DEFAULT 0,
		count_429 INTEGER NOT NULL DEFAULT 0,
		window_start INTEGER NOT NULL,
		last_429_at INTEGER
	);`,
	`CREATE TABLE IF NOT EXISTS summary_cache (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		video_id TEXT NOT NULL,
		kind TEXT NOT NULL,
		model TEXT NOT NULL,
		content TEXT NOT NULL,
		created_at INTEGER NOT NULL,
		expires_at INTEGER NOT NULL,
		UNIQUE(video_id, kind)
	);`,
	`CREATE INDEX IF NOT EXISTS idx_summary_cache_expires ON summary_cache(expires_at);`,
}

// Migrate ensures the required database tables exist.
func (s *Store) Migrate(ctx context.Context) error {
	if s == nil || s.DB == nil {
		return errors.New("store is not initialized")
	}

	if ctx == nil {
		ctx = context.Background()
	}

	for _, stmt := range schemaStatements {
		if _, err := s.DB.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("store migration failed: %w", err)
		}
	}

	if err := s.ensureColumn(ctx, "rate_limits", "count_429", "INTEGER NOT NULL DEFAULT 0"); err != nil {
		return err
	}

	return nil
}

func (s *Store) ensureColumn(ctx context.Context, table, column, columnDef string) error {
	rows, err := s.DB.QueryContext(ctx, fmt.Sprintf("PRAGMA table_info(%s)", table))
	if err != nil {
		return fmt.Errorf("inspect %s schema: %w", table, err)
	}
	defer rows.Close() // nolint:errcheck // best-effort cleanup on SQL rows

	for rows.Next() {
		var (
			cid     int
			name    string
			colType string
			notNull int
			dflt    sql.NullString
			pk      int
		)
		if err := rows.Scan(&cid, &name, &colType, &notNull, &dflt, &pk); err != nil {
			return fmt.Errorf("inspect %s columns: %w", table, err)
		}
		if name == column {
			return nil
		}
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("inspect %s columns: %w", table, err)
	}

	if _, err := s.DB.ExecContext(ctx, fmt.Sprintf("ALTER TABLE %s ADD COLUMN %s %s", table, column, columnDef)); err != nil {
		return fmt.Errorf("add %s.%s column: %w", table, column, err)
	}

	return nil
}
