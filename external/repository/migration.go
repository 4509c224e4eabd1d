package repository

import (
	"context"
	"strings"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Segments may arrive before their session row because every write happens
// in its own detached task, so there is no foreign key between the tables.
var migrationStatements = []string{
	`DO $$ BEGIN CREATE TYPE bridge_session_status AS ENUM ('running', 'completed'); EXCEPTION WHEN duplicate_object THEN NULL; END $$`,
	`CREATE TABLE IF NOT EXISTS bridge_sessions (
		id TEXT PRIMARY KEY,
		endpoint TEXT NOT NULL,
		title TEXT NOT NULL DEFAULT '',
		started_at TIMESTAMPTZ NOT NULL,
		ended_at TIMESTAMPTZ,
		status bridge_session_status NOT NULL DEFAULT 'running'
	)`,
	`CREATE TABLE IF NOT EXISTS bridge_segments (
		id TEXT PRIMARY KEY,
		session_id TEXT NOT NULL,
		content TEXT NOT NULL,
		start_time_ms BIGINT NOT NULL,
		end_time_ms BIGINT NOT NULL,
		spoken_at TIMESTAMPTZ NOT NULL,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE INDEX IF NOT EXISTS idx_bridge_segments_session ON bridge_segments (session_id, start_time_ms)`,
}

func RunMigration(ctx context.Context, pool *pgxpool.Pool) error {
	for _, s := range migrationStatements {
		stmt := strings.TrimSpace(s)
		if stmt == "" {
			continue
		}
		if _, err := pool.Exec(ctx, stmt); err != nil {
			return err
		}
	}
	return nil
}
