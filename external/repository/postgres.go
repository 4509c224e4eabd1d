package repository

import (
	"context"

	"github.com/foxseedlab/meetingbridge/internal/repository"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// DB is the subset of pgxpool.Pool the journal needs.
type DB interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
}

type PostgresJournal struct {
	db DB
}

func NewPostgresJournal(db DB) repository.Journal {
	return &PostgresJournal{db: db}
}

// CreateSession upserts so that re-enabling with a known session id restarts it.
func (r *PostgresJournal) CreateSession(ctx context.Context, input repository.CreateSessionInput) error {
	_, err := r.db.Exec(ctx,
		`INSERT INTO bridge_sessions (id, endpoint, title, started_at, status)
		 VALUES ($1, $2, $3, $4, $5)
		 ON CONFLICT (id) DO UPDATE
		 SET endpoint = EXCLUDED.endpoint, title = EXCLUDED.title, started_at = EXCLUDED.started_at,
		     ended_at = NULL, status = EXCLUDED.status`,
		input.SessionID, input.Endpoint, input.Title, input.StartedAt, string(repository.SessionStatusRunning))
	return err
}

func (r *PostgresJournal) InsertSegment(ctx context.Context, input repository.InsertSegmentInput) error {
	_, err := r.db.Exec(ctx,
		`INSERT INTO bridge_segments (id, session_id, content, start_time_ms, end_time_ms, spoken_at)
		 VALUES ($1, $2, $3, $4, $5, $6)
		 ON CONFLICT (id) DO NOTHING`,
		input.SegmentID, input.SessionID, input.Content, int64(input.StartTimeMs), int64(input.EndTimeMs), input.SpokenAt)
	return err
}

func (r *PostgresJournal) CompleteSession(ctx context.Context, input repository.CompleteSessionInput) error {
	_, err := r.db.Exec(ctx,
		`UPDATE bridge_sessions SET status = $3, ended_at = $2 WHERE id = $1`,
		input.SessionID, input.EndedAt, string(repository.SessionStatusCompleted))
	return err
}

func (r *PostgresJournal) ListSegmentsBySessionID(ctx context.Context, sessionID string) ([]repository.TranscriptSegment, error) {
	rows, err := r.db.Query(ctx,
		`SELECT id, session_id, content, start_time_ms, end_time_ms, spoken_at, created_at
		 FROM bridge_segments WHERE session_id = $1 ORDER BY start_time_ms ASC, spoken_at ASC`,
		sessionID)
	if err != nil {
		return nil, err
	}
	return pgx.CollectRows(rows, scanSegment)
}

func scanSegment(row pgx.CollectableRow) (repository.TranscriptSegment, error) {
	var seg repository.TranscriptSegment
	var startMs, endMs int64
	if err := row.Scan(&seg.ID, &seg.SessionID, &seg.Content, &startMs, &endMs, &seg.SpokenAt, &seg.CreatedAt); err != nil {
		return seg, err
	}
	seg.StartTimeMs = uint64(startMs)
	seg.EndTimeMs = uint64(endMs)
	return seg, nil
}
