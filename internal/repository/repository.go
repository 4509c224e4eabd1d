package repository

import (
	"context"
	"strings"
	"time"
)

type CreateSessionInput struct {
	SessionID string
	Endpoint  string
	Title     string
	StartedAt time.Time
}

type CompleteSessionInput struct {
	SessionID string
	EndedAt   time.Time
}

type InsertSegmentInput struct {
	SegmentID   string
	SessionID   string
	Content     string
	StartTimeMs uint64
	EndTimeMs   uint64
	SpokenAt    time.Time
}

// Journal records what the bridge emitted so a session end can carry the
// aggregated transcript. Only final segments are inserted.
type Journal interface {
	CreateSession(ctx context.Context, input CreateSessionInput) error
	InsertSegment(ctx context.Context, input InsertSegmentInput) error
	CompleteSession(ctx context.Context, input CompleteSessionInput) error
	ListSegmentsBySessionID(ctx context.Context, sessionID string) ([]TranscriptSegment, error)
}

// NopJournal keeps nothing, so session ends carry an empty full text.
type NopJournal struct{}

func (NopJournal) CreateSession(context.Context, CreateSessionInput) error     { return nil }
func (NopJournal) InsertSegment(context.Context, InsertSegmentInput) error     { return nil }
func (NopJournal) CompleteSession(context.Context, CompleteSessionInput) error { return nil }
func (NopJournal) ListSegmentsBySessionID(context.Context, string) ([]TranscriptSegment, error) {
	return nil, nil
}

// JoinTranscript concatenates segment contents in the given order, one per line.
func JoinTranscript(segments []TranscriptSegment) string {
	lines := make([]string, 0, len(segments))
	for _, seg := range segments {
		if strings.TrimSpace(seg.Content) == "" {
			continue
		}
		lines = append(lines, seg.Content)
	}
	return strings.Join(lines, "\n")
}
