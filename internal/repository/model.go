package repository

import "time"

// SessionStatus mirrors the bridge_session_status enum.
type SessionStatus string

const (
	SessionStatusRunning   SessionStatus = "running"
	SessionStatusCompleted SessionStatus = "completed"
)

type TranscriptSegment struct {
	ID          string
	SessionID   string
	Content     string
	StartTimeMs uint64
	EndTimeMs   uint64
	SpokenAt    time.Time
	CreatedAt   time.Time
}
