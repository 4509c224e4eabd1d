package bridge

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/foxseedlab/meetingbridge/internal/protocol"
	"github.com/foxseedlab/meetingbridge/internal/repository"
	"github.com/foxseedlab/meetingbridge/internal/transport"
	"github.com/foxseedlab/meetingbridge/pkg/logger"
	"github.com/google/uuid"
	"go.uber.org/zap/zapcore"
)

const (
	// Upstream engines do not report segment boundaries, so every segment is
	// assumed to last one second. Consumers rely on this value.
	placeholderSegmentDurationMs = 1000

	defaultSendTimeout = 15 * time.Second
)

type Options struct {
	// SendTimeout bounds one detached emission including journal work.
	SendTimeout time.Duration
}

// Bridge streams transcription events for the active meeting session to an
// external listener. Every emission runs as its own detached goroutine:
// callers never wait on the network and never see delivery errors, and the
// order in which the listener observes messages is not guaranteed.
type Bridge struct {
	sender      transport.Sender
	journal     repository.Journal
	log         *logger.Logger
	sendTimeout time.Duration
	now         func() time.Time
	newID       func() string

	enabled atomic.Bool

	mu        sync.Mutex
	endpoint  string
	sessionID string
	title     string
	startedAt time.Time
	// segmentWrites counts final segments of the active session whose journal
	// write has not finished yet.
	segmentWrites *taskTracker

	inflight taskTracker
}

func New(sender transport.Sender, journal repository.Journal, log *logger.Logger, opts Options) *Bridge {
	if journal == nil {
		journal = repository.NopJournal{}
	}
	if log == nil {
		log = logger.NewNop()
	}
	sendTimeout := opts.SendTimeout
	if sendTimeout <= 0 {
		sendTimeout = defaultSendTimeout
	}
	return &Bridge{
		sender:      sender,
		journal:     journal,
		log:         log.Named("bridge"),
		sendTimeout: sendTimeout,
		now:         time.Now,
		newID:       uuid.NewString,
	}
}

func (b *Bridge) IsEnabled() bool {
	return b.enabled.Load()
}

// SessionID returns the active session id, or "" while disabled.
func (b *Bridge) SessionID() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.sessionID
}

// Enable arms the bridge for endpoint. An empty sessionID asks for a freshly
// generated one. Enabling an already enabled bridge replaces the session.
func (b *Bridge) Enable(endpoint, sessionID string) {
	b.EnableWithTitle(endpoint, sessionID, "")
}

func (b *Bridge) EnableWithTitle(endpoint, sessionID, title string) {
	if sessionID == "" {
		sessionID = b.newID()
	}
	startedAt := b.now()

	b.mu.Lock()
	previous := b.sessionID
	b.endpoint = endpoint
	b.sessionID = sessionID
	b.title = title
	b.startedAt = startedAt
	b.segmentWrites = &taskTracker{}
	b.enabled.Store(true)
	b.mu.Unlock()

	if previous != "" {
		b.log.Warn("meeting bridge re-enabled; previous session replaced without session end",
			logger.String("previous_session_id", previous),
			logger.String("session_id", sessionID))
	}
	b.log.Info("meeting bridge enabled", logger.String("session_id", sessionID), logger.String("endpoint", endpoint))

	msg := protocol.NewSessionStart(sessionID, title, startedAt)
	b.spawn(func(ctx context.Context) {
		b.deliver(ctx, endpoint, msg)
		if err := b.journal.CreateSession(ctx, repository.CreateSessionInput{
			SessionID: sessionID,
			Endpoint:  endpoint,
			Title:     title,
			StartedAt: startedAt,
		}); err != nil {
			b.log.Warn("failed to journal session start", logger.Error(err), logger.String("session_id", sessionID))
		}
	})
}

// Disable ends the active session. It is a no-op while already disabled.
func (b *Bridge) Disable() {
	if !b.enabled.Load() {
		return
	}

	b.mu.Lock()
	if !b.enabled.Load() {
		b.mu.Unlock()
		return
	}
	endpoint := b.endpoint
	sessionID := b.sessionID
	b.endpoint = ""
	b.sessionID = ""
	b.title = ""
	b.startedAt = time.Time{}
	segmentWrites := b.segmentWrites
	b.segmentWrites = nil
	b.enabled.Store(false)
	b.mu.Unlock()

	endedAt := b.now()
	b.log.Info("meeting bridge disabled", logger.String("session_id", sessionID))

	b.spawn(func(ctx context.Context) {
		if err := segmentWrites.wait(ctx); err != nil {
			b.log.Warn("gave up waiting for journaled segments", logger.Error(err), logger.String("session_id", sessionID))
		}
		fullText := b.aggregateTranscript(ctx, sessionID)
		b.deliver(ctx, endpoint, protocol.NewSessionEnd(sessionID, endedAt, fullText))
		if err := b.journal.CompleteSession(ctx, repository.CompleteSessionInput{
			SessionID: sessionID,
			EndedAt:   endedAt,
		}); err != nil {
			b.log.Warn("failed to journal session end", logger.Error(err), logger.String("session_id", sessionID))
		}
	})
}

// SendTranscription forwards one interim or final result of the upstream
// engine. Empty text and calls while disabled are dropped.
func (b *Bridge) SendTranscription(text string, isFinal bool) {
	if text == "" || !b.enabled.Load() {
		return
	}

	b.mu.Lock()
	endpoint := b.endpoint
	sessionID := b.sessionID
	startedAt := b.startedAt
	segmentWrites := b.segmentWrites
	if endpoint == "" || sessionID == "" {
		b.mu.Unlock()
		return
	}
	// Registered under the lock so Disable of this session cannot miss it.
	if isFinal {
		segmentWrites.add()
	}
	b.mu.Unlock()

	now := b.now()
	var startMs uint64
	if !startedAt.IsZero() {
		if elapsed := now.Sub(startedAt); elapsed > 0 {
			startMs = uint64(elapsed.Milliseconds())
		}
	}
	segment := protocol.TranscriptionSegment{
		ID:          b.newID(),
		Text:        text,
		StartTimeMs: startMs,
		EndTimeMs:   startMs + placeholderSegmentDurationMs,
		IsFinal:     isFinal,
		Timestamp:   protocol.FormatTime(now),
	}
	msg := protocol.NewTranscription(sessionID, segment)

	b.spawn(func(ctx context.Context) {
		if isFinal {
			b.journalSegment(ctx, sessionID, segment, now)
			segmentWrites.done()
		}
		b.deliver(ctx, endpoint, msg)
	})
}

// Wait blocks until every emission started so far has finished or ctx is
// done. It does not cancel anything. Emissions started while it waits may
// or may not be covered, so call it once producers have stopped.
func (b *Bridge) Wait(ctx context.Context) error {
	return b.inflight.wait(ctx)
}

func (b *Bridge) spawn(task func(ctx context.Context)) {
	b.inflight.add()
	go func() {
		defer b.inflight.done()
		ctx, cancel := context.WithTimeout(context.Background(), b.sendTimeout)
		defer cancel()
		task(ctx)
	}()
}

func (b *Bridge) deliver(ctx context.Context, endpoint string, msg protocol.Message) {
	level := failureLevel(msg)
	payload, err := protocol.Encode(msg)
	if err != nil {
		b.log.Log(level, "failed to encode meeting message",
			logger.Error(err),
			logger.String("type", string(msg.MessageType())),
			logger.String("session_id", msg.Session()))
		return
	}
	if err := b.sender.Send(ctx, endpoint, payload); err != nil {
		b.log.Log(level, "failed to send meeting message",
			logger.Error(err),
			logger.String("type", string(msg.MessageType())),
			logger.String("session_id", msg.Session()),
			logger.String("endpoint", endpoint))
		return
	}
	b.log.Debug("meeting message sent",
		logger.String("type", string(msg.MessageType())),
		logger.String("session_id", msg.Session()),
		logger.Int("payload_bytes", len(payload)))
}

func (b *Bridge) journalSegment(ctx context.Context, sessionID string, segment protocol.TranscriptionSegment, spokenAt time.Time) {
	if err := b.journal.InsertSegment(ctx, repository.InsertSegmentInput{
		SegmentID:   segment.ID,
		SessionID:   sessionID,
		Content:     segment.Text,
		StartTimeMs: segment.StartTimeMs,
		EndTimeMs:   segment.EndTimeMs,
		SpokenAt:    spokenAt,
	}); err != nil {
		b.log.Debug("failed to journal segment", logger.Error(err), logger.String("session_id", sessionID))
	}
}

func (b *Bridge) aggregateTranscript(ctx context.Context, sessionID string) string {
	segments, err := b.journal.ListSegmentsBySessionID(ctx, sessionID)
	if err != nil {
		b.log.Warn("failed to list journaled segments; sending empty full text", logger.Error(err), logger.String("session_id", sessionID))
		return ""
	}
	return repository.JoinTranscript(segments)
}

// Session boundaries are rare and worth a warning; segments are frequent and
// individually expendable.
func failureLevel(msg protocol.Message) zapcore.Level {
	if msg.MessageType() == protocol.TypeTranscription {
		return zapcore.DebugLevel
	}
	return zapcore.WarnLevel
}
