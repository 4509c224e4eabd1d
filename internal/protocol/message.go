package protocol

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"
)

// TimeLayout is used for every wall-clock field on the wire.
const TimeLayout = time.RFC3339Nano

type MessageType string

const (
	TypeSessionStart  MessageType = "session_start"
	TypeTranscription MessageType = "transcription"
	TypeSessionEnd    MessageType = "session_end"
)

var ErrUnknownMessageType = errors.New("unknown message type")

// Message is one outbound event. Every variant belongs to exactly one session.
type Message interface {
	MessageType() MessageType
	Session() string
}

type TranscriptionSegment struct {
	ID          string  `json:"id"`
	Text        string  `json:"text"`
	StartTimeMs uint64  `json:"start_time_ms"`
	EndTimeMs   uint64  `json:"end_time_ms"`
	SpeakerID   *string `json:"speaker_id"`
	IsFinal     bool    `json:"is_final"`
	Timestamp   string  `json:"timestamp"`
}

type SessionStart struct {
	Type      MessageType `json:"type"`
	SessionID string      `json:"session_id"`
	Title     *string     `json:"title"`
	StartTime string      `json:"start_time"`
}

type Transcription struct {
	Type      MessageType          `json:"type"`
	SessionID string               `json:"session_id"`
	Segment   TranscriptionSegment `json:"segment"`
}

type SessionEnd struct {
	Type      MessageType `json:"type"`
	SessionID string      `json:"session_id"`
	EndTime   string      `json:"end_time"`
	FullText  string      `json:"full_text"`
}

func NewSessionStart(sessionID, title string, startedAt time.Time) *SessionStart {
	return &SessionStart{
		Type:      TypeSessionStart,
		SessionID: sessionID,
		Title:     optional(title),
		StartTime: FormatTime(startedAt),
	}
}

func NewTranscription(sessionID string, segment TranscriptionSegment) *Transcription {
	return &Transcription{
		Type:      TypeTranscription,
		SessionID: sessionID,
		Segment:   segment,
	}
}

func NewSessionEnd(sessionID string, endedAt time.Time, fullText string) *SessionEnd {
	return &SessionEnd{
		Type:      TypeSessionEnd,
		SessionID: sessionID,
		EndTime:   FormatTime(endedAt),
		FullText:  fullText,
	}
}

func (m *SessionStart) MessageType() MessageType  { return TypeSessionStart }
func (m *SessionStart) Session() string           { return m.SessionID }
func (m *Transcription) MessageType() MessageType { return TypeTranscription }
func (m *Transcription) Session() string          { return m.SessionID }
func (m *SessionEnd) MessageType() MessageType    { return TypeSessionEnd }
func (m *SessionEnd) Session() string             { return m.SessionID }

func FormatTime(t time.Time) string {
	return t.UTC().Format(TimeLayout)
}

// Encode renders msg as the JSON text carried by a single frame. The type
// discriminant always reflects the concrete variant, even on hand-built values.
func Encode(msg Message) ([]byte, error) {
	switch m := msg.(type) {
	case *SessionStart:
		c := *m
		c.Type = TypeSessionStart
		return json.Marshal(c)
	case *Transcription:
		c := *m
		c.Type = TypeTranscription
		return json.Marshal(c)
	case *SessionEnd:
		c := *m
		c.Type = TypeSessionEnd
		return json.Marshal(c)
	case nil:
		return nil, fmt.Errorf("encode message: nil message")
	default:
		return nil, fmt.Errorf("encode message %T: %w", msg, ErrUnknownMessageType)
	}
}

// Decode parses one frame produced by Encode.
func Decode(data []byte) (Message, error) {
	var head struct {
		Type MessageType `json:"type"`
	}
	if err := json.Unmarshal(data, &head); err != nil {
		return nil, fmt.Errorf("decode message type: %w", err)
	}
	var msg Message
	switch head.Type {
	case TypeSessionStart:
		msg = &SessionStart{}
	case TypeTranscription:
		msg = &Transcription{}
	case TypeSessionEnd:
		msg = &SessionEnd{}
	default:
		return nil, fmt.Errorf("decode message %q: %w", head.Type, ErrUnknownMessageType)
	}
	if err := json.Unmarshal(data, msg); err != nil {
		return nil, fmt.Errorf("decode %s: %w", head.Type, err)
	}
	return msg, nil
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
