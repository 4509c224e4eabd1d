package protocol

import (
	"encoding/json"
	"errors"
	"testing"
	"time"
)

func TestEncode_SessionStartWireShape(t *testing.T) {
	startedAt := time.Date(2026, 3, 1, 9, 30, 0, 0, time.UTC)
	b, err := Encode(NewSessionStart("abc", "", startedAt))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := `{"type":"session_start","session_id":"abc","title":null,"start_time":"2026-03-01T09:30:00Z"}`
	if string(b) != want {
		t.Fatalf("unexpected json:\n got %s\nwant %s", b, want)
	}
}

func TestEncode_TranscriptionWireFields(t *testing.T) {
	b, err := Encode(NewTranscription("abc", TranscriptionSegment{
		ID:          "seg-1",
		Text:        "hi",
		StartTimeMs: 500,
		EndTimeMs:   1500,
		IsFinal:     true,
		Timestamp:   "2026-03-01T09:30:00.5Z",
	}))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	var got map[string]any
	if err := json.Unmarshal(b, &got); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if got["type"] != "transcription" || got["session_id"] != "abc" {
		t.Fatalf("unexpected envelope: %s", b)
	}
	seg, ok := got["segment"].(map[string]any)
	if !ok {
		t.Fatalf("segment missing: %s", b)
	}
	for _, key := range []string{"id", "text", "start_time_ms", "end_time_ms", "speaker_id", "is_final", "timestamp"} {
		if _, ok := seg[key]; !ok {
			t.Fatalf("segment field %q missing: %s", key, b)
		}
	}
	if seg["speaker_id"] != nil {
		t.Fatalf("expected null speaker_id, got %v", seg["speaker_id"])
	}
	if seg["start_time_ms"].(float64) != 500 || seg["end_time_ms"].(float64) != 1500 {
		t.Fatalf("unexpected timing: %s", b)
	}
}

func TestEncode_SessionEndKeepsEmptyFullText(t *testing.T) {
	b, err := Encode(NewSessionEnd("abc", time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC), ""))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := `{"type":"session_end","session_id":"abc","end_time":"2026-03-01T10:00:00Z","full_text":""}`
	if string(b) != want {
		t.Fatalf("unexpected json:\n got %s\nwant %s", b, want)
	}
}

func TestEncode_FixesMissingDiscriminant(t *testing.T) {
	b, err := Encode(&SessionEnd{SessionID: "abc"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	msg, err := Decode(b)
	if err != nil {
		t.Fatalf("unexpected decode error: %v", err)
	}
	if msg.MessageType() != TypeSessionEnd {
		t.Fatalf("unexpected type: %s", msg.MessageType())
	}
}

func TestEncode_NilMessage(t *testing.T) {
	if _, err := Encode(nil); err == nil {
		t.Fatal("expected error for nil message")
	}
}

func TestDecode_ReturnsConcreteVariant(t *testing.T) {
	msg, err := Decode([]byte(`{"type":"transcription","session_id":"s1","segment":{"id":"x","text":"hello","start_time_ms":0,"end_time_ms":1000,"speaker_id":null,"is_final":false,"timestamp":"t"}}`))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	tr, ok := msg.(*Transcription)
	if !ok {
		t.Fatalf("expected *Transcription, got %T", msg)
	}
	if tr.Session() != "s1" || tr.Segment.Text != "hello" || tr.Segment.IsFinal {
		t.Fatalf("unexpected message: %+v", tr)
	}
}

func TestDecode_UnknownType(t *testing.T) {
	_, err := Decode([]byte(`{"type":"heartbeat"}`))
	if !errors.Is(err, ErrUnknownMessageType) {
		t.Fatalf("expected ErrUnknownMessageType, got %v", err)
	}
}
