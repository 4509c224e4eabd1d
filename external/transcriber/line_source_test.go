package transcriber

import (
	"context"
	"errors"
	"io"
	"strings"
	"sync"
	"testing"
	"time"
)

type result struct {
	index   int
	text    string
	isFinal bool
}

type recordingReceiver struct {
	mu      sync.Mutex
	results []result
	errs    []error
}

func (r *recordingReceiver) OnResult(segmentIndex int, text string, isFinal bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.results = append(r.results, result{index: segmentIndex, text: text, isFinal: isFinal})
}

func (r *recordingReceiver) OnError(err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.errs = append(r.errs, err)
}

func TestLineSource_DeliversNonBlankLines(t *testing.T) {
	receiver := &recordingReceiver{}
	src := NewLineSource(strings.NewReader("hello\n\n  world  \n"), false)

	if err := src.Run(context.Background(), receiver); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(receiver.results) != 2 {
		t.Fatalf("expected two results, got %+v", receiver.results)
	}
	if receiver.results[0] != (result{index: 0, text: "hello", isFinal: true}) {
		t.Fatalf("unexpected first result: %+v", receiver.results[0])
	}
	if receiver.results[1] != (result{index: 1, text: "world", isFinal: true}) {
		t.Fatalf("unexpected second result: %+v", receiver.results[1])
	}
	if len(receiver.errs) != 0 {
		t.Fatalf("expected no errors, got %v", receiver.errs)
	}
}

func TestLineSource_PartialMode(t *testing.T) {
	receiver := &recordingReceiver{}
	if err := NewLineSource(strings.NewReader("draft"), true).Run(context.Background(), receiver); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(receiver.results) != 1 || receiver.results[0].isFinal {
		t.Fatalf("expected one partial result, got %+v", receiver.results)
	}
}

func TestLineSource_StopsOnCancel(t *testing.T) {
	pr, pw := io.Pipe()
	defer pw.Close()
	receiver := &recordingReceiver{}
	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan error, 1)
	go func() {
		done <- NewLineSource(pr, false).Run(ctx, receiver)
	}()
	if _, err := pw.Write([]byte("first\n")); err != nil {
		t.Fatalf("write failed: %v", err)
	}
	cancel()

	select {
	case err := <-done:
		if !errors.Is(err, context.Canceled) {
			t.Fatalf("expected context.Canceled, got %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("line source did not stop after cancel")
	}
}
