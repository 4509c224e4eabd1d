package transport

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestHTTPSender_Success(t *testing.T) {
	var gotBody string
	var gotContentType string

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("unexpected method: %s", r.Method)
		}
		gotContentType = r.Header.Get("Content-Type")
		content, err := io.ReadAll(r.Body)
		if err != nil {
			t.Errorf("failed to read body: %v", err)
		}
		gotBody = string(content)
		w.WriteHeader(http.StatusAccepted)
	}))
	defer server.Close()

	sender := NewHTTPSender(nil)
	if err := sender.Send(context.Background(), server.URL, []byte(`{"type":"session_start"}`)); err != nil {
		t.Fatalf("expected nil error, got %v", err)
	}
	if gotContentType != "application/json" {
		t.Fatalf("unexpected content type: %s", gotContentType)
	}
	if gotBody != `{"type":"session_start"}` {
		t.Fatalf("unexpected body: %s", gotBody)
	}
}

func TestHTTPSender_Non2xx(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
	}))
	defer server.Close()

	sender := NewHTTPSender(server.Client())
	if err := sender.Send(context.Background(), server.URL, []byte("{}")); err == nil {
		t.Fatal("expected error for non-2xx response")
	}
}

func TestHTTPSender_Unreachable(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := server.URL
	server.Close()

	if err := NewHTTPSender(nil).Send(context.Background(), url, []byte("{}")); err == nil {
		t.Fatal("expected error for closed listener")
	}
}
