package transport

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
)

type receivedConn struct {
	frames  []string
	closeCD int
}

func newWebSocketServer(t *testing.T) (*httptest.Server, <-chan receivedConn) {
	t.Helper()
	results := make(chan receivedConn, 16)
	upgrader := websocket.Upgrader{}
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			t.Errorf("upgrade failed: %v", err)
			return
		}
		defer conn.Close()
		var rc receivedConn
		for {
			mt, data, err := conn.ReadMessage()
			if err != nil {
				var ce *websocket.CloseError
				if errors.As(err, &ce) {
					rc.closeCD = ce.Code
				}
				results <- rc
				return
			}
			if mt == websocket.TextMessage {
				rc.frames = append(rc.frames, string(data))
			}
		}
	}))
	t.Cleanup(server.Close)
	return server, results
}

func wsURL(httpURL string) string {
	return "ws" + strings.TrimPrefix(httpURL, "http")
}

func TestWebSocketSender_OneFramePerConnection(t *testing.T) {
	server, results := newWebSocketServer(t)
	sender := NewWebSocketSender(time.Second)

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	for _, payload := range []string{`{"n":1}`, `{"n":2}`} {
		if err := sender.Send(ctx, wsURL(server.URL), []byte(payload)); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	}

	for i := 0; i < 2; i++ {
		select {
		case rc := <-results:
			if len(rc.frames) != 1 {
				t.Fatalf("expected exactly one frame per connection, got %d", len(rc.frames))
			}
			if rc.closeCD != websocket.CloseNormalClosure {
				t.Fatalf("expected normal closure, got %d", rc.closeCD)
			}
		case <-time.After(2 * time.Second):
			t.Fatal("timed out waiting for server to observe connection")
		}
	}
}

func TestWebSocketSender_RejectsNonWebSocketScheme(t *testing.T) {
	err := NewWebSocketSender(time.Second).Send(context.Background(), "http://localhost", []byte("{}"))
	if !errors.Is(err, ErrUnsupportedScheme) {
		t.Fatalf("expected ErrUnsupportedScheme, got %v", err)
	}
}

func TestWebSocketSender_MalformedEndpoint(t *testing.T) {
	if err := NewWebSocketSender(time.Second).Send(context.Background(), "::bad", []byte("{}")); err == nil {
		t.Fatal("expected parse error")
	}
}

func TestWebSocketSender_HandshakeRejected(t *testing.T) {
	server := httptest.NewServer(http.NotFoundHandler())
	defer server.Close()

	err := NewWebSocketSender(time.Second).Send(context.Background(), wsURL(server.URL), []byte("{}"))
	if err == nil || !strings.Contains(err.Error(), "404") {
		t.Fatalf("expected handshake error mentioning 404, got %v", err)
	}
}

func TestWebSocketSender_Unreachable(t *testing.T) {
	server := httptest.NewServer(http.NotFoundHandler())
	url := wsURL(server.URL)
	server.Close()

	if err := NewWebSocketSender(time.Second).Send(context.Background(), url, []byte("{}")); err == nil {
		t.Fatal("expected dial error")
	}
}
