package transport

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/gorilla/websocket"
)

const closeFrameTimeout = time.Second

// WebSocketSender opens a new connection for every payload, writes it as a
// single text frame and closes the connection again. Nothing is pooled.
type WebSocketSender struct {
	dialer *websocket.Dialer
}

func NewWebSocketSender(handshakeTimeout time.Duration) *WebSocketSender {
	return &WebSocketSender{
		dialer: &websocket.Dialer{
			Proxy:            http.ProxyFromEnvironment,
			HandshakeTimeout: handshakeTimeout,
		},
	}
}

func (s *WebSocketSender) Send(ctx context.Context, endpoint string, payload []byte) error {
	u, err := url.Parse(endpoint)
	if err != nil {
		return fmt.Errorf("parse endpoint: %w", err)
	}
	if !isWebSocketScheme(u.Scheme) {
		return fmt.Errorf("parse endpoint: %w: %q", ErrUnsupportedScheme, u.Scheme)
	}

	conn, resp, err := s.dialer.DialContext(ctx, u.String(), nil)
	if resp != nil && resp.Body != nil {
		_ = resp.Body.Close()
	}
	if err != nil {
		if resp != nil {
			return fmt.Errorf("dial %s: handshake status %d: %w", u.Redacted(), resp.StatusCode, err)
		}
		return fmt.Errorf("dial %s: %w", u.Redacted(), err)
	}
	defer func() {
		_ = conn.Close()
	}()

	if deadline, ok := ctx.Deadline(); ok {
		_ = conn.SetWriteDeadline(deadline)
	}
	if err := conn.WriteMessage(websocket.TextMessage, payload); err != nil {
		return fmt.Errorf("write frame: %w", err)
	}
	closeMsg := websocket.FormatCloseMessage(websocket.CloseNormalClosure, "")
	if err := conn.WriteControl(websocket.CloseMessage, closeMsg, time.Now().Add(closeFrameTimeout)); err != nil {
		return fmt.Errorf("close: %w", err)
	}
	return nil
}
