package transport

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"

	"github.com/foxseedlab/meetingbridge/internal/transport"
)

var ErrUnsupportedScheme = errors.New("unsupported endpoint scheme")

// SchemeRouter picks the sender matching the endpoint's URL scheme.
type SchemeRouter struct {
	websocket transport.Sender
	http      transport.Sender
}

func NewSchemeRouter(ws, http transport.Sender) *SchemeRouter {
	return &SchemeRouter{websocket: ws, http: http}
}

func (r *SchemeRouter) Send(ctx context.Context, endpoint string, payload []byte) error {
	u, err := url.Parse(endpoint)
	if err != nil {
		return fmt.Errorf("parse endpoint: %w", err)
	}
	switch {
	case isWebSocketScheme(u.Scheme):
		return r.websocket.Send(ctx, endpoint, payload)
	case isHTTPScheme(u.Scheme):
		return r.http.Send(ctx, endpoint, payload)
	default:
		return fmt.Errorf("parse endpoint: %w: %q", ErrUnsupportedScheme, u.Scheme)
	}
}

func isWebSocketScheme(scheme string) bool {
	s := strings.ToLower(scheme)
	return s == "ws" || s == "wss"
}

func isHTTPScheme(scheme string) bool {
	s := strings.ToLower(scheme)
	return s == "http" || s == "https"
}
