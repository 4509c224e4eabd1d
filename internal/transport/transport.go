package transport

import "context"

// Sender delivers one already-encoded payload to endpoint. Implementations
// open a fresh connection per call and release it before returning.
type Sender interface {
	Send(ctx context.Context, endpoint string, payload []byte) error
}
