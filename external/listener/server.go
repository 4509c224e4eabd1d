package listener

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/foxseedlab/meetingbridge/internal/protocol"
	"github.com/foxseedlab/meetingbridge/pkg/logger"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/gorilla/websocket"
)

const (
	maxMessageBytes   = 1 << 20
	readHeaderTimeout = 5 * time.Second
	shutdownTimeout   = 5 * time.Second
)

// Handler receives every decoded message. It may be called concurrently.
type Handler func(msg protocol.Message)

// Server is a minimal meeting-management endpoint for local development. It
// accepts the bridge's one-frame websocket connections on /ws and JSON posts
// on /ingest.
type Server struct {
	log      *logger.Logger
	handler  Handler
	upgrader websocket.Upgrader
}

func NewServer(log *logger.Logger, handler Handler) *Server {
	if log == nil {
		log = logger.NewNop()
	}
	return &Server{
		log:     log.Named("listener"),
		handler: handler,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(*http.Request) bool { return true },
		},
	}
}

func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	r.Get("/ws", s.handleWebSocket)
	r.Post("/ingest", s.handleIngest)
	return r
}

// ListenAndServe blocks until ctx is done or the server fails.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Routes(),
		ReadHeaderTimeout: readHeaderTimeout,
	}
	errc := make(chan error, 1)
	go func() {
		s.log.Info("listener started", logger.String("addr", addr))
		errc <- srv.ListenAndServe()
	}()

	select {
	case err := <-errc:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("listen on %s: %w", addr, err)
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		s.log.Info("listener shutting down")
		return srv.Shutdown(shutdownCtx)
	}
}

func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.log.Warn("websocket upgrade failed", logger.Error(err), logger.String("remote_addr", r.RemoteAddr))
		return
	}
	defer func() {
		_ = conn.Close()
	}()
	conn.SetReadLimit(maxMessageBytes)

	for {
		mt, data, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				s.log.Debug("bridge connection closed", logger.String("remote_addr", r.RemoteAddr))
				return
			}
			s.log.Warn("bridge connection dropped", logger.Error(err), logger.String("remote_addr", r.RemoteAddr))
			return
		}
		if mt != websocket.TextMessage {
			s.log.Warn("ignoring non-text frame", logger.Int("message_type", mt))
			continue
		}
		s.dispatch(data)
	}
}

func (s *Server) handleIngest(w http.ResponseWriter, r *http.Request) {
	data, err := io.ReadAll(io.LimitReader(r.Body, maxMessageBytes))
	if err != nil {
		http.Error(w, "failed to read body", http.StatusBadRequest)
		return
	}
	if !s.dispatch(data) {
		http.Error(w, "invalid meeting message", http.StatusBadRequest)
		return
	}
	w.WriteHeader(http.StatusAccepted)
}

func (s *Server) dispatch(data []byte) bool {
	msg, err := protocol.Decode(data)
	if err != nil {
		s.log.Warn("failed to decode meeting message", logger.Error(err), logger.Int("payload_bytes", len(data)))
		return false
	}
	if s.handler != nil {
		s.handler(msg)
	}
	return true
}
