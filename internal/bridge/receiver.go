package bridge

import (
	"context"
	"errors"

	"github.com/foxseedlab/meetingbridge/internal/transcriber"
	"github.com/foxseedlab/meetingbridge/pkg/logger"
)

// Receiver adapts the bridge to an upstream engine's result callbacks.
func (b *Bridge) Receiver() transcriber.ResultReceiver {
	return &resultReceiver{bridge: b}
}

type resultReceiver struct {
	bridge *Bridge
}

func (r *resultReceiver) OnResult(_ int, text string, isFinal bool) {
	r.bridge.SendTranscription(text, isFinal)
}

func (r *resultReceiver) OnError(err error) {
	if errors.Is(err, context.Canceled) {
		r.bridge.log.Info("transcription source canceled", logger.String("session_id", r.bridge.SessionID()))
		return
	}
	r.bridge.log.Warn("transcription source error", logger.Error(err), logger.String("session_id", r.bridge.SessionID()))
}
