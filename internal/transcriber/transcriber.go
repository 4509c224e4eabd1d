package transcriber

import "context"

// ResultReceiver is implemented by whatever consumes an engine's output.
// segmentIndex is the engine's own counter and may repeat for interim results.
type ResultReceiver interface {
	OnResult(segmentIndex int, text string, isFinal bool)
	OnError(err error)
}

// Source is an upstream engine that pushes results until ctx is done or its
// input is exhausted.
type Source interface {
	Run(ctx context.Context, receiver ResultReceiver) error
}
