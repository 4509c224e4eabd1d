package transcriber

import (
	"bufio"
	"context"
	"io"
	"strings"

	"github.com/foxseedlab/meetingbridge/internal/transcriber"
)

const maxLineBytes = 1 << 20

// LineSource treats every non-blank line of its reader as one recognition
// result. It lets a local engine pipe its output into the bridge.
type LineSource struct {
	r       io.Reader
	partial bool
}

// NewLineSource reports lines as final results unless partial is set.
func NewLineSource(r io.Reader, partial bool) *LineSource {
	return &LineSource{r: r, partial: partial}
}

// Run returns nil once the reader is exhausted.
func (s *LineSource) Run(ctx context.Context, receiver transcriber.ResultReceiver) error {
	lines := make(chan string)
	errc := make(chan error, 1)
	go func() {
		defer close(lines)
		scanner := bufio.NewScanner(s.r)
		scanner.Buffer(make([]byte, 0, 64*1024), maxLineBytes)
		for scanner.Scan() {
			select {
			case lines <- scanner.Text():
			case <-ctx.Done():
				errc <- ctx.Err()
				return
			}
		}
		errc <- scanner.Err()
	}()

	index := 0
	for {
		select {
		case <-ctx.Done():
			receiver.OnError(ctx.Err())
			return ctx.Err()
		case line, ok := <-lines:
			if !ok {
				err := <-errc
				if err != nil {
					receiver.OnError(err)
				}
				return err
			}
			text := strings.TrimSpace(line)
			if text == "" {
				continue
			}
			receiver.OnResult(index, text, !s.partial)
			index++
		}
	}
}
