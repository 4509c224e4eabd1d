package cli

import (
	"fmt"
	"os/signal"
	"syscall"

	"github.com/foxseedlab/meetingbridge/external/listener"
	"github.com/foxseedlab/meetingbridge/internal/protocol"
	"github.com/foxseedlab/meetingbridge/pkg/logger"
	"github.com/spf13/cobra"
)

func NewListenCmd(deps *Dependencies) *cobra.Command {
	addr := deps.Config.ListenAddr

	cmd := &cobra.Command{
		Use:   "listen",
		Short: "Run a development listener that logs received messages",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			log := deps.Logger.Named("received")
			server := listener.NewServer(deps.Logger, logMessage(log))
			if err := server.ListenAndServe(ctx, addr); err != nil {
				return fmt.Errorf("listener stopped: %w", err)
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&addr, "addr", "a", addr, "Address to listen on")

	return cmd
}

func logMessage(log *logger.Logger) listener.Handler {
	return func(msg protocol.Message) {
		fields := []logger.Field{
			logger.String("type", string(msg.MessageType())),
			logger.String("session_id", msg.Session()),
		}
		switch m := msg.(type) {
		case *protocol.SessionStart:
			fields = append(fields, logger.String("start_time", m.StartTime))
			if m.Title != nil {
				fields = append(fields, logger.String("title", *m.Title))
			}
		case *protocol.Transcription:
			fields = append(fields,
				logger.String("text", m.Segment.Text),
				logger.Uint64("start_time_ms", m.Segment.StartTimeMs),
				logger.Bool("is_final", m.Segment.IsFinal))
		case *protocol.SessionEnd:
			fields = append(fields,
				logger.String("end_time", m.EndTime),
				logger.Int("full_text_chars", len(m.FullText)))
		}
		log.Info("meeting message", fields...)
	}
}
