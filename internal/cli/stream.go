package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os/signal"
	"syscall"

	transcriberimpl "github.com/foxseedlab/meetingbridge/external/transcriber"
	"github.com/foxseedlab/meetingbridge/internal/bridge"
	"github.com/foxseedlab/meetingbridge/internal/config"
	"github.com/foxseedlab/meetingbridge/internal/transcriber"
	"github.com/foxseedlab/meetingbridge/pkg/logger"
	"github.com/samber/do/v2"
	"github.com/spf13/cobra"
)

type StreamOptions struct {
	Endpoint  string
	SessionID string
	Title     string
	Partial   bool
}

func NewStreamCmd(deps *Dependencies) *cobra.Command {
	opts := &StreamOptions{
		Endpoint:  deps.Config.Endpoint,
		SessionID: deps.Config.SessionID,
		Title:     deps.Config.SessionTitle,
	}

	cmd := &cobra.Command{
		Use:   "stream",
		Short: "Stream stdin lines as transcription segments",
		Long:  "Opens a bridge session, forwards every non-blank stdin line as a transcription segment, and ends the session on EOF or Ctrl+C.",
		RunE: func(cmd *cobra.Command, args []string) error {
			if opts.Endpoint == "" {
				return errors.New("an endpoint is required (--endpoint or MEETING_BRIDGE_ENDPOINT)")
			}
			if err := config.ValidateEndpoint(opts.Endpoint); err != nil {
				return fmt.Errorf("invalid endpoint: %w", err)
			}

			b, err := do.Invoke[*bridge.Bridge](deps.Injector)
			if err != nil {
				return fmt.Errorf("resolving bridge: %w", err)
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			source := transcriberimpl.NewLineSource(cmd.InOrStdin(), opts.Partial)
			return runStream(ctx, b, source, opts, deps)
		},
	}

	cmd.Flags().StringVarP(&opts.Endpoint, "endpoint", "e", opts.Endpoint, "Listener URL (ws, wss, http or https)")
	cmd.Flags().StringVar(&opts.SessionID, "session-id", opts.SessionID, "Session id (generated when empty)")
	cmd.Flags().StringVarP(&opts.Title, "title", "t", opts.Title, "Meeting title sent with session start")
	cmd.Flags().BoolVar(&opts.Partial, "partial", false, "Report lines as non-final results")

	return cmd
}

func runStream(ctx context.Context, b *bridge.Bridge, source transcriber.Source, opts *StreamOptions, deps *Dependencies) error {
	log := deps.Logger.Named("stream")

	b.EnableWithTitle(opts.Endpoint, opts.SessionID, opts.Title)
	log.Info("streaming transcription", logger.String("session_id", b.SessionID()))

	runErr := source.Run(ctx, b.Receiver())
	b.Disable()

	waitCtx, cancel := context.WithTimeout(context.Background(), deps.Config.ShutdownGrace)
	defer cancel()
	if err := b.Wait(waitCtx); err != nil {
		log.Warn("pending emissions abandoned at shutdown", logger.Error(err))
	}

	if runErr != nil && !errors.Is(runErr, context.Canceled) && !errors.Is(runErr, io.EOF) {
		return fmt.Errorf("transcription source failed: %w", runErr)
	}
	return nil
}
