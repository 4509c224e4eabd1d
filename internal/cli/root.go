package cli

import (
	"github.com/foxseedlab/meetingbridge/internal/config"
	"github.com/foxseedlab/meetingbridge/pkg/logger"
	"github.com/samber/do/v2"
	"github.com/spf13/cobra"
)

type Dependencies struct {
	Config   *config.Config
	Logger   *logger.Logger
	Injector do.Injector
}

func NewRootCmd(deps *Dependencies) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "meetingbridge",
		Short:         "Stream live transcription to a meeting-management endpoint",
		Long:          "Forwards session lifecycle and transcription segments as JSON messages to a meeting-management server over WebSocket or HTTP.",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.AddCommand(NewStreamCmd(deps))
	rootCmd.AddCommand(NewListenCmd(deps))

	return rootCmd
}
