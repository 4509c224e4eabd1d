package main

import (
	"fmt"
	"os"

	configloader "github.com/foxseedlab/meetingbridge/external/config"
	repositoryimpl "github.com/foxseedlab/meetingbridge/external/repository"
	transportimpl "github.com/foxseedlab/meetingbridge/external/transport"
	"github.com/foxseedlab/meetingbridge/internal/bridge"
	"github.com/foxseedlab/meetingbridge/internal/cli"
	"github.com/foxseedlab/meetingbridge/internal/config"
	"github.com/foxseedlab/meetingbridge/pkg/logger"
	"github.com/samber/do/v2"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := configloader.Load()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	log, err := initLogger(cfg)
	if err != nil {
		return fmt.Errorf("initializing logger: %w", err)
	}
	defer func() {
		_ = log.Sync()
	}()
	log.Debug("configuration loaded", logger.String("env", cfg.Env), logger.Bool("journal", cfg.HasJournal()))

	injector := setupDI(cfg, log)
	defer func() {
		_ = injector.Shutdown()
	}()

	deps := &cli.Dependencies{
		Config:   cfg,
		Logger:   log,
		Injector: injector,
	}
	return cli.NewRootCmd(deps).Execute()
}

// initLogger writes to stderr so stdout stays free for piped input tools.
func initLogger(cfg *config.Config) (*logger.Logger, error) {
	level := cfg.LogLevel
	if cfg.IsDevelopment() && level == "info" {
		level = "debug"
	}
	return logger.New(logger.Config{Level: level, Format: cfg.LogFormat, Output: os.Stderr})
}

func setupDI(cfg *config.Config, log *logger.Logger) do.Injector {
	injector := do.New()

	do.ProvideValue(injector, cfg)
	do.ProvideValue(injector, log)
	repositoryimpl.RegisterDI(injector)
	transportimpl.RegisterDI(injector)
	bridge.RegisterDI(injector)

	return injector
}
