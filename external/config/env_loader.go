package config

import (
	"fmt"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/caarlos0/env/v11"
	internalconfig "github.com/foxseedlab/meetingbridge/internal/config"
)

type locatorConfig struct {
	ConfigFile string `env:"MEETING_BRIDGE_CONFIG"`
}

// Fields carry no envDefault so unset variables keep file or built-in values.
type envConfig struct {
	Env           string        `env:"ENV"`
	LogLevel      string        `env:"LOG_LEVEL"`
	LogFormat     string        `env:"LOG_FORMAT"`
	Endpoint      string        `env:"MEETING_BRIDGE_ENDPOINT"`
	SessionID     string        `env:"MEETING_BRIDGE_SESSION_ID"`
	SessionTitle  string        `env:"MEETING_BRIDGE_SESSION_TITLE"`
	DialTimeout   time.Duration `env:"MEETING_BRIDGE_DIAL_TIMEOUT"`
	SendTimeout   time.Duration `env:"MEETING_BRIDGE_SEND_TIMEOUT"`
	ShutdownGrace time.Duration `env:"MEETING_BRIDGE_SHUTDOWN_GRACE"`
	DatabaseURL   string        `env:"DATABASE_URL"`
	ListenAddr    string        `env:"LISTEN_ADDR"`
}

type fileConfig struct {
	Env           string `toml:"env"`
	LogLevel      string `toml:"log_level"`
	LogFormat     string `toml:"log_format"`
	Endpoint      string `toml:"endpoint"`
	SessionID     string `toml:"session_id"`
	SessionTitle  string `toml:"session_title"`
	DialTimeout   string `toml:"dial_timeout"`
	SendTimeout   string `toml:"send_timeout"`
	ShutdownGrace string `toml:"shutdown_grace"`
	DatabaseURL   string `toml:"database_url"`
	ListenAddr    string `toml:"listen_addr"`
}

// Load resolves configuration from built-in defaults, then the optional TOML
// file named by MEETING_BRIDGE_CONFIG, then environment variables.
func Load() (*internalconfig.Config, error) {
	return load(nil)
}

// load reads from environ when non-nil instead of the process environment.
func load(environ map[string]string) (*internalconfig.Config, error) {
	opts := env.Options{Environment: environ}

	var locator locatorConfig
	if err := env.ParseWithOptions(&locator, opts); err != nil {
		return nil, fmt.Errorf("environment variables are invalid: %w", err)
	}

	cfg := internalconfig.Default()
	if locator.ConfigFile != "" {
		if err := applyFile(cfg, locator.ConfigFile); err != nil {
			return nil, err
		}
	}

	raw := envConfig{
		Env:           cfg.Env,
		LogLevel:      cfg.LogLevel,
		LogFormat:     cfg.LogFormat,
		Endpoint:      cfg.Endpoint,
		SessionID:     cfg.SessionID,
		SessionTitle:  cfg.SessionTitle,
		DialTimeout:   cfg.DialTimeout,
		SendTimeout:   cfg.SendTimeout,
		ShutdownGrace: cfg.ShutdownGrace,
		DatabaseURL:   cfg.DatabaseURL,
		ListenAddr:    cfg.ListenAddr,
	}
	if err := env.ParseWithOptions(&raw, opts); err != nil {
		return nil, fmt.Errorf("environment variables are invalid: %w", err)
	}

	cfg = &internalconfig.Config{
		Env:           raw.Env,
		LogLevel:      raw.LogLevel,
		LogFormat:     raw.LogFormat,
		Endpoint:      raw.Endpoint,
		SessionID:     raw.SessionID,
		SessionTitle:  raw.SessionTitle,
		DialTimeout:   raw.DialTimeout,
		SendTimeout:   raw.SendTimeout,
		ShutdownGrace: raw.ShutdownGrace,
		DatabaseURL:   raw.DatabaseURL,
		ListenAddr:    raw.ListenAddr,
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func applyFile(cfg *internalconfig.Config, path string) error {
	var fc fileConfig
	if _, err := toml.DecodeFile(path, &fc); err != nil {
		return fmt.Errorf("config file %s: %w", path, err)
	}

	setString(&cfg.Env, fc.Env)
	setString(&cfg.LogLevel, fc.LogLevel)
	setString(&cfg.LogFormat, fc.LogFormat)
	setString(&cfg.Endpoint, fc.Endpoint)
	setString(&cfg.SessionID, fc.SessionID)
	setString(&cfg.SessionTitle, fc.SessionTitle)
	setString(&cfg.DatabaseURL, fc.DatabaseURL)
	setString(&cfg.ListenAddr, fc.ListenAddr)

	durations := []struct {
		key   string
		value string
		dst   *time.Duration
	}{
		{key: "dial_timeout", value: fc.DialTimeout, dst: &cfg.DialTimeout},
		{key: "send_timeout", value: fc.SendTimeout, dst: &cfg.SendTimeout},
		{key: "shutdown_grace", value: fc.ShutdownGrace, dst: &cfg.ShutdownGrace},
	}
	for _, d := range durations {
		if d.value == "" {
			continue
		}
		parsed, err := time.ParseDuration(d.value)
		if err != nil {
			return fmt.Errorf("config file %s: %s: %w", path, d.key, err)
		}
		*d.dst = parsed
	}
	return nil
}

func setString(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}
