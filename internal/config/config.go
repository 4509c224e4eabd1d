package config

import (
	"fmt"
	"net/url"
	"time"
)

type Config struct {
	Env           string
	LogLevel      string
	LogFormat     string
	Endpoint      string
	SessionID     string
	SessionTitle  string
	DialTimeout   time.Duration
	SendTimeout   time.Duration
	ShutdownGrace time.Duration
	DatabaseURL   string
	ListenAddr    string
}

func Default() *Config {
	return &Config{
		Env:           "production",
		LogLevel:      "info",
		LogFormat:     "json",
		DialTimeout:   10 * time.Second,
		SendTimeout:   15 * time.Second,
		ShutdownGrace: 5 * time.Second,
		ListenAddr:    ":8765",
	}
}

func (c *Config) Validate() error {
	switch c.LogLevel {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("LOG_LEVEL must be one of debug, info, warn, error, got %q", c.LogLevel)
	}
	switch c.LogFormat {
	case "json", "console":
	default:
		return fmt.Errorf("LOG_FORMAT must be json or console, got %q", c.LogFormat)
	}
	for _, d := range c.durationChecks() {
		if d.value <= 0 {
			return fmt.Errorf("%s must be positive, got %s", d.name, d.value)
		}
	}
	if c.Endpoint != "" {
		if err := ValidateEndpoint(c.Endpoint); err != nil {
			return fmt.Errorf("MEETING_BRIDGE_ENDPOINT is invalid: %w", err)
		}
	}
	if c.ListenAddr == "" {
		return fmt.Errorf("LISTEN_ADDR is required")
	}
	return nil
}

type durationField struct {
	name  string
	value time.Duration
}

func (c *Config) durationChecks() []durationField {
	return []durationField{
		{name: "MEETING_BRIDGE_DIAL_TIMEOUT", value: c.DialTimeout},
		{name: "MEETING_BRIDGE_SEND_TIMEOUT", value: c.SendTimeout},
		{name: "MEETING_BRIDGE_SHUTDOWN_GRACE", value: c.ShutdownGrace},
	}
}

func (c *Config) IsDevelopment() bool {
	return c.Env == "development"
}

// HasJournal reports whether segments should be persisted for full-text
// aggregation.
func (c *Config) HasJournal() bool {
	return c.DatabaseURL != ""
}

// ValidateEndpoint accepts the listener URL schemes the bridge can deliver to.
func ValidateEndpoint(endpoint string) error {
	u, err := url.Parse(endpoint)
	if err != nil {
		return err
	}
	switch u.Scheme {
	case "ws", "wss", "http", "https":
	default:
		return fmt.Errorf("unsupported scheme %q", u.Scheme)
	}
	if u.Host == "" {
		return fmt.Errorf("host is required")
	}
	return nil
}
