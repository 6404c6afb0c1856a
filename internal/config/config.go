// Package config defines service configuration and its loading.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/okian/fisher/internal/domain/stats"
)

// maxDisplayDigits bounds display_digits to what a float64 can carry.
const maxDisplayDigits = 17

// Config contains process configuration.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`
	// LogFormat selects the log handler: text or json.
	LogFormat string `koanf:"log_format"`
	// Addr configures the HTTP listen address, e.g. ":9090".
	Addr string `koanf:"addr"`
	// MaxSessions caps concurrently open sessions.
	MaxSessions int `koanf:"max_sessions"`
	// SessionTTLSeconds evicts sessions idle for longer. Zero disables eviction.
	SessionTTLSeconds int `koanf:"session_ttl_seconds"`
	// DisplayDigits is the number of decimals in formatted results.
	DisplayDigits int `koanf:"display_digits"`
	// MaxSeriesIterations bounds the incomplete gamma series.
	MaxSeriesIterations int `koanf:"max_series_iterations"`
}

// New creates a Config populated with defaults.
func New() *Config {
	return &Config{
		LogLevel:            "info",
		LogFormat:           "text",
		Addr:                ":9090",
		MaxSessions:         10_000,
		SessionTTLSeconds:   3600,
		DisplayDigits:       3,
		MaxSeriesIterations: stats.DefaultMaxIterations,
	}
}

// SessionTTL returns SessionTTLSeconds as a duration.
func (c *Config) SessionTTL() time.Duration {
	return time.Duration(c.SessionTTLSeconds) * time.Second
}

// Validate checks value ranges.
func (c *Config) Validate() error {
	switch {
	case strings.TrimSpace(c.Addr) == "":
		return fmt.Errorf("%w: addr must not be empty", ErrInvalidConfig)
	case c.MaxSessions < 1:
		return fmt.Errorf("%w: max_sessions must be positive, got %d", ErrInvalidConfig, c.MaxSessions)
	case c.SessionTTLSeconds < 0:
		return fmt.Errorf("%w: session_ttl_seconds must not be negative, got %d", ErrInvalidConfig, c.SessionTTLSeconds)
	case c.DisplayDigits < 0 || c.DisplayDigits > maxDisplayDigits:
		return fmt.Errorf("%w: display_digits must be within [0, %d], got %d", ErrInvalidConfig, maxDisplayDigits, c.DisplayDigits)
	case c.MaxSeriesIterations < 1:
		return fmt.Errorf("%w: max_series_iterations must be positive, got %d", ErrInvalidConfig, c.MaxSeriesIterations)
	}
	switch strings.ToLower(c.LogFormat) {
	case "text", "json":
	default:
		return fmt.Errorf("%w: log_format must be text or json, got %q", ErrInvalidConfig, c.LogFormat)
	}
	return nil
}
