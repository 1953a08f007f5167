package config

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
)

const (
	EnvInspectorLogLevel  = "INSPECTOR_LOG_LEVEL"
	EnvInspectorLogFormat = "INSPECTOR_LOG_FORMAT"
)

// LoggingConfig selects the slog level and handler. Format is "text" or "json".
type LoggingConfig struct {
	Level  string `toml:"level"`
	Format string `toml:"format"`
}

// Logger builds the process logger writing to w.
func (c *LoggingConfig) Logger(w io.Writer) *slog.Logger {
	opts := &slog.HandlerOptions{Level: c.level()}
	if c.Format == "json" {
		return slog.New(slog.NewJSONHandler(w, opts))
	}
	return slog.New(slog.NewTextHandler(w, opts))
}

// Finalize applies defaults, environment overrides, and validation.
func (c *LoggingConfig) Finalize() error {
	if c.Level == "" {
		c.Level = "info"
	}
	if c.Format == "" {
		c.Format = "text"
	}
	if v := os.Getenv(EnvInspectorLogLevel); v != "" {
		c.Level = v
	}
	if v := os.Getenv(EnvInspectorLogFormat); v != "" {
		c.Format = v
	}

	c.Level = strings.ToLower(strings.TrimSpace(c.Level))
	c.Format = strings.ToLower(strings.TrimSpace(c.Format))

	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(c.Level)); err != nil {
		return fmt.Errorf("invalid level: %w", err)
	}
	if c.Format != "text" && c.Format != "json" {
		return fmt.Errorf("invalid format %q: must be text or json", c.Format)
	}
	return nil
}

// Merge overwrites non-zero fields from overlay.
func (c *LoggingConfig) Merge(overlay *LoggingConfig) {
	if overlay.Level != "" {
		c.Level = overlay.Level
	}
	if overlay.Format != "" {
		c.Format = overlay.Format
	}
}

func (c *LoggingConfig) level() slog.Level {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(c.Level)); err != nil {
		return slog.LevelInfo
	}
	return lvl
}
