package config

import (
	"bytes"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"time"

	"github.com/pelletier/go-toml/v2"

	"github.com/JaimeStill/inspector/internal/sessions"
	"github.com/JaimeStill/inspector/pkg/database"
	"github.com/JaimeStill/inspector/pkg/mail"
	"github.com/JaimeStill/inspector/pkg/storage"
)

const (
	BaseConfigFile       = "config.toml"
	OverlayConfigPattern = "config.%s.toml"

	EnvInspectorEnv             = "INSPECTOR_ENV"
	EnvInspectorShutdownTimeout = "INSPECTOR_SHUTDOWN_TIMEOUT"
	EnvInspectorVersion         = "INSPECTOR_VERSION"
)

var databaseEnv = &database.Env{
	Host:            "INSPECTOR_DB_HOST",
	Port:            "INSPECTOR_DB_PORT",
	Name:            "INSPECTOR_DB_NAME",
	User:            "INSPECTOR_DB_USER",
	Password:        "INSPECTOR_DB_PASSWORD",
	SSLMode:         "INSPECTOR_DB_SSL_MODE",
	MaxOpenConns:    "INSPECTOR_DB_MAX_OPEN_CONNS",
	MaxIdleConns:    "INSPECTOR_DB_MAX_IDLE_CONNS",
	ConnMaxLifetime: "INSPECTOR_DB_CONN_MAX_LIFETIME",
	ConnTimeout:     "INSPECTOR_DB_CONN_TIMEOUT",
	QueryTimeout:    "INSPECTOR_DB_QUERY_TIMEOUT",
}

var storageEnv = &storage.Env{
	ContainerName:    "INSPECTOR_STORAGE_CONTAINER_NAME",
	ConnectionString: "INSPECTOR_STORAGE_CONNECTION_STRING",
	BlockSize:        "INSPECTOR_STORAGE_BLOCK_SIZE",
	Concurrency:      "INSPECTOR_STORAGE_CONCURRENCY",
}

var mailEnv = &mail.Env{
	URL:        "INSPECTOR_MAIL_URL",
	From:       "INSPECTOR_MAIL_FROM",
	Recipients: "INSPECTOR_MAIL_RECIPIENTS",
	Subject:    "INSPECTOR_MAIL_SUBJECT",
	Timeout:    "INSPECTOR_MAIL_TIMEOUT",
}

var sessionsEnv = &sessions.Env{
	TTL:             "INSPECTOR_SESSION_TTL",
	CleanupInterval: "INSPECTOR_SESSION_CLEANUP_INTERVAL",
}

// Config is the root configuration for the inspector service.
type Config struct {
	Server          ServerConfig    `toml:"server"`
	Logging         LoggingConfig   `toml:"logging"`
	Database        database.Config `toml:"database"`
	Storage         storage.Config  `toml:"storage"`
	Mail            mail.Config     `toml:"mail"`
	Sessions        sessions.Config `toml:"sessions"`
	API             APIConfig       `toml:"api"`
	ShutdownTimeout string          `toml:"shutdown_timeout"`
	Version         string          `toml:"version"`
}

// Env returns the INSPECTOR_ENV value, defaulting to "local".
func (c *Config) Env() string {
	if env := os.Getenv(EnvInspectorEnv); env != "" {
		return env
	}
	return "local"
}

// ShutdownTimeoutDuration returns ShutdownTimeout as a time.Duration.
func (c *Config) ShutdownTimeoutDuration() time.Duration {
	d, _ := time.ParseDuration(c.ShutdownTimeout)
	return d
}

// Load layers config.toml (when present) under config.<INSPECTOR_ENV>.toml
// (when present) and finalizes the result. Unknown keys in either file are
// rejected so a misspelled setting fails startup instead of being ignored.
func Load() (*Config, error) {
	cfg := &Config{}

	for _, path := range []string{BaseConfigFile, overlayPath()} {
		layer, err := load(path)
		if err != nil {
			return nil, err
		}
		if layer != nil {
			cfg.Merge(layer)
		}
	}

	if err := cfg.Finalize(); err != nil {
		return nil, fmt.Errorf("finalize config: %w", err)
	}
	return cfg, nil
}

// Merge overwrites non-zero fields from overlay across all sections.
func (c *Config) Merge(overlay *Config) {
	if overlay.ShutdownTimeout != "" {
		c.ShutdownTimeout = overlay.ShutdownTimeout
	}
	if overlay.Version != "" {
		c.Version = overlay.Version
	}
	c.Server.Merge(&overlay.Server)
	c.Logging.Merge(&overlay.Logging)
	c.Database.Merge(&overlay.Database)
	c.Storage.Merge(&overlay.Storage)
	c.Mail.Merge(&overlay.Mail)
	c.Sessions.Merge(&overlay.Sessions)
	c.API.Merge(&overlay.API)
}

// Finalize settles the root values, then each section in turn. The first
// section error is returned prefixed with the section name.
func (c *Config) Finalize() error {
	if c.ShutdownTimeout == "" {
		c.ShutdownTimeout = "30s"
	}
	if c.Version == "" {
		c.Version = "0.1.0"
	}
	if v := os.Getenv(EnvInspectorShutdownTimeout); v != "" {
		c.ShutdownTimeout = v
	}
	if v := os.Getenv(EnvInspectorVersion); v != "" {
		c.Version = v
	}
	if d, err := time.ParseDuration(c.ShutdownTimeout); err != nil || d <= 0 {
		return fmt.Errorf("invalid shutdown_timeout %q", c.ShutdownTimeout)
	}

	sections := []struct {
		name     string
		finalize func() error
	}{
		{"server", c.Server.Finalize},
		{"logging", c.Logging.Finalize},
		{"database", func() error { return c.Database.Finalize(databaseEnv) }},
		{"storage", func() error { return c.Storage.Finalize(storageEnv) }},
		{"mail", func() error { return c.Mail.Finalize(mailEnv) }},
		{"sessions", func() error { return c.Sessions.Finalize(sessionsEnv) }},
		{"api", c.API.Finalize},
	}
	for _, s := range sections {
		if err := s.finalize(); err != nil {
			return fmt.Errorf("%s: %w", s.name, err)
		}
	}
	return nil
}

// load decodes path strictly. A blank path or a missing file yields nil.
func load(path string) (*Config, error) {
	if path == "" {
		return nil, nil
	}
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}

	var cfg Config
	dec := toml.NewDecoder(bytes.NewReader(data)).DisallowUnknownFields()
	if err := dec.Decode(&cfg); err != nil {
		var strict *toml.StrictMissingError
		if errors.As(err, &strict) {
			return nil, fmt.Errorf("parse %s: %s", path, strict.String())
		}
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return &cfg, nil
}

func overlayPath() string {
	if env := os.Getenv(EnvInspectorEnv); env != "" {
		return fmt.Sprintf(OverlayConfigPattern, env)
	}
	return ""
}
