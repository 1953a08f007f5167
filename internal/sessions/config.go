package sessions

import (
	"fmt"
	"os"
	"time"
)

// Config holds checklist session cache settings.
type Config struct {
	TTL             string `toml:"ttl"`
	CleanupInterval string `toml:"cleanup_interval"`
}

// Env maps config fields to environment variable names for override injection.
type Env struct {
	TTL             string
	CleanupInterval string
}

// TTLDuration returns TTL as a time.Duration.
func (c *Config) TTLDuration() time.Duration {
	d, _ := time.ParseDuration(c.TTL)
	return d
}

// CleanupIntervalDuration returns CleanupInterval as a time.Duration.
func (c *Config) CleanupIntervalDuration() time.Duration {
	d, _ := time.ParseDuration(c.CleanupInterval)
	return d
}

// Finalize applies defaults, environment variable overrides, and validation.
func (c *Config) Finalize(env *Env) error {
	c.loadDefaults()
	if env != nil {
		c.loadEnv(env)
	}
	return c.validate()
}

// Merge overwrites non-zero fields from overlay.
func (c *Config) Merge(overlay *Config) {
	if overlay.TTL != "" {
		c.TTL = overlay.TTL
	}
	if overlay.CleanupInterval != "" {
		c.CleanupInterval = overlay.CleanupInterval
	}
}

func (c *Config) loadDefaults() {
	if c.TTL == "" {
		c.TTL = "8h"
	}
	if c.CleanupInterval == "" {
		c.CleanupInterval = "10m"
	}
}

func (c *Config) loadEnv(env *Env) {
	if env.TTL != "" {
		if v := os.Getenv(env.TTL); v != "" {
			c.TTL = v
		}
	}
	if env.CleanupInterval != "" {
		if v := os.Getenv(env.CleanupInterval); v != "" {
			c.CleanupInterval = v
		}
	}
}

func (c *Config) validate() error {
	ttl, err := time.ParseDuration(c.TTL)
	if err != nil {
		return fmt.Errorf("invalid ttl: %w", err)
	}
	if ttl <= 0 {
		return fmt.Errorf("ttl must be positive")
	}
	cleanup, err := time.ParseDuration(c.CleanupInterval)
	if err != nil {
		return fmt.Errorf("invalid cleanup_interval: %w", err)
	}
	if cleanup <= 0 {
		return fmt.Errorf("cleanup_interval must be positive")
	}
	return nil
}
