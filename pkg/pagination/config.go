// Package pagination provides types and utilities for paginated data queries.
package pagination

import (
	"fmt"
	"os"
	"strconv"
)

// Config bounds list queries. MaxExportRows caps unpaged bulk reads such as
// spreadsheet exports.
type Config struct {
	DefaultPageSize int `toml:"default_page_size"`
	MaxPageSize     int `toml:"max_page_size"`
	MaxExportRows   int `toml:"max_export_rows"`
}

// ConfigEnv maps environment variable names for pagination configuration.
type ConfigEnv struct {
	DefaultPageSize string
	MaxPageSize     string
	MaxExportRows   string
}

// Finalize applies defaults, environment variable overrides, and validation.
// A set but non-numeric environment value is an error.
func (c *Config) Finalize(env *ConfigEnv) error {
	c.loadDefaults()
	if env != nil {
		if err := c.loadEnv(env); err != nil {
			return err
		}
	}
	return c.validate()
}

// Merge applies non-zero values from the overlay configuration.
func (c *Config) Merge(overlay *Config) {
	if overlay.DefaultPageSize != 0 {
		c.DefaultPageSize = overlay.DefaultPageSize
	}
	if overlay.MaxPageSize != 0 {
		c.MaxPageSize = overlay.MaxPageSize
	}
	if overlay.MaxExportRows != 0 {
		c.MaxExportRows = overlay.MaxExportRows
	}
}

func (c *Config) loadDefaults() {
	if c.DefaultPageSize <= 0 {
		c.DefaultPageSize = 20
	}
	if c.MaxPageSize <= 0 {
		c.MaxPageSize = 100
	}
	if c.MaxExportRows <= 0 {
		c.MaxExportRows = 5000
	}
}

func (c *Config) loadEnv(env *ConfigEnv) error {
	fields := []struct {
		name string
		dst  *int
	}{
		{env.DefaultPageSize, &c.DefaultPageSize},
		{env.MaxPageSize, &c.MaxPageSize},
		{env.MaxExportRows, &c.MaxExportRows},
	}

	for _, f := range fields {
		if f.name == "" {
			continue
		}
		v := os.Getenv(f.name)
		if v == "" {
			continue
		}
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("%s: %w", f.name, err)
		}
		*f.dst = n
	}
	return nil
}

func (c *Config) validate() error {
	if c.DefaultPageSize < 1 {
		return fmt.Errorf("default_page_size must be positive")
	}
	if c.MaxPageSize < 1 {
		return fmt.Errorf("max_page_size must be positive")
	}
	if c.DefaultPageSize > c.MaxPageSize {
		return fmt.Errorf("default_page_size cannot exceed max_page_size")
	}
	if c.MaxExportRows < c.MaxPageSize {
		return fmt.Errorf("max_export_rows cannot be below max_page_size")
	}
	return nil
}
