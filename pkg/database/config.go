package database

import (
	"errors"
	"fmt"
	"net"
	"net/url"
	"os"
	"strconv"
	"time"
)

// Config holds PostgreSQL connection parameters.
type Config struct {
	Host            string `toml:"host"`
	Port            int    `toml:"port"`
	Name            string `toml:"name"`
	User            string `toml:"user"`
	Password        string `toml:"password"`
	SSLMode         string `toml:"ssl_mode"`
	MaxOpenConns    int    `toml:"max_open_conns"`
	MaxIdleConns    int    `toml:"max_idle_conns"`
	ConnMaxLifetime string `toml:"conn_max_lifetime"`
	ConnTimeout     string `toml:"conn_timeout"`
	QueryTimeout    string `toml:"query_timeout"`
}

// Env maps config fields to environment variable names for override injection.
type Env struct {
	Host            string
	Port            string
	Name            string
	User            string
	Password        string
	SSLMode         string
	MaxOpenConns    string
	MaxIdleConns    string
	ConnMaxLifetime string
	ConnTimeout     string
	QueryTimeout    string
}

type textField struct {
	dst      *string
	env      string
	fallback string
}

type intField struct {
	dst      *int
	env      string
	fallback int
}

func (c *Config) textFields(env *Env) []textField {
	if env == nil {
		env = &Env{}
	}
	return []textField{
		{&c.Host, env.Host, "localhost"},
		{&c.Name, env.Name, ""},
		{&c.User, env.User, ""},
		{&c.Password, env.Password, ""},
		{&c.SSLMode, env.SSLMode, "disable"},
		{&c.ConnMaxLifetime, env.ConnMaxLifetime, "15m"},
		{&c.ConnTimeout, env.ConnTimeout, "5s"},
		{&c.QueryTimeout, env.QueryTimeout, "30s"},
	}
}

func (c *Config) intFields(env *Env) []intField {
	if env == nil {
		env = &Env{}
	}
	return []intField{
		{&c.Port, env.Port, 5432},
		{&c.MaxOpenConns, env.MaxOpenConns, 25},
		{&c.MaxIdleConns, env.MaxIdleConns, 5},
	}
}

// ConnMaxLifetimeDuration returns ConnMaxLifetime as a time.Duration.
func (c *Config) ConnMaxLifetimeDuration() time.Duration {
	return mustDuration(c.ConnMaxLifetime)
}

// ConnTimeoutDuration returns ConnTimeout as a time.Duration.
func (c *Config) ConnTimeoutDuration() time.Duration {
	return mustDuration(c.ConnTimeout)
}

// QueryTimeoutDuration returns QueryTimeout as a time.Duration.
// Multi-table reads and bulk imports bound themselves with this value.
func (c *Config) QueryTimeoutDuration() time.Duration {
	return mustDuration(c.QueryTimeout)
}

// Dsn returns a keyword/value connection string for the pgx stdlib driver.
func (c *Config) Dsn() string {
	return fmt.Sprintf(
		"host=%s port=%d dbname=%s user=%s password=%s sslmode=%s",
		c.Host, c.Port, c.Name, c.User, c.Password, c.SSLMode,
	)
}

// URL returns the connection parameters as a postgres:// URL for tools that
// do not accept keyword/value DSNs.
func (c *Config) URL() string {
	u := url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(c.User, c.Password),
		Host:     net.JoinHostPort(c.Host, strconv.Itoa(c.Port)),
		Path:     "/" + c.Name,
		RawQuery: url.Values{"sslmode": {c.SSLMode}}.Encode(),
	}
	return u.String()
}

// Finalize applies defaults, environment variable overrides, and validation.
func (c *Config) Finalize(env *Env) error {
	for _, f := range c.textFields(nil) {
		if *f.dst == "" {
			*f.dst = f.fallback
		}
	}
	for _, f := range c.intFields(nil) {
		if *f.dst == 0 {
			*f.dst = f.fallback
		}
	}
	if env != nil {
		if err := c.loadEnv(env); err != nil {
			return err
		}
	}
	return c.validate()
}

// Merge overwrites non-zero fields from overlay.
func (c *Config) Merge(overlay *Config) {
	src := overlay.textFields(nil)
	for i, f := range c.textFields(nil) {
		if v := *src[i].dst; v != "" {
			*f.dst = v
		}
	}
	nums := overlay.intFields(nil)
	for i, f := range c.intFields(nil) {
		if v := *nums[i].dst; v != 0 {
			*f.dst = v
		}
	}
}

func (c *Config) loadEnv(env *Env) error {
	for _, f := range c.textFields(env) {
		if v := lookup(f.env); v != "" {
			*f.dst = v
		}
	}
	for _, f := range c.intFields(env) {
		v := lookup(f.env)
		if v == "" {
			continue
		}
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("%s: %w", f.env, err)
		}
		*f.dst = n
	}
	return nil
}

func (c *Config) validate() error {
	if c.Name == "" {
		return errors.New("name required")
	}
	if c.User == "" {
		return errors.New("user required")
	}
	if c.MaxIdleConns > c.MaxOpenConns {
		return fmt.Errorf("max_idle_conns (%d) exceeds max_open_conns (%d)", c.MaxIdleConns, c.MaxOpenConns)
	}

	durations := []struct {
		name  string
		value string
	}{
		{"conn_max_lifetime", c.ConnMaxLifetime},
		{"conn_timeout", c.ConnTimeout},
		{"query_timeout", c.QueryTimeout},
	}
	for _, d := range durations {
		if _, err := time.ParseDuration(d.value); err != nil {
			return fmt.Errorf("invalid %s: %w", d.name, err)
		}
	}
	if c.QueryTimeoutDuration() <= 0 {
		return errors.New("query_timeout must be positive")
	}
	return nil
}

func lookup(name string) string {
	if name == "" {
		return ""
	}
	return os.Getenv(name)
}

func mustDuration(s string) time.Duration {
	d, _ := time.ParseDuration(s)
	return d
}
