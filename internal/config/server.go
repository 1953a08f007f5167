package config

import (
	"fmt"
	"net"
	"os"
	"strconv"
	"time"
)

const (
	EnvServerHost              = "INSPECTOR_SERVER_HOST"
	EnvServerPort              = "INSPECTOR_SERVER_PORT"
	EnvServerReadTimeout       = "INSPECTOR_SERVER_READ_TIMEOUT"
	EnvServerReadHeaderTimeout = "INSPECTOR_SERVER_READ_HEADER_TIMEOUT"
	EnvServerWriteTimeout      = "INSPECTOR_SERVER_WRITE_TIMEOUT"
	EnvServerIdleTimeout       = "INSPECTOR_SERVER_IDLE_TIMEOUT"
	EnvServerShutdownTimeout   = "INSPECTOR_SERVER_SHUTDOWN_TIMEOUT"
)

// ServerConfig holds HTTP listener parameters. Timeouts are Go duration strings;
// WriteTimeout must cover the slowest attachment or part-master upload.
type ServerConfig struct {
	Host              string `toml:"host"`
	Port              int    `toml:"port"`
	ReadTimeout       string `toml:"read_timeout"`
	ReadHeaderTimeout string `toml:"read_header_timeout"`
	WriteTimeout      string `toml:"write_timeout"`
	IdleTimeout       string `toml:"idle_timeout"`
	ShutdownTimeout   string `toml:"shutdown_timeout"`
}

// Addr returns the listen address, bracketing IPv6 hosts.
func (c *ServerConfig) Addr() string {
	return net.JoinHostPort(c.Host, strconv.Itoa(c.Port))
}

func (c *ServerConfig) ReadTimeoutDuration() time.Duration {
	return parseDuration(c.ReadTimeout)
}

func (c *ServerConfig) ReadHeaderTimeoutDuration() time.Duration {
	return parseDuration(c.ReadHeaderTimeout)
}

func (c *ServerConfig) WriteTimeoutDuration() time.Duration {
	return parseDuration(c.WriteTimeout)
}

func (c *ServerConfig) IdleTimeoutDuration() time.Duration {
	return parseDuration(c.IdleTimeout)
}

// ShutdownTimeoutDuration bounds http.Server.Shutdown during process stop.
func (c *ServerConfig) ShutdownTimeoutDuration() time.Duration {
	return parseDuration(c.ShutdownTimeout)
}

// Finalize applies defaults, environment variable overrides, and validation.
func (c *ServerConfig) Finalize() error {
	c.loadDefaults()
	c.loadEnv()
	return c.validate()
}

// Merge overwrites non-zero fields from overlay.
func (c *ServerConfig) Merge(overlay *ServerConfig) {
	if overlay.Host != "" {
		c.Host = overlay.Host
	}
	if overlay.Port != 0 {
		c.Port = overlay.Port
	}
	for _, f := range c.durations(overlay) {
		if *f.src != "" {
			*f.dst = *f.src
		}
	}
}

func (c *ServerConfig) loadDefaults() {
	if c.Host == "" {
		c.Host = "0.0.0.0"
	}
	if c.Port == 0 {
		c.Port = 8080
	}
	defaults := map[*string]string{
		&c.ReadTimeout:       "1m",
		&c.ReadHeaderTimeout: "10s",
		&c.WriteTimeout:      "15m",
		&c.IdleTimeout:       "2m",
		&c.ShutdownTimeout:   "30s",
	}
	for field, value := range defaults {
		if *field == "" {
			*field = value
		}
	}
}

func (c *ServerConfig) loadEnv() {
	if v := os.Getenv(EnvServerHost); v != "" {
		c.Host = v
	}
	if v := os.Getenv(EnvServerPort); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			c.Port = port
		}
	}
	for _, f := range c.durations(nil) {
		if v := os.Getenv(f.env); v != "" {
			*f.dst = v
		}
	}
}

func (c *ServerConfig) validate() error {
	if c.Port < 1 || c.Port > 65535 {
		return fmt.Errorf("invalid port: %d", c.Port)
	}
	for _, f := range c.durations(nil) {
		if _, err := time.ParseDuration(*f.dst); err != nil {
			return fmt.Errorf("invalid %s: %w", f.name, err)
		}
	}
	return nil
}

type durationField struct {
	name string
	env  string
	dst  *string
	src  *string
}

// durations lists the timeout fields of c, paired with the same fields of
// overlay when one is given.
func (c *ServerConfig) durations(overlay *ServerConfig) []durationField {
	if overlay == nil {
		overlay = &ServerConfig{}
	}
	return []durationField{
		{"read_timeout", EnvServerReadTimeout, &c.ReadTimeout, &overlay.ReadTimeout},
		{"read_header_timeout", EnvServerReadHeaderTimeout, &c.ReadHeaderTimeout, &overlay.ReadHeaderTimeout},
		{"write_timeout", EnvServerWriteTimeout, &c.WriteTimeout, &overlay.WriteTimeout},
		{"idle_timeout", EnvServerIdleTimeout, &c.IdleTimeout, &overlay.IdleTimeout},
		{"shutdown_timeout", EnvServerShutdownTimeout, &c.ShutdownTimeout, &overlay.ShutdownTimeout},
	}
}

func parseDuration(s string) time.Duration {
	d, _ := time.ParseDuration(s)
	return d
}
