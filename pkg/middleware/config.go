package middleware

import (
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"
)

// CORSConfig holds CORS policy settings.
type CORSConfig struct {
	Enabled          bool     `toml:"enabled"`
	Origins          []string `toml:"origins"`
	AllowedMethods   []string `toml:"allowed_methods"`
	AllowedHeaders   []string `toml:"allowed_headers"`
	ExposedHeaders   []string `toml:"exposed_headers"`
	AllowCredentials bool     `toml:"allow_credentials"`
	MaxAge           int      `toml:"max_age"`
}

// CORSEnv names the environment variables that override CORSConfig. List
// values are comma separated.
type CORSEnv struct {
	Enabled          string
	Origins          string
	AllowedMethods   string
	AllowedHeaders   string
	ExposedHeaders   string
	AllowCredentials string
	MaxAge           string
}

// Finalize applies defaults, then environment overrides, then validates the
// origins. A malformed boolean or integer variable is an error.
func (c *CORSConfig) Finalize(env *CORSEnv) error {
	setDefault(&c.AllowedMethods, "GET", "POST", "PUT", "DELETE", "OPTIONS")
	setDefault(&c.AllowedHeaders, "Content-Type", "Authorization")
	setDefault(&c.ExposedHeaders, "Content-Disposition")
	if c.MaxAge <= 0 {
		c.MaxAge = 3600
	}

	if env != nil {
		if err := c.loadEnv(env); err != nil {
			return err
		}
	}

	for _, origin := range c.Origins {
		if origin == "*" {
			continue
		}
		u, err := url.Parse(origin)
		if err != nil || u.Scheme == "" || u.Host == "" || (u.Path != "" && u.Path != "/") {
			return fmt.Errorf("invalid cors origin %q: want scheme://host[:port] or *", origin)
		}
	}
	return nil
}

// Merge overwrites fields from overlay. Booleans always apply; lists and
// max_age apply only when set.
func (c *CORSConfig) Merge(overlay *CORSConfig) {
	c.Enabled = overlay.Enabled
	c.AllowCredentials = overlay.AllowCredentials

	for dst, src := range map[*[]string][]string{
		&c.Origins:        overlay.Origins,
		&c.AllowedMethods: overlay.AllowedMethods,
		&c.AllowedHeaders: overlay.AllowedHeaders,
		&c.ExposedHeaders: overlay.ExposedHeaders,
	} {
		if src != nil {
			*dst = src
		}
	}
	if overlay.MaxAge > 0 {
		c.MaxAge = overlay.MaxAge
	}
}

func (c *CORSConfig) loadEnv(env *CORSEnv) error {
	lists := map[string]*[]string{
		env.Origins:        &c.Origins,
		env.AllowedMethods: &c.AllowedMethods,
		env.AllowedHeaders: &c.AllowedHeaders,
		env.ExposedHeaders: &c.ExposedHeaders,
	}
	for name, dst := range lists {
		if v := lookup(name); v != "" {
			*dst = splitList(v)
		}
	}

	for name, dst := range map[string]*bool{
		env.Enabled:          &c.Enabled,
		env.AllowCredentials: &c.AllowCredentials,
	} {
		v := lookup(name)
		if v == "" {
			continue
		}
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("%s: %w", name, err)
		}
		*dst = b
	}

	if v := lookup(env.MaxAge); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("%s: %w", env.MaxAge, err)
		}
		c.MaxAge = n
	}
	return nil
}

func setDefault(dst *[]string, values ...string) {
	if len(*dst) == 0 {
		*dst = values
	}
}

func lookup(name string) string {
	if name == "" {
		return ""
	}
	return os.Getenv(name)
}

func splitList(v string) []string {
	var out []string
	for part := range strings.SplitSeq(v, ",") {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
