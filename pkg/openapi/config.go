package openapi

import (
	"fmt"
	"net/url"
	"os"
	"strings"
)

// Config holds the document metadata published at /api/openapi.json.
// Servers lists absolute URLs clients should call when the service sits
// behind a proxy; when empty the API base path is advertised instead.
type Config struct {
	Title        string   `toml:"title"`
	Description  string   `toml:"description"`
	ContactEmail string   `toml:"contact_email"`
	Servers      []string `toml:"servers"`
}

// ConfigEnv maps config fields to environment variable names for override injection.
// Servers is read as a comma-separated list.
type ConfigEnv struct {
	Title        string
	Description  string
	ContactEmail string
	Servers      string
}

// Finalize applies defaults, environment overrides, and validation.
func (c *Config) Finalize(env *ConfigEnv) error {
	if c.Title == "" {
		c.Title = "Inspector API"
	}
	if c.Description == "" {
		c.Description = "Quality inspection intake: checklists, results, disposition, and summaries."
	}

	if env != nil {
		if v := getenv(env.Title); v != "" {
			c.Title = v
		}
		if v := getenv(env.Description); v != "" {
			c.Description = v
		}
		if v := getenv(env.ContactEmail); v != "" {
			c.ContactEmail = v
		}
		if v := getenv(env.Servers); v != "" {
			c.Servers = nil
			for s := range strings.SplitSeq(v, ",") {
				if s = strings.TrimSpace(s); s != "" {
					c.Servers = append(c.Servers, s)
				}
			}
		}
	}

	for _, s := range c.Servers {
		u, err := url.Parse(s)
		if err != nil || u.Scheme == "" || u.Host == "" {
			return fmt.Errorf("server %q must be an absolute URL", s)
		}
	}
	return nil
}

// Merge overwrites non-zero fields from overlay.
func (c *Config) Merge(overlay *Config) {
	if overlay.Title != "" {
		c.Title = overlay.Title
	}
	if overlay.Description != "" {
		c.Description = overlay.Description
	}
	if overlay.ContactEmail != "" {
		c.ContactEmail = overlay.ContactEmail
	}
	if overlay.Servers != nil {
		c.Servers = overlay.Servers
	}
}

// Apply copies the configured metadata onto spec. basePath is advertised
// when no explicit servers are configured.
func (c *Config) Apply(spec *Spec, basePath string) {
	spec.SetDescription(c.Description)
	if c.ContactEmail != "" {
		spec.Info.Contact = &Contact{Email: c.ContactEmail}
	}

	if len(c.Servers) == 0 {
		spec.AddServer(basePath)
		return
	}
	for _, s := range c.Servers {
		spec.AddServer(s)
	}
}

func getenv(name string) string {
	if name == "" {
		return ""
	}
	return os.Getenv(name)
}
