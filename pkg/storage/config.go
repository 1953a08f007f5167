package storage

import (
	"errors"
	"fmt"
	"os"
	"regexp"
	"strconv"

	"github.com/JaimeStill/inspector/pkg/formatting"
)

// Azure container names: 3-63 lowercase letters, digits, and single hyphens,
// starting and ending with a letter or digit.
var containerName = regexp.MustCompile(`^[a-z0-9](?:[a-z0-9]|-[a-z0-9]){2,62}$`)

// Config holds Azure Blob Storage connection and upload parameters.
type Config struct {
	ContainerName    string `toml:"container_name"`
	ConnectionString string `toml:"connection_string"`
	// BlockSize is the staged block size for streamed uploads, e.g. "4 MB".
	BlockSize string `toml:"block_size"`
	// Concurrency is the number of blocks staged in parallel per upload.
	Concurrency int `toml:"concurrency"`
}

type Env struct {
	ContainerName    string
	ConnectionString string
	BlockSize        string
	Concurrency      string
}

// BlockSizeBytes returns BlockSize in bytes, or 0 to let the SDK choose.
func (c *Config) BlockSizeBytes() int64 {
	n, err := formatting.ParseBytes(c.BlockSize)
	if err != nil {
		return 0
	}
	return n
}

// Finalize applies defaults, environment variable overrides, and validation.
func (c *Config) Finalize(env *Env) error {
	if c.ContainerName == "" {
		c.ContainerName = "attachments"
	}
	if c.BlockSize == "" {
		c.BlockSize = "4 MB"
	}
	if c.Concurrency == 0 {
		c.Concurrency = 2
	}

	if env != nil {
		setenv(&c.ContainerName, env.ContainerName)
		setenv(&c.ConnectionString, env.ConnectionString)
		setenv(&c.BlockSize, env.BlockSize)
		if v := getenv(env.Concurrency); v != "" {
			n, err := strconv.Atoi(v)
			if err != nil {
				return fmt.Errorf("%s: %w", env.Concurrency, err)
			}
			c.Concurrency = n
		}
	}

	switch {
	case len(c.ContainerName) > 63 || !containerName.MatchString(c.ContainerName):
		return fmt.Errorf("invalid container_name %q", c.ContainerName)
	case c.ConnectionString == "":
		return errors.New("connection_string required")
	case c.Concurrency < 1:
		return fmt.Errorf("concurrency must be at least 1, got %d", c.Concurrency)
	}
	if n, err := formatting.ParseBytes(c.BlockSize); err != nil || n <= 0 {
		return fmt.Errorf("invalid block_size %q", c.BlockSize)
	}
	return nil
}

// Merge overwrites non-zero fields from overlay.
func (c *Config) Merge(overlay *Config) {
	for dst, src := range map[*string]string{
		&c.ContainerName:    overlay.ContainerName,
		&c.ConnectionString: overlay.ConnectionString,
		&c.BlockSize:        overlay.BlockSize,
	} {
		if src != "" {
			*dst = src
		}
	}
	if overlay.Concurrency != 0 {
		c.Concurrency = overlay.Concurrency
	}
}

func getenv(name string) string {
	if name == "" {
		return ""
	}
	return os.Getenv(name)
}

func setenv(dst *string, name string) {
	if v := getenv(name); v != "" {
		*dst = v
	}
}
