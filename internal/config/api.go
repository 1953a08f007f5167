package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/JaimeStill/inspector/pkg/formatting"
	"github.com/JaimeStill/inspector/pkg/middleware"
	"github.com/JaimeStill/inspector/pkg/openapi"
	"github.com/JaimeStill/inspector/pkg/pagination"
)

const (
	EnvInspectorAPIBasePath      = "INSPECTOR_API_BASE_PATH"
	EnvInspectorAPIMaxUploadSize = "INSPECTOR_API_MAX_UPLOAD_SIZE"

	defaultMaxUploadSize = 25 << 20
)

var corsEnv = &middleware.CORSEnv{
	Enabled:          "INSPECTOR_CORS_ENABLED",
	Origins:          "INSPECTOR_CORS_ORIGINS",
	AllowedMethods:   "INSPECTOR_CORS_ALLOWED_METHODS",
	AllowedHeaders:   "INSPECTOR_CORS_ALLOWED_HEADERS",
	ExposedHeaders:   "INSPECTOR_CORS_EXPOSED_HEADERS",
	AllowCredentials: "INSPECTOR_CORS_ALLOW_CREDENTIALS",
	MaxAge:           "INSPECTOR_CORS_MAX_AGE",
}

var openAPIEnv = &openapi.ConfigEnv{
	Title:        "INSPECTOR_OPENAPI_TITLE",
	Description:  "INSPECTOR_OPENAPI_DESCRIPTION",
	ContactEmail: "INSPECTOR_OPENAPI_CONTACT_EMAIL",
	Servers:      "INSPECTOR_OPENAPI_SERVERS",
}

var paginationEnv = &pagination.ConfigEnv{
	DefaultPageSize: "INSPECTOR_PAGINATION_DEFAULT_PAGE_SIZE",
	MaxPageSize:     "INSPECTOR_PAGINATION_MAX_PAGE_SIZE",
	MaxExportRows:   "INSPECTOR_PAGINATION_MAX_EXPORT_ROWS",
}

// APIConfig holds API routing, CORS, OpenAPI, and pagination settings.
type APIConfig struct {
	BasePath      string                `toml:"base_path"`
	MaxUploadSize string                `toml:"max_upload_size"`
	CORS          middleware.CORSConfig `toml:"cors"`
	OpenAPI       openapi.Config        `toml:"openapi"`
	Pagination    pagination.Config     `toml:"pagination"`
}

// MaxUploadSizeBytes returns MaxUploadSize in bytes. Multipart photo and
// certificate uploads and part master imports share this limit. An
// unparseable or non-positive value yields 25MB.
func (c *APIConfig) MaxUploadSizeBytes() int64 {
	size, err := formatting.ParseBytes(c.MaxUploadSize)
	if err != nil || size <= 0 {
		return defaultMaxUploadSize
	}
	return size
}

// Finalize applies defaults, environment variable overrides, and validation
// for the API config and its nested configs.
func (c *APIConfig) Finalize() error {
	if c.BasePath == "" {
		c.BasePath = "/api"
	}
	if c.MaxUploadSize == "" {
		c.MaxUploadSize = formatting.FormatBytes(defaultMaxUploadSize, 0)
	}
	if v := os.Getenv(EnvInspectorAPIBasePath); v != "" {
		c.BasePath = v
	}
	if v := os.Getenv(EnvInspectorAPIMaxUploadSize); v != "" {
		c.MaxUploadSize = v
	}

	if rest, ok := strings.CutPrefix(c.BasePath, "/"); !ok || rest == "" || strings.Contains(rest, "/") {
		return fmt.Errorf("base_path %q must be a single segment such as /api", c.BasePath)
	}
	size, err := formatting.ParseBytes(c.MaxUploadSize)
	if err != nil {
		return fmt.Errorf("max_upload_size: %w", err)
	}
	if size <= 0 {
		return fmt.Errorf("max_upload_size must be positive")
	}

	if err := c.CORS.Finalize(corsEnv); err != nil {
		return fmt.Errorf("cors: %w", err)
	}
	if err := c.OpenAPI.Finalize(openAPIEnv); err != nil {
		return fmt.Errorf("openapi: %w", err)
	}
	if err := c.Pagination.Finalize(paginationEnv); err != nil {
		return fmt.Errorf("pagination: %w", err)
	}
	return nil
}

// Merge overwrites non-zero fields from overlay across nested configs.
func (c *APIConfig) Merge(overlay *APIConfig) {
	if overlay.BasePath != "" {
		c.BasePath = overlay.BasePath
	}
	if overlay.MaxUploadSize != "" {
		c.MaxUploadSize = overlay.MaxUploadSize
	}

	c.CORS.Merge(&overlay.CORS)
	c.OpenAPI.Merge(&overlay.OpenAPI)
	c.Pagination.Merge(&overlay.Pagination)
}
