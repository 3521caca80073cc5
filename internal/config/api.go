package config

import (
	"fmt"
	"os"

	"github.com/tbdc/leadscope/pkg/formatting"
	"github.com/tbdc/leadscope/pkg/middleware"
	"github.com/tbdc/leadscope/pkg/pagination"
)

var corsEnv = &middleware.CORSEnv{
	Enabled:          "LEADSCOPE_CORS_ENABLED",
	Origins:          "LEADSCOPE_CORS_ORIGINS",
	AllowedMethods:   "LEADSCOPE_CORS_ALLOWED_METHODS",
	AllowedHeaders:   "LEADSCOPE_CORS_ALLOWED_HEADERS",
	AllowCredentials: "LEADSCOPE_CORS_ALLOW_CREDENTIALS",
	MaxAge:           "LEADSCOPE_CORS_MAX_AGE",
}

var paginationEnv = &pagination.ConfigEnv{
	DefaultPageSize: "LEADSCOPE_PAGINATION_DEFAULT_PAGE_SIZE",
	MaxPageSize:     "LEADSCOPE_PAGINATION_MAX_PAGE_SIZE",
}

// APIConfig holds API routing, CORS, and pagination settings.
type APIConfig struct {
	BasePath      string                `toml:"base_path"`
	MaxIngestSize string                `toml:"max_ingest_size"`
	CORS          middleware.CORSConfig `toml:"cors"`
	Pagination    pagination.Config     `toml:"pagination"`
}

// MaxIngestSizeBytes returns the corpus ingest body limit in bytes.
func (c *APIConfig) MaxIngestSizeBytes() int64 {
	size, err := formatting.ParseBytes(c.MaxIngestSize)
	if err != nil {
		return 10 * 1024 * 1024 // 10MB fallback
	}
	return size
}

// Finalize applies defaults, environment variable overrides, and validation
// for the API config and its nested CORS and pagination configs.
func (c *APIConfig) Finalize() error {
	c.loadDefaults()
	c.loadEnv()

	if err := c.CORS.Finalize(corsEnv); err != nil {
		return fmt.Errorf("cors: %w", err)
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
	if overlay.MaxIngestSize != "" {
		c.MaxIngestSize = overlay.MaxIngestSize
	}

	c.CORS.Merge(&overlay.CORS)
	c.Pagination.Merge(&overlay.Pagination)
}

func (c *APIConfig) loadDefaults() {
	if c.BasePath == "" {
		c.BasePath = "/api"
	}
	if c.MaxIngestSize == "" {
		c.MaxIngestSize = "10MB"
	}
}

func (c *APIConfig) loadEnv() {
	if v := os.Getenv("LEADSCOPE_API_BASE_PATH"); v != "" {
		c.BasePath = v
	}
	if v := os.Getenv("LEADSCOPE_API_MAX_INGEST_SIZE"); v != "" {
		c.MaxIngestSize = v
	}
}
