package config

import (
	"fmt"
	"os"

	"github.com/JaimeStill/cliprank/pkg/middleware"
	"github.com/JaimeStill/cliprank/pkg/openapi"
	"github.com/JaimeStill/cliprank/pkg/pagination"
)

var corsEnv = &middleware.CORSEnv{
	Enabled:          "CLIPRANK_CORS_ENABLED",
	Origins:          "CLIPRANK_CORS_ORIGINS",
	AllowedMethods:   "CLIPRANK_CORS_ALLOWED_METHODS",
	AllowedHeaders:   "CLIPRANK_CORS_ALLOWED_HEADERS",
	AllowCredentials: "CLIPRANK_CORS_ALLOW_CREDENTIALS",
	MaxAge:           "CLIPRANK_CORS_MAX_AGE",
}

var paginationEnv = &pagination.ConfigEnv{
	DefaultPageSize: "CLIPRANK_PAGINATION_DEFAULT_PAGE_SIZE",
	MaxPageSize:     "CLIPRANK_PAGINATION_MAX_PAGE_SIZE",
}

var openapiEnv = &openapi.Env{
	Title:       "CLIPRANK_OPENAPI_TITLE",
	Description: "CLIPRANK_OPENAPI_DESCRIPTION",
}

var rateLimitEnv = &middleware.RateLimitEnv{
	Enabled:           "CLIPRANK_RATE_LIMIT_ENABLED",
	RequestsPerSecond: "CLIPRANK_RATE_LIMIT_RPS",
	Burst:             "CLIPRANK_RATE_LIMIT_BURST",
	IdleTTL:           "CLIPRANK_RATE_LIMIT_IDLE_TTL",
}

// APIConfig holds API routing, CORS, pagination, rate limit, and OpenAPI settings.
type APIConfig struct {
	BasePath   string                     `toml:"base_path"`
	UserHeader string                     `toml:"user_header"`
	CORS       middleware.CORSConfig      `toml:"cors"`
	Pagination pagination.Config          `toml:"pagination"`
	RateLimit  middleware.RateLimitConfig `toml:"rate_limit"`
	OpenAPI    openapi.Config             `toml:"openapi"`
}

// Finalize applies defaults, environment variable overrides, and validation
// for the API config and its nested configs.
func (c *APIConfig) Finalize() error {
	c.loadDefaults()
	c.loadEnv()

	if err := c.CORS.Finalize(corsEnv); err != nil {
		return fmt.Errorf("cors: %w", err)
	}
	c.CORS.AllowHeader(c.UserHeader)
	if err := c.Pagination.Finalize(paginationEnv); err != nil {
		return fmt.Errorf("pagination: %w", err)
	}
	if err := c.RateLimit.Finalize(rateLimitEnv); err != nil {
		return fmt.Errorf("rate_limit: %w", err)
	}
	if err := c.OpenAPI.Finalize(openapiEnv); err != nil {
		return fmt.Errorf("openapi: %w", err)
	}
	return nil
}

// Merge overwrites non-zero fields from overlay across nested configs.
func (c *APIConfig) Merge(overlay *APIConfig) {
	if overlay.BasePath != "" {
		c.BasePath = overlay.BasePath
	}
	if overlay.UserHeader != "" {
		c.UserHeader = overlay.UserHeader
	}

	c.CORS.Merge(&overlay.CORS)
	c.Pagination.Merge(&overlay.Pagination)
	c.RateLimit.Merge(&overlay.RateLimit)
	c.OpenAPI.Merge(&overlay.OpenAPI)
}

func (c *APIConfig) loadDefaults() {
	if c.BasePath == "" {
		c.BasePath = "/api"
	}
	if c.UserHeader == "" {
		c.UserHeader = "X-User-ID"
	}
}

func (c *APIConfig) loadEnv() {
	if v := os.Getenv("CLIPRANK_API_BASE_PATH"); v != "" {
		c.BasePath = v
	}
	if v := os.Getenv("CLIPRANK_API_USER_HEADER"); v != "" {
		c.UserHeader = v
	}
}
