package config

import (
	"fmt"
	"os"

	"github.com/JaimeStill/beacon/pkg/formatting"
	"github.com/JaimeStill/beacon/pkg/middleware"
	"github.com/JaimeStill/beacon/pkg/pagination"
)

var corsEnv = &middleware.CORSEnv{
	Enabled:          "BEACON_CORS_ENABLED",
	Origins:          "BEACON_CORS_ORIGINS",
	AllowedMethods:   "BEACON_CORS_ALLOWED_METHODS",
	AllowedHeaders:   "BEACON_CORS_ALLOWED_HEADERS",
	AllowCredentials: "BEACON_CORS_ALLOW_CREDENTIALS",
	MaxAge:           "BEACON_CORS_MAX_AGE",
}

var authEnv = &middleware.AuthEnv{
	Enabled:  "BEACON_AUTH_ENABLED",
	Issuer:   "BEACON_AUTH_ISSUER",
	ClientID: "BEACON_AUTH_CLIENT_ID",
	JWKSURL:  "BEACON_AUTH_JWKS_URL",
}

var paginationEnv = &pagination.ConfigEnv{
	DefaultPageSize: "BEACON_PAGINATION_DEFAULT_PAGE_SIZE",
	MaxPageSize:     "BEACON_PAGINATION_MAX_PAGE_SIZE",
}

// APIConfig holds API routing, request limits, CORS, bearer-token auth, and
// pagination settings.
type APIConfig struct {
	BasePath    string                `toml:"base_path"`
	MaxBodySize string                `toml:"max_body_size"`
	CORS        middleware.CORSConfig `toml:"cors"`
	Auth        middleware.AuthConfig `toml:"auth"`
	Pagination  pagination.Config     `toml:"pagination"`
}

// MaxBodySizeBytes returns MaxBodySize in bytes. Finalize guarantees it parses.
func (c *APIConfig) MaxBodySizeBytes() int64 {
	size, _ := formatting.ParseBytes(c.MaxBodySize)
	return size
}

// Finalize applies defaults, environment variable overrides, and validation
// for the API config and its nested CORS, auth, and pagination configs.
func (c *APIConfig) Finalize() error {
	c.loadDefaults()
	c.loadEnv()

	if _, err := formatting.ParseBytes(c.MaxBodySize); err != nil {
		return fmt.Errorf("invalid max_body_size: %w", err)
	}
	if err := c.CORS.Finalize(corsEnv); err != nil {
		return fmt.Errorf("cors: %w", err)
	}
	if err := c.Auth.Finalize(authEnv); err != nil {
		return fmt.Errorf("auth: %w", err)
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
	if overlay.MaxBodySize != "" {
		c.MaxBodySize = overlay.MaxBodySize
	}

	c.CORS.Merge(&overlay.CORS)
	c.Auth.Merge(&overlay.Auth)
	c.Pagination.Merge(&overlay.Pagination)
}

func (c *APIConfig) loadDefaults() {
	if c.BasePath == "" {
		c.BasePath = "/api"
	}
	if c.MaxBodySize == "" {
		c.MaxBodySize = "10MB"
	}
}

func (c *APIConfig) loadEnv() {
	if v := os.Getenv("BEACON_API_BASE_PATH"); v != "" {
		c.BasePath = v
	}
	if v := os.Getenv("BEACON_API_MAX_BODY_SIZE"); v != "" {
		c.MaxBodySize = v
	}
}
