package config

import (
	"fmt"

	"github.com/JaimeStill/clerk/pkg/envvar"
	"github.com/JaimeStill/clerk/pkg/formatting"
	"github.com/JaimeStill/clerk/pkg/middleware"
	"github.com/JaimeStill/clerk/pkg/openapi"
	"github.com/JaimeStill/clerk/pkg/pagination"
)

const (
	EnvAPIBasePath    = "CLERK_API_BASE_PATH"
	EnvAPIMaxBodySize = "CLERK_API_MAX_BODY_SIZE"

	defaultMaxBodySize = 1 << 20
)

var corsEnv = &middleware.CORSEnv{
	Enabled:          "CLERK_CORS_ENABLED",
	Origins:          "CLERK_CORS_ORIGINS",
	AllowedMethods:   "CLERK_CORS_ALLOWED_METHODS",
	AllowedHeaders:   "CLERK_CORS_ALLOWED_HEADERS",
	AllowCredentials: "CLERK_CORS_ALLOW_CREDENTIALS",
	MaxAge:           "CLERK_CORS_MAX_AGE",
}

var paginationEnv = &pagination.Env{
	DefaultPageSize: "CLERK_PAGINATION_DEFAULT_PAGE_SIZE",
	MaxPageSize:     "CLERK_PAGINATION_MAX_PAGE_SIZE",
}

var openapiEnv = &openapi.Env{
	Title:       "CLERK_OPENAPI_TITLE",
	Description: "CLERK_OPENAPI_DESCRIPTION",
}

// APIConfig holds API routing, request limits, CORS, pagination and
// generated documentation settings.
type APIConfig struct {
	BasePath    string                `toml:"base_path"`
	MaxBodySize string                `toml:"max_body_size"`
	CORS        middleware.CORSConfig `toml:"cors"`
	Pagination  pagination.Config     `toml:"pagination"`
	OpenAPI     openapi.Config        `toml:"openapi"`
}

// MaxBodySizeBytes returns the request body limit. Letters are plain text,
// so the default is 1MB.
func (c *APIConfig) MaxBodySizeBytes() int64 {
	size, err := formatting.ParseBytes(c.MaxBodySize)
	if err != nil {
		return defaultMaxBodySize
	}
	return size
}

func (c *APIConfig) Finalize() error {
	c.loadDefaults()
	envvar.String(&c.BasePath, EnvAPIBasePath)
	envvar.String(&c.MaxBodySize, EnvAPIMaxBodySize)

	if _, err := formatting.ParseBytes(c.MaxBodySize); err != nil {
		return fmt.Errorf("invalid max_body_size: %w", err)
	}
	if err := c.CORS.Finalize(corsEnv); err != nil {
		return fmt.Errorf("cors: %w", err)
	}
	if err := c.Pagination.Finalize(paginationEnv); err != nil {
		return fmt.Errorf("pagination: %w", err)
	}
	if err := c.OpenAPI.Finalize(openapiEnv); err != nil {
		return fmt.Errorf("openapi: %w", err)
	}
	return nil
}

func (c *APIConfig) Merge(overlay *APIConfig) {
	if overlay.BasePath != "" {
		c.BasePath = overlay.BasePath
	}
	if overlay.MaxBodySize != "" {
		c.MaxBodySize = overlay.MaxBodySize
	}

	c.CORS.Merge(&overlay.CORS)
	c.Pagination.Merge(&overlay.Pagination)
	c.OpenAPI.Merge(&overlay.OpenAPI)
}

func (c *APIConfig) loadDefaults() {
	if c.BasePath == "" {
		c.BasePath = "/api"
	}
	if c.MaxBodySize == "" {
		c.MaxBodySize = "1MB"
	}
}
