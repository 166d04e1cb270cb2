package openapi

import "github.com/JaimeStill/clerk/pkg/envvar"

// Config holds OpenAPI metadata for spec generation.
type Config struct {
	Title       string `toml:"title"`
	Description string `toml:"description"`
}

// Env maps config fields to environment variable names.
type Env struct {
	Title       string
	Description string
}

// Finalize applies defaults and environment variable overrides.
func (c *Config) Finalize(env *Env) error {
	c.loadDefaults()
	if env != nil {
		envvar.String(&c.Title, env.Title)
		envvar.String(&c.Description, env.Description)
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
}

func (c *Config) loadDefaults() {
	if c.Title == "" {
		c.Title = "Clerk API"
	}
	if c.Description == "" {
		c.Description = "Classification, prioritization and reply drafting for incoming bank correspondence."
	}
}
