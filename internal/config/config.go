// Package config loads clerk's TOML configuration with an environment overlay
// and CLERK_* variable overrides.
package config

import (
	"fmt"
	"os"
	"time"

	"github.com/pelletier/go-toml/v2"

	"github.com/JaimeStill/clerk/pkg/cache"
	"github.com/JaimeStill/clerk/pkg/database"
	"github.com/JaimeStill/clerk/pkg/envvar"
	"github.com/JaimeStill/clerk/pkg/middleware"
	"github.com/JaimeStill/clerk/pkg/storage"
)

const (
	BaseConfigFile       = "config.toml"
	OverlayConfigPattern = "config.%s.toml"

	EnvClerkEnv             = "CLERK_ENV"
	EnvClerkShutdownTimeout = "CLERK_SHUTDOWN_TIMEOUT"
	EnvClerkVersion         = "CLERK_VERSION"
)

// DatabaseEnv names the CLERK_DB_* overrides. cmd/migrate shares it.
var DatabaseEnv = &database.Env{
	URL:             "CLERK_DB_URL",
	Host:            "CLERK_DB_HOST",
	Port:            "CLERK_DB_PORT",
	Name:            "CLERK_DB_NAME",
	User:            "CLERK_DB_USER",
	Password:        "CLERK_DB_PASSWORD",
	SSLMode:         "CLERK_DB_SSL_MODE",
	MaxOpenConns:    "CLERK_DB_MAX_OPEN_CONNS",
	MaxIdleConns:    "CLERK_DB_MAX_IDLE_CONNS",
	ConnMaxLifetime: "CLERK_DB_CONN_MAX_LIFETIME",
	ConnTimeout:     "CLERK_DB_CONN_TIMEOUT",
}

var storageEnv = &storage.Env{
	ContainerName:    "CLERK_STORAGE_CONTAINER_NAME",
	ConnectionString: "CLERK_STORAGE_CONNECTION_STRING",
	AccountURL:       "CLERK_STORAGE_ACCOUNT_URL",
}

var cacheEnv = &cache.Env{
	Backend:     "CLERK_CACHE_BACKEND",
	Addr:        "CLERK_CACHE_ADDR",
	Password:    "CLERK_CACHE_PASSWORD",
	DB:          "CLERK_CACHE_DB",
	Prefix:      "CLERK_CACHE_PREFIX",
	TTL:         "CLERK_CACHE_TTL",
	DialTimeout: "CLERK_CACHE_DIAL_TIMEOUT",
}

var authEnv = &middleware.AuthEnv{
	Enabled:  "CLERK_AUTH_ENABLED",
	Issuer:   "CLERK_AUTH_ISSUER",
	ClientID: "CLERK_AUTH_CLIENT_ID",
}

// Config is the root configuration for the clerk service.
type Config struct {
	Server          ServerConfig          `toml:"server"`
	Database        database.Config       `toml:"database"`
	Storage         storage.Config        `toml:"storage"`
	Cache           cache.Config          `toml:"cache"`
	Gateway         GatewayConfig         `toml:"gateway"`
	Retrieval       RetrievalConfig       `toml:"retrieval"`
	Auth            middleware.AuthConfig `toml:"auth"`
	API             APIConfig             `toml:"api"`
	ShutdownTimeout string                `toml:"shutdown_timeout"`
	Version         string                `toml:"version"`
}

// Env returns the CLERK_ENV value, defaulting to "local".
func (c *Config) Env() string {
	if env := os.Getenv(EnvClerkEnv); env != "" {
		return env
	}
	return "local"
}

func (c *Config) ShutdownTimeoutDuration() time.Duration {
	d, _ := time.ParseDuration(c.ShutdownTimeout)
	return d
}

// Load reads the base config (if present), applies any environment overlay,
// and finalizes all values. Without config.toml, defaults and environment
// variables provide all configuration.
func Load() (*Config, error) {
	cfg := &Config{}

	if _, err := os.Stat(BaseConfigFile); err == nil {
		loaded, err := load(BaseConfigFile)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	}

	if path := overlayPath(); path != "" {
		overlay, err := load(path)
		if err != nil {
			return nil, fmt.Errorf("load overlay %s: %w", path, err)
		}
		cfg.Merge(overlay)
	}

	if err := cfg.Finalize(); err != nil {
		return nil, fmt.Errorf("finalize config: %w", err)
	}

	return cfg, nil
}

// Merge overwrites non-zero fields from overlay across all sub-configs.
func (c *Config) Merge(overlay *Config) {
	if overlay.ShutdownTimeout != "" {
		c.ShutdownTimeout = overlay.ShutdownTimeout
	}
	if overlay.Version != "" {
		c.Version = overlay.Version
	}
	c.Server.Merge(&overlay.Server)
	c.Database.Merge(&overlay.Database)
	c.Storage.Merge(&overlay.Storage)
	c.Cache.Merge(&overlay.Cache)
	c.Gateway.Merge(&overlay.Gateway)
	c.Retrieval.Merge(&overlay.Retrieval)
	c.Auth.Merge(&overlay.Auth)
	c.API.Merge(&overlay.API)
}

// Finalize applies defaults, environment overrides and validation to every section.
func (c *Config) Finalize() error {
	c.loadDefaults()
	c.loadEnv()

	if err := c.validate(); err != nil {
		return err
	}
	if err := c.Server.Finalize(); err != nil {
		return fmt.Errorf("server: %w", err)
	}
	if err := c.Database.Finalize(DatabaseEnv); err != nil {
		return fmt.Errorf("database: %w", err)
	}
	if err := c.Storage.Finalize(storageEnv); err != nil {
		return fmt.Errorf("storage: %w", err)
	}
	if err := c.Cache.Finalize(cacheEnv); err != nil {
		return fmt.Errorf("cache: %w", err)
	}
	if err := c.Gateway.Finalize(); err != nil {
		return fmt.Errorf("gateway: %w", err)
	}
	if err := c.Retrieval.Finalize(); err != nil {
		return fmt.Errorf("retrieval: %w", err)
	}
	if err := c.Auth.Finalize(authEnv); err != nil {
		return fmt.Errorf("auth: %w", err)
	}
	if err := c.API.Finalize(); err != nil {
		return fmt.Errorf("api: %w", err)
	}
	return nil
}

func (c *Config) loadDefaults() {
	if c.ShutdownTimeout == "" {
		c.ShutdownTimeout = "30s"
	}
	if c.Version == "" {
		c.Version = "0.1.0"
	}
}

func (c *Config) loadEnv() {
	envvar.String(&c.ShutdownTimeout, EnvClerkShutdownTimeout)
	envvar.String(&c.Version, EnvClerkVersion)
}

func (c *Config) validate() error {
	if _, err := time.ParseDuration(c.ShutdownTimeout); err != nil {
		return fmt.Errorf("invalid shutdown_timeout: %w", err)
	}
	return nil
}

func load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	var cfg Config
	if err := toml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	return &cfg, nil
}

func overlayPath() string {
	if env := os.Getenv(EnvClerkEnv); env != "" {
		path := fmt.Sprintf(OverlayConfigPattern, env)
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}
	return ""
}
