package cache

import (
	"fmt"
	"time"

	"github.com/JaimeStill/clerk/pkg/envvar"
)

const (
	BackendMemory = "memory"
	BackendRedis  = "redis"
)

// Config selects the cache backend and its entry TTL.
type Config struct {
	Backend     string `toml:"backend"`
	Addr        string `toml:"addr"`
	Password    string `toml:"password"`
	DB          int    `toml:"db"`
	Prefix      string `toml:"prefix"`
	TTL         string `toml:"ttl"`
	DialTimeout string `toml:"dial_timeout"`
}

type Env struct {
	Backend     string
	Addr        string
	Password    string
	DB          string
	Prefix      string
	TTL         string
	DialTimeout string
}

func (c *Config) TTLDuration() time.Duration {
	d, _ := time.ParseDuration(c.TTL)
	return d
}

func (c *Config) DialTimeoutDuration() time.Duration {
	d, _ := time.ParseDuration(c.DialTimeout)
	return d
}

func (c *Config) Finalize(env *Env) error {
	c.loadDefaults()
	if env != nil {
		envvar.String(&c.Backend, env.Backend)
		envvar.String(&c.Addr, env.Addr)
		envvar.String(&c.Password, env.Password)
		envvar.Int(&c.DB, env.DB)
		envvar.String(&c.Prefix, env.Prefix)
		envvar.String(&c.TTL, env.TTL)
		envvar.String(&c.DialTimeout, env.DialTimeout)
	}
	return c.validate()
}

func (c *Config) Merge(overlay *Config) {
	if overlay.Backend != "" {
		c.Backend = overlay.Backend
	}
	if overlay.Addr != "" {
		c.Addr = overlay.Addr
	}
	if overlay.Password != "" {
		c.Password = overlay.Password
	}
	if overlay.DB != 0 {
		c.DB = overlay.DB
	}
	if overlay.Prefix != "" {
		c.Prefix = overlay.Prefix
	}
	if overlay.TTL != "" {
		c.TTL = overlay.TTL
	}
	if overlay.DialTimeout != "" {
		c.DialTimeout = overlay.DialTimeout
	}
}

func (c *Config) loadDefaults() {
	if c.Backend == "" {
		c.Backend = BackendMemory
	}
	if c.Addr == "" {
		c.Addr = "localhost:6379"
	}
	if c.Prefix == "" {
		c.Prefix = "clerk:"
	}
	if c.TTL == "" {
		c.TTL = "5m"
	}
	if c.DialTimeout == "" {
		c.DialTimeout = "3s"
	}
}

func (c *Config) validate() error {
	if c.Backend != BackendMemory && c.Backend != BackendRedis {
		return fmt.Errorf("unknown cache backend %q", c.Backend)
	}
	if d, err := time.ParseDuration(c.TTL); err != nil || d <= 0 {
		return fmt.Errorf("invalid ttl %q", c.TTL)
	}
	if _, err := time.ParseDuration(c.DialTimeout); err != nil {
		return fmt.Errorf("invalid dial_timeout: %w", err)
	}
	return nil
}
