package storage

import (
	"fmt"

	"github.com/JaimeStill/clerk/pkg/envvar"
)

// Config selects the Azure Blob account. A connection string authenticates
// with a shared key. An account URL authenticates with the default Azure
// credential chain (managed identity, workload identity, CLI).
type Config struct {
	ContainerName    string `toml:"container_name"`
	ConnectionString string `toml:"connection_string"`
	AccountURL       string `toml:"account_url"`
}

type Env struct {
	ContainerName    string
	ConnectionString string
	AccountURL       string
}

func (c *Config) Finalize(env *Env) error {
	if c.ContainerName == "" {
		c.ContainerName = "replies"
	}
	if env != nil {
		envvar.String(&c.ContainerName, env.ContainerName)
		envvar.String(&c.ConnectionString, env.ConnectionString)
		envvar.String(&c.AccountURL, env.AccountURL)
	}
	return c.validate()
}

func (c *Config) Merge(overlay *Config) {
	if overlay.ContainerName != "" {
		c.ContainerName = overlay.ContainerName
	}
	if overlay.ConnectionString != "" {
		c.ConnectionString = overlay.ConnectionString
	}
	if overlay.AccountURL != "" {
		c.AccountURL = overlay.AccountURL
	}
}

func (c *Config) validate() error {
	if c.ContainerName == "" {
		return fmt.Errorf("container_name required")
	}
	if c.ConnectionString == "" && c.AccountURL == "" {
		return fmt.Errorf("connection_string or account_url required")
	}
	return nil
}
