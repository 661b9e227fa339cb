package storage

import (
	"fmt"
	"os"
)

// Config selects an Azure Blob Storage account and container. Either
// ConnectionString or ServiceURL must be set; ServiceURL authenticates with
// the default Azure credential chain.
type Config struct {
	ContainerName    string `toml:"container_name"`
	ConnectionString string `toml:"connection_string"`
	ServiceURL       string `toml:"service_url"`
}

// Env maps config fields to environment variable names.
type Env struct {
	ContainerName    string
	ConnectionString string
	ServiceURL       string
}

// Finalize applies defaults, environment overrides, and validation.
func (c *Config) Finalize(env *Env) error {
	if c.ContainerName == "" {
		c.ContainerName = "responses"
	}

	if env != nil {
		for name, dst := range map[string]*string{
			env.ContainerName:    &c.ContainerName,
			env.ConnectionString: &c.ConnectionString,
			env.ServiceURL:       &c.ServiceURL,
		} {
			if name == "" {
				continue
			}
			if v := os.Getenv(name); v != "" {
				*dst = v
			}
		}
	}

	if c.ConnectionString == "" && c.ServiceURL == "" {
		return fmt.Errorf("connection_string or service_url required")
	}
	return nil
}

// Merge overwrites non-zero fields from overlay.
func (c *Config) Merge(overlay *Config) {
	if overlay.ContainerName != "" {
		c.ContainerName = overlay.ContainerName
	}
	if overlay.ConnectionString != "" {
		c.ConnectionString = overlay.ConnectionString
	}
	if overlay.ServiceURL != "" {
		c.ServiceURL = overlay.ServiceURL
	}
}
