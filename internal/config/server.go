package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

const (
	EnvServerHost            = "BEACON_SERVER_HOST"
	EnvServerPort            = "BEACON_SERVER_PORT"
	EnvServerReadTimeout     = "BEACON_SERVER_READ_TIMEOUT"
	EnvServerWriteTimeout    = "BEACON_SERVER_WRITE_TIMEOUT"
	EnvServerIdleTimeout     = "BEACON_SERVER_IDLE_TIMEOUT"
	EnvServerShutdownTimeout = "BEACON_SERVER_SHUTDOWN_TIMEOUT"
)

// ServerConfig holds HTTP server parameters. WriteTimeout must cover the
// slowest classification request, which waits on every model call of a batch.
type ServerConfig struct {
	Host            string `toml:"host"`
	Port            int    `toml:"port"`
	ReadTimeout     string `toml:"read_timeout"`
	WriteTimeout    string `toml:"write_timeout"`
	IdleTimeout     string `toml:"idle_timeout"`
	ShutdownTimeout string `toml:"shutdown_timeout"`
}

// Addr returns the host:port listen address.
func (c *ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

func (c *ServerConfig) ReadTimeoutDuration() time.Duration     { return duration(c.ReadTimeout) }
func (c *ServerConfig) WriteTimeoutDuration() time.Duration    { return duration(c.WriteTimeout) }
func (c *ServerConfig) IdleTimeoutDuration() time.Duration     { return duration(c.IdleTimeout) }
func (c *ServerConfig) ShutdownTimeoutDuration() time.Duration { return duration(c.ShutdownTimeout) }

// Finalize applies defaults, environment variable overrides, and validation.
func (c *ServerConfig) Finalize() error {
	c.loadDefaults()
	c.loadEnv()
	return c.validate()
}

// Merge overwrites non-zero fields from overlay.
func (c *ServerConfig) Merge(overlay *ServerConfig) {
	if overlay.Host != "" {
		c.Host = overlay.Host
	}
	if overlay.Port != 0 {
		c.Port = overlay.Port
	}
	for dst, v := range c.durations(overlay) {
		if v != "" {
			*dst = v
		}
	}
}

func (c *ServerConfig) loadDefaults() {
	if c.Host == "" {
		c.Host = "0.0.0.0"
	}
	if c.Port == 0 {
		c.Port = 8080
	}
	defaults := &ServerConfig{
		ReadTimeout:     "30s",
		WriteTimeout:    "10m",
		IdleTimeout:     "2m",
		ShutdownTimeout: "30s",
	}
	for dst, v := range c.durations(defaults) {
		if *dst == "" {
			*dst = v
		}
	}
}

func (c *ServerConfig) loadEnv() {
	if v := os.Getenv(EnvServerHost); v != "" {
		c.Host = v
	}
	if v := os.Getenv(EnvServerPort); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			c.Port = port
		}
	}
	for name, dst := range map[string]*string{
		EnvServerReadTimeout:     &c.ReadTimeout,
		EnvServerWriteTimeout:    &c.WriteTimeout,
		EnvServerIdleTimeout:     &c.IdleTimeout,
		EnvServerShutdownTimeout: &c.ShutdownTimeout,
	} {
		if v := os.Getenv(name); v != "" {
			*dst = v
		}
	}
}

func (c *ServerConfig) validate() error {
	if c.Port < 1 || c.Port > 65535 {
		return fmt.Errorf("invalid port: %d", c.Port)
	}
	for name, v := range map[string]string{
		"read_timeout":     c.ReadTimeout,
		"write_timeout":    c.WriteTimeout,
		"idle_timeout":     c.IdleTimeout,
		"shutdown_timeout": c.ShutdownTimeout,
	} {
		if _, err := time.ParseDuration(v); err != nil {
			return fmt.Errorf("invalid %s: %w", name, err)
		}
	}
	return nil
}

// durations pairs each duration field of c with the same field of other.
func (c *ServerConfig) durations(other *ServerConfig) map[*string]string {
	return map[*string]string{
		&c.ReadTimeout:     other.ReadTimeout,
		&c.WriteTimeout:    other.WriteTimeout,
		&c.IdleTimeout:     other.IdleTimeout,
		&c.ShutdownTimeout: other.ShutdownTimeout,
	}
}

func duration(s string) time.Duration {
	d, _ := time.ParseDuration(s)
	return d
}
