package config

import (
	"fmt"
	"os"
	"time"

	"github.com/pelletier/go-toml/v2"

	"github.com/JaimeStill/beacon/internal/responder"
	"github.com/JaimeStill/beacon/pkg/database"
	"github.com/JaimeStill/beacon/pkg/storage"
)

const (
	BaseConfigFile       = "config.toml"
	OverlayConfigPattern = "config.%s.toml"

	EnvBeaconEnv             = "BEACON_ENV"
	EnvBeaconShutdownTimeout = "BEACON_SHUTDOWN_TIMEOUT"
	EnvBeaconVersion         = "BEACON_VERSION"
)

var databaseEnv = &database.Env{
	Host:            "BEACON_DB_HOST",
	Port:            "BEACON_DB_PORT",
	Name:            "BEACON_DB_NAME",
	User:            "BEACON_DB_USER",
	Password:        "BEACON_DB_PASSWORD",
	SSLMode:         "BEACON_DB_SSL_MODE",
	MaxOpenConns:    "BEACON_DB_MAX_OPEN_CONNS",
	MaxIdleConns:    "BEACON_DB_MAX_IDLE_CONNS",
	ConnMaxLifetime: "BEACON_DB_CONN_MAX_LIFETIME",
	ConnTimeout:     "BEACON_DB_CONN_TIMEOUT",
}

var storageEnv = &storage.Env{
	ContainerName:    "BEACON_STORAGE_CONTAINER_NAME",
	ConnectionString: "BEACON_STORAGE_CONNECTION_STRING",
	ServiceURL:       "BEACON_STORAGE_SERVICE_URL",
}

var geminiEnv = &responder.Env{
	ProjectID:       "BEACON_GEMINI_PROJECT_ID",
	Location:        "BEACON_GEMINI_LOCATION",
	Model:           "BEACON_GEMINI_MODEL",
	CredentialsFile: "BEACON_GEMINI_CREDS_PATH",
	CredentialsJSON: "BEACON_GEMINI_CREDS_JSON",
	Temperature:     "BEACON_GEMINI_TEMPERATURE",
	TopP:            "BEACON_GEMINI_TOP_P",
	TopK:            "BEACON_GEMINI_TOP_K",
}

// Config is the root configuration for the beacon service and CLI.
type Config struct {
	Server          ServerConfig     `toml:"server"`
	Database        database.Config  `toml:"database"`
	Storage         storage.Config   `toml:"storage"`
	API             APIConfig        `toml:"api"`
	Gemini          responder.Config `toml:"gemini"`
	Classify        ClassifyConfig   `toml:"classify"`
	Logging         LoggingConfig    `toml:"logging"`
	ShutdownTimeout string           `toml:"shutdown_timeout"`
	Version         string           `toml:"version"`
}

// Env returns the BEACON_ENV value, defaulting to "local".
func (c *Config) Env() string {
	if env := os.Getenv(EnvBeaconEnv); env != "" {
		return env
	}
	return "local"
}

// ShutdownTimeoutDuration returns ShutdownTimeout as a time.Duration.
func (c *Config) ShutdownTimeoutDuration() time.Duration {
	d, _ := time.ParseDuration(c.ShutdownTimeout)
	return d
}

// Load reads the base config (if present), applies any environment overlay,
// and finalizes all values. If no config.toml exists, defaults and environment
// variables provide all configuration.
func Load() (*Config, error) {
	cfg, err := read()
	if err != nil {
		return nil, err
	}

	if err := cfg.finalize(); err != nil {
		return nil, fmt.Errorf("finalize config: %w", err)
	}

	return cfg, nil
}

// LoadResponder reads configuration the same way as Load but finalizes only
// the gemini and logging sections. Commands that call the model without the
// HTTP service, database, or storage use it.
func LoadResponder() (*Config, error) {
	cfg, err := read()
	if err != nil {
		return nil, err
	}

	if err := cfg.Gemini.Finalize(geminiEnv); err != nil {
		return nil, fmt.Errorf("finalize config: gemini: %w", err)
	}
	if err := cfg.Logging.Finalize(); err != nil {
		return nil, fmt.Errorf("finalize config: logging: %w", err)
	}

	return cfg, nil
}

func read() (*Config, error) {
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
	c.API.Merge(&overlay.API)
	c.Gemini.Merge(&overlay.Gemini)
	c.Classify.Merge(&overlay.Classify)
	c.Logging.Merge(&overlay.Logging)
}

func (c *Config) finalize() error {
	c.loadDefaults()
	c.loadEnv()

	if err := c.validate(); err != nil {
		return err
	}
	if err := c.Server.Finalize(); err != nil {
		return fmt.Errorf("server: %w", err)
	}
	if err := c.Database.Finalize(databaseEnv); err != nil {
		return fmt.Errorf("database: %w", err)
	}
	if err := c.Storage.Finalize(storageEnv); err != nil {
		return fmt.Errorf("storage: %w", err)
	}
	if err := c.API.Finalize(); err != nil {
		return fmt.Errorf("api: %w", err)
	}
	if err := c.Gemini.Finalize(geminiEnv); err != nil {
		return fmt.Errorf("gemini: %w", err)
	}
	if err := c.Classify.Finalize(); err != nil {
		return fmt.Errorf("classify: %w", err)
	}
	if err := c.Logging.Finalize(); err != nil {
		return fmt.Errorf("logging: %w", err)
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
	if v := os.Getenv(EnvBeaconShutdownTimeout); v != "" {
		c.ShutdownTimeout = v
	}
	if v := os.Getenv(EnvBeaconVersion); v != "" {
		c.Version = v
	}
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
	if env := os.Getenv(EnvBeaconEnv); env != "" {
		path := fmt.Sprintf(OverlayConfigPattern, env)
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}
	return ""
}
