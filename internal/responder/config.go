package responder

import (
	"fmt"
	"os"
	"strconv"
)

const (
	DefaultLocation = "us-central1"
	DefaultModel    = "gemini-2.5-flash-lite"
)

// Config holds Vertex AI connection parameters and the generation settings
// applied to every request for the life of the process. The safety policy is
// not configurable; every request carries PermissivePolicy.
type Config struct {
	ProjectID       string   `toml:"project_id"`
	Location        string   `toml:"location"`
	Model           string   `toml:"model"`
	CredentialsFile string   `toml:"credentials_file"`
	CredentialsJSON string   `toml:"credentials_json"`
	Temperature     *float32 `toml:"temperature"`
	TopP            *float32 `toml:"top_p"`
	TopK            *float32 `toml:"top_k"`
}

// Env maps config fields to environment variable names for override injection.
type Env struct {
	ProjectID       string
	Location        string
	Model           string
	CredentialsFile string
	CredentialsJSON string
	Temperature     string
	TopP            string
	TopK            string
}

// Params returns the resolved generation parameters. Finalize must have run.
func (c *Config) Params() GenerationParams {
	return GenerationParams{
		Temperature: *c.Temperature,
		TopP:        *c.TopP,
		TopK:        *c.TopK,
	}
}

// Policy returns the safety policy sent with every request.
func (c *Config) Policy() SafetyPolicy {
	return PermissivePolicy()
}

// Finalize applies defaults, environment variable overrides, and validation.
func (c *Config) Finalize(env *Env) error {
	c.loadDefaults()
	if env != nil {
		c.loadEnv(env)
	}
	return c.validate()
}

// Merge overwrites non-zero fields from overlay.
func (c *Config) Merge(overlay *Config) {
	if overlay.ProjectID != "" {
		c.ProjectID = overlay.ProjectID
	}
	if overlay.Location != "" {
		c.Location = overlay.Location
	}
	if overlay.Model != "" {
		c.Model = overlay.Model
	}
	if overlay.CredentialsFile != "" {
		c.CredentialsFile = overlay.CredentialsFile
	}
	if overlay.CredentialsJSON != "" {
		c.CredentialsJSON = overlay.CredentialsJSON
	}
	if overlay.Temperature != nil {
		c.Temperature = overlay.Temperature
	}
	if overlay.TopP != nil {
		c.TopP = overlay.TopP
	}
	if overlay.TopK != nil {
		c.TopK = overlay.TopK
	}
}

func (c *Config) loadDefaults() {
	if c.Location == "" {
		c.Location = DefaultLocation
	}
	if c.Model == "" {
		c.Model = DefaultModel
	}
	if c.Temperature == nil {
		c.Temperature = ptr(float32(0))
	}
	if c.TopP == nil {
		c.TopP = ptr(float32(1))
	}
	if c.TopK == nil {
		c.TopK = ptr(float32(32))
	}
}

func (c *Config) loadEnv(env *Env) {
	setString := func(name string, dst *string) {
		if name == "" {
			return
		}
		if v := os.Getenv(name); v != "" {
			*dst = v
		}
	}
	setFloat := func(name string, dst **float32) {
		if name == "" {
			return
		}
		if v := os.Getenv(name); v != "" {
			if f, err := strconv.ParseFloat(v, 32); err == nil {
				*dst = ptr(float32(f))
			}
		}
	}

	setString(env.ProjectID, &c.ProjectID)
	setString(env.Location, &c.Location)
	setString(env.Model, &c.Model)
	setString(env.CredentialsFile, &c.CredentialsFile)
	setString(env.CredentialsJSON, &c.CredentialsJSON)
	setFloat(env.Temperature, &c.Temperature)
	setFloat(env.TopP, &c.TopP)
	setFloat(env.TopK, &c.TopK)
}

func (c *Config) validate() error {
	if c.ProjectID == "" {
		return fmt.Errorf("project_id required")
	}
	if c.CredentialsFile == "" && c.CredentialsJSON == "" {
		return fmt.Errorf("credentials_file or credentials_json required")
	}
	if t := *c.Temperature; t < 0 || t > 2 {
		return fmt.Errorf("invalid temperature: %v", t)
	}
	if p := *c.TopP; p < 0 || p > 1 {
		return fmt.Errorf("invalid top_p: %v", p)
	}
	if k := *c.TopK; k < 1 {
		return fmt.Errorf("invalid top_k: %v", k)
	}
	return nil
}

func ptr[T any](v T) *T {
	return &v
}
