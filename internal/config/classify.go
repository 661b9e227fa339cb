package config

import (
	"fmt"
	"os"
	"strconv"
)

const (
	EnvClassifyBatchSize      = "BEACON_CLASSIFY_BATCH_SIZE"
	EnvClassifyMaxConcurrency = "BEACON_CLASSIFY_MAX_CONCURRENCY"
	EnvClassifyMaxPosts       = "BEACON_CLASSIFY_MAX_POSTS"
)

// ClassifyConfig controls how submitted posts are split into model calls.
type ClassifyConfig struct {
	BatchSize      int `toml:"batch_size"`
	MaxConcurrency int `toml:"max_concurrency"`
	MaxPosts       int `toml:"max_posts"`
}

// Finalize applies defaults, environment variable overrides, and validation.
func (c *ClassifyConfig) Finalize() error {
	c.loadDefaults()
	c.loadEnv()
	return c.validate()
}

// Merge overwrites non-zero fields from overlay.
func (c *ClassifyConfig) Merge(overlay *ClassifyConfig) {
	if overlay.BatchSize != 0 {
		c.BatchSize = overlay.BatchSize
	}
	if overlay.MaxConcurrency != 0 {
		c.MaxConcurrency = overlay.MaxConcurrency
	}
	if overlay.MaxPosts != 0 {
		c.MaxPosts = overlay.MaxPosts
	}
}

func (c *ClassifyConfig) loadDefaults() {
	if c.BatchSize == 0 {
		c.BatchSize = 25
	}
	if c.MaxConcurrency == 0 {
		c.MaxConcurrency = 4
	}
	if c.MaxPosts == 0 {
		c.MaxPosts = 1000
	}
}

func (c *ClassifyConfig) loadEnv() {
	for name, dst := range map[string]*int{
		EnvClassifyBatchSize:      &c.BatchSize,
		EnvClassifyMaxConcurrency: &c.MaxConcurrency,
		EnvClassifyMaxPosts:       &c.MaxPosts,
	} {
		if v := os.Getenv(name); v != "" {
			if n, err := strconv.Atoi(v); err == nil {
				*dst = n
			}
		}
	}
}

func (c *ClassifyConfig) validate() error {
	if c.BatchSize < 1 {
		return fmt.Errorf("batch_size must be positive: %d", c.BatchSize)
	}
	if c.MaxConcurrency < 1 {
		return fmt.Errorf("max_concurrency must be positive: %d", c.MaxConcurrency)
	}
	if c.MaxPosts < c.BatchSize {
		return fmt.Errorf("max_posts (%d) must be at least batch_size (%d)", c.MaxPosts, c.BatchSize)
	}
	return nil
}
