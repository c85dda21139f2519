package cache

import (
	"fmt"
	"os"
	"time"
)

// Config holds Redis connection parameters.
// An empty URL disables caching.
type Config struct {
	URL         string `toml:"url"`
	TTL         string `toml:"ttl"`
	PingTimeout string `toml:"ping_timeout"`
}

// Env maps config fields to environment variable names for override injection.
type Env struct {
	URL         string
	TTL         string
	PingTimeout string
}

// TTLDuration returns TTL as a time.Duration.
func (c *Config) TTLDuration() time.Duration {
	d, _ := time.ParseDuration(c.TTL)
	return d
}

// PingTimeoutDuration returns PingTimeout as a time.Duration.
func (c *Config) PingTimeoutDuration() time.Duration {
	d, _ := time.ParseDuration(c.PingTimeout)
	return d
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
	if overlay.URL != "" {
		c.URL = overlay.URL
	}
	if overlay.TTL != "" {
		c.TTL = overlay.TTL
	}
	if overlay.PingTimeout != "" {
		c.PingTimeout = overlay.PingTimeout
	}
}

func (c *Config) loadDefaults() {
	if c.TTL == "" {
		c.TTL = "5m"
	}
	if c.PingTimeout == "" {
		c.PingTimeout = "3s"
	}
}

func (c *Config) loadEnv(env *Env) {
	if env.URL != "" {
		if v := os.Getenv(env.URL); v != "" {
			c.URL = v
		}
	}
	if env.TTL != "" {
		if v := os.Getenv(env.TTL); v != "" {
			c.TTL = v
		}
	}
	if env.PingTimeout != "" {
		if v := os.Getenv(env.PingTimeout); v != "" {
			c.PingTimeout = v
		}
	}
}

func (c *Config) validate() error {
	if _, err := time.ParseDuration(c.TTL); err != nil {
		return fmt.Errorf("invalid ttl: %w", err)
	}
	if _, err := time.ParseDuration(c.PingTimeout); err != nil {
		return fmt.Errorf("invalid ping_timeout: %w", err)
	}
	return nil
}
