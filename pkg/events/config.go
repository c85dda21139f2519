package events

import (
	"fmt"
	"os"
	"strings"
	"time"
)

// Config holds Kafka producer settings. No brokers means events are only logged.
type Config struct {
	Brokers      []string `toml:"brokers"`
	Topic        string   `toml:"topic"`
	FlushTimeout string   `toml:"flush_timeout"`
}

// Env maps config fields to environment variable names for override injection.
type Env struct {
	Brokers      string
	Topic        string
	FlushTimeout string
}

// Enabled reports whether any broker is configured.
func (c *Config) Enabled() bool {
	return len(c.Brokers) > 0
}

// FlushTimeoutDuration returns FlushTimeout as a time.Duration.
func (c *Config) FlushTimeoutDuration() time.Duration {
	d, _ := time.ParseDuration(c.FlushTimeout)
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
	if overlay.Brokers != nil {
		c.Brokers = overlay.Brokers
	}
	if overlay.Topic != "" {
		c.Topic = overlay.Topic
	}
	if overlay.FlushTimeout != "" {
		c.FlushTimeout = overlay.FlushTimeout
	}
}

func (c *Config) loadDefaults() {
	if c.Topic == "" {
		c.Topic = "cliprank.events"
	}
	if c.FlushTimeout == "" {
		c.FlushTimeout = "10s"
	}
}

func (c *Config) loadEnv(env *Env) {
	if env.Brokers != "" {
		if v := os.Getenv(env.Brokers); v != "" {
			brokers := strings.Split(v, ",")
			c.Brokers = make([]string, 0, len(brokers))
			for _, b := range brokers {
				if trimmed := strings.TrimSpace(b); trimmed != "" {
					c.Brokers = append(c.Brokers, trimmed)
				}
			}
		}
	}
	if env.Topic != "" {
		if v := os.Getenv(env.Topic); v != "" {
			c.Topic = v
		}
	}
	if env.FlushTimeout != "" {
		if v := os.Getenv(env.FlushTimeout); v != "" {
			c.FlushTimeout = v
		}
	}
}

func (c *Config) validate() error {
	if c.Enabled() && c.Topic == "" {
		return fmt.Errorf("topic required when brokers are configured")
	}
	if _, err := time.ParseDuration(c.FlushTimeout); err != nil {
		return fmt.Errorf("invalid flush_timeout: %w", err)
	}
	return nil
}
