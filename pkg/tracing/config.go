package tracing

import (
	"fmt"
	"os"
	"slices"
	"time"
)

const (
	ExporterNone   = "none"
	ExporterStdout = "stdout"
)

// Config selects where finished spans go. With the none exporter spans are
// still created and carry trace IDs, but nothing is exported.
type Config struct {
	Exporter        string `toml:"exporter"`
	ServiceName     string `toml:"service_name"`
	BatchTimeout    string `toml:"batch_timeout"`
	ShutdownTimeout string `toml:"shutdown_timeout"`
}

// Env maps config fields to environment variable names for override injection.
type Env struct {
	Exporter        string
	ServiceName     string
	BatchTimeout    string
	ShutdownTimeout string
}

func (c *Config) BatchTimeoutDuration() time.Duration {
	d, _ := time.ParseDuration(c.BatchTimeout)
	return d
}

func (c *Config) ShutdownTimeoutDuration() time.Duration {
	d, _ := time.ParseDuration(c.ShutdownTimeout)
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
	if overlay.Exporter != "" {
		c.Exporter = overlay.Exporter
	}
	if overlay.ServiceName != "" {
		c.ServiceName = overlay.ServiceName
	}
	if overlay.BatchTimeout != "" {
		c.BatchTimeout = overlay.BatchTimeout
	}
	if overlay.ShutdownTimeout != "" {
		c.ShutdownTimeout = overlay.ShutdownTimeout
	}
}

func (c *Config) loadDefaults() {
	if c.Exporter == "" {
		c.Exporter = ExporterNone
	}
	if c.ServiceName == "" {
		c.ServiceName = "cliprank"
	}
	if c.BatchTimeout == "" {
		c.BatchTimeout = "5s"
	}
	if c.ShutdownTimeout == "" {
		c.ShutdownTimeout = "5s"
	}
}

func (c *Config) loadEnv(env *Env) {
	for _, o := range []struct {
		name  string
		value *string
	}{
		{env.Exporter, &c.Exporter},
		{env.ServiceName, &c.ServiceName},
		{env.BatchTimeout, &c.BatchTimeout},
		{env.ShutdownTimeout, &c.ShutdownTimeout},
	} {
		if o.name == "" {
			continue
		}
		if v := os.Getenv(o.name); v != "" {
			*o.value = v
		}
	}
}

func (c *Config) validate() error {
	if !slices.Contains([]string{ExporterNone, ExporterStdout}, c.Exporter) {
		return fmt.Errorf("invalid exporter %q: expected %s or %s", c.Exporter, ExporterNone, ExporterStdout)
	}
	if _, err := time.ParseDuration(c.BatchTimeout); err != nil {
		return fmt.Errorf("invalid batch_timeout: %w", err)
	}
	if _, err := time.ParseDuration(c.ShutdownTimeout); err != nil {
		return fmt.Errorf("invalid shutdown_timeout: %w", err)
	}
	return nil
}
