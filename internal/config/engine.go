package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/JaimeStill/cliprank/pkg/retry"
)

const (
	EnvEngineBackend         = "CLIPRANK_ENGINE_BACKEND"
	EnvEngineDenyThreshold   = "CLIPRANK_ENGINE_DENY_THRESHOLD"
	EnvEngineCriteriaCatalog = "CLIPRANK_ENGINE_CRITERIA_CATALOG"
	EnvEngineRetryAttempts   = "CLIPRANK_ENGINE_RETRY_ATTEMPTS"
	EnvEngineRetryBaseDelay  = "CLIPRANK_ENGINE_RETRY_BASE_DELAY"
	EnvEngineRetryMaxDelay   = "CLIPRANK_ENGINE_RETRY_MAX_DELAY"
)

// Backends selects where the engine keeps its state.
const (
	BackendPostgres = "postgres"
	BackendMemory   = "memory"
)

// EngineConfig holds rating engine parameters.
type EngineConfig struct {
	// Backend is "postgres" or "memory".
	Backend string `toml:"backend"`
	// DenyThreshold applies until an administrator stores another value.
	DenyThreshold int `toml:"deny_threshold"`
	// CriteriaCatalog is a YAML file of criteria upserted at startup. Optional.
	CriteriaCatalog string `toml:"criteria_catalog"`
	RetryAttempts   int    `toml:"retry_attempts"`
	RetryBaseDelay  string `toml:"retry_base_delay"`
	RetryMaxDelay   string `toml:"retry_max_delay"`
}

// RetryPolicy builds the store retry policy. Stores choose which errors retry.
func (c *EngineConfig) RetryPolicy() retry.Policy {
	base, _ := time.ParseDuration(c.RetryBaseDelay)
	maxDelay, _ := time.ParseDuration(c.RetryMaxDelay)
	return retry.Policy{
		Attempts:  c.RetryAttempts,
		BaseDelay: base,
		MaxDelay:  maxDelay,
	}
}

// Finalize applies defaults, environment variable overrides, and validation.
func (c *EngineConfig) Finalize() error {
	c.loadDefaults()
	c.loadEnv()
	return c.validate()
}

// Merge overwrites non-zero fields from overlay.
func (c *EngineConfig) Merge(overlay *EngineConfig) {
	if overlay.Backend != "" {
		c.Backend = overlay.Backend
	}
	if overlay.DenyThreshold != 0 {
		c.DenyThreshold = overlay.DenyThreshold
	}
	if overlay.CriteriaCatalog != "" {
		c.CriteriaCatalog = overlay.CriteriaCatalog
	}
	if overlay.RetryAttempts != 0 {
		c.RetryAttempts = overlay.RetryAttempts
	}
	if overlay.RetryBaseDelay != "" {
		c.RetryBaseDelay = overlay.RetryBaseDelay
	}
	if overlay.RetryMaxDelay != "" {
		c.RetryMaxDelay = overlay.RetryMaxDelay
	}
}

func (c *EngineConfig) loadDefaults() {
	if c.Backend == "" {
		c.Backend = BackendPostgres
	}
	if c.DenyThreshold == 0 {
		c.DenyThreshold = 5
	}
	if c.RetryAttempts == 0 {
		c.RetryAttempts = 3
	}
	if c.RetryBaseDelay == "" {
		c.RetryBaseDelay = "50ms"
	}
	if c.RetryMaxDelay == "" {
		c.RetryMaxDelay = "1s"
	}
}

func (c *EngineConfig) loadEnv() {
	if v := os.Getenv(EnvEngineBackend); v != "" {
		c.Backend = v
	}
	if v := os.Getenv(EnvEngineDenyThreshold); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			c.DenyThreshold = n
		}
	}
	if v := os.Getenv(EnvEngineCriteriaCatalog); v != "" {
		c.CriteriaCatalog = v
	}
	if v := os.Getenv(EnvEngineRetryAttempts); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			c.RetryAttempts = n
		}
	}
	if v := os.Getenv(EnvEngineRetryBaseDelay); v != "" {
		c.RetryBaseDelay = v
	}
	if v := os.Getenv(EnvEngineRetryMaxDelay); v != "" {
		c.RetryMaxDelay = v
	}
}

func (c *EngineConfig) validate() error {
	if c.Backend != BackendPostgres && c.Backend != BackendMemory {
		return fmt.Errorf("invalid backend: %q", c.Backend)
	}
	if c.DenyThreshold < 1 {
		return fmt.Errorf("invalid deny_threshold: %d", c.DenyThreshold)
	}
	if c.RetryAttempts < 1 {
		return fmt.Errorf("invalid retry_attempts: %d", c.RetryAttempts)
	}
	if _, err := time.ParseDuration(c.RetryBaseDelay); err != nil {
		return fmt.Errorf("invalid retry_base_delay: %w", err)
	}
	if _, err := time.ParseDuration(c.RetryMaxDelay); err != nil {
		return fmt.Errorf("invalid retry_max_delay: %w", err)
	}
	return nil
}
