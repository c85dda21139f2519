package config

import (
	"fmt"
	"os"
	"time"

	"github.com/pelletier/go-toml/v2"

	"github.com/JaimeStill/cliprank/pkg/cache"
	"github.com/JaimeStill/cliprank/pkg/database"
	"github.com/JaimeStill/cliprank/pkg/events"
	"github.com/JaimeStill/cliprank/pkg/storage"
	"github.com/JaimeStill/cliprank/pkg/tracing"
)

const (
	BaseConfigFile       = "config.toml"
	OverlayConfigPattern = "config.%s.toml"

	EnvCliprankEnv             = "CLIPRANK_ENV"
	EnvCliprankShutdownTimeout = "CLIPRANK_SHUTDOWN_TIMEOUT"
	EnvCliprankVersion         = "CLIPRANK_VERSION"
)

var databaseEnv = &database.Env{
	Host:            "CLIPRANK_DB_HOST",
	Port:            "CLIPRANK_DB_PORT",
	Name:            "CLIPRANK_DB_NAME",
	User:            "CLIPRANK_DB_USER",
	Password:        "CLIPRANK_DB_PASSWORD",
	SSLMode:         "CLIPRANK_DB_SSL_MODE",
	MaxOpenConns:    "CLIPRANK_DB_MAX_OPEN_CONNS",
	MaxIdleConns:    "CLIPRANK_DB_MAX_IDLE_CONNS",
	ConnMaxLifetime: "CLIPRANK_DB_CONN_MAX_LIFETIME",
	ConnTimeout:     "CLIPRANK_DB_CONN_TIMEOUT",
	ConnAttempts:    "CLIPRANK_DB_CONN_ATTEMPTS",
}

var storageEnv = &storage.Env{
	ContainerName:    "CLIPRANK_STORAGE_CONTAINER_NAME",
	ConnectionString: "CLIPRANK_STORAGE_CONNECTION_STRING",
	Prefix:           "CLIPRANK_STORAGE_PREFIX",
}

var cacheEnv = &cache.Env{
	URL:         "CLIPRANK_CACHE_URL",
	TTL:         "CLIPRANK_CACHE_TTL",
	PingTimeout: "CLIPRANK_CACHE_PING_TIMEOUT",
}

var eventsEnv = &events.Env{
	Brokers:      "CLIPRANK_EVENTS_BROKERS",
	Topic:        "CLIPRANK_EVENTS_TOPIC",
	FlushTimeout: "CLIPRANK_EVENTS_FLUSH_TIMEOUT",
}

var tracingEnv = &tracing.Env{
	Exporter:        "CLIPRANK_TRACING_EXPORTER",
	ServiceName:     "CLIPRANK_TRACING_SERVICE_NAME",
	BatchTimeout:    "CLIPRANK_TRACING_BATCH_TIMEOUT",
	ShutdownTimeout: "CLIPRANK_TRACING_SHUTDOWN_TIMEOUT",
}

// Config is the root configuration for the cliprank service.
type Config struct {
	Server          ServerConfig    `toml:"server"`
	Database        database.Config `toml:"database"`
	Storage         storage.Config  `toml:"storage"`
	Cache           cache.Config    `toml:"cache"`
	Events          events.Config   `toml:"events"`
	Tracing         tracing.Config  `toml:"tracing"`
	Engine          EngineConfig    `toml:"engine"`
	API             APIConfig       `toml:"api"`
	ShutdownTimeout string          `toml:"shutdown_timeout"`
	Version         string          `toml:"version"`
}

// Env returns the CLIPRANK_ENV value, defaulting to "local".
func (c *Config) Env() string {
	if env := os.Getenv(EnvCliprankEnv); env != "" {
		return env
	}
	return "local"
}

// ShutdownTimeoutDuration returns ShutdownTimeout as a time.Duration.
func (c *Config) ShutdownTimeoutDuration() time.Duration {
	return duration(c.ShutdownTimeout)
}

// Load reads the base config (if present), applies any environment overlay,
// and finalizes all values. If no config.toml exists, defaults and environment
// variables provide all configuration.
func Load() (*Config, error) {
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

	if err := cfg.Finalize(); err != nil {
		return nil, fmt.Errorf("finalize config: %w", err)
	}

	return cfg, nil
}

// Parse decodes TOML into a Config without finalizing it.
func Parse(data []byte) (*Config, error) {
	var cfg Config
	if err := toml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	return &cfg, nil
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
	c.Cache.Merge(&overlay.Cache)
	c.Events.Merge(&overlay.Events)
	c.Tracing.Merge(&overlay.Tracing)
	c.Engine.Merge(&overlay.Engine)
	c.API.Merge(&overlay.API)
}

// Finalize applies defaults, environment overrides, and validation to every
// sub-config. Database settings are only validated on the postgres backend.
func (c *Config) Finalize() error {
	c.loadDefaults()
	c.loadEnv()

	if err := c.validate(); err != nil {
		return err
	}
	if err := c.Server.Finalize(); err != nil {
		return fmt.Errorf("server: %w", err)
	}
	if err := c.Engine.Finalize(); err != nil {
		return fmt.Errorf("engine: %w", err)
	}
	if c.Engine.Backend == BackendPostgres {
		if err := c.Database.Finalize(databaseEnv); err != nil {
			return fmt.Errorf("database: %w", err)
		}
	}
	if err := c.Storage.Finalize(storageEnv); err != nil {
		return fmt.Errorf("storage: %w", err)
	}
	if err := c.Cache.Finalize(cacheEnv); err != nil {
		return fmt.Errorf("cache: %w", err)
	}
	if err := c.Events.Finalize(eventsEnv); err != nil {
		return fmt.Errorf("events: %w", err)
	}
	if err := c.Tracing.Finalize(tracingEnv); err != nil {
		return fmt.Errorf("tracing: %w", err)
	}
	if err := c.API.Finalize(); err != nil {
		return fmt.Errorf("api: %w", err)
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
	if v := os.Getenv(EnvCliprankShutdownTimeout); v != "" {
		c.ShutdownTimeout = v
	}
	if v := os.Getenv(EnvCliprankVersion); v != "" {
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
	return Parse(data)
}

func overlayPath() string {
	if env := os.Getenv(EnvCliprankEnv); env != "" {
		path := fmt.Sprintf(OverlayConfigPattern, env)
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}
	return ""
}
