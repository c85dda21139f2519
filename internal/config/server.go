package config

import (
	"fmt"
	"net"
	"os"
	"strconv"
	"time"
)

const (
	EnvServerHost            = "CLIPRANK_SERVER_HOST"
	EnvServerPort            = "CLIPRANK_SERVER_PORT"
	EnvServerReadTimeout     = "CLIPRANK_SERVER_READ_TIMEOUT"
	EnvServerWriteTimeout    = "CLIPRANK_SERVER_WRITE_TIMEOUT"
	EnvServerShutdownTimeout = "CLIPRANK_SERVER_SHUTDOWN_TIMEOUT"
	EnvServerIdleTimeout     = "CLIPRANK_SERVER_IDLE_TIMEOUT"
)

// ServerConfig holds HTTP listener parameters. Timeouts are Go duration strings.
type ServerConfig struct {
	Host            string `toml:"host"`
	Port            int    `toml:"port"`
	ReadTimeout     string `toml:"read_timeout"`
	WriteTimeout    string `toml:"write_timeout"`
	ShutdownTimeout string `toml:"shutdown_timeout"`
	// IdleTimeout bounds how long a keep-alive connection waits for the
	// next request.
	IdleTimeout string `toml:"idle_timeout"`
}

// timeout describes one duration setting of the server.
type timeout struct {
	key   string
	env   string
	def   string
	value *string
}

func (c *ServerConfig) timeouts() []timeout {
	return []timeout{
		{"read_timeout", EnvServerReadTimeout, "15s", &c.ReadTimeout},
		{"write_timeout", EnvServerWriteTimeout, "1m", &c.WriteTimeout},
		{"shutdown_timeout", EnvServerShutdownTimeout, "30s", &c.ShutdownTimeout},
		{"idle_timeout", EnvServerIdleTimeout, "2m", &c.IdleTimeout},
	}
}

// Addr returns the listen address.
func (c *ServerConfig) Addr() string {
	return net.JoinHostPort(c.Host, strconv.Itoa(c.Port))
}

func (c *ServerConfig) ReadTimeoutDuration() time.Duration     { return duration(c.ReadTimeout) }
func (c *ServerConfig) WriteTimeoutDuration() time.Duration    { return duration(c.WriteTimeout) }
func (c *ServerConfig) ShutdownTimeoutDuration() time.Duration { return duration(c.ShutdownTimeout) }
func (c *ServerConfig) IdleTimeoutDuration() time.Duration     { return duration(c.IdleTimeout) }

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

	theirs := overlay.timeouts()
	for i, t := range c.timeouts() {
		if v := *theirs[i].value; v != "" {
			*t.value = v
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
	for _, t := range c.timeouts() {
		if *t.value == "" {
			*t.value = t.def
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
	for _, t := range c.timeouts() {
		if v := os.Getenv(t.env); v != "" {
			*t.value = v
		}
	}
}

func (c *ServerConfig) validate() error {
	if c.Port < 1 || c.Port > 65535 {
		return fmt.Errorf("invalid port: %d", c.Port)
	}
	for _, t := range c.timeouts() {
		if _, err := time.ParseDuration(*t.value); err != nil {
			return fmt.Errorf("invalid %s: %w", t.key, err)
		}
	}
	return nil
}

func duration(s string) time.Duration {
	d, _ := time.ParseDuration(s)
	return d
}
