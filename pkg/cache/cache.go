// Package cache provides a Redis cache-aside layer with lifecycle coordination.
// When no URL is configured every operation is a no-op miss.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/JaimeStill/cliprank/pkg/lifecycle"
)

// System stores JSON values by key with a fixed TTL.
type System interface {
	// Start registers the connectivity check and connection close hooks.
	Start(lc *lifecycle.Coordinator) error
	// Get decodes the value at key into dest. It reports false on a miss.
	Get(ctx context.Context, key string, dest any) (bool, error)
	// Set encodes value as JSON at key.
	Set(ctx context.Context, key string, value any) error
	// Delete removes the given keys.
	Delete(ctx context.Context, keys ...string) error
	// Enabled reports whether a backing Redis client is configured.
	Enabled() bool
}

type redisCache struct {
	rdb         *redis.Client
	ttl         time.Duration
	pingTimeout time.Duration
	logger      *slog.Logger
}

// New creates a cache system from the given configuration.
// An empty URL yields a disabled cache.
func New(cfg *Config, logger *slog.Logger) (System, error) {
	c := &redisCache{
		ttl:         cfg.TTLDuration(),
		pingTimeout: cfg.PingTimeoutDuration(),
		logger:      logger.With("system", "cache"),
	}

	if cfg.URL == "" {
		c.logger.Info("no redis url configured, caching disabled")
		return c, nil
	}

	opts, err := redis.ParseURL(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}

	c.rdb = redis.NewClient(opts)
	return c, nil
}

// Disabled returns a cache that never stores anything.
func Disabled() System {
	return &redisCache{logger: slog.New(slog.DiscardHandler)}
}

func (c *redisCache) Enabled() bool {
	return c.rdb != nil
}

func (c *redisCache) Start(lc *lifecycle.Coordinator) error {
	if c.rdb == nil {
		return nil
	}

	c.logger.Info("starting cache connection")

	lc.OnStartup(func() {
		ctx, cancel := context.WithTimeout(lc.Context(), c.pingTimeout)
		defer cancel()

		if err := c.rdb.Ping(ctx).Err(); err != nil {
			c.logger.Error("redis ping failed", "error", err)
			return
		}

		c.logger.Info("cache connection established")
	})

	lc.OnShutdown(func() {
		<-lc.Context().Done()
		c.logger.Info("closing cache connection")

		if err := c.rdb.Close(); err != nil {
			c.logger.Error("cache close failed", "error", err)
			return
		}

		c.logger.Info("cache connection closed")
	})

	return nil
}

func (c *redisCache) Get(ctx context.Context, key string, dest any) (bool, error) {
	if c.rdb == nil {
		return false, nil
	}

	data, err := c.rdb.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("cache get %s: %w", key, err)
	}

	if err := json.Unmarshal(data, dest); err != nil {
		return false, fmt.Errorf("cache decode %s: %w", key, err)
	}
	return true, nil
}

func (c *redisCache) Set(ctx context.Context, key string, value any) error {
	if c.rdb == nil {
		return nil
	}

	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("cache encode %s: %w", key, err)
	}

	if err := c.rdb.Set(ctx, key, data, c.ttl).Err(); err != nil {
		return fmt.Errorf("cache set %s: %w", key, err)
	}
	return nil
}

func (c *redisCache) Delete(ctx context.Context, keys ...string) error {
	if c.rdb == nil || len(keys) == 0 {
		return nil
	}

	if err := c.rdb.Del(ctx, keys...).Err(); err != nil {
		return fmt.Errorf("cache delete: %w", err)
	}
	return nil
}
