// Package infrastructure provides core service initialization for application startup.
// It assembles the shared dependencies (logging, database, storage, cache,
// events, metrics, tracing) that domain systems require.
package infrastructure

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/JaimeStill/cliprank/internal/config"
	"github.com/JaimeStill/cliprank/pkg/cache"
	"github.com/JaimeStill/cliprank/pkg/database"
	"github.com/JaimeStill/cliprank/pkg/events"
	"github.com/JaimeStill/cliprank/pkg/lifecycle"
	"github.com/JaimeStill/cliprank/pkg/metrics"
	"github.com/JaimeStill/cliprank/pkg/storage"
	"github.com/JaimeStill/cliprank/pkg/tracing"
)

// Infrastructure holds the core systems required by all domain modules.
// Database is nil when the engine runs on the memory backend.
type Infrastructure struct {
	Lifecycle *lifecycle.Coordinator
	Logger    *slog.Logger
	Database  database.System
	Storage   storage.System
	Cache     cache.System
	Publisher events.Publisher
	Metrics   *metrics.Metrics
	Tracing   *tracing.System

	kafka *events.KafkaPublisher
}

// New creates an Infrastructure from the application configuration.
// It initializes all systems but does not start them; call Start separately.
func New(cfg *config.Config) (*Infrastructure, error) {
	lc := lifecycle.New()
	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))

	infra := &Infrastructure{
		Lifecycle: lc,
		Logger:    logger,
		Metrics:   metrics.New(),
	}

	tr, err := tracing.New(&cfg.Tracing, cfg.Version, logger)
	if err != nil {
		return nil, fmt.Errorf("tracing init failed: %w", err)
	}
	infra.Tracing = tr

	if cfg.Engine.Backend == config.BackendPostgres {
		db, err := database.New(&cfg.Database, logger)
		if err != nil {
			return nil, fmt.Errorf("database init failed: %w", err)
		}
		infra.Database = db
	}

	if cfg.Storage.Enabled() {
		store, err := storage.New(&cfg.Storage, logger)
		if err != nil {
			return nil, fmt.Errorf("storage init failed: %w", err)
		}
		infra.Storage = store
	} else {
		logger.Info("no storage connection string configured, archiving in memory")
		infra.Storage = storage.NewMemory()
	}

	if infra.Database == nil && cfg.Cache.URL == "" {
		infra.Cache = cache.NewMemory()
	} else {
		c, err := cache.New(&cfg.Cache, logger)
		if err != nil {
			return nil, fmt.Errorf("cache init failed: %w", err)
		}
		infra.Cache = c
	}

	publishers := []events.Publisher{events.NewLogPublisher(logger)}
	if cfg.Events.Enabled() {
		k, err := events.NewKafka(&cfg.Events, logger)
		if err != nil {
			return nil, fmt.Errorf("events init failed: %w", err)
		}
		infra.kafka = k
		publishers = append(publishers, k)
	}
	infra.Publisher = events.Multi(publishers...)

	return infra, nil
}

// Start registers all infrastructure systems with the lifecycle coordinator.
func (i *Infrastructure) Start() error {
	if err := i.Tracing.Start(i.Lifecycle); err != nil {
		return fmt.Errorf("tracing start failed: %w", err)
	}
	if i.Database != nil {
		if err := i.Database.Start(i.Lifecycle); err != nil {
			return fmt.Errorf("database start failed: %w", err)
		}
	}
	if err := i.Storage.Start(i.Lifecycle); err != nil {
		return fmt.Errorf("storage start failed: %w", err)
	}
	if err := i.Cache.Start(i.Lifecycle); err != nil {
		return fmt.Errorf("cache start failed: %w", err)
	}
	if i.kafka != nil {
		if err := i.kafka.Start(i.Lifecycle); err != nil {
			return fmt.Errorf("events start failed: %w", err)
		}
	}
	return nil
}
