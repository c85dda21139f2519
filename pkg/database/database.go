// Package database owns the PostgreSQL connection pool the stores share.
package database

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"

	"github.com/JaimeStill/cliprank/pkg/lifecycle"
	"github.com/JaimeStill/cliprank/pkg/retry"
)

// System manages the connection pool and its lifecycle.
type System interface {
	// Connection returns the underlying database connection pool.
	Connection() *sql.DB
	// Start registers startup and shutdown hooks with the lifecycle coordinator.
	Start(lc *lifecycle.Coordinator) error
	// Ready reports whether the startup ping succeeded.
	Ready() bool
	// Check pings the pool, returning ErrNotReady before startup has connected.
	Check(ctx context.Context) error
}

type database struct {
	conn        *sql.DB
	logger      *slog.Logger
	connTimeout time.Duration
	connect     retry.Policy
	ready       atomic.Bool
}

// New opens the pool without connecting. Start establishes the first
// connection.
func New(cfg *Config, logger *slog.Logger) (System, error) {
	db, err := sql.Open("pgx", cfg.Dsn())
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	db.SetMaxOpenConns(cfg.MaxOpenConns)
	db.SetMaxIdleConns(cfg.MaxIdleConns)
	db.SetConnMaxLifetime(cfg.ConnMaxLifetimeDuration())

	connect := retry.DefaultPolicy(nil)
	connect.Attempts = max(cfg.ConnAttempts, 1)
	connect.BaseDelay = 250 * time.Millisecond
	connect.MaxDelay = 5 * time.Second

	return &database{
		conn:        db,
		logger:      logger.With("system", "database"),
		connTimeout: cfg.ConnTimeoutDuration(),
		connect:     connect,
	}, nil
}

func (d *database) Connection() *sql.DB {
	return d.conn
}

func (d *database) Ready() bool {
	return d.ready.Load()
}

func (d *database) Check(ctx context.Context) error {
	if !d.ready.Load() {
		return ErrNotReady
	}
	return d.ping(ctx)
}

func (d *database) Start(lc *lifecycle.Coordinator) error {
	d.logger.Info("starting database connection", "attempts", d.connect.Attempts)
	lc.Check("database", d)

	lc.OnStartup(func() {
		_, err := retry.Do(lc.Context(), d.connect, func(ctx context.Context) (struct{}, error) {
			if err := d.ping(ctx); err != nil {
				d.logger.Warn("database ping failed", "error", err)
				return struct{}{}, err
			}
			return struct{}{}, nil
		})
		if err != nil {
			d.logger.Error("database unavailable", "error", err)
			return
		}

		d.ready.Store(true)
		d.logger.Info("database connection established")
	})

	lc.OnShutdown(func() {
		<-lc.Context().Done()
		d.ready.Store(false)
		d.logger.Info("closing database connection")

		if err := d.conn.Close(); err != nil {
			d.logger.Error("database close failed", "error", err)
			return
		}

		d.logger.Info("database connection closed")
	})

	return nil
}

func (d *database) ping(ctx context.Context) error {
	if d.connTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, d.connTimeout)
		defer cancel()
	}
	return d.conn.PingContext(ctx)
}
