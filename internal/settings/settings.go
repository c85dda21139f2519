// Package settings holds engine parameters an administrator can change at
// runtime. Unset values fall back to the configured defaults.
package settings

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"sync"

	"github.com/JaimeStill/cliprank/internal/tally"
)

const keyDenyThreshold = "deny_threshold"

// Settings is the effective engine configuration.
type Settings struct {
	DenyThreshold int `json:"deny_threshold"`
}

// UpdateCommand changes the stored settings.
type UpdateCommand struct {
	DenyThreshold int `json:"deny_threshold"`
}

// System reads and writes engine settings. It satisfies tally.ThresholdSource.
type System interface {
	Handler() *Handler

	Get(ctx context.Context) (Settings, error)
	Update(ctx context.Context, cmd UpdateCommand) (Settings, error)
	// DenyThreshold returns the stored threshold or the configured default.
	DenyThreshold(ctx context.Context) (int, error)
}

type repo struct {
	db       *sql.DB
	defaults Settings
	logger   *slog.Logger
}

// New creates a PostgreSQL-backed settings system.
func New(db *sql.DB, defaults Settings, logger *slog.Logger) (System, error) {
	if err := tally.ValidateThreshold(defaults.DenyThreshold); err != nil {
		return nil, fmt.Errorf("default settings: %w", err)
	}
	return &repo{
		db:       db,
		defaults: defaults,
		logger:   logger.With("system", "settings"),
	}, nil
}

func (r *repo) Handler() *Handler {
	return NewHandler(r, r.logger)
}

func (r *repo) Get(ctx context.Context) (Settings, error) {
	threshold, err := r.DenyThreshold(ctx)
	if err != nil {
		return Settings{}, err
	}
	return Settings{DenyThreshold: threshold}, nil
}

func (r *repo) Update(ctx context.Context, cmd UpdateCommand) (Settings, error) {
	if err := tally.ValidateThreshold(cmd.DenyThreshold); err != nil {
		return Settings{}, err
	}

	q := `
		INSERT INTO engine_settings(key, value)
		VALUES ($1, $2)
		ON CONFLICT (key) DO UPDATE SET value = EXCLUDED.value, updated_at = NOW()`

	if _, err := r.db.ExecContext(ctx, q, keyDenyThreshold, strconv.Itoa(cmd.DenyThreshold)); err != nil {
		return Settings{}, fmt.Errorf("store deny threshold: %w", err)
	}

	r.logger.Info("deny threshold updated", "deny_threshold", cmd.DenyThreshold)
	return Settings{DenyThreshold: cmd.DenyThreshold}, nil
}

func (r *repo) DenyThreshold(ctx context.Context) (int, error) {
	var raw string
	err := r.db.QueryRowContext(ctx,
		"SELECT value FROM engine_settings WHERE key = $1", keyDenyThreshold,
	).Scan(&raw)

	if errors.Is(err, sql.ErrNoRows) {
		return r.defaults.DenyThreshold, nil
	}
	if err != nil {
		return 0, fmt.Errorf("load deny threshold: %w", err)
	}

	n, err := strconv.Atoi(raw)
	if err != nil || n < 1 {
		r.logger.Warn("stored deny threshold invalid, using default", "value", raw)
		return r.defaults.DenyThreshold, nil
	}
	return n, nil
}

type memory struct {
	mu       sync.RWMutex
	stored   *int
	defaults Settings
	logger   *slog.Logger
}

// NewMemory creates an in-memory settings system.
func NewMemory(defaults Settings, logger *slog.Logger) (System, error) {
	if err := tally.ValidateThreshold(defaults.DenyThreshold); err != nil {
		return nil, fmt.Errorf("default settings: %w", err)
	}
	return &memory{
		defaults: defaults,
		logger:   logger.With("system", "settings"),
	}, nil
}

func (m *memory) Handler() *Handler {
	return NewHandler(m, m.logger)
}

func (m *memory) Get(ctx context.Context) (Settings, error) {
	threshold, _ := m.DenyThreshold(ctx)
	return Settings{DenyThreshold: threshold}, nil
}

func (m *memory) Update(_ context.Context, cmd UpdateCommand) (Settings, error) {
	if err := tally.ValidateThreshold(cmd.DenyThreshold); err != nil {
		return Settings{}, err
	}

	m.mu.Lock()
	n := cmd.DenyThreshold
	m.stored = &n
	m.mu.Unlock()

	return Settings{DenyThreshold: n}, nil
}

func (m *memory) DenyThreshold(context.Context) (int, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.stored != nil {
		return *m.stored, nil
	}
	return m.defaults.DenyThreshold, nil
}
