// Package clips reads clip metadata owned by the clip catalog: whether a clip
// exists and who streamed and submitted it.
package clips

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"github.com/google/uuid"

	"github.com/JaimeStill/cliprank/pkg/faults"
	"github.com/JaimeStill/cliprank/pkg/query"
	"github.com/JaimeStill/cliprank/pkg/repository"
)

// ErrNotFound indicates the clip does not exist.
var ErrNotFound = fmt.Errorf("clip %w", faults.ErrNotFound)

// Clip is the subset of clip metadata the rating engine needs.
type Clip struct {
	ID          uuid.UUID  `json:"id"`
	Streamer    string     `json:"streamer"`
	Submitter   string     `json:"submitter"`
	SubmitterID *uuid.UUID `json:"submitter_id,omitempty"`
}

// OwnedBy reports whether the user streamed or submitted the clip.
// Usernames compare case-insensitively; the submitter id, when known, is authoritative.
func (c Clip) OwnedBy(userID uuid.UUID, username string) bool {
	if c.SubmitterID != nil && *c.SubmitterID == userID {
		return true
	}
	name := strings.TrimSpace(username)
	if name == "" {
		return false
	}
	return strings.EqualFold(name, c.Streamer) || strings.EqualFold(name, c.Submitter)
}

// ErrInvalidClip indicates a clip registration without a streamer or submitter.
var ErrInvalidClip = fmt.Errorf("%w: streamer and submitter are required", faults.ErrValidation)

// Directory looks up clips.
type Directory interface {
	Find(ctx context.Context, id uuid.UUID) (*Clip, error)
}

// Registry is a Directory that also accepts clip registrations from the catalog.
type Registry interface {
	Directory
	Handler() *Handler
	// Register adds or replaces a clip's ownership metadata.
	Register(ctx context.Context, c Clip) error
}

func (c Clip) validate() error {
	if strings.TrimSpace(c.Streamer) == "" || strings.TrimSpace(c.Submitter) == "" {
		return ErrInvalidClip
	}
	return nil
}

var projection = query.
	NewProjectionMap("public", "clips", "c").
	Project("id", "ID").
	Project("streamer", "Streamer").
	Project("submitter", "Submitter").
	Project("submitter_id", "SubmitterID")

func scanClip(s repository.Scanner) (Clip, error) {
	var c Clip
	err := s.Scan(&c.ID, &c.Streamer, &c.Submitter, &c.SubmitterID)
	return c, err
}

type repo struct {
	db     *sql.DB
	logger *slog.Logger
}

// New creates a Registry backed by the clips table.
func New(db *sql.DB, logger *slog.Logger) Registry {
	return &repo{
		db:     db,
		logger: logger.With("system", "clips"),
	}
}

func (r *repo) Find(ctx context.Context, id uuid.UUID) (*Clip, error) {
	q, args := query.NewBuilder(projection).BuildSingle("ID", id)

	c, err := repository.QueryOne(ctx, r.db, q, args, scanClip)
	if err != nil {
		return nil, repository.MapNotFound(err, ErrNotFound)
	}
	return &c, nil
}

func (r *repo) Handler() *Handler {
	return NewHandler(r, r.logger)
}

func (r *repo) Register(ctx context.Context, c Clip) error {
	if err := c.validate(); err != nil {
		return err
	}

	q := `
		INSERT INTO clips(id, streamer, submitter, submitter_id)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (id) DO UPDATE SET
			streamer = EXCLUDED.streamer,
			submitter = EXCLUDED.submitter,
			submitter_id = EXCLUDED.submitter_id`

	if _, err := r.db.ExecContext(ctx, q, c.ID, c.Streamer, c.Submitter, c.SubmitterID); err != nil {
		return fmt.Errorf("register clip %s: %w", c.ID, err)
	}

	r.logger.Info("clip registered", "id", c.ID, "streamer", c.Streamer)
	return nil
}

// Memory is an in-memory Registry.
type Memory struct {
	mu     sync.RWMutex
	clips  map[uuid.UUID]Clip
	logger *slog.Logger
}

// NewMemory creates a Registry seeded with the given clips.
func NewMemory(logger *slog.Logger, seed ...Clip) *Memory {
	m := &Memory{
		clips:  make(map[uuid.UUID]Clip),
		logger: logger.With("system", "clips"),
	}
	for _, c := range seed {
		m.Put(c)
	}
	return m
}

func (m *Memory) Handler() *Handler {
	return NewHandler(m, m.logger)
}

func (m *Memory) Register(_ context.Context, c Clip) error {
	if err := c.validate(); err != nil {
		return err
	}
	m.Put(c)
	return nil
}

// Put adds or replaces a clip.
func (m *Memory) Put(c Clip) {
	m.mu.Lock()
	m.clips[c.ID] = c
	m.mu.Unlock()
}

// Find returns the clip or ErrNotFound.
func (m *Memory) Find(_ context.Context, id uuid.UUID) (*Clip, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	c, ok := m.clips[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &c, nil
}
