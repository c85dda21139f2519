package activity

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/JaimeStill/cliprank/internal/judgments"
)

// System reads judgments and derives activity series.
type System interface {
	Handler() *Handler

	// Aggregate returns the daily series for one user, or for everyone when userID is nil.
	Aggregate(ctx context.Context, userID *uuid.UUID, r judgments.Range) ([]Point, error)
	// PerUserBreakdown returns one aligned series per username.
	PerUserBreakdown(ctx context.Context, r judgments.Range) (map[string][]Point, error)
}

type system struct {
	store  judgments.Store
	logger *slog.Logger
}

// New creates an activity system over the judgment store.
func New(store judgments.Store, logger *slog.Logger) System {
	return &system{
		store:  store,
		logger: logger.With("system", "activity"),
	}
}

func (s *system) Handler() *Handler {
	return NewHandler(s, s.logger)
}

func (s *system) Aggregate(ctx context.Context, userID *uuid.UUID, r judgments.Range) ([]Point, error) {
	if err := r.Validate(); err != nil {
		return nil, err
	}

	var (
		js  []judgments.Judgment
		err error
	)
	if userID != nil {
		js, err = s.store.ListByUser(ctx, *userID, r)
	} else {
		js, err = s.store.ListInRange(ctx, r)
	}
	if err != nil {
		return nil, fmt.Errorf("load judgments: %w", err)
	}

	return Aggregate(js, r), nil
}

func (s *system) PerUserBreakdown(ctx context.Context, r judgments.Range) (map[string][]Point, error) {
	if err := r.Validate(); err != nil {
		return nil, err
	}

	js, err := s.store.ListInRange(ctx, r)
	if err != nil {
		return nil, fmt.Errorf("load judgments: %w", err)
	}

	return Breakdown(js, r), nil
}
