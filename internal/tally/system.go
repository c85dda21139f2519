package tally

import (
	"context"
	"fmt"
	"log/slog"
	"sync/atomic"

	"github.com/google/uuid"
	"golang.org/x/sync/singleflight"

	"github.com/JaimeStill/cliprank/internal/judgments"
	"github.com/JaimeStill/cliprank/pkg/cache"
	"github.com/JaimeStill/cliprank/pkg/metrics"
)

// ThresholdSource supplies the current deny threshold to the HTTP layer.
type ThresholdSource interface {
	DenyThreshold(ctx context.Context) (int, error)
}

// System computes clip snapshots from stored judgments.
type System interface {
	Handler(thresholds ThresholdSource) *Handler

	// Compute returns the clip's snapshot classified against threshold.
	Compute(ctx context.Context, clipID uuid.UUID, threshold int) (Snapshot, error)
	// IsDenied reports whether the clip's deny count reaches threshold.
	IsDenied(ctx context.Context, clipID uuid.UUID, threshold int) (bool, error)
	// Invalidate drops any memoized snapshot for the clip.
	Invalidate(ctx context.Context, clipID uuid.UUID) error
}

type system struct {
	store   judgments.Store
	cache   cache.System
	metrics *metrics.Metrics
	logger  *slog.Logger
	group   singleflight.Group

	// generations is striped by the last byte of the clip ID. A bump on a
	// shared stripe only costs the other clips one uncached read.
	generations [generationStripes]atomic.Uint64
}

const generationStripes = 256

// New creates a tally system. Snapshots are memoized in the cache until the
// clip is invalidated; concurrent misses for one clip share a single read.
func New(store judgments.Store, c cache.System, m *metrics.Metrics, logger *slog.Logger) System {
	return &system{
		store:   store,
		cache:   c,
		metrics: m,
		logger:  logger.With("system", "tally"),
	}
}

func (s *system) Handler(thresholds ThresholdSource) *Handler {
	return NewHandler(s, thresholds, s.logger)
}

func (s *system) Compute(ctx context.Context, clipID uuid.UUID, threshold int) (Snapshot, error) {
	if err := ValidateThreshold(threshold); err != nil {
		return Snapshot{}, err
	}

	var cached Snapshot
	hit, err := s.cache.Get(ctx, cacheKey(clipID), &cached)
	if err != nil {
		s.logger.Warn("tally cache read failed", "clip_id", clipID, "error", err)
	}
	s.metrics.CacheLookup(hit)
	if hit {
		return cached.WithThreshold(threshold), nil
	}

	v, err, _ := s.group.Do(clipID.String(), func() (any, error) {
		gen := s.generation(clipID).Load()

		js, err := s.store.ListByClip(ctx, clipID)
		if err != nil {
			return nil, fmt.Errorf("load judgments for clip %s: %w", clipID, err)
		}

		snap := Compute(clipID, js, threshold)
		s.remember(ctx, clipID, gen, snap)
		return snap, nil
	})
	if err != nil {
		return Snapshot{}, err
	}

	return v.(Snapshot).WithThreshold(threshold), nil
}

func (s *system) IsDenied(ctx context.Context, clipID uuid.UUID, threshold int) (bool, error) {
	snap, err := s.Compute(ctx, clipID, threshold)
	if err != nil {
		return false, err
	}
	return snap.IsDenied, nil
}

// Invalidate bumps the clip generation before deleting the cached snapshot,
// so a read that loaded judgments before the mutation cannot leave its
// snapshot behind.
func (s *system) Invalidate(ctx context.Context, clipID uuid.UUID) error {
	s.generation(clipID).Add(1)

	s.group.Forget(clipID.String())
	return s.cache.Delete(ctx, cacheKey(clipID))
}

// remember caches snap when no invalidation happened since gen was read. The
// generation is checked again after the write: an Invalidate that raced the
// write may have deleted the key before the stale value landed.
func (s *system) remember(ctx context.Context, clipID uuid.UUID, gen uint64, snap Snapshot) {
	g := s.generation(clipID)
	if g.Load() != gen {
		return
	}

	key := cacheKey(clipID)
	if err := s.cache.Set(ctx, key, snap); err != nil {
		s.logger.Warn("tally cache write failed", "clip_id", clipID, "error", err)
		return
	}

	if g.Load() != gen {
		if err := s.cache.Delete(ctx, key); err != nil {
			s.logger.Warn("tally cache eviction failed", "clip_id", clipID, "error", err)
		}
	}
}

func (s *system) generation(clipID uuid.UUID) *atomic.Uint64 {
	return &s.generations[clipID[len(clipID)-1]]
}

func cacheKey(clipID uuid.UUID) string {
	return "tally:" + clipID.String()
}
