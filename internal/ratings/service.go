package ratings

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/JaimeStill/cliprank/internal/clips"
	"github.com/JaimeStill/cliprank/internal/judgments"
	"github.com/JaimeStill/cliprank/internal/tally"
	"github.com/JaimeStill/cliprank/pkg/events"
	"github.com/JaimeStill/cliprank/pkg/faults"
	"github.com/JaimeStill/cliprank/pkg/metrics"
	"github.com/JaimeStill/cliprank/pkg/pagination"
)

var validate = validator.New()

type service struct {
	store      judgments.Store
	clips      clips.Directory
	tally      tally.System
	publisher  events.Publisher
	metrics    *metrics.Metrics
	logger     *slog.Logger
	pagination pagination.Config
	userHeader string
	now        func() time.Time

	// clipLocks serializes mutations of a clip together with the recount
	// that follows them, so each change sees the deny count it moved from.
	clipLocks [clipStripes]sync.Mutex
}

const clipStripes = 64

// Deps groups the collaborators of the rating system.
type Deps struct {
	Store      judgments.Store
	Clips      clips.Directory
	Tally      tally.System
	Publisher  events.Publisher
	Metrics    *metrics.Metrics
	Logger     *slog.Logger
	Pagination pagination.Config
	// UserHeader names the request header that asserts the caller's user id.
	// Empty disables the check.
	UserHeader string
	// Now overrides the judgment clock. Defaults to time.Now.
	Now func() time.Time
}

// New creates the rating system.
func New(deps Deps) System {
	now := deps.Now
	if now == nil {
		now = time.Now
	}

	return &service{
		store:      deps.Store,
		clips:      deps.Clips,
		tally:      deps.Tally,
		publisher:  deps.Publisher,
		metrics:    deps.Metrics,
		logger:     deps.Logger.With("system", "ratings"),
		pagination: deps.Pagination,
		userHeader: deps.UserHeader,
		now:        now,
	}
}

func (s *service) Handler(thresholds tally.ThresholdSource) *Handler {
	h := NewHandler(s, thresholds, s.logger, s.pagination)
	h.userHeader = s.userHeader
	return h
}

func (s *service) Submit(ctx context.Context, cmd SubmitCommand, threshold int) (tally.Snapshot, error) {
	if !cmd.Value.Valid() {
		return tally.Snapshot{}, fmt.Errorf("%w: %q", judgments.ErrInvalidValue, cmd.Value)
	}
	if err := validate.Struct(cmd); err != nil {
		return tally.Snapshot{}, fmt.Errorf("%w: %v", ErrInvalidUser, err)
	}
	if err := tally.ValidateThreshold(threshold); err != nil {
		return tally.Snapshot{}, err
	}

	clip, err := s.clips.Find(ctx, cmd.ClipID)
	if err != nil {
		return tally.Snapshot{}, err
	}
	if clip.OwnedBy(cmd.UserID, cmd.Username) {
		return tally.Snapshot{}, ErrSelfRating
	}

	unlock := s.lockClip(cmd.ClipID)
	defer unlock()

	change, err := s.store.Toggle(ctx, judgments.Judgment{
		ClipID:    cmd.ClipID,
		UserID:    cmd.UserID,
		Username:  cmd.Username,
		Value:     cmd.Value,
		Timestamp: s.now().UTC(),
	})
	if err != nil {
		return tally.Snapshot{}, fmt.Errorf("toggle judgment: %w", err)
	}

	return s.settle(ctx, cmd.ClipID, change, threshold)
}

func (s *service) Remove(ctx context.Context, clipID, userID uuid.UUID, threshold int) (tally.Snapshot, error) {
	if err := tally.ValidateThreshold(threshold); err != nil {
		return tally.Snapshot{}, err
	}

	unlock := s.lockClip(clipID)
	defer unlock()

	change, err := s.store.Remove(ctx, clipID, userID)
	if err != nil {
		return tally.Snapshot{}, fmt.Errorf("remove judgment: %w", err)
	}

	return s.settle(ctx, clipID, change, threshold)
}

func (s *service) UserJudgment(ctx context.Context, clipID, userID uuid.UUID) (*judgments.Value, error) {
	j, err := s.store.Find(ctx, clipID, userID)
	if errors.Is(err, faults.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &j.Value, nil
}

func (s *service) ListForUser(ctx context.Context, userID uuid.UUID, r judgments.Range) ([]judgments.Judgment, error) {
	if err := r.Validate(); err != nil {
		return nil, err
	}
	return s.store.ListByUser(ctx, userID, r)
}

func (s *service) Search(
	ctx context.Context,
	page pagination.PageRequest,
	filters judgments.Filters,
) (*pagination.PageResult[judgments.Judgment], error) {
	return s.store.Search(ctx, page, filters)
}

func (s *service) lockClip(clipID uuid.UUID) func() {
	mu := &s.clipLocks[clipID[len(clipID)-1]%clipStripes]
	mu.Lock()
	return mu.Unlock
}

// settle runs under the clip lock. It invalidates the memoized tally, recomputes the snapshot, and emits a
// denial event when the mutation moved the clip across the threshold.
func (s *service) settle(
	ctx context.Context,
	clipID uuid.UUID,
	change judgments.Change,
	threshold int,
) (tally.Snapshot, error) {
	if change.Outcome != judgments.Unchanged {
		s.metrics.JudgmentRecorded(string(change.Outcome))

		if err := s.tally.Invalidate(ctx, clipID); err != nil {
			s.logger.Warn("tally invalidation failed", "clip_id", clipID, "error", err)
		}
	}

	snap, err := s.tally.Compute(ctx, clipID, threshold)
	if err != nil {
		return tally.Snapshot{}, err
	}

	after := snap.Count(judgments.Deny)
	before := after - change.DenyDelta()
	if tally.Denied(before, threshold) != tally.Denied(after, threshold) {
		s.notifyDenial(ctx, DenialChanged{
			ClipID:    clipID,
			Denied:    snap.IsDenied,
			DenyCount: after,
			Threshold: threshold,
		})
	}

	return snap, nil
}

func (s *service) notifyDenial(ctx context.Context, payload DenialChanged) {
	s.metrics.DenialChanged(payload.Denied)
	s.logger.Info(
		"clip denial changed",
		"clip_id", payload.ClipID,
		"denied", payload.Denied,
		"deny_count", payload.DenyCount,
		"threshold", payload.Threshold,
	)

	event := events.New(EventDenialChanged, payload.ClipID.String(), payload)
	if err := s.publisher.Publish(ctx, event); err != nil {
		s.logger.Error("denial event publish failed", "clip_id", payload.ClipID, "error", err)
	}
}
