// Package ratings implements the rating contract on top of the judgment store:
// authorization against clip ownership, toggle submission, removal, lookups,
// tally invalidation, and denial notifications.
package ratings

import (
	"context"

	"github.com/google/uuid"

	"github.com/JaimeStill/cliprank/internal/judgments"
	"github.com/JaimeStill/cliprank/internal/tally"
	"github.com/JaimeStill/cliprank/pkg/pagination"
)

// SubmitCommand carries a user's rating of a clip.
type SubmitCommand struct {
	ClipID   uuid.UUID       `json:"-" validate:"required"`
	UserID   uuid.UUID       `json:"user_id" validate:"required"`
	Username string          `json:"username" validate:"required,max=64"`
	Value    judgments.Value `json:"value"`
}

// DenialChanged is the payload of a clip.denial_changed event.
type DenialChanged struct {
	ClipID    uuid.UUID `json:"clip_id"`
	Denied    bool      `json:"denied"`
	DenyCount int       `json:"deny_count"`
	Threshold int       `json:"threshold"`
}

// EventDenialChanged is published when a mutation moves a clip across the deny threshold.
const EventDenialChanged = "clip.denial_changed"

// System defines the public contract for rating operations.
type System interface {
	Handler(thresholds tally.ThresholdSource) *Handler

	// Submit applies the toggle rule and returns the clip's fresh snapshot.
	Submit(ctx context.Context, cmd SubmitCommand, threshold int) (tally.Snapshot, error)
	// Remove deletes the user's judgment, if any, and returns the clip's snapshot.
	Remove(ctx context.Context, clipID, userID uuid.UUID, threshold int) (tally.Snapshot, error)
	// UserJudgment returns the user's current value for the clip, or nil.
	UserJudgment(ctx context.Context, clipID, userID uuid.UUID) (*judgments.Value, error)
	// ListForUser returns the user's judgments within the inclusive day range.
	ListForUser(ctx context.Context, userID uuid.UUID, r judgments.Range) ([]judgments.Judgment, error)

	Search(
		ctx context.Context,
		page pagination.PageRequest,
		filters judgments.Filters,
	) (*pagination.PageResult[judgments.Judgment], error)
}
