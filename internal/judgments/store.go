package judgments

import (
	"context"

	"github.com/google/uuid"

	"github.com/JaimeStill/cliprank/pkg/pagination"
)

// Store persists judgments. Toggle and Remove are linearizable per
// (clip, user) key: concurrent calls on one key apply one at a time.
type Store interface {
	// Toggle creates the judgment when absent, removes it when the stored value
	// equals the submitted one, and otherwise replaces value and timestamp.
	Toggle(ctx context.Context, j Judgment) (Change, error)
	// Remove deletes the judgment for the key. Absent keys yield Unchanged.
	Remove(ctx context.Context, clipID, userID uuid.UUID) (Change, error)
	// Find returns the judgment for the key or ErrNotFound.
	Find(ctx context.Context, clipID, userID uuid.UUID) (*Judgment, error)
	// ListByClip returns a clip's judgments ordered by timestamp.
	ListByClip(ctx context.Context, clipID uuid.UUID) ([]Judgment, error)
	// ListByUser returns a user's judgments within the range ordered by timestamp.
	ListByUser(ctx context.Context, userID uuid.UUID, r Range) ([]Judgment, error)
	// ListInRange returns every judgment within the range ordered by timestamp.
	ListInRange(ctx context.Context, r Range) ([]Judgment, error)
	// Search returns a filtered page of judgments.
	Search(ctx context.Context, page pagination.PageRequest, filters Filters) (*pagination.PageResult[Judgment], error)
}
