package trophies

import (
	"context"

	"github.com/google/uuid"

	"github.com/JaimeStill/cliprank/pkg/pagination"
)

// Store persists trophy records.
type Store interface {
	// Insert writes the records in one transaction and returns those newly
	// created. Existing tuples are skipped, or fail the whole insert with
	// ErrAlreadyAwarded when strict is set.
	Insert(ctx context.Context, records []Record, strict bool) ([]Record, error)
	List(ctx context.Context, page pagination.PageRequest, filters Filters) (*pagination.PageResult[Record], error)
	Find(ctx context.Context, id uuid.UUID) (*Record, error)
	// Delete removes a record. It is the only mutation of a committed trophy.
	Delete(ctx context.Context, id uuid.UUID) error
}
