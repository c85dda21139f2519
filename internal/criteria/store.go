package criteria

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/JaimeStill/cliprank/internal/seasons"
	"github.com/JaimeStill/cliprank/pkg/pagination"
)

// Store persists criteria.
type Store interface {
	List(ctx context.Context, page pagination.PageRequest, filters Filters) (*pagination.PageResult[Criterion], error)
	Find(ctx context.Context, id uuid.UUID) (*Criterion, error)
	// Active returns every active criterion ordered by priority, highest first.
	Active(ctx context.Context) ([]Criterion, error)
	Create(ctx context.Context, cmd CreateCommand) (*Criterion, error)
	Update(ctx context.Context, id uuid.UUID, cmd UpdateCommand) (*Criterion, error)
	// Upsert creates the criterion or replaces the one with the same name.
	Upsert(ctx context.Context, cmd CreateCommand) (*Criterion, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

// Normalize validates cmd and fills defaults: one award, a floor of one,
// and active unless stated otherwise.
func (cmd *CreateCommand) Normalize() error {
	if err := validate.Struct(cmd); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalid, err)
	}

	t, err := ParseType(string(cmd.Type))
	if err != nil {
		return err
	}
	cmd.Type = t

	if cmd.Season != nil {
		s, err := seasons.Parse(string(*cmd.Season))
		if err != nil {
			return fmt.Errorf("%w: %v", ErrInvalid, err)
		}
		cmd.Season = &s
	}

	if cmd.AwardLimit < 1 {
		cmd.AwardLimit = 1
	}
	if cmd.MinValue <= 0 {
		cmd.MinValue = 1
	}
	if cmd.Active == nil {
		active := true
		cmd.Active = &active
	}
	return nil
}
