package judgments

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/JaimeStill/cliprank/pkg/pagination"
	"github.com/JaimeStill/cliprank/pkg/query"
	"github.com/JaimeStill/cliprank/pkg/repository"
	"github.com/JaimeStill/cliprank/pkg/retry"
)

const returning = "RETURNING clip_id, user_id, username, value, judged_at"

type repo struct {
	db         *sql.DB
	logger     *slog.Logger
	pagination pagination.Config
	writes     retry.Policy
	reads      retry.Policy
}

// New creates a PostgreSQL judgment store. Reads retry on any transient
// failure; writes retry only when the failed attempt cannot have committed.
func New(db *sql.DB, logger *slog.Logger, pagination pagination.Config, policy retry.Policy) Store {
	writes := policy
	writes.Retryable = repository.IsRetrySafe

	reads := policy
	reads.Retryable = repository.IsTransient

	return &repo{
		db:         db,
		logger:     logger.With("system", "judgments"),
		pagination: pagination,
		writes:     writes,
		reads:      reads,
	}
}

func (r *repo) Toggle(ctx context.Context, j Judgment) (Change, error) {
	if !j.Value.Valid() {
		return Change{}, fmt.Errorf("%w: %q", ErrInvalidValue, j.Value)
	}

	change, err := retry.Do(ctx, r.writes, func(ctx context.Context) (Change, error) {
		return repository.WithTx(ctx, r.db, func(tx *sql.Tx) (Change, error) {
			existing, err := lockAndFind(ctx, tx, j.ClipID, j.UserID)
			if err != nil {
				return Change{}, err
			}

			change := apply(existing, j)

			switch change.Outcome {
			case Created:
				q := `
					INSERT INTO judgments(clip_id, user_id, username, value, judged_at)
					VALUES ($1, $2, $3, $4, $5)
					` + returning
				created, err := repository.QueryOne(ctx, tx, q,
					[]any{j.ClipID, j.UserID, j.Username, string(j.Value), j.Timestamp},
					scanJudgment,
				)
				if err != nil {
					return Change{}, err
				}
				change.Current = &created
			case Replaced:
				q := `
					UPDATE judgments
					SET username = $3, value = $4, judged_at = $5
					WHERE clip_id = $1 AND user_id = $2
					` + returning
				replaced, err := repository.QueryOne(ctx, tx, q,
					[]any{j.ClipID, j.UserID, j.Username, string(j.Value), j.Timestamp},
					scanJudgment,
				)
				if err != nil {
					return Change{}, err
				}
				change.Current = &replaced
			case Removed:
				if err := repository.ExecExpectOne(ctx, tx,
					"DELETE FROM judgments WHERE clip_id = $1 AND user_id = $2",
					j.ClipID, j.UserID,
				); err != nil {
					return Change{}, err
				}
			}

			return change, nil
		})
	})

	if err != nil {
		return Change{}, repository.MapError(err, ErrNotFound, ErrDuplicate)
	}

	r.logger.Info(
		"judgment toggled",
		"clip_id", j.ClipID,
		"user_id", j.UserID,
		"value", j.Value,
		"outcome", change.Outcome,
	)
	return change, nil
}

func (r *repo) Remove(ctx context.Context, clipID, userID uuid.UUID) (Change, error) {
	change, err := retry.Do(ctx, r.writes, func(ctx context.Context) (Change, error) {
		return repository.WithTx(ctx, r.db, func(tx *sql.Tx) (Change, error) {
			existing, err := lockAndFind(ctx, tx, clipID, userID)
			if err != nil {
				return Change{}, err
			}
			if existing == nil {
				return Change{Outcome: Unchanged}, nil
			}

			if err := repository.ExecExpectOne(ctx, tx,
				"DELETE FROM judgments WHERE clip_id = $1 AND user_id = $2",
				clipID, userID,
			); err != nil {
				return Change{}, err
			}

			return Change{Outcome: Removed, Previous: existing}, nil
		})
	})

	if err != nil {
		return Change{}, repository.MapError(err, ErrNotFound, ErrDuplicate)
	}

	if change.Outcome == Removed {
		r.logger.Info("judgment removed", "clip_id", clipID, "user_id", userID)
	}
	return change, nil
}

func (r *repo) Find(ctx context.Context, clipID, userID uuid.UUID) (*Judgment, error) {
	q, args := query.NewBuilder(projection).
		WhereEquals("ClipID", clipID).
		WhereEquals("UserID", userID).
		BuildSingleOrNull()

	j, err := retry.Do(ctx, r.reads, func(ctx context.Context) (Judgment, error) {
		return repository.QueryOne(ctx, r.db, q, args, scanJudgment)
	})
	if err != nil {
		return nil, repository.MapError(err, ErrNotFound, ErrDuplicate)
	}
	return &j, nil
}

func (r *repo) ListByClip(ctx context.Context, clipID uuid.UUID) ([]Judgment, error) {
	q, args := query.NewBuilder(projection, chronological).
		WhereEquals("ClipID", clipID).
		Build()

	return r.queryMany(ctx, "list clip judgments", q, args)
}

func (r *repo) ListByUser(ctx context.Context, userID uuid.UUID, rng Range) ([]Judgment, error) {
	if err := rng.Validate(); err != nil {
		return nil, err
	}

	from, until := rng.Bounds()
	q, args := query.NewBuilder(projection, chronological).
		WhereEquals("UserID", userID).
		WhereAtLeast("Timestamp", from).
		WhereBefore("Timestamp", until).
		Build()

	return r.queryMany(ctx, "list user judgments", q, args)
}

func (r *repo) ListInRange(ctx context.Context, rng Range) ([]Judgment, error) {
	if err := rng.Validate(); err != nil {
		return nil, err
	}

	from, until := rng.Bounds()
	q, args := query.NewBuilder(projection, chronological).
		WhereAtLeast("Timestamp", from).
		WhereBefore("Timestamp", until).
		Build()

	return r.queryMany(ctx, "list judgments", q, args)
}

func (r *repo) Search(
	ctx context.Context,
	page pagination.PageRequest,
	filters Filters,
) (*pagination.PageResult[Judgment], error) {
	page.Normalize(r.pagination)

	qb := query.
		NewBuilder(projection, defaultSort).
		WhereSearch(page.Search, "Username")

	filters.Apply(qb)

	if len(page.Sort) > 0 {
		qb.OrderByFields(page.Sort)
	}

	result, err := repository.QueryPage(ctx, r.db, qb, page, scanJudgment)
	if err != nil {
		return nil, fmt.Errorf("search judgments: %w", err)
	}
	return result, nil
}

func (r *repo) queryMany(ctx context.Context, op, q string, args []any) ([]Judgment, error) {
	items, err := retry.Do(ctx, r.reads, func(ctx context.Context) ([]Judgment, error) {
		return repository.QueryMany(ctx, r.db, q, args, scanJudgment)
	})
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return items, nil
}

// lockAndFind serializes writers on one (clip, user) key for the rest of the
// transaction, including writers racing to create a missing row.
func lockAndFind(ctx context.Context, tx *sql.Tx, clipID, userID uuid.UUID) (*Judgment, error) {
	if err := repository.LockKey(ctx, tx, "judgment:"+clipID.String()+":"+userID.String()); err != nil {
		return nil, err
	}

	q, args := query.NewBuilder(projection).
		WhereEquals("ClipID", clipID).
		WhereEquals("UserID", userID).
		BuildSingleOrNull()

	return repository.QueryOptional(ctx, tx, q, args, scanJudgment)
}
