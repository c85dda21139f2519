package trophies

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

type repo struct {
	db         *sql.DB
	logger     *slog.Logger
	pagination pagination.Config
	writes     retry.Policy
}

// NewStore creates a PostgreSQL trophy store. Inserts retry only when the
// failed attempt cannot have committed.
func NewStore(db *sql.DB, logger *slog.Logger, pagination pagination.Config, policy retry.Policy) Store {
	writes := policy
	writes.Retryable = repository.IsRetrySafe

	return &repo{
		db:         db,
		logger:     logger.With("store", "trophies"),
		pagination: pagination,
		writes:     writes,
	}
}

const insertTrophy = `
	INSERT INTO trophies(
		user_id, username, criteria_id, criteria_name,
		season, year, value, date_earned
	)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	ON CONFLICT (season, year, criteria_id, user_id) DO NOTHING
	RETURNING id, user_id, username, criteria_id, criteria_name,
			  season, year, value, date_earned`

func (r *repo) Insert(ctx context.Context, records []Record, strict bool) ([]Record, error) {
	return retry.Do(ctx, r.writes, func(ctx context.Context) ([]Record, error) {
		return repository.WithTx(ctx, r.db, func(tx *sql.Tx) ([]Record, error) {
			return insertAll(ctx, tx, records, strict)
		})
	})
}

func insertAll(ctx context.Context, tx *sql.Tx, records []Record, strict bool) ([]Record, error) {
	created := make([]Record, 0, len(records))
	for _, rec := range records {
		args := []any{
			rec.UserID,
			rec.Username,
			rec.CriteriaID,
			rec.CriteriaName,
			string(rec.Season),
			rec.Year,
			rec.Value,
			rec.DateEarned,
		}

		row, err := repository.QueryOptional(ctx, tx, insertTrophy, args, scanRecord)
		if err != nil {
			return nil, fmt.Errorf("insert trophy: %w", err)
		}
		if row == nil {
			if strict {
				return nil, fmt.Errorf("%w: %s to %s for %s %d",
					ErrAlreadyAwarded, rec.CriteriaName, rec.Username, rec.Season, rec.Year)
			}
			continue
		}
		created = append(created, *row)
	}
	return created, nil
}

func (r *repo) List(
	ctx context.Context,
	page pagination.PageRequest,
	filters Filters,
) (*pagination.PageResult[Record], error) {
	page.Normalize(r.pagination)

	qb := query.
		NewBuilder(projection, defaultSort).
		WhereSearch(page.Search, "Username", "CriteriaName")

	filters.Apply(qb)

	if len(page.Sort) > 0 {
		qb.OrderByFields(page.Sort)
	}

	result, err := repository.QueryPage(ctx, r.db, qb, page, scanRecord)
	if err != nil {
		return nil, fmt.Errorf("list trophies: %w", err)
	}
	return result, nil
}

func (r *repo) Find(ctx context.Context, id uuid.UUID) (*Record, error) {
	q, args := query.NewBuilder(projection).BuildSingle("ID", id)

	rec, err := repository.QueryOne(ctx, r.db, q, args, scanRecord)
	if err != nil {
		return nil, repository.MapError(err, ErrNotFound, ErrAlreadyAwarded)
	}
	return &rec, nil
}

func (r *repo) Delete(ctx context.Context, id uuid.UUID) error {
	_, err := repository.WithTx(ctx, r.db, func(tx *sql.Tx) (struct{}, error) {
		return struct{}{}, repository.ExecExpectOne(ctx, tx, "DELETE FROM trophies WHERE id = $1", id)
	})
	if err != nil {
		return repository.MapError(err, ErrNotFound, ErrAlreadyAwarded)
	}

	r.logger.Info("trophy retracted", "id", id)
	return nil
}
