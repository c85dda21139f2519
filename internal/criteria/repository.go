package criteria

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/JaimeStill/cliprank/pkg/pagination"
	"github.com/JaimeStill/cliprank/pkg/query"
	"github.com/JaimeStill/cliprank/pkg/repository"
)

const returning = `RETURNING id, name, description, criteria_type, season, year,
	award_limit, min_value, priority, is_active, created_at, updated_at`

type repo struct {
	db         *sql.DB
	logger     *slog.Logger
	pagination pagination.Config
}

// NewStore creates a PostgreSQL criterion store.
func NewStore(db *sql.DB, logger *slog.Logger, pagination pagination.Config) Store {
	return &repo{
		db:         db,
		logger:     logger.With("store", "criteria"),
		pagination: pagination,
	}
}

func (r *repo) List(
	ctx context.Context,
	page pagination.PageRequest,
	filters Filters,
) (*pagination.PageResult[Criterion], error) {
	page.Normalize(r.pagination)

	qb := query.
		NewBuilder(projection, defaultSort).
		WhereSearch(page.Search, "Name", "Description")

	filters.Apply(qb)

	if len(page.Sort) > 0 {
		qb.OrderByFields(page.Sort)
	}

	result, err := repository.QueryPage(ctx, r.db, qb, page, scanCriterion)
	if err != nil {
		return nil, fmt.Errorf("list criteria: %w", err)
	}
	return result, nil
}

func (r *repo) Find(ctx context.Context, id uuid.UUID) (*Criterion, error) {
	q, args := query.NewBuilder(projection).BuildSingle("ID", id)

	c, err := repository.QueryOne(ctx, r.db, q, args, scanCriterion)
	if err != nil {
		return nil, repository.MapError(err, ErrNotFound, ErrDuplicate)
	}
	return &c, nil
}

func (r *repo) Active(ctx context.Context) ([]Criterion, error) {
	q, args := query.
		NewBuilder(projection, defaultSort, query.SortField{Field: "CreatedAt"}).
		WhereEquals("Active", true).
		Build()

	items, err := repository.QueryMany(ctx, r.db, q, args, scanCriterion)
	if err != nil {
		return nil, fmt.Errorf("query active criteria: %w", err)
	}
	return items, nil
}

func (r *repo) Create(ctx context.Context, cmd CreateCommand) (*Criterion, error) {
	if err := cmd.Normalize(); err != nil {
		return nil, err
	}

	q := `
		INSERT INTO trophy_criteria(
			name, description, criteria_type, season, year,
			award_limit, min_value, priority, is_active
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		` + returning

	c, err := repository.WithTx(ctx, r.db, func(tx *sql.Tx) (Criterion, error) {
		return repository.QueryOne(ctx, tx, q, cmd.args(), scanCriterion)
	})
	if err != nil {
		return nil, repository.MapError(err, ErrNotFound, ErrDuplicate)
	}

	r.logger.Info("criterion created", "id", c.ID, "name", c.Name, "type", c.Type)
	return &c, nil
}

func (r *repo) Update(ctx context.Context, id uuid.UUID, cmd UpdateCommand) (*Criterion, error) {
	if err := cmd.Normalize(); err != nil {
		return nil, err
	}

	q := `
		UPDATE trophy_criteria
		SET name = $1, description = $2, criteria_type = $3, season = $4, year = $5,
			award_limit = $6, min_value = $7, priority = $8, is_active = $9,
			updated_at = NOW()
		WHERE id = $10
		` + returning

	c, err := repository.WithTx(ctx, r.db, func(tx *sql.Tx) (Criterion, error) {
		return repository.QueryOne(ctx, tx, q, append(cmd.args(), id), scanCriterion)
	})
	if err != nil {
		return nil, repository.MapError(err, ErrNotFound, ErrDuplicate)
	}

	r.logger.Info("criterion updated", "id", c.ID, "name", c.Name)
	return &c, nil
}

func (r *repo) Upsert(ctx context.Context, cmd CreateCommand) (*Criterion, error) {
	if err := cmd.Normalize(); err != nil {
		return nil, err
	}

	q := `
		INSERT INTO trophy_criteria(
			name, description, criteria_type, season, year,
			award_limit, min_value, priority, is_active
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		ON CONFLICT (name) DO UPDATE SET
			description = EXCLUDED.description,
			criteria_type = EXCLUDED.criteria_type,
			season = EXCLUDED.season,
			year = EXCLUDED.year,
			award_limit = EXCLUDED.award_limit,
			min_value = EXCLUDED.min_value,
			priority = EXCLUDED.priority,
			is_active = EXCLUDED.is_active,
			updated_at = NOW()
		` + returning

	c, err := repository.WithTx(ctx, r.db, func(tx *sql.Tx) (Criterion, error) {
		return repository.QueryOne(ctx, tx, q, cmd.args(), scanCriterion)
	})
	if err != nil {
		return nil, repository.MapError(err, ErrNotFound, ErrDuplicate)
	}
	return &c, nil
}

func (r *repo) Delete(ctx context.Context, id uuid.UUID) error {
	_, err := repository.WithTx(ctx, r.db, func(tx *sql.Tx) (struct{}, error) {
		return struct{}{}, repository.ExecExpectOne(ctx, tx,
			"DELETE FROM trophy_criteria WHERE id = $1", id)
	})
	if err != nil {
		return repository.MapError(err, ErrNotFound, ErrDuplicate)
	}

	r.logger.Info("criterion deleted", "id", id)
	return nil
}
