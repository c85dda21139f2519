package criteria

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"runtime"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"

	"github.com/JaimeStill/cliprank/internal/judgments"
	"github.com/JaimeStill/cliprank/internal/seasons"
	"github.com/JaimeStill/cliprank/pkg/metrics"
	"github.com/JaimeStill/cliprank/pkg/pagination"
)

const tracerName = "github.com/JaimeStill/cliprank/internal/criteria"

var validate = validator.New()

// System manages criteria and evaluates them against season judgments.
// Evaluation never writes.
type System interface {
	Handler() *Handler

	List(ctx context.Context, page pagination.PageRequest, filters Filters) (*pagination.PageResult[Criterion], error)
	Find(ctx context.Context, id uuid.UUID) (*Criterion, error)
	Active(ctx context.Context) ([]Criterion, error)
	Create(ctx context.Context, cmd CreateCommand) (*Criterion, error)
	Update(ctx context.Context, id uuid.UUID, cmd UpdateCommand) (*Criterion, error)
	Delete(ctx context.Context, id uuid.UUID) error

	// Seed upserts every entry of a YAML catalog file by name.
	Seed(ctx context.Context, path string) (int, error)

	// Evaluate ranks users under one criterion for the season in opts.
	Evaluate(ctx context.Context, c Criterion, opts Options) (Result, error)
	// EvaluateAll evaluates every active criterion that applies to the season.
	// A failing criterion carries its own error; cancellation aborts the batch.
	EvaluateAll(ctx context.Context, opts Options) (*AllResult, error)
}

type system struct {
	store      Store
	judgments  judgments.Store
	resolve    seasons.Resolver
	metrics    *metrics.Metrics
	logger     *slog.Logger
	pagination pagination.Config
	tracer     trace.Tracer
}

// Deps groups the collaborators of the criteria system.
type Deps struct {
	Store      Store
	Judgments  judgments.Store
	Metrics    *metrics.Metrics
	Logger     *slog.Logger
	Pagination pagination.Config
	// Resolve maps a season to its window. Defaults to seasons.Calendar.
	Resolve seasons.Resolver
	// Tracer provides the spans of season evaluation. Defaults to the
	// global provider.
	Tracer trace.TracerProvider
}

// New creates the criteria system.
func New(deps Deps) System {
	resolve := deps.Resolve
	if resolve == nil {
		resolve = seasons.Calendar
	}

	return &system{
		store:      deps.Store,
		judgments:  deps.Judgments,
		resolve:    resolve,
		metrics:    deps.Metrics,
		logger:     deps.Logger.With("system", "criteria"),
		pagination: deps.Pagination,
		tracer:     tracerFrom(deps.Tracer),
	}
}

func (s *system) Handler() *Handler {
	return NewHandler(s, s.logger, s.pagination)
}

func (s *system) List(ctx context.Context, page pagination.PageRequest, filters Filters) (*pagination.PageResult[Criterion], error) {
	return s.store.List(ctx, page, filters)
}

func (s *system) Find(ctx context.Context, id uuid.UUID) (*Criterion, error) {
	return s.store.Find(ctx, id)
}

func (s *system) Active(ctx context.Context) ([]Criterion, error) {
	return s.store.Active(ctx)
}

func (s *system) Create(ctx context.Context, cmd CreateCommand) (*Criterion, error) {
	return s.store.Create(ctx, cmd)
}

func (s *system) Update(ctx context.Context, id uuid.UUID, cmd UpdateCommand) (*Criterion, error) {
	return s.store.Update(ctx, id, cmd)
}

func (s *system) Delete(ctx context.Context, id uuid.UUID) error {
	return s.store.Delete(ctx, id)
}

func (s *system) Seed(ctx context.Context, path string) (int, error) {
	cmds, err := LoadCatalog(path)
	if err != nil {
		return 0, err
	}

	for _, cmd := range cmds {
		if _, err := s.store.Upsert(ctx, cmd); err != nil {
			return 0, fmt.Errorf("seed criterion %q: %w", cmd.Name, err)
		}
	}

	s.logger.Info("criteria catalog seeded", "path", path, "count", len(cmds))
	return len(cmds), nil
}

func (s *system) Evaluate(ctx context.Context, c Criterion, opts Options) (Result, error) {
	ctx, span := s.tracer.Start(ctx, "criteria.Evaluate", trace.WithAttributes(
		attribute.String("criterion.id", c.ID.String()),
		attribute.String("criterion.type", string(c.Type)),
		attribute.String("season", string(opts.Season)),
		attribute.Int("year", opts.Year),
	))
	defer span.End()

	w, err := s.resolve(opts.Season, opts.Year)
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		return Result{}, err
	}

	js, err := s.load(ctx, w)
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		return Result{}, err
	}

	result := s.rank(c, js, w, opts)
	span.SetAttributes(attribute.Int("winners", result.TotalWinners))
	return result, nil
}

func (s *system) EvaluateAll(ctx context.Context, opts Options) (*AllResult, error) {
	ctx, span := s.tracer.Start(ctx, "criteria.EvaluateAll", trace.WithAttributes(
		attribute.String("season", string(opts.Season)),
		attribute.Int("year", opts.Year),
	))
	defer span.End()

	w, err := s.resolve(opts.Season, opts.Year)
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	active, err := s.store.Active(ctx)
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		return nil, fmt.Errorf("load active criteria: %w", err)
	}

	applicable := make([]Criterion, 0, len(active))
	for _, c := range active {
		if c.AppliesTo(opts.Season, opts.Year) {
			applicable = append(applicable, c)
		}
	}

	js, err := s.load(ctx, w)
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	results := make([]Result, len(applicable))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(runtime.GOMAXPROCS(0))

	for i, c := range applicable {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			results[i] = s.rank(c, js, w, opts)
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	all := &AllResult{
		Season:        opts.Season,
		Year:          opts.Year,
		TotalCriteria: len(results),
		Preview:       opts.PreviewOnly,
		Criteria:      results,
	}
	for _, r := range results {
		all.TotalTrophies += r.TotalWinners
	}

	span.SetAttributes(
		attribute.Int("criteria", all.TotalCriteria),
		attribute.Int("trophies", all.TotalTrophies),
	)
	s.logger.Info(
		"criteria evaluated",
		"season", opts.Season,
		"year", opts.Year,
		"criteria", all.TotalCriteria,
		"trophies", all.TotalTrophies,
	)
	return all, nil
}

func (s *system) load(ctx context.Context, w seasons.Window) ([]judgments.Judgment, error) {
	js, err := s.judgments.ListInRange(ctx, judgments.Range{Start: &w.Start, End: &w.End})
	if err != nil {
		return nil, fmt.Errorf("load season judgments: %w", err)
	}
	return js, nil
}

// rank turns a ranking failure or an empty field into the result's error.
func (s *system) rank(c Criterion, js []judgments.Judgment, w seasons.Window, opts Options) Result {
	started := time.Now()
	defer s.metrics.ObserveEvaluation(string(c.Type), started)

	result := Result{
		CriteriaID:   c.ID,
		CriteriaName: c.Name,
		CriteriaType: c.Type,
		Season:       opts.Season,
		Year:         opts.Year,
		Preview:      opts.PreviewOnly,
		Winners:      []Winner{},
	}

	winners, err := Rank(c, js, w)
	switch {
	case errors.Is(err, ErrUnknownType):
		result.Error = fmt.Sprintf("unknown criteria type: %s", c.Type)
	case err != nil:
		result.Error = err.Error()
	case len(winners) == 0:
		result.Error = NoWinners
	default:
		result.Winners = winners
		result.TotalWinners = len(winners)
	}

	if result.Error != "" {
		s.logger.Debug("criterion produced no winners", "criterion", c.Name, "reason", result.Error)
	}
	return result
}

func tracerFrom(tp trace.TracerProvider) trace.Tracer {
	if tp == nil {
		tp = otel.GetTracerProvider()
	}
	return tp.Tracer(tracerName)
}
