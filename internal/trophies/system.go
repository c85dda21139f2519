package trophies

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"path"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/JaimeStill/cliprank/internal/criteria"
	"github.com/JaimeStill/cliprank/internal/seasons"
	"github.com/JaimeStill/cliprank/pkg/events"
	"github.com/JaimeStill/cliprank/pkg/metrics"
	"github.com/JaimeStill/cliprank/pkg/pagination"
	"github.com/JaimeStill/cliprank/pkg/storage"
)

const tracerName = "github.com/JaimeStill/cliprank/internal/trophies"

// System previews and commits season awards.
type System interface {
	Handler() *Handler

	// Preview evaluates every applicable criterion without writing.
	Preview(ctx context.Context, season seasons.Season, year int) (*criteria.AllResult, error)
	// Commit records the season's winners and returns the newly created records.
	// Committing a season again creates nothing new.
	Commit(ctx context.Context, cmd CommitCommand) ([]Record, error)

	List(ctx context.Context, page pagination.PageRequest, filters Filters) (*pagination.PageResult[Record], error)
	Find(ctx context.Context, id uuid.UUID) (*Record, error)
	// Retract deletes a committed record.
	Retract(ctx context.Context, id uuid.UUID) error
	// Archive returns the stored report of the season's latest commit.
	Archive(ctx context.Context, season seasons.Season, year int) (*Report, error)
	// Archives lists the archived reports, oldest season first.
	Archives(ctx context.Context) ([]ArchiveEntry, error)
	// DeleteArchive removes a season's stored report. Its trophies remain.
	DeleteArchive(ctx context.Context, season seasons.Season, year int) error
}

type system struct {
	store      Store
	criteria   criteria.System
	archive    storage.System
	prefix     string
	publisher  events.Publisher
	metrics    *metrics.Metrics
	logger     *slog.Logger
	pagination pagination.Config
	tracer     trace.Tracer
	now        func() time.Time
}

// Deps groups the collaborators of the trophy system.
type Deps struct {
	Store     Store
	Criteria  criteria.System
	Archive   storage.System
	Publisher events.Publisher
	Metrics   *metrics.Metrics
	Logger    *slog.Logger
	// Prefix is the storage path reports are archived under.
	Prefix     string
	Pagination pagination.Config
	// Now overrides the award clock. Defaults to time.Now.
	Now func() time.Time
	// Tracer provides the commit spans. Defaults to the global provider.
	Tracer trace.TracerProvider
}

// New creates the trophy system.
func New(deps Deps) System {
	now := deps.Now
	if now == nil {
		now = time.Now
	}

	return &system{
		store:      deps.Store,
		criteria:   deps.Criteria,
		archive:    deps.Archive,
		prefix:     deps.Prefix,
		publisher:  deps.Publisher,
		metrics:    deps.Metrics,
		logger:     deps.Logger.With("system", "trophies"),
		pagination: deps.Pagination,
		tracer:     tracerFrom(deps.Tracer),
		now:        now,
	}
}

// ArchiveKey is the storage key of a season report.
func ArchiveKey(prefix string, season seasons.Season, year int) string {
	return path.Join(prefix, fmt.Sprintf("%d-%s.json", year, season))
}

// ParseArchiveKey reverses ArchiveKey. It reports false for keys that do not
// name a season report.
func ParseArchiveKey(key string) (ArchiveEntry, bool) {
	name, ok := strings.CutSuffix(path.Base(key), ".json")
	if !ok {
		return ArchiveEntry{}, false
	}

	rawYear, rawSeason, ok := strings.Cut(name, "-")
	if !ok {
		return ArchiveEntry{}, false
	}

	year, err := strconv.Atoi(rawYear)
	if err != nil {
		return ArchiveEntry{}, false
	}
	season, err := seasons.Parse(rawSeason)
	if err != nil {
		return ArchiveEntry{}, false
	}

	return ArchiveEntry{Season: season, Year: year, Key: key}, true
}

func (s *system) Handler() *Handler {
	return NewHandler(s, s.logger, s.pagination)
}

func (s *system) Preview(ctx context.Context, season seasons.Season, year int) (*criteria.AllResult, error) {
	return s.criteria.EvaluateAll(ctx, criteria.Options{
		Season:      season,
		Year:        year,
		PreviewOnly: true,
	})
}

func (s *system) Commit(ctx context.Context, cmd CommitCommand) ([]Record, error) {
	ctx, span := s.tracer.Start(ctx, "trophies.Commit", trace.WithAttributes(
		attribute.String("season", string(cmd.Season)),
		attribute.Int("year", cmd.Year),
		attribute.Bool("strict", cmd.Strict),
	))
	defer span.End()

	all, err := s.criteria.EvaluateAll(ctx, criteria.Options{
		Season: cmd.Season,
		Year:   cmd.Year,
	})
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		return nil, fmt.Errorf("evaluate season: %w", err)
	}

	committedAt := s.now().UTC()

	created, err := s.store.Insert(ctx, Records(all, committedAt), cmd.Strict)
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	span.SetAttributes(attribute.Int("awarded", len(created)))
	s.metrics.TrophiesCommitted(len(created))
	s.logger.Info(
		"season committed",
		"season", cmd.Season,
		"year", cmd.Year,
		"evaluated", all.TotalTrophies,
		"awarded", len(created),
	)

	for _, rec := range created {
		event := events.New(EventCommitted, rec.UserID.String(), rec)
		if err := s.publisher.Publish(ctx, event); err != nil {
			s.logger.Error("trophy event publish failed", "id", rec.ID, "error", err)
		}
	}

	if len(created) > 0 {
		s.archiveReport(ctx, Report{
			Season:      cmd.Season,
			Year:        cmd.Year,
			CommittedAt: committedAt,
			Evaluation:  all,
			Awarded:     created,
		})
	}

	return created, nil
}

func (s *system) List(ctx context.Context, page pagination.PageRequest, filters Filters) (*pagination.PageResult[Record], error) {
	return s.store.List(ctx, page, filters)
}

func (s *system) Find(ctx context.Context, id uuid.UUID) (*Record, error) {
	return s.store.Find(ctx, id)
}

func (s *system) Retract(ctx context.Context, id uuid.UUID) error {
	return s.store.Delete(ctx, id)
}

func (s *system) Archive(ctx context.Context, season seasons.Season, year int) (*Report, error) {
	data, err := s.archive.Get(ctx, ArchiveKey(s.prefix, season, year))
	if err != nil {
		return nil, err
	}

	var report Report
	if err := json.Unmarshal(data, &report); err != nil {
		return nil, fmt.Errorf("decode season report: %w", err)
	}
	return &report, nil
}

func (s *system) Archives(ctx context.Context) ([]ArchiveEntry, error) {
	prefix := s.prefix
	if prefix != "" {
		prefix += "/"
	}

	keys, err := s.archive.List(ctx, prefix)
	if err != nil {
		return nil, fmt.Errorf("list season reports: %w", err)
	}

	entries := make([]ArchiveEntry, 0, len(keys))
	for _, key := range keys {
		if entry, ok := ParseArchiveKey(key); ok {
			entries = append(entries, entry)
		}
	}

	slices.SortFunc(entries, func(a, b ArchiveEntry) int {
		if a.Year != b.Year {
			return a.Year - b.Year
		}
		return seasons.Compare(a.Season, b.Season)
	})
	return entries, nil
}

func (s *system) DeleteArchive(ctx context.Context, season seasons.Season, year int) error {
	key := ArchiveKey(s.prefix, season, year)
	if err := s.archive.Delete(ctx, key); err != nil {
		return err
	}

	s.logger.Info("season report deleted", "key", key)
	return nil
}

// archiveReport archives the report, keeping the records of earlier commits
// of the season ahead of the new ones. Failures are logged; the commit stands.
func (s *system) archiveReport(ctx context.Context, report Report) {
	prev, err := s.Archive(ctx, report.Season, report.Year)
	switch {
	case err == nil:
		report.Awarded = mergeAwarded(prev.Awarded, report.Awarded)
	case !errors.Is(err, storage.ErrNotFound):
		s.logger.Warn("previous season report unreadable, replacing it", "season", report.Season, "year", report.Year, "error", err)
	}

	data, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		s.logger.Error("season report encode failed", "error", err)
		return
	}

	key := ArchiveKey(s.prefix, report.Season, report.Year)
	if err := s.archive.Put(ctx, key, data, "application/json"); err != nil {
		s.logger.Error("season report archive failed", "key", key, "error", err)
		return
	}

	s.logger.Info("season report archived", "key", key)
}

// mergeAwarded adds created to prev. A record re-awarded after a retraction
// replaces the archived one with the same key.
func mergeAwarded(prev, created []Record) []Record {
	out := slices.Clone(prev)
	for _, rec := range created {
		i := slices.IndexFunc(out, func(r Record) bool { return r.Key() == rec.Key() })
		if i < 0 {
			out = append(out, rec)
			continue
		}
		out[i] = rec
	}
	return out
}

func tracerFrom(tp trace.TracerProvider) trace.Tracer {
	if tp == nil {
		tp = otel.GetTracerProvider()
	}
	return tp.Tracer(tracerName)
}
