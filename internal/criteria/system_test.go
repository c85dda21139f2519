package criteria_test

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"

	"github.com/JaimeStill/cliprank/internal/criteria"
	"github.com/JaimeStill/cliprank/internal/judgments"
	"github.com/JaimeStill/cliprank/internal/seasons"
	"github.com/JaimeStill/cliprank/pkg/pagination"
)

var page = pagination.Config{DefaultPageSize: 20, MaxPageSize: 100}

func newSystem(t *testing.T, js ...judgments.Judgment) (criteria.System, judgments.Store) {
	t.Helper()

	store := judgments.NewMemory(page)
	for _, j := range js {
		_, err := store.Toggle(context.Background(), j)
		require.NoError(t, err)
	}

	sys := criteria.New(criteria.Deps{
		Store:      criteria.NewMemoryStore(page),
		Judgments:  store,
		Logger:     slog.New(slog.DiscardHandler),
		Pagination: page,
	})
	return sys, store
}

func ptr[T any](v T) *T { return &v }

func TestCreateNormalizes(t *testing.T) {
	sys, _ := newSystem(t)
	ctx := context.Background()

	c, err := sys.Create(ctx, criteria.CreateCommand{Name: "Critic", Type: "most_ratings"})
	require.NoError(t, err)
	assert.Equal(t, criteria.TopRaterCount, c.Type)
	assert.Equal(t, 1, c.AwardLimit)
	assert.Equal(t, 1.0, c.MinValue)
	assert.True(t, c.Active)

	_, err = sys.Create(ctx, criteria.CreateCommand{Name: "Critic", Type: criteria.MostDenied})
	assert.ErrorIs(t, err, criteria.ErrDuplicate)

	_, err = sys.Create(ctx, criteria.CreateCommand{Name: "Custom", Type: "custom"})
	assert.ErrorIs(t, err, criteria.ErrUnknownType)

	_, err = sys.Create(ctx, criteria.CreateCommand{Type: criteria.MostDenied})
	assert.ErrorIs(t, err, criteria.ErrInvalid)

	bad := seasons.Season("monsoon")
	_, err = sys.Create(ctx, criteria.CreateCommand{Name: "Wet", Type: criteria.MostDenied, Season: &bad})
	assert.ErrorIs(t, err, criteria.ErrInvalid)
}

func TestUpdateAndDelete(t *testing.T) {
	sys, _ := newSystem(t)
	ctx := context.Background()

	a, err := sys.Create(ctx, criteria.CreateCommand{Name: "A", Type: criteria.MostDenied})
	require.NoError(t, err)
	_, err = sys.Create(ctx, criteria.CreateCommand{Name: "B", Type: criteria.MostDenied})
	require.NoError(t, err)

	_, err = sys.Update(ctx, a.ID, criteria.UpdateCommand{Name: "B", Type: criteria.MostDenied})
	assert.ErrorIs(t, err, criteria.ErrDuplicate)

	updated, err := sys.Update(ctx, a.ID, criteria.UpdateCommand{Name: "A2", Type: criteria.MostOneRatings, AwardLimit: 3})
	require.NoError(t, err)
	assert.Equal(t, a.ID, updated.ID)
	assert.Equal(t, 3, updated.AwardLimit)
	assert.Equal(t, a.CreatedAt, updated.CreatedAt)

	require.NoError(t, sys.Delete(ctx, a.ID))
	_, err = sys.Find(ctx, a.ID)
	assert.ErrorIs(t, err, criteria.ErrNotFound)
	assert.ErrorIs(t, sys.Delete(ctx, a.ID), criteria.ErrNotFound)
}

func TestActiveOrderedByPriority(t *testing.T) {
	sys, _ := newSystem(t)
	ctx := context.Background()

	for _, cmd := range []criteria.CreateCommand{
		{Name: "low", Type: criteria.MostDenied, Priority: 1},
		{Name: "high", Type: criteria.MostDenied, Priority: 10},
		{Name: "off", Type: criteria.MostDenied, Priority: 99, Active: ptr(false)},
	} {
		_, err := sys.Create(ctx, cmd)
		require.NoError(t, err)
	}

	active, err := sys.Active(ctx)
	require.NoError(t, err)
	require.Len(t, active, 2)
	assert.Equal(t, "high", active[0].Name)
	assert.Equal(t, "low", active[1].Name)

	result, err := sys.List(ctx, pagination.PageRequest{Page: 1, PageSize: 10}, criteria.Filters{Active: ptr(false)})
	require.NoError(t, err)
	require.Equal(t, 1, result.Total)
	assert.Equal(t, "off", result.Data[0].Name)
}

func TestEvaluateNoWinners(t *testing.T) {
	sys, _ := newSystem(t)
	ctx := context.Background()

	c, err := sys.Create(ctx, criteria.CreateCommand{Name: "Gatekeeper", Type: criteria.MostDenied})
	require.NoError(t, err)

	result, err := sys.Evaluate(ctx, *c, criteria.Options{Season: seasons.Spring, Year: 2025, PreviewOnly: true})
	require.NoError(t, err)
	assert.Equal(t, criteria.NoWinners, result.Error)
	assert.Zero(t, result.TotalWinners)
	assert.NotNil(t, result.Winners)
	assert.True(t, result.Preview)
}

func TestEvaluateInvalidSeason(t *testing.T) {
	sys, _ := newSystem(t)

	_, err := sys.Evaluate(context.Background(), criteria.Criterion{Type: criteria.MostDenied},
		criteria.Options{Season: "monsoon", Year: 2025})
	assert.ErrorIs(t, err, seasons.ErrInvalidSeason)
}

func TestEvaluateAll(t *testing.T) {
	alice, bob := newRater("alice"), newRater("bob")
	sys, _ := newSystem(t,
		alice.rate(judgments.One, "2025-04-01T10:00:00Z"),
		alice.rate(judgments.Deny, "2025-04-02T10:00:00Z"),
		bob.rate(judgments.Four, "2025-04-01T10:00:00Z"),
		bob.rate(judgments.Deny, "2024-12-30T10:00:00Z"),
	)
	ctx := context.Background()

	fall := seasons.Fall
	for _, cmd := range []criteria.CreateCommand{
		{Name: "Critic", Type: criteria.TopRaterCount, AwardLimit: 2, Priority: 10},
		{Name: "Gatekeeper", Type: criteria.MostDenied, Priority: 20},
		{Name: "Autumn Only", Type: criteria.TopRaterCount, Season: &fall},
		{Name: "Retired", Type: criteria.TopRaterCount, Active: ptr(false)},
		{Name: "Tough Crowd", Type: criteria.MostOneRatings, MinValue: 5},
	} {
		_, err := sys.Create(ctx, cmd)
		require.NoError(t, err)
	}

	all, err := sys.EvaluateAll(ctx, criteria.Options{Season: seasons.Spring, Year: 2025})
	require.NoError(t, err)

	require.Equal(t, 3, all.TotalCriteria)
	assert.Equal(t, "Gatekeeper", all.Criteria[0].CriteriaName)
	assert.Equal(t, "Critic", all.Criteria[1].CriteriaName)
	assert.Equal(t, "Tough Crowd", all.Criteria[2].CriteriaName)

	assert.Equal(t, []string{"alice"}, names(all.Criteria[0].Winners))
	assert.Equal(t, 2, all.Criteria[1].TotalWinners)
	assert.Equal(t, criteria.NoWinners, all.Criteria[2].Error)
	assert.Equal(t, 3, all.TotalTrophies)
	assert.False(t, all.Preview)
}

func TestEvaluationTraced(t *testing.T) {
	spans := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(spans))
	t.Cleanup(func() { _ = tp.Shutdown(context.Background()) })

	alice := newRater("alice")
	store := judgments.NewMemory(page)
	_, err := store.Toggle(context.Background(), alice.rate(judgments.Deny, "2025-04-02T10:00:00Z"))
	require.NoError(t, err)

	sys := criteria.New(criteria.Deps{
		Store:      criteria.NewMemoryStore(page),
		Judgments:  store,
		Logger:     slog.New(slog.DiscardHandler),
		Pagination: page,
		Tracer:     tp,
	})
	ctx := context.Background()

	c, err := sys.Create(ctx, criteria.CreateCommand{Name: "Gatekeeper", Type: criteria.MostDenied})
	require.NoError(t, err)

	_, err = sys.Evaluate(ctx, *c, criteria.Options{Season: seasons.Spring, Year: 2025})
	require.NoError(t, err)
	_, err = sys.EvaluateAll(ctx, criteria.Options{Season: seasons.Spring, Year: 2025})
	require.NoError(t, err)
	_, err = sys.Evaluate(ctx, *c, criteria.Options{Season: "monsoon", Year: 2025})
	require.Error(t, err)

	ended := spans.Ended()
	require.Len(t, ended, 3)

	assert.Equal(t, "criteria.Evaluate", ended[0].Name())
	assert.Contains(t, ended[0].Attributes(), attribute.String("criterion.type", string(criteria.MostDenied)))
	assert.Contains(t, ended[0].Attributes(), attribute.Int("winners", 1))

	assert.Equal(t, "criteria.EvaluateAll", ended[1].Name())
	assert.Contains(t, ended[1].Attributes(), attribute.Int("trophies", 1))

	assert.Equal(t, codes.Error, ended[2].Status().Code)
}

func TestEvaluateAllCancelled(t *testing.T) {
	sys, _ := newSystem(t)
	ctx, cancel := context.WithCancel(context.Background())

	_, err := sys.Create(ctx, criteria.CreateCommand{Name: "Critic", Type: criteria.TopRaterCount})
	require.NoError(t, err)

	cancel()
	_, err = sys.EvaluateAll(ctx, criteria.Options{Season: seasons.Spring, Year: 2025})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestSeed(t *testing.T) {
	sys, _ := newSystem(t)
	ctx := context.Background()

	path := filepath.Join(t.TempDir(), "criteria.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
criteria:
  - name: Critic
    type: most_ratings
    award_limit: 3
  - name: Gatekeeper
    type: mostDenied
    min_value: 5
`), 0o600))

	n, err := sys.Seed(ctx, path)
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	n, err = sys.Seed(ctx, path)
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	active, err := sys.Active(ctx)
	require.NoError(t, err)
	assert.Len(t, active, 2)

	_, err = sys.Seed(ctx, filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}
