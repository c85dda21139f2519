package trophies_test

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/attribute"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"

	"github.com/JaimeStill/cliprank/internal/criteria"
	"github.com/JaimeStill/cliprank/internal/judgments"
	"github.com/JaimeStill/cliprank/internal/seasons"
	"github.com/JaimeStill/cliprank/internal/trophies"
	"github.com/JaimeStill/cliprank/pkg/events"
	"github.com/JaimeStill/cliprank/pkg/faults"
	"github.com/JaimeStill/cliprank/pkg/pagination"
	"github.com/JaimeStill/cliprank/pkg/routes"
	"github.com/JaimeStill/cliprank/pkg/storage"
)

var page = pagination.Config{DefaultPageSize: 20, MaxPageSize: 100}

type fixture struct {
	sys      trophies.System
	criteria criteria.System
	archive  storage.System
	recorder *events.Recorder
	spans    *tracetest.SpanRecorder
	alice    uuid.UUID
	bob      uuid.UUID
}

func rate(user uuid.UUID, name string, v judgments.Value, ts string) judgments.Judgment {
	t, err := time.Parse(time.RFC3339, ts)
	if err != nil {
		panic(err)
	}
	return judgments.Judgment{ClipID: uuid.New(), UserID: user, Username: name, Value: v, Timestamp: t}
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	ctx := context.Background()
	logger := slog.New(slog.DiscardHandler)

	f := &fixture{
		archive:  storage.NewMemory(),
		recorder: &events.Recorder{},
		spans:    tracetest.NewSpanRecorder(),
		alice:    uuid.New(),
		bob:      uuid.New(),
	}

	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(f.spans))
	t.Cleanup(func() { _ = tp.Shutdown(context.Background()) })

	store := judgments.NewMemory(page)
	for _, j := range []judgments.Judgment{
		rate(f.alice, "alice", judgments.One, "2025-04-01T10:00:00Z"),
		rate(f.alice, "alice", judgments.Deny, "2025-04-02T10:00:00Z"),
		rate(f.bob, "bob", judgments.Four, "2025-04-03T10:00:00Z"),
	} {
		_, err := store.Toggle(ctx, j)
		require.NoError(t, err)
	}

	f.criteria = criteria.New(criteria.Deps{
		Store:      criteria.NewMemoryStore(page),
		Judgments:  store,
		Logger:     logger,
		Pagination: page,
		Tracer:     tp,
	})

	for _, cmd := range []criteria.CreateCommand{
		{Name: "Critic", Type: criteria.TopRaterCount, AwardLimit: 2, Priority: 2},
		{Name: "Gatekeeper", Type: criteria.MostDenied, Priority: 1},
		{Name: "Tough Crowd", Type: criteria.MostOneRatings, MinValue: 10},
	} {
		_, err := f.criteria.Create(ctx, cmd)
		require.NoError(t, err)
	}

	f.sys = trophies.New(trophies.Deps{
		Store:      trophies.NewMemoryStore(page),
		Criteria:   f.criteria,
		Archive:    f.archive,
		Publisher:  f.recorder,
		Logger:     logger,
		Prefix:     "reports",
		Pagination: page,
		Now:        func() time.Time { return time.Date(2025, time.June, 21, 9, 0, 0, 0, time.UTC) },
		Tracer:     tp,
	})
	return f
}

func spring() trophies.CommitCommand {
	return trophies.CommitCommand{Season: seasons.Spring, Year: 2025}
}

func TestPreviewWritesNothing(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	all, err := f.sys.Preview(ctx, seasons.Spring, 2025)
	require.NoError(t, err)
	assert.True(t, all.Preview)
	assert.Equal(t, 3, all.TotalCriteria)
	assert.Equal(t, 3, all.TotalTrophies)

	listed, err := f.sys.List(ctx, pagination.PageRequest{Page: 1, PageSize: 10}, trophies.Filters{})
	require.NoError(t, err)
	assert.Zero(t, listed.Total)
	assert.Empty(t, f.recorder.Events())
}

func TestCommitIdempotent(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	first, err := f.sys.Commit(ctx, spring())
	require.NoError(t, err)
	require.Len(t, first, 3)
	for _, rec := range first {
		assert.Equal(t, seasons.Spring, rec.Season)
		assert.Equal(t, 2025, rec.Year)
		assert.NotEqual(t, uuid.Nil, rec.ID)
	}

	second, err := f.sys.Commit(ctx, spring())
	require.NoError(t, err)
	assert.Empty(t, second)

	listed, err := f.sys.List(ctx, pagination.PageRequest{Page: 1, PageSize: 10}, trophies.Filters{})
	require.NoError(t, err)
	assert.Equal(t, 3, listed.Total)

	assert.Len(t, f.recorder.OfType(trophies.EventCommitted), 3)
}

func TestCommitStrict(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.sys.Commit(ctx, spring())
	require.NoError(t, err)

	cmd := spring()
	cmd.Strict = true
	_, err = f.sys.Commit(ctx, cmd)
	assert.ErrorIs(t, err, trophies.ErrAlreadyAwarded)
	assert.ErrorIs(t, err, faults.ErrAlreadyAwarded)

	listed, err := f.sys.List(ctx, pagination.PageRequest{Page: 1, PageSize: 10}, trophies.Filters{})
	require.NoError(t, err)
	assert.Equal(t, 3, listed.Total)
}

func TestCommitEmptySeason(t *testing.T) {
	f := newFixture(t)

	created, err := f.sys.Commit(context.Background(), trophies.CommitCommand{Season: seasons.Fall, Year: 2025})
	require.NoError(t, err)
	assert.Empty(t, created)
}

func TestCommitArchivesReport(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	created, err := f.sys.Commit(ctx, spring())
	require.NoError(t, err)

	ok, err := f.archive.Exists(ctx, trophies.ArchiveKey("reports", seasons.Spring, 2025))
	require.NoError(t, err)
	assert.True(t, ok)

	report, err := f.sys.Archive(ctx, seasons.Spring, 2025)
	require.NoError(t, err)
	assert.Len(t, report.Awarded, len(created))
	assert.Equal(t, 3, report.Evaluation.TotalCriteria)
	assert.True(t, report.CommittedAt.Equal(time.Date(2025, time.June, 21, 9, 0, 0, 0, time.UTC)))

	_, err = f.sys.Archive(ctx, seasons.Summer, 2025)
	assert.ErrorIs(t, err, faults.ErrNotFound)
}

func TestRecommitKeepsArchivedAwards(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	first, err := f.sys.Commit(ctx, spring())
	require.NoError(t, err)
	require.Len(t, first, 3)

	again, err := f.sys.Commit(ctx, spring())
	require.NoError(t, err)
	require.Empty(t, again)

	report, err := f.sys.Archive(ctx, seasons.Spring, 2025)
	require.NoError(t, err)
	assert.ElementsMatch(t, first, report.Awarded)
}

func TestRecommitAfterRetractUpdatesArchive(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	first, err := f.sys.Commit(ctx, spring())
	require.NoError(t, err)
	require.NoError(t, f.sys.Retract(ctx, first[0].ID))

	again, err := f.sys.Commit(ctx, spring())
	require.NoError(t, err)
	require.Len(t, again, 1)

	report, err := f.sys.Archive(ctx, seasons.Spring, 2025)
	require.NoError(t, err)
	require.Len(t, report.Awarded, 3)

	ids := make([]uuid.UUID, 0, len(report.Awarded))
	for _, rec := range report.Awarded {
		ids = append(ids, rec.ID)
	}
	assert.Contains(t, ids, again[0].ID)
	assert.NotContains(t, ids, first[0].ID)
}

func TestEmptyCommitArchivesNothing(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.sys.Commit(ctx, trophies.CommitCommand{Season: seasons.Fall, Year: 2025})
	require.NoError(t, err)

	_, err = f.sys.Archive(ctx, seasons.Fall, 2025)
	assert.ErrorIs(t, err, faults.ErrNotFound)
}

func TestCommitTraced(t *testing.T) {
	f := newFixture(t)

	_, err := f.sys.Commit(context.Background(), spring())
	require.NoError(t, err)

	byName := make(map[string]sdktrace.ReadOnlySpan)
	for _, span := range f.spans.Ended() {
		byName[span.Name()] = span
	}

	commit, ok := byName["trophies.Commit"]
	require.True(t, ok, "commit span not recorded")
	assert.Contains(t, commit.Attributes(), attribute.Int("awarded", 3))
	assert.Contains(t, commit.Attributes(), attribute.String("season", "spring"))

	all, ok := byName["criteria.EvaluateAll"]
	require.True(t, ok, "evaluation span not recorded")
	assert.Equal(t, commit.SpanContext().TraceID(), all.SpanContext().TraceID())
	assert.Equal(t, commit.SpanContext().SpanID(), all.Parent().SpanID())
}

func TestArchiveKey(t *testing.T) {
	assert.Equal(t, "reports/2025-spring.json", trophies.ArchiveKey("reports", seasons.Spring, 2025))
	assert.Equal(t, "2024-winter.json", trophies.ArchiveKey("", seasons.Winter, 2024))
}

func TestParseArchiveKey(t *testing.T) {
	tests := []struct {
		key  string
		want trophies.ArchiveEntry
		ok   bool
	}{
		{"reports/2025-spring.json", trophies.ArchiveEntry{Season: seasons.Spring, Year: 2025, Key: "reports/2025-spring.json"}, true},
		{"2024-Winter.json", trophies.ArchiveEntry{Season: seasons.Winter, Year: 2024, Key: "2024-Winter.json"}, true},
		{"reports/2025-spring.txt", trophies.ArchiveEntry{}, false},
		{"reports/notes.json", trophies.ArchiveEntry{}, false},
		{"reports/later-fall.json", trophies.ArchiveEntry{}, false},
		{"reports/2025-monsoon.json", trophies.ArchiveEntry{}, false},
	}

	for _, tt := range tests {
		t.Run(tt.key, func(t *testing.T) {
			got, ok := trophies.ParseArchiveKey(tt.key)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestArchivesListAndDelete(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	require.NoError(t, f.archive.Put(ctx, "reports/2024-winter.json", []byte("{}"), "application/json"))
	require.NoError(t, f.archive.Put(ctx, "reports/readme.txt", []byte("x"), "text/plain"))
	require.NoError(t, f.archive.Put(ctx, "elsewhere/2023-fall.json", []byte("{}"), "application/json"))

	_, err := f.sys.Commit(ctx, spring())
	require.NoError(t, err)

	entries, err := f.sys.Archives(ctx)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, trophies.ArchiveEntry{Season: seasons.Winter, Year: 2024, Key: "reports/2024-winter.json"}, entries[0])
	assert.Equal(t, seasons.Spring, entries[1].Season)
	assert.Equal(t, 2025, entries[1].Year)

	require.NoError(t, f.sys.DeleteArchive(ctx, seasons.Spring, 2025))
	_, err = f.sys.Archive(ctx, seasons.Spring, 2025)
	assert.ErrorIs(t, err, faults.ErrNotFound)
	assert.ErrorIs(t, f.sys.DeleteArchive(ctx, seasons.Spring, 2025), faults.ErrNotFound)

	listed, err := f.sys.List(ctx, pagination.PageRequest{Page: 1, PageSize: 10}, trophies.Filters{})
	require.NoError(t, err)
	assert.Equal(t, 3, listed.Total)
}

func TestRetractAllowsRecommit(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	created, err := f.sys.Commit(ctx, spring())
	require.NoError(t, err)
	target := created[0]

	require.NoError(t, f.sys.Retract(ctx, target.ID))
	_, err = f.sys.Find(ctx, target.ID)
	assert.ErrorIs(t, err, trophies.ErrNotFound)
	assert.ErrorIs(t, f.sys.Retract(ctx, target.ID), trophies.ErrNotFound)

	again, err := f.sys.Commit(ctx, spring())
	require.NoError(t, err)
	require.Len(t, again, 1)
	assert.Equal(t, target.Key(), again[0].Key())
}

func TestListFilters(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.sys.Commit(ctx, spring())
	require.NoError(t, err)

	listed, err := f.sys.List(ctx, pagination.PageRequest{Page: 1, PageSize: 10}, trophies.Filters{UserID: &f.alice})
	require.NoError(t, err)
	assert.Equal(t, 2, listed.Total)

	year := 2024
	listed, err = f.sys.List(ctx, pagination.PageRequest{Page: 1, PageSize: 10}, trophies.Filters{Year: &year})
	require.NoError(t, err)
	assert.Zero(t, listed.Total)
}

func TestRecordsSkipsErroredResults(t *testing.T) {
	earned := time.Date(2025, time.June, 21, 0, 0, 0, 0, time.UTC)
	all := &criteria.AllResult{
		Season: seasons.Spring,
		Year:   2025,
		Criteria: []criteria.Result{
			{CriteriaID: uuid.New(), CriteriaName: "A", Winners: []criteria.Winner{{UserID: uuid.New(), Username: "alice", Value: 3}}},
			{CriteriaID: uuid.New(), CriteriaName: "B", Winners: []criteria.Winner{}, Error: criteria.NoWinners},
		},
		TotalTrophies: 1,
	}

	records := trophies.Records(all, earned)
	require.Len(t, records, 1)
	assert.Equal(t, "A", records[0].CriteriaName)
	assert.Equal(t, 3.0, records[0].Value)
	assert.Equal(t, earned, records[0].DateEarned)
}

func TestHandler(t *testing.T) {
	f := newFixture(t)
	mux := http.NewServeMux()
	routes.Register(mux, f.sys.Handler().Routes())

	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/trophies/preview?season=spring&year=2025", nil))
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec = httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/trophies/commit",
		strings.NewReader(`{"season":"spring","year":2025}`)))
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var resp trophies.CommitResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.Equal(t, 3, resp.Awarded)

	rec = httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/trophies/commit",
		strings.NewReader(`{"season":"spring","year":2025,"strict":true}`)))
	assert.Equal(t, http.StatusConflict, rec.Code)

	rec = httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/trophies/archives/2025/spring", nil))
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/trophies/archives", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	var entries []trophies.ArchiveEntry
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&entries))
	require.Len(t, entries, 1)
	assert.Equal(t, "reports/2025-spring.json", entries[0].Key)

	rec = httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/trophies?user_id="+f.bob.String(), nil))
	require.Equal(t, http.StatusOK, rec.Code)

	var listed pagination.PageResult[trophies.Record]
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&listed))
	require.Equal(t, 1, listed.Total)

	rec = httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodDelete, "/trophies/"+listed.Data[0].ID.String(), nil))
	assert.Equal(t, http.StatusNoContent, rec.Code)

	tests := []struct {
		name   string
		method string
		path   string
		body   string
		want   int
	}{
		{"commit without season", http.MethodPost, "/trophies/commit", `{"year":2025}`, http.StatusBadRequest},
		{"commit bad season", http.MethodPost, "/trophies/commit", `{"season":"monsoon","year":2025}`, http.StatusBadRequest},
		{"archive bad year", http.MethodGet, "/trophies/archives/later/spring", "", http.StatusBadRequest},
		{"archive missing", http.MethodGet, "/trophies/archives/2020/fall", "", http.StatusNotFound},
		{"delete archive bad season", http.MethodDelete, "/trophies/archives/2025/monsoon", "", http.StatusBadRequest},
		{"delete archive missing", http.MethodDelete, "/trophies/archives/2020/fall", "", http.StatusNotFound},
		{"find bad id", http.MethodGet, "/trophies/nope", "", http.StatusBadRequest},
		{"find missing", http.MethodGet, "/trophies/" + uuid.NewString(), "", http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			mux.ServeHTTP(rec, httptest.NewRequest(tt.method, tt.path, strings.NewReader(tt.body)))
			assert.Equal(t, tt.want, rec.Code, rec.Body.String())
		})
	}
}
