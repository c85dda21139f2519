package tally_test

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/JaimeStill/cliprank/internal/judgments"
	"github.com/JaimeStill/cliprank/internal/tally"
	"github.com/JaimeStill/cliprank/pkg/cache"
	"github.com/JaimeStill/cliprank/pkg/metrics"
	"github.com/JaimeStill/cliprank/pkg/pagination"
	"github.com/JaimeStill/cliprank/pkg/routes"
)

var discard = slog.New(slog.DiscardHandler)

type fixedThreshold int

func (f fixedThreshold) DenyThreshold(context.Context) (int, error) { return int(f), nil }

type countingStore struct {
	judgments.Store
	mu    sync.Mutex
	reads int
}

func (s *countingStore) ListByClip(ctx context.Context, clipID uuid.UUID) ([]judgments.Judgment, error) {
	s.mu.Lock()
	s.reads++
	s.mu.Unlock()
	return s.Store.ListByClip(ctx, clipID)
}

func newSystem(t *testing.T) (tally.System, *countingStore) {
	t.Helper()
	store := &countingStore{Store: judgments.NewMemory(pagination.Config{DefaultPageSize: 20, MaxPageSize: 100})}
	return tally.New(store, cache.NewMemory(), metrics.New(), discard), store
}

func toggle(t *testing.T, store judgments.Store, clip uuid.UUID, v judgments.Value) {
	t.Helper()
	_, err := store.Toggle(context.Background(), judgments.Judgment{
		ClipID:    clip,
		UserID:    uuid.New(),
		Username:  "rater",
		Value:     v,
		Timestamp: time.Now().UTC(),
	})
	require.NoError(t, err)
}

func TestSystemMemoizesUntilInvalidated(t *testing.T) {
	ctx := context.Background()
	sys, store := newSystem(t)
	clip := uuid.New()

	toggle(t, store, clip, judgments.Deny)

	snap, err := sys.Compute(ctx, clip, 1)
	require.NoError(t, err)
	assert.True(t, snap.IsDenied)

	_, err = sys.Compute(ctx, clip, 1)
	require.NoError(t, err)
	assert.Equal(t, 1, store.reads, "second read is served from cache")

	toggle(t, store, clip, judgments.Two)
	require.NoError(t, sys.Invalidate(ctx, clip))

	snap, err = sys.Compute(ctx, clip, 1)
	require.NoError(t, err)
	assert.Equal(t, 2, snap.TotalRatings)
	assert.Equal(t, 2, store.reads)
}

// stallingCache holds the first Set until release is closed.
type stallingCache struct {
	cache.System
	once    sync.Once
	entered chan struct{}
	release chan struct{}
}

func (c *stallingCache) Set(ctx context.Context, key string, value any) error {
	c.once.Do(func() {
		close(c.entered)
		<-c.release
	})
	return c.System.Set(ctx, key, value)
}

func TestSystemDropsSnapshotWrittenAcrossInvalidate(t *testing.T) {
	ctx := context.Background()
	store := judgments.NewMemory(pagination.Config{DefaultPageSize: 20, MaxPageSize: 100})
	c := &stallingCache{
		System:  cache.NewMemory(),
		entered: make(chan struct{}),
		release: make(chan struct{}),
	}
	sys := tally.New(store, c, metrics.New(), discard)
	clip := uuid.New()

	type result struct {
		snap tally.Snapshot
		err  error
	}
	done := make(chan result, 1)
	go func() {
		snap, err := sys.Compute(ctx, clip, 5)
		done <- result{snap, err}
	}()

	<-c.entered
	toggle(t, store, clip, judgments.Deny)
	require.NoError(t, sys.Invalidate(ctx, clip))
	close(c.release)

	stale := <-done
	require.NoError(t, stale.err)
	assert.Equal(t, 0, stale.snap.TotalRatings)

	snap, err := sys.Compute(ctx, clip, 5)
	require.NoError(t, err)
	assert.Equal(t, 1, snap.TotalRatings)
	assert.Equal(t, 1, snap.Count(judgments.Deny))
}

func TestSystemReclassifiesCachedSnapshot(t *testing.T) {
	ctx := context.Background()
	sys, store := newSystem(t)
	clip := uuid.New()

	toggle(t, store, clip, judgments.Deny)
	toggle(t, store, clip, judgments.Deny)

	denied, err := sys.IsDenied(ctx, clip, 2)
	require.NoError(t, err)
	assert.True(t, denied)

	denied, err = sys.IsDenied(ctx, clip, 3)
	require.NoError(t, err)
	assert.False(t, denied)
}

func TestSystemRejectsInvalidThreshold(t *testing.T) {
	sys, _ := newSystem(t)
	_, err := sys.Compute(context.Background(), uuid.New(), 0)
	assert.ErrorIs(t, err, tally.ErrInvalidThreshold)
}

func TestSystemWorksWithDisabledCache(t *testing.T) {
	store := judgments.NewMemory(pagination.Config{DefaultPageSize: 20, MaxPageSize: 100})
	sys := tally.New(store, cache.Disabled(), nil, discard)
	clip := uuid.New()

	toggle(t, store, clip, judgments.Three)

	snap, err := sys.Compute(context.Background(), clip, 5)
	require.NoError(t, err)
	require.NotNil(t, snap.Average)
	assert.InDelta(t, 3.0, *snap.Average, 1e-9)
}

func TestHandlerFind(t *testing.T) {
	sys, store := newSystem(t)
	clip := uuid.New()
	toggle(t, store, clip, judgments.Deny)

	mux := http.NewServeMux()
	routes.Register(mux, sys.Handler(fixedThreshold(1)).Routes())

	t.Run("configured threshold", func(t *testing.T) {
		rec := httptest.NewRecorder()
		mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/tallies/"+clip.String(), nil))
		require.Equal(t, http.StatusOK, rec.Code)

		var snap tally.Snapshot
		require.NoError(t, json.NewDecoder(rec.Body).Decode(&snap))
		assert.True(t, snap.IsDenied)
		assert.Equal(t, 1, snap.DenyThreshold)
	})

	t.Run("threshold override", func(t *testing.T) {
		rec := httptest.NewRecorder()
		mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/tallies/"+clip.String()+"?threshold=2", nil))
		require.Equal(t, http.StatusOK, rec.Code)

		var snap tally.Snapshot
		require.NoError(t, json.NewDecoder(rec.Body).Decode(&snap))
		assert.False(t, snap.IsDenied)
	})

	t.Run("invalid threshold", func(t *testing.T) {
		rec := httptest.NewRecorder()
		mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/tallies/"+clip.String()+"?threshold=0", nil))
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("invalid clip id", func(t *testing.T) {
		rec := httptest.NewRecorder()
		mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/tallies/not-a-uuid", nil))
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}
