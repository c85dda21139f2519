//go:build integration

package judgments_test

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/docker/go-connections/nat"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"

	_ "github.com/jackc/pgx/v5/stdlib"

	"github.com/JaimeStill/cliprank/internal/judgments"
	"github.com/JaimeStill/cliprank/pkg/pagination"
	"github.com/JaimeStill/cliprank/pkg/retry"
)

const schemaPath = "../../cmd/migrate/migrations/000001_initial_schema.up.sql"

func startPostgres(ctx context.Context, t *testing.T) *sql.DB {
	t.Helper()

	req := testcontainers.ContainerRequest{
		Image:        "postgres:16-alpine",
		ExposedPorts: []string{"5432/tcp"},
		Env: map[string]string{
			"POSTGRES_PASSWORD": "cliprank",
			"POSTGRES_USER":     "cliprank",
			"POSTGRES_DB":       "cliprank",
		},
		WaitingFor: wait.ForSQL("5432/tcp", "pgx", func(host string, port nat.Port) string {
			return fmt.Sprintf("postgres://cliprank:cliprank@%s:%s/cliprank?sslmode=disable", host, port.Port())
		}).WithStartupTimeout(60 * time.Second),
	}

	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	if err != nil {
		t.Skipf("skip integration: cannot start postgres container: %v", err)
	}
	t.Cleanup(func() { _ = container.Terminate(context.Background()) })

	host, err := container.Host(ctx)
	require.NoError(t, err)
	port, err := container.MappedPort(ctx, "5432")
	require.NoError(t, err)

	dsn := fmt.Sprintf("postgres://cliprank:cliprank@%s:%s/cliprank?sslmode=disable", host, port.Port())
	db, err := sql.Open("pgx", dsn)
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	schema, err := os.ReadFile(schemaPath)
	require.NoError(t, err)
	_, err = db.ExecContext(ctx, string(schema))
	require.NoError(t, err)

	return db
}

func insertClip(ctx context.Context, t *testing.T, db *sql.DB) uuid.UUID {
	t.Helper()
	id := uuid.New()
	_, err := db.ExecContext(ctx,
		"INSERT INTO clips(id, streamer, submitter) VALUES ($1, $2, $3)",
		id, "streamer", "submitter")
	require.NoError(t, err)
	return id
}

func TestRepositoryToggle(t *testing.T) {
	ctx := context.Background()
	db := startPostgres(ctx, t)
	store := judgments.New(db, slog.New(slog.DiscardHandler), pageConfig, retry.DefaultPolicy(nil))

	clip := insertClip(ctx, t, db)
	user := uuid.New()
	at := time.Date(2025, time.April, 2, 10, 0, 0, 0, time.UTC)

	change, err := store.Toggle(ctx, judgment(clip, user, judgments.Two, at))
	require.NoError(t, err)
	assert.Equal(t, judgments.Created, change.Outcome)

	change, err = store.Toggle(ctx, judgment(clip, user, judgments.Deny, at.Add(time.Hour)))
	require.NoError(t, err)
	assert.Equal(t, judgments.Replaced, change.Outcome)
	assert.Equal(t, 1, change.DenyDelta())

	found, err := store.Find(ctx, clip, user)
	require.NoError(t, err)
	assert.Equal(t, judgments.Deny, found.Value)
	assert.True(t, at.Add(time.Hour).Equal(found.Timestamp))

	change, err = store.Toggle(ctx, judgment(clip, user, judgments.Deny, at.Add(2*time.Hour)))
	require.NoError(t, err)
	assert.Equal(t, judgments.Removed, change.Outcome)

	_, err = store.Find(ctx, clip, user)
	assert.ErrorIs(t, err, judgments.ErrNotFound)
}

func TestRepositoryConcurrentToggles(t *testing.T) {
	ctx := context.Background()
	db := startPostgres(ctx, t)
	store := judgments.New(db, slog.New(slog.DiscardHandler), pageConfig, retry.DefaultPolicy(nil))

	clip := insertClip(ctx, t, db)
	user := uuid.New()

	const n = 20
	var wg sync.WaitGroup
	for range n {
		wg.Go(func() {
			_, err := store.Toggle(ctx, judgment(clip, user, judgments.Four, time.Now().UTC()))
			assert.NoError(t, err)
		})
	}
	wg.Wait()

	_, err := store.Find(ctx, clip, user)
	assert.ErrorIs(t, err, judgments.ErrNotFound)
}

func TestRepositoryRanges(t *testing.T) {
	ctx := context.Background()
	db := startPostgres(ctx, t)
	store := judgments.New(db, slog.New(slog.DiscardHandler), pageConfig, retry.DefaultPolicy(nil))

	clip := insertClip(ctx, t, db)
	alice := uuid.New()
	day := time.Date(2025, time.May, 1, 0, 0, 0, 0, time.UTC)

	for i, offset := range []time.Duration{0, 23*time.Hour + 59*time.Minute, 24 * time.Hour} {
		c := clip
		if i > 0 {
			c = insertClip(ctx, t, db)
		}
		_, err := store.Toggle(ctx, judgment(c, alice, judgments.Three, day.Add(offset)))
		require.NoError(t, err)
	}

	oneDay, err := store.ListByUser(ctx, alice, judgments.Range{Start: &day, End: &day})
	require.NoError(t, err)
	assert.Len(t, oneDay, 2)

	all, err := store.ListInRange(ctx, judgments.Range{})
	require.NoError(t, err)
	assert.Len(t, all, 3)
}

func TestRepositorySearch(t *testing.T) {
	ctx := context.Background()
	db := startPostgres(ctx, t)
	store := judgments.New(db, slog.New(slog.DiscardHandler), pageConfig, retry.DefaultPolicy(nil))

	user := uuid.New()
	at := time.Date(2025, time.June, 1, 12, 0, 0, 0, time.UTC)
	for i := range 3 {
		clip := insertClip(ctx, t, db)
		_, err := store.Toggle(ctx, judgment(clip, user, judgments.One, at.Add(time.Duration(i)*time.Minute)))
		require.NoError(t, err)
	}

	page, err := store.Search(ctx, pagination.PageRequest{Page: 1, PageSize: 2}, judgments.Filters{UserID: &user})
	require.NoError(t, err)
	assert.Equal(t, 3, page.Total)
	assert.Equal(t, 2, page.TotalPages)
	assert.Len(t, page.Data, 2)

	other := uuid.New()
	empty, err := store.Search(ctx, pagination.PageRequest{}, judgments.Filters{UserID: &other})
	require.NoError(t, err)
	assert.Zero(t, empty.Total)
	assert.Empty(t, empty.Data)
}
