package clips_test

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/JaimeStill/cliprank/internal/clips"
	"github.com/JaimeStill/cliprank/pkg/faults"
	"github.com/JaimeStill/cliprank/pkg/routes"
)

var discard = slog.New(slog.DiscardHandler)

func TestOwnedBy(t *testing.T) {
	owner := uuid.New()
	clip := clips.Clip{ID: uuid.New(), Streamer: "Alice", Submitter: "carol", SubmitterID: &owner}

	tests := []struct {
		name     string
		userID   uuid.UUID
		username string
		want     bool
	}{
		{"streamer", uuid.New(), "alice", true},
		{"submitter", uuid.New(), " CAROL ", true},
		{"submitter id", owner, "someone-else", true},
		{"stranger", uuid.New(), "bob", false},
		{"blank", uuid.New(), "  ", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, clip.OwnedBy(tt.userID, tt.username))
		})
	}
}

func TestMemoryRegister(t *testing.T) {
	ctx := context.Background()
	m := clips.NewMemory(discard)
	id := uuid.New()

	_, err := m.Find(ctx, id)
	assert.ErrorIs(t, err, clips.ErrNotFound)
	assert.ErrorIs(t, err, faults.ErrNotFound)

	err = m.Register(ctx, clips.Clip{ID: id, Streamer: "alice"})
	assert.ErrorIs(t, err, clips.ErrInvalidClip)

	require.NoError(t, m.Register(ctx, clips.Clip{ID: id, Streamer: "alice", Submitter: "carol"}))
	require.NoError(t, m.Register(ctx, clips.Clip{ID: id, Streamer: "alice", Submitter: "dave"}))

	c, err := m.Find(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "dave", c.Submitter)
}

func TestHandler(t *testing.T) {
	m := clips.NewMemory(discard)
	mux := http.NewServeMux()
	routes.Register(mux, m.Handler().Routes())
	id := uuid.NewString()

	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodPut, "/clips/"+id,
		strings.NewReader(`{"streamer":"alice","submitter":"carol"}`)))
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec = httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/clips/"+id, nil))
	require.Equal(t, http.StatusOK, rec.Code)

	var c clips.Clip
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&c))
	assert.Equal(t, "alice", c.Streamer)
	assert.Equal(t, id, c.ID.String())

	tests := []struct {
		name   string
		method string
		path   string
		body   string
		want   int
	}{
		{"bad id", http.MethodGet, "/clips/nope", "", http.StatusBadRequest},
		{"missing", http.MethodGet, "/clips/" + uuid.NewString(), "", http.StatusNotFound},
		{"invalid clip", http.MethodPut, "/clips/" + uuid.NewString(), `{"streamer":"alice"}`, http.StatusBadRequest},
		{"bad json", http.MethodPut, "/clips/" + uuid.NewString(), `{`, http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			mux.ServeHTTP(rec, httptest.NewRequest(tt.method, tt.path, strings.NewReader(tt.body)))
			assert.Equal(t, tt.want, rec.Code)
		})
	}
}
