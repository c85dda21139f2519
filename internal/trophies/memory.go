package trophies

import (
	"context"
	"fmt"
	"slices"
	"strings"
	"sync"

	"github.com/google/uuid"

	"github.com/JaimeStill/cliprank/pkg/pagination"
)

type memory struct {
	mu         sync.RWMutex
	items      map[uuid.UUID]Record
	keys       map[Key]uuid.UUID
	pagination pagination.Config
}

// NewMemoryStore creates an in-memory trophy store.
func NewMemoryStore(pagination pagination.Config) Store {
	return &memory{
		items:      make(map[uuid.UUID]Record),
		keys:       make(map[Key]uuid.UUID),
		pagination: pagination,
	}
}

func (m *memory) Insert(ctx context.Context, records []Record, strict bool) ([]Record, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	created := make([]Record, 0, len(records))
	pending := make(map[Key]struct{}, len(records))
	for _, rec := range records {
		k := rec.Key()
		_, stored := m.keys[k]
		_, queued := pending[k]
		if stored || queued {
			if strict {
				return nil, fmt.Errorf("%w: %s to %s for %s %d",
					ErrAlreadyAwarded, rec.CriteriaName, rec.Username, rec.Season, rec.Year)
			}
			continue
		}
		pending[k] = struct{}{}

		rec.ID = uuid.New()
		rec.DateEarned = rec.DateEarned.UTC()
		created = append(created, rec)
	}

	for _, rec := range created {
		m.items[rec.ID] = rec
		m.keys[rec.Key()] = rec.ID
	}
	return created, nil
}

func (m *memory) List(
	_ context.Context,
	page pagination.PageRequest,
	filters Filters,
) (*pagination.PageResult[Record], error) {
	page.Normalize(m.pagination)

	m.mu.RLock()
	matches := make([]Record, 0)
	for _, rec := range m.items {
		if page.MatchesSearch(rec.Username, rec.CriteriaName) && filters.Matches(rec) {
			matches = append(matches, rec)
		}
	}
	m.mu.RUnlock()

	slices.SortFunc(matches, func(a, b Record) int {
		if c := b.DateEarned.Compare(a.DateEarned); c != 0 {
			return c
		}
		return strings.Compare(a.ID.String(), b.ID.String())
	})

	return pagination.Slice(matches, page), nil
}

func (m *memory) Find(_ context.Context, id uuid.UUID) (*Record, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	rec, ok := m.items[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &rec, nil
}

func (m *memory) Delete(_ context.Context, id uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	rec, ok := m.items[id]
	if !ok {
		return ErrNotFound
	}
	delete(m.items, id)
	delete(m.keys, rec.Key())
	return nil
}
