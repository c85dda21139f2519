package criteria

import (
	"cmp"
	"context"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/JaimeStill/cliprank/pkg/pagination"
)

type memory struct {
	mu         sync.RWMutex
	items      map[uuid.UUID]Criterion
	pagination pagination.Config
}

// NewMemoryStore creates an in-memory criterion store.
func NewMemoryStore(pagination pagination.Config) Store {
	return &memory{
		items:      make(map[uuid.UUID]Criterion),
		pagination: pagination,
	}
}

func (m *memory) List(
	_ context.Context,
	page pagination.PageRequest,
	filters Filters,
) (*pagination.PageResult[Criterion], error) {
	page.Normalize(m.pagination)

	matches := m.collect(func(c Criterion) bool {
		return page.MatchesSearch(c.Name, c.Description) && filters.Matches(c)
	})

	return pagination.Slice(matches, page), nil
}

func (m *memory) Find(_ context.Context, id uuid.UUID) (*Criterion, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	c, ok := m.items[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &c, nil
}

func (m *memory) Active(_ context.Context) ([]Criterion, error) {
	return m.collect(func(c Criterion) bool { return c.Active }), nil
}

func (m *memory) Create(_ context.Context, cmd CreateCommand) (*Criterion, error) {
	if err := cmd.Normalize(); err != nil {
		return nil, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if _, taken := m.byName(cmd.Name); taken {
		return nil, ErrDuplicate
	}

	now := time.Now().UTC()
	c := build(uuid.New(), cmd, now, now)
	m.items[c.ID] = c
	return &c, nil
}

func (m *memory) Update(_ context.Context, id uuid.UUID, cmd UpdateCommand) (*Criterion, error) {
	if err := cmd.Normalize(); err != nil {
		return nil, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	existing, ok := m.items[id]
	if !ok {
		return nil, ErrNotFound
	}
	if other, taken := m.byName(cmd.Name); taken && other.ID != id {
		return nil, ErrDuplicate
	}

	c := build(id, cmd, existing.CreatedAt, time.Now().UTC())
	m.items[id] = c
	return &c, nil
}

func (m *memory) Upsert(_ context.Context, cmd CreateCommand) (*Criterion, error) {
	if err := cmd.Normalize(); err != nil {
		return nil, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	now := time.Now().UTC()
	c := build(uuid.New(), cmd, now, now)
	if existing, ok := m.byName(cmd.Name); ok {
		c = build(existing.ID, cmd, existing.CreatedAt, now)
	}
	m.items[c.ID] = c
	return &c, nil
}

func (m *memory) Delete(_ context.Context, id uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.items[id]; !ok {
		return ErrNotFound
	}
	delete(m.items, id)
	return nil
}

func (m *memory) byName(name string) (Criterion, bool) {
	for _, c := range m.items {
		if c.Name == name {
			return c, true
		}
	}
	return Criterion{}, false
}

// collect returns matching criteria by priority, highest first, then by age.
func (m *memory) collect(keep func(Criterion) bool) []Criterion {
	m.mu.RLock()
	out := make([]Criterion, 0, len(m.items))
	for _, c := range m.items {
		if keep(c) {
			out = append(out, c)
		}
	}
	m.mu.RUnlock()

	slices.SortFunc(out, func(a, b Criterion) int {
		if c := cmp.Compare(b.Priority, a.Priority); c != 0 {
			return c
		}
		if c := a.CreatedAt.Compare(b.CreatedAt); c != 0 {
			return c
		}
		return strings.Compare(a.Name, b.Name)
	})
	return out
}

func build(id uuid.UUID, cmd CreateCommand, created, updated time.Time) Criterion {
	return Criterion{
		ID:          id,
		Name:        cmd.Name,
		Description: cmd.Description,
		Type:        cmd.Type,
		Season:      cmd.Season,
		Year:        cmd.Year,
		AwardLimit:  cmd.AwardLimit,
		MinValue:    cmd.MinValue,
		Priority:    cmd.Priority,
		Active:      *cmd.Active,
		CreatedAt:   created,
		UpdatedAt:   updated,
	}
}
