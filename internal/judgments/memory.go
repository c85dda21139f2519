package judgments

import (
	"context"
	"slices"
	"strings"
	"sync"

	"github.com/google/uuid"

	"github.com/JaimeStill/cliprank/pkg/pagination"
)

type key struct {
	clipID uuid.UUID
	userID uuid.UUID
}

// keyLock is a per-key mutex shared by the callers waiting on that key.
type keyLock struct {
	mu      sync.Mutex
	waiters int
}

type memory struct {
	mu         sync.RWMutex
	locksMu    sync.Mutex
	locks      map[key]*keyLock
	items      map[key]Judgment
	pagination pagination.Config
}

// NewMemory creates an in-memory store. A per-key mutex serializes mutations
// on one (clip, user) pair while other keys proceed in parallel.
func NewMemory(pagination pagination.Config) Store {
	return &memory{
		locks:      make(map[key]*keyLock),
		items:      make(map[key]Judgment),
		pagination: pagination,
	}
}

// lock acquires the mutex for k. The entry is dropped by the last holder so
// the table only keeps keys with a mutation in flight.
func (m *memory) lock(k key) func() {
	m.locksMu.Lock()
	l, ok := m.locks[k]
	if !ok {
		l = &keyLock{}
		m.locks[k] = l
	}
	l.waiters++
	m.locksMu.Unlock()

	l.mu.Lock()
	return func() {
		l.mu.Unlock()

		m.locksMu.Lock()
		if l.waiters--; l.waiters == 0 {
			delete(m.locks, k)
		}
		m.locksMu.Unlock()
	}
}

func (m *memory) heldLocks() int {
	m.locksMu.Lock()
	defer m.locksMu.Unlock()
	return len(m.locks)
}

func (m *memory) Toggle(ctx context.Context, j Judgment) (Change, error) {
	if !j.Value.Valid() {
		return Change{}, ErrInvalidValue
	}
	if err := ctx.Err(); err != nil {
		return Change{}, err
	}

	k := key{j.ClipID, j.UserID}
	unlock := m.lock(k)
	defer unlock()

	m.mu.RLock()
	existing, ok := m.items[k]
	m.mu.RUnlock()

	var prev *Judgment
	if ok {
		prev = &existing
	}

	change := apply(prev, j)

	m.mu.Lock()
	switch change.Outcome {
	case Created, Replaced:
		m.items[k] = j
	case Removed:
		delete(m.items, k)
	}
	m.mu.Unlock()

	return change, nil
}

func (m *memory) Remove(ctx context.Context, clipID, userID uuid.UUID) (Change, error) {
	if err := ctx.Err(); err != nil {
		return Change{}, err
	}

	k := key{clipID, userID}
	unlock := m.lock(k)
	defer unlock()

	m.mu.Lock()
	defer m.mu.Unlock()

	existing, ok := m.items[k]
	if !ok {
		return Change{Outcome: Unchanged}, nil
	}
	delete(m.items, k)
	return Change{Outcome: Removed, Previous: &existing}, nil
}

func (m *memory) Find(_ context.Context, clipID, userID uuid.UUID) (*Judgment, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	j, ok := m.items[key{clipID, userID}]
	if !ok {
		return nil, ErrNotFound
	}
	return &j, nil
}

func (m *memory) ListByClip(_ context.Context, clipID uuid.UUID) ([]Judgment, error) {
	return m.collect(func(j Judgment) bool { return j.ClipID == clipID }), nil
}

func (m *memory) ListByUser(_ context.Context, userID uuid.UUID, r Range) ([]Judgment, error) {
	if err := r.Validate(); err != nil {
		return nil, err
	}
	return m.collect(func(j Judgment) bool {
		return j.UserID == userID && r.Contains(j.Timestamp)
	}), nil
}

func (m *memory) ListInRange(_ context.Context, r Range) ([]Judgment, error) {
	if err := r.Validate(); err != nil {
		return nil, err
	}
	return m.collect(func(j Judgment) bool { return r.Contains(j.Timestamp) }), nil
}

func (m *memory) Search(
	_ context.Context,
	page pagination.PageRequest,
	filters Filters,
) (*pagination.PageResult[Judgment], error) {
	page.Normalize(m.pagination)

	matches := m.collect(func(j Judgment) bool {
		return page.MatchesSearch(j.Username) && filters.Matches(j)
	})
	slices.Reverse(matches)

	return pagination.Slice(matches, page), nil
}

func (m *memory) collect(keep func(Judgment) bool) []Judgment {
	m.mu.RLock()
	out := make([]Judgment, 0)
	for _, j := range m.items {
		if keep(j) {
			out = append(out, j)
		}
	}
	m.mu.RUnlock()

	slices.SortFunc(out, compareChronological)
	return out
}

func compareChronological(a, b Judgment) int {
	if c := a.Timestamp.Compare(b.Timestamp); c != 0 {
		return c
	}
	if c := strings.Compare(a.UserID.String(), b.UserID.String()); c != 0 {
		return c
	}
	return strings.Compare(a.ClipID.String(), b.ClipID.String())
}

func containsFold(s, substr string) bool {
	return strings.Contains(strings.ToLower(s), strings.ToLower(substr))
}
