package cache

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/JaimeStill/cliprank/pkg/lifecycle"
)

type memoryCache struct {
	mu    sync.RWMutex
	items map[string][]byte
}

// NewMemory returns a process-local cache without expiry.
// It round-trips values through JSON the same way the Redis cache does.
func NewMemory() System {
	return &memoryCache{items: make(map[string][]byte)}
}

func (m *memoryCache) Start(*lifecycle.Coordinator) error { return nil }

func (m *memoryCache) Enabled() bool { return true }

func (m *memoryCache) Get(_ context.Context, key string, dest any) (bool, error) {
	m.mu.RLock()
	data, ok := m.items[key]
	m.mu.RUnlock()

	if !ok {
		return false, nil
	}
	return true, json.Unmarshal(data, dest)
}

func (m *memoryCache) Set(_ context.Context, key string, value any) error {
	data, err := json.Marshal(value)
	if err != nil {
		return err
	}

	m.mu.Lock()
	m.items[key] = data
	m.mu.Unlock()
	return nil
}

func (m *memoryCache) Delete(_ context.Context, keys ...string) error {
	m.mu.Lock()
	for _, k := range keys {
		delete(m.items, k)
	}
	m.mu.Unlock()
	return nil
}
