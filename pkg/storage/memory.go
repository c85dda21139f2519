package storage

import (
	"bytes"
	"context"
	"maps"
	"slices"
	"strings"
	"sync"

	"github.com/JaimeStill/cliprank/pkg/lifecycle"
)

type memory struct {
	mu    sync.RWMutex
	blobs map[string][]byte
}

// NewMemory returns a System that keeps blobs in process memory.
func NewMemory() System {
	return &memory{blobs: make(map[string][]byte)}
}

func (m *memory) Start(*lifecycle.Coordinator) error { return nil }

func (m *memory) Ready() bool { return true }

func (m *memory) Put(_ context.Context, key string, data []byte, _ string) error {
	if err := validateKey(key); err != nil {
		return err
	}

	m.mu.Lock()
	m.blobs[key] = bytes.Clone(data)
	m.mu.Unlock()
	return nil
}

func (m *memory) Get(_ context.Context, key string) ([]byte, error) {
	if err := validateKey(key); err != nil {
		return nil, err
	}

	m.mu.RLock()
	data, ok := m.blobs[key]
	m.mu.RUnlock()

	if !ok {
		return nil, ErrNotFound
	}
	return bytes.Clone(data), nil
}

func (m *memory) Delete(_ context.Context, key string) error {
	if err := validateKey(key); err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.blobs[key]; !ok {
		return ErrNotFound
	}
	delete(m.blobs, key)
	return nil
}

func (m *memory) Exists(_ context.Context, key string) (bool, error) {
	if err := validateKey(key); err != nil {
		return false, err
	}

	m.mu.RLock()
	_, ok := m.blobs[key]
	m.mu.RUnlock()
	return ok, nil
}

func (m *memory) List(_ context.Context, prefix string) ([]string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	keys := make([]string, 0)
	for _, key := range slices.Sorted(maps.Keys(m.blobs)) {
		if strings.HasPrefix(key, prefix) {
			keys = append(keys, key)
		}
	}
	return keys, nil
}
