package storage

import (
	"context"
	"sync"
)

// MemoryKV keeps values in a map. Used by tests and throwaway CLI contexts.
type MemoryKV struct {
	mu   sync.RWMutex
	data map[string]string
}

func NewMemoryKV() *MemoryKV {
	return &MemoryKV{data: make(map[string]string)}
}

func (m *MemoryKV) Get(_ context.Context, key string) (string, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	v, ok := m.data[key]
	return v, ok, nil
}

func (m *MemoryKV) Commit(_ context.Context, sets map[string]string, dels []string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for k, v := range sets {
		m.data[k] = v
	}
	for _, k := range dels {
		delete(m.data, k)
	}
	return nil
}
