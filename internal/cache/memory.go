package cache

import (
	"context"
	"sync"
)

// MemoryKV is the in-process store used when Redis is not configured.
// Values live as long as the process.
type MemoryKV struct {
	mu   sync.RWMutex
	data map[string]string
}

func NewMemoryKV() *MemoryKV {
	return &MemoryKV{data: make(map[string]string)}
}

func (m *MemoryKV) Get(_ context.Context, name string) (string, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	v, ok := m.data[name]
	return v, ok, nil
}

func (m *MemoryKV) Set(_ context.Context, name, value string) error {
	m.mu.Lock()
	m.data[name] = value
	m.mu.Unlock()
	return nil
}
