package storage

import (
	"context"
	"sort"
	"sync"
)

// MemoryKV keeps values in process. MaxValueBytes > 0 rejects larger writes
// with ErrWriteLimit, which is how tests model a full browser quota.
type MemoryKV struct {
	mu            sync.Mutex
	values        map[string][]byte
	writes        int
	MaxValueBytes int
	FailWrites    error
}

func NewMemoryKV() *MemoryKV {
	return &MemoryKV{values: make(map[string][]byte)}
}

func (m *MemoryKV) Get(_ context.Context, key string) ([]byte, error) {
	if key == "" {
		return nil, ErrEmptyKey
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.values[key]
	if !ok {
		return nil, ErrNotFound
	}
	return append([]byte(nil), v...), nil
}

func (m *MemoryKV) Put(_ context.Context, key string, value []byte) error {
	if key == "" {
		return ErrEmptyKey
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.FailWrites != nil {
		return m.FailWrites
	}
	if m.MaxValueBytes > 0 && len(value) > m.MaxValueBytes {
		return ErrWriteLimit
	}
	m.values[key] = append([]byte(nil), value...)
	m.writes++
	return nil
}

func (m *MemoryKV) Delete(_ context.Context, key string) error {
	if key == "" {
		return ErrEmptyKey
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.values, key)
	return nil
}

// Writes counts successful Puts.
func (m *MemoryKV) Writes() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.writes
}

func (m *MemoryKV) Keys() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]string, 0, len(m.values))
	for k := range m.values {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
