package session

import (
	"context"
	"sync"
)

// Storage is the external key-value store the session is persisted in.
// Save and Delete must apply all keys in one atomic step.
type Storage interface {
	Load(ctx context.Context, keys ...string) (map[string]string, error)
	Save(ctx context.Context, values map[string]string) error
	Delete(ctx context.Context, keys ...string) error
	Ping(ctx context.Context) error
}

// MemoryStorage keeps values in process memory.
type MemoryStorage struct {
	mu     sync.Mutex
	values map[string]string
}

// NewMemoryStorage returns an empty store, optionally seeded.
func NewMemoryStorage(seed map[string]string) *MemoryStorage {
	values := make(map[string]string, len(seed))
	for k, v := range seed {
		values[k] = v
	}
	return &MemoryStorage{values: values}
}

func (m *MemoryStorage) Load(_ context.Context, keys ...string) (map[string]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make(map[string]string, len(keys))
	for _, k := range keys {
		if v, ok := m.values[k]; ok {
			out[k] = v
		}
	}
	return out, nil
}

func (m *MemoryStorage) Save(_ context.Context, values map[string]string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for k, v := range values {
		m.values[k] = v
	}
	return nil
}

func (m *MemoryStorage) Delete(_ context.Context, keys ...string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, k := range keys {
		delete(m.values, k)
	}
	return nil
}

func (m *MemoryStorage) Ping(context.Context) error { return nil }
