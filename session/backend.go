package session

import (
	"context"
	"errors"
	"sync"
)

// ErrBackendUnavailable wraps every storage failure reported by a [Backend].
var ErrBackendUnavailable = errors.New("session backend unavailable")

// Entry is one persisted key/value pair.
type Entry struct {
	Key   string
	Value []byte
}

// Backend is the durable key/value storage behind a [Store].
//
// Save and Delete receive every key of one logical mutation in a single call;
// implementations apply them all-or-nothing where the storage allows it.
// Implementations must be safe for concurrent use.
type Backend interface {
	// Load returns the value stored under key and whether it exists.
	Load(ctx context.Context, key string) ([]byte, bool, error)
	// Save writes all entries.
	Save(ctx context.Context, entries ...Entry) error
	// Delete removes all keys. Missing keys are not an error.
	Delete(ctx context.Context, keys ...string) error
	// Close releases resources owned by the backend.
	Close() error
}

// MemoryBackend is a process-local [Backend]. It does not survive restarts and
// is intended for tests and ephemeral sessions.
type MemoryBackend struct {
	mu   sync.RWMutex
	data map[string][]byte
}

// NewMemoryBackend returns an empty [MemoryBackend].
func NewMemoryBackend() *MemoryBackend {
	return &MemoryBackend{data: make(map[string][]byte)}
}

func (m *MemoryBackend) Load(_ context.Context, key string) ([]byte, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	v, ok := m.data[key]
	if !ok {
		return nil, false, nil
	}
	return append([]byte(nil), v...), true, nil
}

func (m *MemoryBackend) Save(_ context.Context, entries ...Entry) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, e := range entries {
		m.data[e.Key] = append([]byte(nil), e.Value...)
	}
	return nil
}

func (m *MemoryBackend) Delete(_ context.Context, keys ...string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, k := range keys {
		delete(m.data, k)
	}
	return nil
}

// Len returns the number of stored keys.
func (m *MemoryBackend) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.data)
}

func (m *MemoryBackend) Close() error { return nil }
