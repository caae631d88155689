package store

import (
	"context"
	"sync"
	"time"
)

// MemoryStore is a process-local Backend. Nothing survives a restart.
type MemoryStore struct {
	mu     sync.RWMutex
	values map[string][]byte
	events []LLMEvent
}

var _ Backend = (*MemoryStore)(nil)

// NewMemoryStore creates an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{values: make(map[string][]byte)}
}

func (m *MemoryStore) Get(_ context.Context, key string) ([]byte, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	v, ok := m.values[key]
	if !ok {
		return nil, ErrNotFound
	}
	out := make([]byte, len(v))
	copy(out, v)
	return out, nil
}

func (m *MemoryStore) Set(_ context.Context, key string, value []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	v := make([]byte, len(value))
	copy(v, value)
	m.values[key] = v
	return nil
}

func (m *MemoryStore) Delete(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	delete(m.values, key)
	return nil
}

func (m *MemoryStore) AppendLLMRequest(_ context.Context, data LLMRequestEventData) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.events = append(m.events, LLMEvent{
		ID:                  len(m.events) + 1,
		Timestamp:           time.Now().UTC(),
		LLMRequestEventData: data,
	})
	return nil
}

func (m *MemoryStore) QueryLLMEvents(_ context.Context, opts QueryOpts) ([]LLMEvent, error) {
	m.mu.RLock()
	events := make([]LLMEvent, len(m.events))
	copy(events, m.events)
	m.mu.RUnlock()

	return filterEvents(events, opts), nil
}

func (m *MemoryStore) GetLLMEvent(_ context.Context, id int) (*LLMEvent, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if id < 1 || id > len(m.events) {
		return nil, nil
	}
	e := m.events[id-1]
	return &e, nil
}

func (m *MemoryStore) Close() error {
	return nil
}
