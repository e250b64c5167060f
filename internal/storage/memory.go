package storage

import (
	"context"
	"sync"

	"github.com/vendaa/vendaa/internal/notify"
)

// MemoryStore keeps values in process memory.
type MemoryStore struct {
	mu     sync.RWMutex
	values map[string]string
	broker *notify.Broker

	// Writes counts Set calls per key.
	writes map[string]int
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		values: make(map[string]string),
		writes: make(map[string]int),
		broker: notify.NewBroker(),
	}
}

// Get returns the value for key.
func (m *MemoryStore) Get(key string) (string, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	v, ok := m.values[key]
	return v, ok, nil
}

// Set stores value under key.
func (m *MemoryStore) Set(key, value string) error {
	m.mu.Lock()
	m.values[key] = value
	m.writes[key]++
	m.mu.Unlock()

	m.broker.Publish()
	return nil
}

// Delete removes keys.
func (m *MemoryStore) Delete(keys ...string) error {
	m.mu.Lock()
	for _, k := range keys {
		delete(m.values, k)
	}
	m.mu.Unlock()

	m.broker.Publish()
	return nil
}

// Subscribe registers for change notifications.
func (m *MemoryStore) Subscribe() (<-chan struct{}, func()) {
	return m.broker.Subscribe()
}

// Watch returns immediately; there is no external medium.
func (m *MemoryStore) Watch(ctx context.Context) error {
	return nil
}

// Writes reports how many times key was Set.
func (m *MemoryStore) Writes(key string) int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.writes[key]
}
