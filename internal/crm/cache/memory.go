package cache

import (
	"context"
	"sync"
	"time"
)

// DefaultMaxEntries is the size past which Memory sweeps expired entries on write.
const DefaultMaxEntries = 1000

type entry[V any] struct {
	value     V
	expiresAt time.Time
}

// Memory is a process-local Cache. It is not shared between replicas.
type Memory[V any] struct {
	mu      sync.Mutex
	entries map[string]entry[V]

	// MaxEntries triggers an opportunistic sweep once exceeded.
	MaxEntries int

	// Now is the clock used for expiry. Tests replace it.
	Now func() time.Time
}

func NewMemory[V any]() *Memory[V] {
	return &Memory[V]{
		entries:    make(map[string]entry[V]),
		MaxEntries: DefaultMaxEntries,
		Now:        time.Now,
	}
}

func (m *Memory[V]) Get(_ context.Context, key string) (V, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	e, ok := m.entries[key]
	if !ok {
		var zero V
		return zero, false, nil
	}
	if !m.Now().Before(e.expiresAt) {
		delete(m.entries, key)
		var zero V
		return zero, false, nil
	}
	return e.value, true, nil
}

func (m *Memory[V]) Set(_ context.Context, key string, value V, ttl time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.put(key, value, ttl)
	return nil
}

func (m *Memory[V]) Add(_ context.Context, key string, value V, ttl time.Duration) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if e, ok := m.entries[key]; ok && m.Now().Before(e.expiresAt) {
		return false, nil
	}
	m.put(key, value, ttl)
	return true, nil
}

func (m *Memory[V]) Delete(_ context.Context, keys ...string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, k := range keys {
		delete(m.entries, k)
	}
	return nil
}

// Len returns the number of stored entries, expired ones included.
func (m *Memory[V]) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.entries)
}

// put must be called with mu held.
func (m *Memory[V]) put(key string, value V, ttl time.Duration) {
	now := m.Now()
	m.entries[key] = entry[V]{value: value, expiresAt: now.Add(ttl)}

	if m.MaxEntries > 0 && len(m.entries) > m.MaxEntries {
		for k, e := range m.entries {
			if !now.Before(e.expiresAt) {
				delete(m.entries, k)
			}
		}
	}
}

// Ping always succeeds; it lets Memory stand in wherever a backend is health checked.
func (m *Memory[V]) Ping(context.Context) error { return nil }
