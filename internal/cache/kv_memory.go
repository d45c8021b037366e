package cache

import (
	"context"
	"strings"
	"sync"
	"time"

	"addresseligibility/pkg/sentinel"
)

// MemoryKV is a map-backed KeyValue with TTL expiry checked on access. Used
// when Redis is not configured and throughout the unit tests.
type MemoryKV struct {
	mu      sync.RWMutex
	entries map[string]memoryEntry
}

type memoryEntry struct {
	value     string
	expiresAt time.Time // zero means no expiry
}

// NewMemoryKV creates an empty in-memory key-value store.
func NewMemoryKV() *MemoryKV {
	return &MemoryKV{entries: make(map[string]memoryEntry)}
}

func (m *MemoryKV) Get(_ context.Context, key string) (string, error) {
	m.mu.RLock()
	e, ok := m.entries[key]
	m.mu.RUnlock()

	if !ok || e.expired(time.Now()) {
		return "", sentinel.ErrNotFound
	}
	return e.value, nil
}

func (m *MemoryKV) Set(_ context.Context, key, value string, ttl time.Duration) error {
	var expiresAt time.Time
	if ttl > 0 {
		expiresAt = time.Now().Add(ttl)
	}

	m.mu.Lock()
	m.entries[key] = memoryEntry{value: value, expiresAt: expiresAt}
	m.mu.Unlock()
	return nil
}

func (m *MemoryKV) Delete(_ context.Context, keys ...string) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var deleted int64
	now := time.Now()
	for _, key := range keys {
		if e, ok := m.entries[key]; ok && !e.expired(now) {
			deleted++
		}
		delete(m.entries, key)
	}
	return deleted, nil
}

func (m *MemoryKV) Exists(_ context.Context, key string) (bool, error) {
	m.mu.RLock()
	e, ok := m.entries[key]
	m.mu.RUnlock()
	return ok && !e.expired(time.Now()), nil
}

func (m *MemoryKV) TTL(_ context.Context, key string) (time.Duration, error) {
	m.mu.RLock()
	e, ok := m.entries[key]
	m.mu.RUnlock()

	now := time.Now()
	if !ok || e.expired(now) {
		return -2, nil
	}
	if e.expiresAt.IsZero() {
		return -1, nil
	}
	return e.expiresAt.Sub(now), nil
}

func (m *MemoryKV) Expire(_ context.Context, key string, ttl time.Duration) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	e, ok := m.entries[key]
	if !ok || e.expired(time.Now()) {
		return false, nil
	}
	e.expiresAt = time.Now().Add(ttl)
	m.entries[key] = e
	return true, nil
}

func (m *MemoryKV) Keys(_ context.Context, pattern string) ([]string, error) {
	prefix := strings.TrimSuffix(pattern, "*")

	m.mu.RLock()
	defer m.mu.RUnlock()

	now := time.Now()
	var keys []string
	for key, e := range m.entries {
		if e.expired(now) {
			continue
		}
		if strings.HasPrefix(key, prefix) {
			keys = append(keys, key)
		}
	}
	return keys, nil
}

func (m *MemoryKV) DBSize(_ context.Context) (int64, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	now := time.Now()
	var n int64
	for _, e := range m.entries {
		if !e.expired(now) {
			n++
		}
	}
	return n, nil
}

func (e memoryEntry) expired(now time.Time) bool {
	return !e.expiresAt.IsZero() && now.After(e.expiresAt)
}
