// Package dedup suppresses repeat notifications within a TTL window.
package dedup

import (
	"context"
	"strings"
	"sync"
	"time"
)

// Store answers whether a notification key is being seen for the first time
// inside the configured window.
type Store interface {
	FirstSeen(ctx context.Context, key string) (bool, error)
}

type memoryEntry struct {
	expiresAt time.Time
	addedAt   time.Time
}

// Memory is a TTL-bounded in-process store with a hard entry cap.
type Memory struct {
	mu         sync.Mutex
	entries    map[string]memoryEntry
	ttl        time.Duration
	maxEntries int
	now        func() time.Time
}

func NewMemory(ttl time.Duration, maxEntries int) *Memory {
	if ttl <= 0 {
		ttl = 10 * time.Second
	}
	if maxEntries <= 0 {
		maxEntries = 100
	}
	return &Memory{
		entries:    make(map[string]memoryEntry),
		ttl:        ttl,
		maxEntries: maxEntries,
		now:        time.Now,
	}
}

func (m *Memory) FirstSeen(ctx context.Context, key string) (bool, error) {
	key = strings.TrimSpace(key)
	if key == "" {
		return true, nil
	}
	now := m.now()

	m.mu.Lock()
	defer m.mu.Unlock()

	if entry, ok := m.entries[key]; ok && now.Before(entry.expiresAt) {
		return false, nil
	}
	m.sweep(now)
	if len(m.entries) >= m.maxEntries {
		m.evictOldest()
	}
	m.entries[key] = memoryEntry{expiresAt: now.Add(m.ttl), addedAt: now}
	return true, nil
}

func (m *Memory) sweep(now time.Time) {
	for key, entry := range m.entries {
		if !now.Before(entry.expiresAt) {
			delete(m.entries, key)
		}
	}
}

func (m *Memory) evictOldest() {
	var oldestKey string
	var oldestAt time.Time
	for key, entry := range m.entries {
		if oldestKey == "" || entry.addedAt.Before(oldestAt) {
			oldestKey = key
			oldestAt = entry.addedAt
		}
	}
	if oldestKey != "" {
		delete(m.entries, oldestKey)
	}
}
