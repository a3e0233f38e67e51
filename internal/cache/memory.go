package cache

import (
	"context"
	"strconv"
	"sync"
	"time"
)

type memoryEntry struct {
	value     string
	expiresAt time.Time
}

// Memory is an in-process bounded TTL store. Entries are dropped lazily on
// read and swept when the store grows past maxSize.
type Memory struct {
	mu      sync.RWMutex
	entries map[string]memoryEntry
	maxSize int
	now     func() time.Time
}

// NewMemory creates a memory store holding at most maxSize live entries.
func NewMemory(maxSize int) *Memory {
	if maxSize <= 0 {
		maxSize = 4096
	}
	return &Memory{
		entries: make(map[string]memoryEntry),
		maxSize: maxSize,
		now:     time.Now,
	}
}

func (m *Memory) Get(_ context.Context, key string) (string, bool, error) {
	m.mu.RLock()
	entry, ok := m.entries[key]
	m.mu.RUnlock()
	if !ok {
		return "", false, nil
	}
	if m.now().After(entry.expiresAt) {
		m.mu.Lock()
		// Re-check under the write lock; a Set may have raced us.
		if cur, ok := m.entries[key]; ok && m.now().After(cur.expiresAt) {
			delete(m.entries, key)
		}
		m.mu.Unlock()
		return "", false, nil
	}
	return entry.value, true, nil
}

func (m *Memory) Set(_ context.Context, key, value string, ttl time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.entries) >= m.maxSize {
		m.sweepLocked()
	}
	m.entries[key] = memoryEntry{value: value, expiresAt: m.now().Add(ttl)}
	return nil
}

func (m *Memory) Incr(_ context.Context, key string, ttl time.Duration) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	now := m.now()
	entry, ok := m.entries[key]
	if !ok || now.After(entry.expiresAt) {
		m.entries[key] = memoryEntry{value: "1", expiresAt: now.Add(ttl)}
		return 1, nil
	}
	count, err := strconv.ParseInt(entry.value, 10, 64)
	if err != nil {
		count = 0
	}
	count++
	// Keep the original window deadline: counters expire with their window,
	// not with their last increment.
	m.entries[key] = memoryEntry{value: strconv.FormatInt(count, 10), expiresAt: entry.expiresAt}
	return count, nil
}

func (m *Memory) Close() error {
	m.mu.Lock()
	m.entries = make(map[string]memoryEntry)
	m.mu.Unlock()
	return nil
}

// sweepLocked drops expired entries; if nothing expired, evicts arbitrary
// entries until below the bound. Caller holds the write lock.
func (m *Memory) sweepLocked() {
	now := m.now()
	for k, e := range m.entries {
		if now.After(e.expiresAt) {
			delete(m.entries, k)
		}
	}
	for k := range m.entries {
		if len(m.entries) < m.maxSize {
			break
		}
		delete(m.entries, k)
	}
}
