package cache

import (
	"context"
	"sync"
	"time"

	"github.com/windoze95/saltybytes-chef/internal/logger"
	"go.uber.org/zap"
)

// MemoryStore is an in-process Store. Expired entries are dropped lazily on
// read and periodically by a background sweep. When full, the least used
// entry is evicted.
type MemoryStore struct {
	mu      sync.Mutex
	entries map[string]memoryEntry
	maxSize int
	stop    chan struct{}
	once    sync.Once

	hits      int64
	misses    int64
	evictions int64
}

type memoryEntry struct {
	value       []byte
	expiresAt   time.Time
	lastAccess  time.Time
	accessCount int
}

// MemoryStats is a snapshot of MemoryStore activity.
type MemoryStats struct {
	Size      int   `json:"size"`
	MaxSize   int   `json:"max_size"`
	Hits      int64 `json:"hits"`
	Misses    int64 `json:"misses"`
	Evictions int64 `json:"evictions"`
}

// NewMemoryStore creates a store holding at most maxSize entries and
// sweeping expired ones every cleanupInterval. A non-positive interval
// disables the sweep.
func NewMemoryStore(maxSize int, cleanupInterval time.Duration) *MemoryStore {
	if maxSize <= 0 {
		maxSize = 1000
	}
	m := &MemoryStore{
		entries: make(map[string]memoryEntry),
		maxSize: maxSize,
		stop:    make(chan struct{}),
	}
	if cleanupInterval > 0 {
		go m.sweepLoop(cleanupInterval)
	}
	return m
}

// Get returns the value for key or ErrMiss.
func (m *MemoryStore) Get(_ context.Context, key string) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	entry, ok := m.entries[key]
	if !ok {
		m.misses++
		return nil, ErrMiss
	}
	now := time.Now()
	if now.After(entry.expiresAt) {
		delete(m.entries, key)
		m.evictions++
		m.misses++
		return nil, ErrMiss
	}

	entry.lastAccess = now
	entry.accessCount++
	m.entries[key] = entry
	m.hits++

	out := make([]byte, len(entry.value))
	copy(out, entry.value)
	return out, nil
}

// Set stores value under key for ttl.
func (m *MemoryStore) Set(_ context.Context, key string, value []byte, ttl time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, exists := m.entries[key]; !exists && len(m.entries) >= m.maxSize {
		if m.sweep() == 0 {
			m.evictLeastUsed()
		}
	}

	now := time.Now()
	stored := make([]byte, len(value))
	copy(stored, value)
	m.entries[key] = memoryEntry{
		value:      stored,
		expiresAt:  now.Add(ttl),
		lastAccess: now,
	}
	return nil
}

// Stats returns current counters.
func (m *MemoryStore) Stats() MemoryStats {
	m.mu.Lock()
	defer m.mu.Unlock()
	return MemoryStats{
		Size:      len(m.entries),
		MaxSize:   m.maxSize,
		Hits:      m.hits,
		Misses:    m.misses,
		Evictions: m.evictions,
	}
}

// Close stops the background sweep and drops all entries.
func (m *MemoryStore) Close() error {
	m.once.Do(func() { close(m.stop) })
	m.mu.Lock()
	m.entries = make(map[string]memoryEntry)
	m.mu.Unlock()
	return nil
}

func (m *MemoryStore) sweepLoop(interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			m.mu.Lock()
			n := m.sweep()
			size := len(m.entries)
			m.mu.Unlock()
			if n > 0 {
				logger.Get().Debug("cache: swept expired entries", zap.Int("count", n), zap.Int("remaining", size))
			}
		case <-m.stop:
			return
		}
	}
}

// sweep removes expired entries. Caller holds mu.
func (m *MemoryStore) sweep() int {
	now := time.Now()
	count := 0
	for key, entry := range m.entries {
		if now.After(entry.expiresAt) {
			delete(m.entries, key)
			count++
		}
	}
	m.evictions += int64(count)
	return count
}

// evictLeastUsed drops the entry with the lowest access count, oldest
// access first on ties. Caller holds mu.
func (m *MemoryStore) evictLeastUsed() {
	var victim string
	var oldest time.Time
	lowest := 0
	for key, entry := range m.entries {
		if victim == "" ||
			entry.accessCount < lowest ||
			(entry.accessCount == lowest && entry.lastAccess.Before(oldest)) {
			victim = key
			oldest = entry.lastAccess
			lowest = entry.accessCount
		}
	}
	if victim != "" {
		delete(m.entries, victim)
		m.evictions++
	}
}
