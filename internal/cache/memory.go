package cache

import (
	"context"
	"strconv"
	"sync"
	"time"
)

// MemoryBackend is a process-local Backend for single-instance deployments
// and tests. Expired keys are dropped lazily.
type MemoryBackend struct {
	mu      sync.Mutex
	entries map[string]memoryEntry
	now     func() time.Time
}

type memoryEntry struct {
	value   []byte
	expires time.Time
}

func NewMemoryBackend() *MemoryBackend {
	return &MemoryBackend{
		entries: map[string]memoryEntry{},
		now:     time.Now,
	}
}

// lookup returns a live entry, the caller holds mu
func (m *MemoryBackend) lookup(key string) (memoryEntry, bool) {
	e, ok := m.entries[key]
	if !ok {
		return e, false
	}
	if !e.expires.IsZero() && !m.now().Before(e.expires) {
		delete(m.entries, key)
		return e, false
	}
	return e, true
}

func (m *MemoryBackend) put(key string, value []byte, ttl time.Duration) {
	e := memoryEntry{value: append([]byte(nil), value...)}
	if ttl > 0 {
		e.expires = m.now().Add(ttl)
	}
	m.entries[key] = e
}

func (m *MemoryBackend) Get(ctx context.Context, key string) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	e, ok := m.lookup(key)
	if !ok {
		return nil, ErrMiss
	}
	return append([]byte(nil), e.value...), nil
}

func (m *MemoryBackend) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.put(key, value, ttl)
	return nil
}

func (m *MemoryBackend) SetNX(ctx context.Context, key string, ttl time.Duration) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.lookup(key); ok {
		return false, nil
	}
	m.put(key, []byte("1"), ttl)
	return true, nil
}

func (m *MemoryBackend) Del(ctx context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.entries, key)
	return nil
}

func (m *MemoryBackend) Exists(ctx context.Context, key string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.lookup(key)
	return ok, nil
}

// Incr increments a counter, setting its expiry when the key is new
func (m *MemoryBackend) Incr(ctx context.Context, key string, ttl time.Duration) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var n int64
	e, ok := m.lookup(key)
	if ok {
		n = decodeCount(e.value)
	}
	n++

	if ok {
		e.value = encodeCount(n)
		m.entries[key] = e
	} else {
		m.put(key, encodeCount(n), ttl)
	}
	return n, nil
}

func encodeCount(n int64) []byte {
	return []byte(strconv.FormatInt(n, 10))
}

func decodeCount(b []byte) int64 {
	n, _ := strconv.ParseInt(string(b), 10, 64)
	return n
}
