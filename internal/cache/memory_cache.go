package cache

import (
	"context"
	"sync"
	"time"
)

type memoryEntry struct {
	payload   []byte
	expiresAt time.Time
}

// MemoryPayloadCache - кэш снимков в памяти процесса с TTL
type MemoryPayloadCache struct {
	mu      sync.RWMutex
	entries map[string]memoryEntry
	ttl     time.Duration
	closed  bool
	now     func() time.Time
}

// NewMemoryPayloadCache создаёт кэш; ttl <= 0 означает DefaultTTL
func NewMemoryPayloadCache(ttl time.Duration) *MemoryPayloadCache {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &MemoryPayloadCache{
		entries: make(map[string]memoryEntry),
		ttl:     ttl,
		now:     time.Now,
	}
}

func (m *MemoryPayloadCache) Get(ctx context.Context, x, z int32) ([]byte, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.closed {
		return nil, ErrCacheClosed
	}
	e, ok := m.entries[payloadKey(x, z)]
	if !ok || m.now().After(e.expiresAt) {
		return nil, ErrCacheMiss
	}
	return append([]byte(nil), e.payload...), nil
}

func (m *MemoryPayloadCache) Set(ctx context.Context, x, z int32, payload []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return ErrCacheClosed
	}
	m.entries[payloadKey(x, z)] = memoryEntry{
		payload:   append([]byte(nil), payload...),
		expiresAt: m.now().Add(m.ttl),
	}
	return nil
}

func (m *MemoryPayloadCache) Invalidate(ctx context.Context, x, z int32) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	delete(m.entries, payloadKey(x, z))
	return nil
}

func (m *MemoryPayloadCache) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.closed = true
	m.entries = nil
	return nil
}
