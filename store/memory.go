package store

import (
	"context"
	"sync"
	"time"

	"github.com/cockroachdb/errors"
)

type memoryItem struct {
	value     []byte
	expiresAt time.Time
}

// sweepInterval is the minimal interval between removals of expired items
const sweepInterval = time.Minute

type inMemory struct {
	mu        sync.RWMutex
	storage   map[string]memoryItem
	now       func() time.Time
	lastSweep time.Time
}

// NewMemoryStore returns Cache that keeps the values in the process memory.
func NewMemoryStore() Cache {
	return &inMemory{now: time.Now}
}

// NewMemoryStoreWithClock returns in-memory Cache with custom clock.
func NewMemoryStoreWithClock(now func() time.Time) Cache {
	return &inMemory{now: now}
}

func (m *inMemory) Get(_ context.Context, key string) ([]byte, error) {
	m.mu.RLock()
	item, ok := m.storage[key]
	m.mu.RUnlock()

	if !ok {
		return nil, errors.WithStack(ErrNotFound)
	}
	if !item.expiresAt.IsZero() && !m.now().Before(item.expiresAt) {
		m.mu.Lock()
		// re-check, the value could be updated meanwhile
		if cur, ok := m.storage[key]; ok && cur.expiresAt.Equal(item.expiresAt) {
			delete(m.storage, key)
		}
		m.mu.Unlock()
		return nil, errors.WithStack(ErrNotFound)
	}
	return append([]byte(nil), item.value...), nil
}

func (m *inMemory) Set(_ context.Context, key string, value []byte, ttl time.Duration) error {
	if ttl < 0 {
		return errors.Errorf("invalid TTL: %s", ttl)
	}
	now := m.now()
	item := memoryItem{
		value: append([]byte(nil), value...),
	}
	if ttl > 0 {
		item.expiresAt = now.Add(ttl)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if m.storage == nil {
		// create on first use
		m.storage = make(map[string]memoryItem)
		m.lastSweep = now
	}
	if now.Sub(m.lastSweep) >= sweepInterval {
		m.sweep(now)
	}
	m.storage[key] = item
	return nil
}

// sweep removes the expired items, must be called under the lock
func (m *inMemory) sweep(now time.Time) {
	for k, item := range m.storage {
		if !item.expiresAt.IsZero() && !now.Before(item.expiresAt) {
			delete(m.storage, k)
		}
	}
	m.lastSweep = now
}

func (m *inMemory) Delete(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.storage != nil {
		delete(m.storage, key)
	}
	return nil
}
