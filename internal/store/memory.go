package store

import (
	"context"
	"sync"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"

	"github.com/krea02/ai-agent-demo/internal/domain"
)

// MemoryStore keeps sessions in a bounded LRU. Sessions idle for longer than
// the TTL, or pushed out by capacity, are evicted.
type MemoryStore struct {
	cache    *expirable.LRU[string, *domain.Session]
	onEvict  EvictFunc
	deleting sync.Map
}

// NewMemoryStore creates an in-memory store. A zero ttl disables idle expiry.
func NewMemoryStore(capacity int, ttl time.Duration, onEvict EvictFunc) *MemoryStore {
	m := &MemoryStore{onEvict: onEvict}
	m.cache = expirable.NewLRU[string, *domain.Session](capacity, m.evicted, ttl)
	return m
}

// evicted runs under the LRU's lock, so the user callback is deferred to a
// goroutine and may safely call back into the store.
func (m *MemoryStore) evicted(key string, _ *domain.Session) {
	if _, explicit := m.deleting.LoadAndDelete(key); explicit {
		return
	}
	if m.onEvict != nil {
		go m.onEvict(key)
	}
}

// Get returns a copy of the session.
func (m *MemoryStore) Get(_ context.Context, key string) (*domain.Session, error) {
	s, ok := m.cache.Get(key)
	if !ok {
		return nil, ErrNotFound
	}
	return s.Clone(), nil
}

// Save stores a copy of s and restarts its idle timer.
func (m *MemoryStore) Save(_ context.Context, s *domain.Session) error {
	m.cache.Add(s.Key, s.Clone())
	return nil
}

// Delete removes the session without triggering the eviction callback.
func (m *MemoryStore) Delete(_ context.Context, key string) error {
	if !m.cache.Contains(key) {
		return nil
	}
	m.deleting.Store(key, struct{}{})
	if !m.cache.Remove(key) {
		m.deleting.Delete(key)
	}
	return nil
}

// Len returns the number of live sessions.
func (m *MemoryStore) Len() int {
	return m.cache.Len()
}

// Ping always succeeds.
func (m *MemoryStore) Ping(context.Context) error {
	return nil
}

// Close drops every session without calling the eviction callback.
func (m *MemoryStore) Close() error {
	for _, key := range m.cache.Keys() {
		m.deleting.Store(key, struct{}{})
	}
	m.cache.Purge()
	m.deleting.Range(func(k, _ any) bool {
		m.deleting.Delete(k)
		return true
	})
	return nil
}
