package cache

import (
	"context"
	"sync"
	"time"
)

// Cache stores whole rendered pages under the request's path+query for a
// bounded time. Writes elsewhere in the app do not invalidate entries;
// staleness is bounded only by the TTL or an explicit Clear. Backends
// must never fail a request: an unreachable store reads as a miss.
type Cache interface {
	Get(ctx context.Context, key string) ([]byte, bool)
	Put(ctx context.Context, key string, body []byte, ttl time.Duration)
	Clear(ctx context.Context)
}

type entry struct {
	body    []byte
	expires time.Time
}

// Memory is the in-process backend: a mutex-guarded map with lazy expiry.
type Memory struct {
	mu      sync.Mutex
	entries map[string]entry
}

func NewMemory() *Memory {
	return &Memory{entries: make(map[string]entry)}
}

func (m *Memory) Get(_ context.Context, key string) ([]byte, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	e, ok := m.entries[key]
	if !ok {
		return nil, false
	}
	if time.Now().After(e.expires) {
		delete(m.entries, key)
		return nil, false
	}
	return e.body, true
}

func (m *Memory) Put(_ context.Context, key string, body []byte, ttl time.Duration) {
	if ttl <= 0 {
		return
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries[key] = entry{body: body, expires: time.Now().Add(ttl)}
}

func (m *Memory) Clear(_ context.Context) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries = make(map[string]entry)
}
