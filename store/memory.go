package store

import (
	"context"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
)

// MemoryCache implements CacheClient in process (for tests and single
// instance deployments). Values are copied in and out.
type MemoryCache struct {
	data *expirable.LRU[string, []byte]
}

// NewMemoryCache creates an LRU holding at most capacity entries. A zero ttl
// keeps entries until they are evicted by size.
func NewMemoryCache(capacity int, ttl time.Duration) *MemoryCache {
	return &MemoryCache{
		data: expirable.NewLRU[string, []byte](capacity, nil, ttl),
	}
}

var _ CacheClient = (*MemoryCache)(nil)

func (m *MemoryCache) Name() string {
	return "memory"
}

func (m *MemoryCache) Set(ctx context.Context, key string, value []byte) error {
	// Copy bytes
	valueCopy := make([]byte, len(value))
	copy(valueCopy, value)
	m.data.Add(key, valueCopy)
	return nil
}

func (m *MemoryCache) Get(ctx context.Context, key string) ([]byte, error) {
	value, ok := m.data.Get(key)
	if !ok {
		return nil, ErrCacheMiss
	}

	// Copy bytes
	valueCopy := make([]byte, len(value))
	copy(valueCopy, value)
	return valueCopy, nil
}

func (m *MemoryCache) Remove(ctx context.Context, key string) error {
	m.data.Remove(key)
	return nil
}

// Len returns the number of live entries
func (m *MemoryCache) Len() int {
	return m.data.Len()
}
