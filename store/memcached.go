package store

import (
	"context"
	"errors"
	"time"

	"github.com/bradfitz/gomemcache/memcache"
)

// maxMemcachedExpiry is 30 days; larger values are read as a unix timestamp
const maxMemcachedExpiry = 30 * 24 * 60 * 60

// MemcachedCache implements CacheClient on memcached
type MemcachedCache struct {
	mcd    *memcache.Client
	expiry int32
}

// NewMemcachedCache creates a client for servers. A zero ttl stores items
// without expiration.
func NewMemcachedCache(ttl time.Duration, servers ...string) *MemcachedCache {
	expiry := int32(0)
	if ttl.Seconds() > maxMemcachedExpiry {
		// clamp expiry at 30 days minus a minute for memcached
		expiry = maxMemcachedExpiry - 60
	} else if ttl > 0 {
		expiry = int32(ttl.Seconds())
	}
	return &MemcachedCache{
		mcd:    memcache.New(servers...),
		expiry: expiry,
	}
}

var _ CacheClient = (*MemcachedCache)(nil)

func (m *MemcachedCache) Name() string {
	return "memcached"
}

// Ping checks every configured server
func (m *MemcachedCache) Ping() error {
	return m.mcd.Ping()
}

func (m *MemcachedCache) Set(ctx context.Context, key string, value []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return m.mcd.Set(&memcache.Item{
		Key:        key,
		Value:      value,
		Expiration: m.expiry,
	})
}

func (m *MemcachedCache) Get(ctx context.Context, key string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	item, err := m.mcd.Get(key)
	if errors.Is(err, memcache.ErrCacheMiss) {
		return nil, ErrCacheMiss
	}
	if err != nil {
		return nil, err
	}
	return item.Value, nil
}

func (m *MemcachedCache) Remove(ctx context.Context, key string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	err := m.mcd.Delete(key)
	if errors.Is(err, memcache.ErrCacheMiss) {
		return nil
	}
	return err
}
