package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/go-redis/cache/v9"
	"github.com/redis/go-redis/v9"
)

// RedisCache implements CacheClient on Redis through go-redis/cache.
// No local in-process tier is configured: a Clear on one instance must be
// visible to every other instance immediately.
type RedisCache struct {
	rdb  *redis.Client
	data *cache.Cache
	ttl  time.Duration
}

// NewRedisCache wraps an existing client. A zero ttl keeps the library default.
func NewRedisCache(rdb *redis.Client, ttl time.Duration) *RedisCache {
	return &RedisCache{
		rdb:  rdb,
		data: cache.New(&cache.Options{Redis: rdb}),
		ttl:  ttl,
	}
}

// NewRedisCacheFromURL connects to redisURL and checks the connection
func NewRedisCacheFromURL(ctx context.Context, redisURL string, ttl time.Duration) (*RedisCache, error) {
	opt, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse redis url: %w", err)
	}
	rdb := redis.NewClient(opt)
	// check redis connection
	if _, err := rdb.Ping(ctx).Result(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("failed to ping redis: %w", err)
	}
	return NewRedisCache(rdb, ttl), nil
}

var _ CacheClient = (*RedisCache)(nil)

func (r *RedisCache) Name() string {
	return "redis"
}

func (r *RedisCache) Set(ctx context.Context, key string, value []byte) error {
	return r.data.Set(&cache.Item{
		Ctx:   ctx,
		Key:   key,
		Value: value,
		TTL:   r.ttl,
	})
}

func (r *RedisCache) Get(ctx context.Context, key string) ([]byte, error) {
	var val []byte
	err := r.data.Get(ctx, key, &val)
	if errors.Is(err, cache.ErrCacheMiss) {
		return nil, ErrCacheMiss
	}
	if err != nil {
		return nil, err
	}
	return val, nil
}

func (r *RedisCache) Remove(ctx context.Context, key string) error {
	err := r.data.Delete(ctx, key)
	if errors.Is(err, cache.ErrCacheMiss) {
		return nil
	}
	return err
}

// Close closes the underlying client
func (r *RedisCache) Close() error {
	return r.rdb.Close()
}
