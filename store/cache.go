package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/sicko7947/multipageform"
)

// ErrCacheMiss is returned by CacheClient.Get when the key is absent
var ErrCacheMiss = errors.New("cache miss")

// CacheClient is the distributed cache capability the cache backend needs.
// Values are opaque serialized bytes.
type CacheClient interface {
	Set(ctx context.Context, key string, value []byte) error
	Get(ctx context.Context, key string) ([]byte, error)
	Remove(ctx context.Context, key string) error
	Name() string
}

// CacheStore serializes values to JSON on top of a CacheClient
type CacheStore struct {
	client CacheClient
}

// NewCacheStore creates a cache store over client
func NewCacheStore(client CacheClient) *CacheStore {
	return &CacheStore{client: client}
}

// Set stores value under key. No expiry is set here.
func (c *CacheStore) Set(ctx context.Context, key string, value any) error {
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("failed to marshal cache value: %w", err)
	}
	if err := c.client.Set(ctx, key, data); err != nil {
		return fmt.Errorf("failed to set cache key %s: %w", key, err)
	}
	return nil
}

// Get decodes the value under key into target. found is false on a miss.
func (c *CacheStore) Get(ctx context.Context, key string, target any) (bool, error) {
	data, err := c.client.Get(ctx, key)
	if errors.Is(err, ErrCacheMiss) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to get cache key %s: %w", key, err)
	}
	if err := json.Unmarshal(data, target); err != nil {
		return false, fmt.Errorf("failed to unmarshal cache value %s: %w", key, err)
	}
	return true, nil
}

// Remove deletes key. Removing a missing key is not an error.
func (c *CacheStore) Remove(ctx context.Context, key string) error {
	err := c.client.Remove(ctx, key)
	if err != nil && !errors.Is(err, ErrCacheMiss) {
		return fmt.Errorf("failed to remove cache key %s: %w", key, err)
	}
	return nil
}

// CacheBackedStore implements multipageform.FormStore on a CacheStore. The
// whole record is stored as JSON under CacheKey(guid, feature).
type CacheBackedStore struct {
	cache  *CacheStore
	client CacheClient
}

// NewCacheBackedStore creates a cache-backed form store
func NewCacheBackedStore(client CacheClient) *CacheBackedStore {
	return &CacheBackedStore{
		cache:  NewCacheStore(client),
		client: client,
	}
}

var _ multipageform.FormStore = (*CacheBackedStore)(nil)

func (s *CacheBackedStore) Backend() string {
	return s.client.Name()
}

func (s *CacheBackedStore) Find(ctx context.Context, guid uuid.UUID, feature string) (*multipageform.FormRecord, error) {
	var rec multipageform.FormRecord
	found, err := s.cache.Get(ctx, CacheKey(guid, feature), &rec)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, multipageform.NotFoundError(guid, feature)
	}
	return &rec, nil
}

func (s *CacheBackedStore) Create(ctx context.Context, rec *multipageform.FormRecord) error {
	return s.cache.Set(ctx, CacheKey(rec.SessionGUID, rec.Feature), rec)
}

// UpdateJSON rewrites the full record; rec carries the original CreatedAt.
func (s *CacheBackedStore) UpdateJSON(ctx context.Context, rec *multipageform.FormRecord) error {
	return s.cache.Set(ctx, CacheKey(rec.SessionGUID, rec.Feature), rec)
}

func (s *CacheBackedStore) Delete(ctx context.Context, guid uuid.UUID, feature string) error {
	return s.cache.Remove(ctx, CacheKey(guid, feature))
}

// Close releases the client when it holds resources
func (s *CacheBackedStore) Close() error {
	if closer, ok := s.client.(interface{ Close() error }); ok {
		return closer.Close()
	}
	return nil
}
