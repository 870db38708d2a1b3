// Package store provides persistence implementations for multi-page form data.
// The FormStore interface is defined in the parent multipageform package
// (../store_interface.go) to avoid import cycles between the two packages.
//
// This package contains concrete implementations:
//   - RelationalStore: database/sql backend (SQLite, Postgres via pgx or lib/pq)
//   - CacheBackedStore: key/value backend over a CacheClient
//
// Cache clients: RedisCache, MemcachedCache, DynamoDBCache and MemoryCache.
// Open picks one of them from multipageform.Config.
package store
