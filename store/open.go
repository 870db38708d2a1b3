package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	_ "github.com/jackc/pgx/v5/stdlib"
	_ "github.com/lib/pq"
	"github.com/rs/zerolog"
	"github.com/sicko7947/multipageform"
	_ "modernc.org/sqlite"
)

// Store is a form store that owns resources released by Close
type Store interface {
	multipageform.FormStore
	Close() error
}

var (
	_ Store = (*RelationalStore)(nil)
	_ Store = (*CacheBackedStore)(nil)
)

// Open builds the backend selected by cfg. Cache backends are checked for
// reachability; the relational backend has its table provisioned before Open
// returns. Failed attempts are retried cfg.ConnectRetries times with backoff.
func Open(ctx context.Context, cfg multipageform.Config, logger zerolog.Logger) (Store, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	var (
		st      Store
		lastErr error
	)

	// Retry loop
	for attempt := 0; attempt <= cfg.ConnectRetries; attempt++ {
		if attempt > 0 {
			delay := multipageform.CalculateBackoff(cfg.ConnectRetryDelay, attempt, cfg.ConnectBackoff)
			logger.Warn().
				Err(lastErr).
				Str("backend", cfg.Backend()).
				Int("attempt", attempt).
				Dur("delay", delay).
				Msg("Retrying form data store connection")

			if err := sleepContext(ctx, delay); err != nil {
				return nil, fmt.Errorf("connecting to %s store: %w (last error: %v)", cfg.Backend(), err, lastErr)
			}
		}

		st, lastErr = openBackend(ctx, cfg, logger)
		if lastErr == nil {
			break
		}
	}
	if lastErr != nil {
		return nil, fmt.Errorf("failed to open %s store after %d attempts: %w", cfg.Backend(), cfg.ConnectRetries+1, lastErr)
	}

	multipageform.LogStoreOpened(logger, st.Backend(), cfg.UseCache())
	return st, nil
}

func openBackend(ctx context.Context, cfg multipageform.Config, logger zerolog.Logger) (Store, error) {
	switch cfg.Backend() {
	case multipageform.BackendRedis:
		return openRedis(ctx, cfg)
	case multipageform.BackendMemcached:
		return openMemcached(cfg)
	case multipageform.BackendDynamoDB:
		return openDynamoDB(ctx, cfg)
	case multipageform.BackendMemory:
		return NewCacheBackedStore(NewMemoryCache(cfg.MemoryCapacity, cfg.CacheTTL)), nil
	default:
		return OpenRelational(ctx, cfg.Driver(), cfg.SQLDSN, logger)
	}
}

func sleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// OpenRelational opens a pool for driver/dsn and provisions the schema
func OpenRelational(ctx context.Context, driver, dsn string, logger zerolog.Logger) (*RelationalStore, error) {
	dialect, err := DialectFor(driver)
	if err != nil {
		return nil, err
	}

	db, err := sql.Open(dialect.Name, dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// SQLite only supports one writer at a time
	if dialect.Name == multipageform.DriverSQLite {
		db.SetMaxOpenConns(1)
		db.SetMaxIdleConns(1)
	}

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	st := NewRelationalStore(db, dialect)
	if err := InitConnection(ctx, db, st.records, logger); err != nil {
		_ = db.Close()
		return nil, err
	}
	return st, nil
}

func openRedis(ctx context.Context, cfg multipageform.Config) (Store, error) {
	client, err := NewRedisCacheFromURL(ctx, cfg.RedisURL, cfg.CacheTTL)
	if err != nil {
		return nil, err
	}
	return NewCacheBackedStore(client), nil
}

func openMemcached(cfg multipageform.Config) (Store, error) {
	client := NewMemcachedCache(cfg.CacheTTL, cfg.MemcachedServers...)
	if err := client.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping memcached: %w", err)
	}
	return NewCacheBackedStore(client), nil
}

func openDynamoDB(ctx context.Context, cfg multipageform.Config) (Store, error) {
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load aws config: %w", err)
	}
	client := NewDynamoDBCache(dynamodb.NewFromConfig(awsCfg), cfg.DynamoDBTable, cfg.CacheTTL)
	if err := client.Ping(ctx); err != nil {
		return nil, err
	}
	return NewCacheBackedStore(client), nil
}
