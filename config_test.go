package multipageform

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig

	assert.Equal(t, BackendSQL, cfg.Backend())
	assert.False(t, cfg.UseCache())
	assert.Equal(t, DriverSQLite, cfg.Driver())
	assert.NoError(t, cfg.Validate())
}

func TestConfig_Backend(t *testing.T) {
	tests := []struct {
		database string
		want     string
		useCache bool
	}{
		{"redis", BackendRedis, true},
		{"Redis", BackendRedis, true},
		{" memcached ", BackendMemcached, true},
		{"dynamodb", BackendDynamoDB, true},
		{"memory", BackendMemory, true},
		{"sql", BackendSQL, false},
		{"sqlserver", BackendSQL, false},
		{"", BackendSQL, false},
	}

	for _, tt := range tests {
		t.Run(tt.database, func(t *testing.T) {
			cfg := Config{Database: tt.database}
			assert.Equal(t, tt.want, cfg.Backend())
			assert.Equal(t, tt.useCache, cfg.UseCache())
		})
	}
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{
			name:    "unsupported driver",
			mutate:  func(c *Config) { c.SQLDriver = "mysql" },
			wantErr: "unsupported sql driver",
		},
		{
			name:    "missing dsn",
			mutate:  func(c *Config) { c.SQLDSN = "" },
			wantErr: "MULTIPAGEFORM_SQL_DSN",
		},
		{
			name: "redis without url",
			mutate: func(c *Config) {
				c.Database = BackendRedis
				c.RedisURL = ""
			},
			wantErr: "MULTIPAGEFORM_REDIS_URL",
		},
		{
			name: "memcached without servers",
			mutate: func(c *Config) {
				c.Database = BackendMemcached
				c.MemcachedServers = nil
			},
			wantErr: "MULTIPAGEFORM_MEMCACHED_SERVERS",
		},
		{
			name: "dynamodb without table",
			mutate: func(c *Config) {
				c.Database = BackendDynamoDB
				c.DynamoDBTable = ""
			},
			wantErr: "MULTIPAGEFORM_DYNAMODB_TABLE",
		},
		{
			name: "memory without capacity",
			mutate: func(c *Config) {
				c.Database = BackendMemory
				c.MemoryCapacity = 0
			},
			wantErr: "capacity must be positive",
		},
		{
			name:    "negative ttl",
			mutate:  func(c *Config) { c.CacheTTL = -time.Second },
			wantErr: "ttl must not be negative",
		},
		{
			name:    "negative retries",
			mutate:  func(c *Config) { c.ConnectRetries = -1 },
			wantErr: "connect retries must not be negative",
		},
		{
			name: "cache backend ignores sql settings",
			mutate: func(c *Config) {
				c.Database = BackendMemory
				c.SQLDriver = "mysql"
				c.SQLDSN = ""
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig
			cfg.MemcachedServers = append([]string(nil), DefaultConfig.MemcachedServers...)
			tt.mutate(&cfg)

			err := cfg.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestLoadConfig_FromEnv(t *testing.T) {
	t.Setenv("MULTIPAGEFORM_DATABASE", "memcached")
	t.Setenv("MULTIPAGEFORM_MEMCACHED_SERVERS", "cache-a:11211,cache-b:11211")
	t.Setenv("MULTIPAGEFORM_CACHE_TTL", "20m")

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, BackendMemcached, cfg.Backend())
	assert.Equal(t, []string{"cache-a:11211", "cache-b:11211"}, cfg.MemcachedServers)
	assert.Equal(t, 20*time.Minute, cfg.CacheTTL)
	assert.Equal(t, DriverSQLite, cfg.SQLDriver)
	assert.Equal(t, 3, cfg.ConnectRetries)
	assert.Equal(t, time.Second, cfg.ConnectRetryDelay)
	assert.Equal(t, BackoffLinear, cfg.ConnectBackoff)
}

func TestLoadConfig_Dotenv(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".env")
	require.NoError(t, os.WriteFile(path, []byte("MULTIPAGEFORM_SQL_DRIVER=pgx\nMULTIPAGEFORM_SQL_DSN=postgres://forms@localhost/forms\n"), 0o600))

	// godotenv does not override variables that are already set, and
	// t.Setenv restores them afterwards
	t.Setenv("MULTIPAGEFORM_SQL_DRIVER", "")
	t.Setenv("MULTIPAGEFORM_SQL_DSN", "")
	require.NoError(t, os.Unsetenv("MULTIPAGEFORM_SQL_DRIVER"))
	require.NoError(t, os.Unsetenv("MULTIPAGEFORM_SQL_DSN"))

	cfg, err := LoadConfig(filepath.Join(t.TempDir(), "missing.env"), path)
	require.NoError(t, err)

	assert.Equal(t, DriverPgx, cfg.Driver())
	assert.Equal(t, "postgres://forms@localhost/forms", cfg.SQLDSN)
	assert.False(t, cfg.UseCache())
}

func TestConfig_Logger(t *testing.T) {
	assert.Equal(t, zerolog.DebugLevel, Config{LogLevel: "DEBUG"}.Logger().GetLevel())
	assert.Equal(t, zerolog.InfoLevel, Config{LogLevel: "nonsense"}.Logger().GetLevel())
	assert.Equal(t, zerolog.InfoLevel, Config{}.Logger().GetLevel())
}

func TestServiceOptions(t *testing.T) {
	fixed := time.Date(2024, 1, 2, 3, 4, 5, 0, time.FixedZone("AEST", 10*60*60))
	metrics := NewMetrics(nil)

	svc := NewService(nil,
		WithLogger(zerolog.Nop()),
		WithClock(ClockFunc(func() time.Time { return fixed })),
		WithMetrics(metrics),
	)

	assert.Equal(t, fixed.UTC(), svc.clock.Now())
	assert.Equal(t, time.UTC, svc.clock.Now().Location())
	assert.Same(t, metrics, svc.metrics)

	// a nil clock keeps the default
	svc = NewService(nil, WithClock(nil))
	assert.IsType(t, SystemClock{}, svc.clock)
}
