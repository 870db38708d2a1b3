package multipageform

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
)

// Backend names accepted in Config.Database
const (
	BackendRedis     = "redis"
	BackendMemcached = "memcached"
	BackendDynamoDB  = "dynamodb"
	BackendMemory    = "memory"
	BackendSQL       = "sql"
)

// SQL drivers accepted in Config.SQLDriver
const (
	DriverSQLite   = "sqlite"
	DriverPgx      = "pgx"
	DriverPostgres = "postgres"
)

// BackoffStrategy defines how the delay between connection attempts grows
type BackoffStrategy string

const (
	BackoffLinear      BackoffStrategy = "LINEAR"
	BackoffExponential BackoffStrategy = "EXPONENTIAL"
	BackoffNone        BackoffStrategy = "NONE"
)

// Config selects and parameterises the backing store. It is read once at
// startup; the service never re-reads it.
type Config struct {
	// Database picks the backend. redis, memcached, dynamodb and memory are
	// cache backends; any other value selects the relational backend.
	Database string `env:"MULTIPAGEFORM_DATABASE" envDefault:"sql"`

	// Relational backend
	SQLDriver string `env:"MULTIPAGEFORM_SQL_DRIVER" envDefault:"sqlite"`
	SQLDSN    string `env:"MULTIPAGEFORM_SQL_DSN" envDefault:"multipageform.db"`

	// Cache backends
	RedisURL         string        `env:"MULTIPAGEFORM_REDIS_URL" envDefault:"redis://localhost:6379/0"`
	MemcachedServers []string      `env:"MULTIPAGEFORM_MEMCACHED_SERVERS" envSeparator:"," envDefault:"localhost:11211"`
	DynamoDBTable    string        `env:"MULTIPAGEFORM_DYNAMODB_TABLE" envDefault:"MultiPageFormData"`
	MemoryCapacity   int           `env:"MULTIPAGEFORM_MEMORY_CAPACITY" envDefault:"10000"`
	CacheTTL         time.Duration `env:"MULTIPAGEFORM_CACHE_TTL"` // zero leaves expiry to the cache

	// Startup connection retries
	ConnectRetries    int             `env:"MULTIPAGEFORM_CONNECT_RETRIES" envDefault:"3"`
	ConnectRetryDelay time.Duration   `env:"MULTIPAGEFORM_CONNECT_RETRY_DELAY" envDefault:"1s"`
	ConnectBackoff    BackoffStrategy `env:"MULTIPAGEFORM_CONNECT_BACKOFF" envDefault:"LINEAR"`

	LogLevel string `env:"MULTIPAGEFORM_LOG_LEVEL" envDefault:"info"`
}

// DefaultConfig provides the relational SQLite setup used when nothing is set
var DefaultConfig = Config{
	Database:          BackendSQL,
	SQLDriver:         DriverSQLite,
	SQLDSN:            "multipageform.db",
	RedisURL:          "redis://localhost:6379/0",
	MemcachedServers:  []string{"localhost:11211"},
	DynamoDBTable:     "MultiPageFormData",
	MemoryCapacity:    10000,
	ConnectRetries:    3,
	ConnectRetryDelay: time.Second,
	ConnectBackoff:    BackoffLinear,
	LogLevel:          "info",
}

// LoadConfig loads optional dotenv files and then parses the environment.
// Missing dotenv files are ignored.
func LoadConfig(dotenvFiles ...string) (Config, error) {
	for _, path := range dotenvFiles {
		if err := godotenv.Load(path); err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				continue
			}
			return Config{}, fmt.Errorf("load %s: %w", path, err)
		}
	}

	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	return cfg, nil
}

// Backend returns the normalised backend name
func (c Config) Backend() string {
	switch b := strings.ToLower(strings.TrimSpace(c.Database)); b {
	case BackendRedis, BackendMemcached, BackendDynamoDB, BackendMemory:
		return b
	default:
		return BackendSQL
	}
}

// UseCache reports whether a cache backend was selected
func (c Config) UseCache() bool {
	return c.Backend() != BackendSQL
}

// Driver returns the normalised SQL driver name
func (c Config) Driver() string {
	return strings.ToLower(strings.TrimSpace(c.SQLDriver))
}

// Validate checks the settings the chosen backend needs
func (c Config) Validate() error {
	switch c.Backend() {
	case BackendRedis:
		if c.RedisURL == "" {
			return fmt.Errorf("redis backend requires MULTIPAGEFORM_REDIS_URL")
		}
	case BackendMemcached:
		if len(c.MemcachedServers) == 0 {
			return fmt.Errorf("memcached backend requires MULTIPAGEFORM_MEMCACHED_SERVERS")
		}
	case BackendDynamoDB:
		if c.DynamoDBTable == "" {
			return fmt.Errorf("dynamodb backend requires MULTIPAGEFORM_DYNAMODB_TABLE")
		}
	case BackendMemory:
		if c.MemoryCapacity <= 0 {
			return fmt.Errorf("memory backend capacity must be positive, got %d", c.MemoryCapacity)
		}
	default:
		switch c.Driver() {
		case DriverSQLite, DriverPgx, DriverPostgres:
		default:
			return fmt.Errorf("unsupported sql driver %q", c.SQLDriver)
		}
		if c.SQLDSN == "" {
			return fmt.Errorf("relational backend requires MULTIPAGEFORM_SQL_DSN")
		}
	}
	if c.CacheTTL < 0 {
		return fmt.Errorf("cache ttl must not be negative")
	}
	if c.ConnectRetries < 0 {
		return fmt.Errorf("connect retries must not be negative, got %d", c.ConnectRetries)
	}
	return nil
}

// Logger builds the default console logger at the configured level
func (c Config) Logger() zerolog.Logger {
	level, err := zerolog.ParseLevel(strings.ToLower(c.LogLevel))
	if err != nil || c.LogLevel == "" {
		level = zerolog.InfoLevel
	}
	return zerolog.New(zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.RFC3339}).
		With().
		Timestamp().
		Logger().
		Level(level)
}

// ServiceOption configures the form data service
type ServiceOption func(*Service)

// WithLogger sets a custom logger for the service
func WithLogger(logger zerolog.Logger) ServiceOption {
	return func(s *Service) {
		s.logger = logger
	}
}

// WithClock replaces the UTC wall clock used for CreatedAt
func WithClock(clock Clock) ServiceOption {
	return func(s *Service) {
		if clock != nil {
			s.clock = clock
		}
	}
}

// WithMetrics records operation counts and latencies
func WithMetrics(m *Metrics) ServiceOption {
	return func(s *Service) {
		s.metrics = m
	}
}
