package store

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sicko7947/multipageform"
)

// Relational schema
const (
	TableName = "MultiPageFormData"

	ColID           = "Id"
	ColTempDataGUID = "TempDataGuid"
	ColJSON         = "Json"
	ColFeature      = "Feature"
	ColCreatedDate  = "CreatedDate"
)

// Cache key suffix shared by every cache backend
const cacheKeySuffix = ":MultiPageFormData"

// Dialect captures what differs between the supported SQL drivers
type Dialect struct {
	// Name is the database/sql driver name
	Name string

	createTable string
	tableExists string
	numbered    bool // $1, $2 placeholders instead of ?
	timeAsInt   bool // CreatedDate stored as unix milliseconds
}

var sqliteDialect = Dialect{
	Name: multipageform.DriverSQLite,
	createTable: `CREATE TABLE IF NOT EXISTS MultiPageFormData (
		Id INTEGER PRIMARY KEY AUTOINCREMENT,
		TempDataGuid TEXT NOT NULL,
		Json TEXT NOT NULL,
		Feature TEXT NOT NULL,
		CreatedDate INTEGER NOT NULL
	)`,
	tableExists: `SELECT COUNT(*) FROM sqlite_master WHERE type = 'table' AND name = ?`,
	timeAsInt:   true,
}

var postgresCreateTable = `CREATE TABLE IF NOT EXISTS MultiPageFormData (
		Id BIGSERIAL PRIMARY KEY,
		TempDataGuid UUID NOT NULL,
		Json TEXT NOT NULL,
		Feature TEXT NOT NULL,
		CreatedDate TIMESTAMPTZ NOT NULL
	)`

// Unquoted identifiers are folded to lower case by Postgres.
var postgresTableExists = `SELECT COUNT(*) FROM information_schema.tables
		WHERE table_schema = current_schema() AND table_name = lower(?)`

var pgxDialect = Dialect{
	Name:        multipageform.DriverPgx,
	createTable: postgresCreateTable,
	tableExists: postgresTableExists,
	numbered:    true,
}

var postgresDialect = Dialect{
	Name:        multipageform.DriverPostgres,
	createTable: postgresCreateTable,
	tableExists: postgresTableExists,
	numbered:    true,
}

// DialectFor returns the dialect for a database/sql driver name
func DialectFor(driver string) (Dialect, error) {
	switch strings.ToLower(strings.TrimSpace(driver)) {
	case multipageform.DriverSQLite:
		return sqliteDialect, nil
	case multipageform.DriverPgx:
		return pgxDialect, nil
	case multipageform.DriverPostgres:
		return postgresDialect, nil
	default:
		return Dialect{}, fmt.Errorf("unsupported sql driver %q", driver)
	}
}

// rebind rewrites ? placeholders for dialects that number them
func (d Dialect) rebind(query string) string {
	if !d.numbered {
		return query
	}

	var b strings.Builder
	b.Grow(len(query) + 8)
	n := 0
	for _, r := range query {
		if r == '?' {
			n++
			b.WriteByte('$')
			b.WriteString(strconv.Itoa(n))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

func (d Dialect) timeArg(t time.Time) any {
	t = t.UTC()
	if d.timeAsInt {
		return t.UnixMilli()
	}
	return t
}

// parseCreatedDate accepts what the drivers hand back for CreatedDate
func parseCreatedDate(v any) (time.Time, error) {
	switch val := v.(type) {
	case int64:
		return time.UnixMilli(val).UTC(), nil
	case time.Time:
		return val.UTC(), nil
	case string:
		return parseTimeString(val)
	case []byte:
		return parseTimeString(string(val))
	default:
		return time.Time{}, fmt.Errorf("unexpected CreatedDate type %T", v)
	}
}

func parseTimeString(s string) (time.Time, error) {
	if ms, err := strconv.ParseInt(s, 10, 64); err == nil {
		return time.UnixMilli(ms).UTC(), nil
	}
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("failed to parse CreatedDate %q: %w", s, err)
	}
	return t.UTC(), nil
}

// parseGUID accepts text and binary uuid column values
func parseGUID(v any) (uuid.UUID, error) {
	switch val := v.(type) {
	case string:
		return uuid.Parse(val)
	case []byte:
		if len(val) == 16 {
			return uuid.FromBytes(val)
		}
		return uuid.ParseBytes(val)
	case [16]byte:
		return uuid.UUID(val), nil
	default:
		return uuid.Nil, fmt.Errorf("unexpected TempDataGuid type %T", v)
	}
}

// CacheKey builds the composite cache key for a record. A blank feature drops
// the feature segment.
func CacheKey(guid uuid.UUID, feature string) string {
	if strings.TrimSpace(feature) == "" {
		return guid.String() + cacheKeySuffix
	}
	return fmt.Sprintf("%s-%s%s", guid, feature, cacheKeySuffix)
}
