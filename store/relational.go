package store

import (
	"context"
	"database/sql"

	"github.com/google/uuid"
	"github.com/sicko7947/multipageform"
)

// RelationalStore implements multipageform.FormStore over a database/sql pool.
// Each call borrows a pooled connection, so concurrent requests never share
// connection state.
type RelationalStore struct {
	db      *sql.DB
	records *RecordStore
}

// NewRelationalStore creates a relational form store. The pool is owned by
// the store and released by Close.
func NewRelationalStore(db *sql.DB, dialect Dialect) *RelationalStore {
	return &RelationalStore{
		db:      db,
		records: NewRecordStore(dialect),
	}
}

var _ multipageform.FormStore = (*RelationalStore)(nil)

// Records exposes the underlying statements
func (s *RelationalStore) Records() *RecordStore {
	return s.records
}

func (s *RelationalStore) Backend() string {
	return s.records.dialect.Name
}

func (s *RelationalStore) Find(ctx context.Context, guid uuid.UUID, feature string) (*multipageform.FormRecord, error) {
	if s.db == nil {
		return nil, multipageform.ErrConnectionAbsent
	}
	return s.records.FindByGuidAndFeature(ctx, s.db, guid, feature)
}

func (s *RelationalStore) Create(ctx context.Context, rec *multipageform.FormRecord) error {
	if s.db == nil {
		return multipageform.ErrConnectionAbsent
	}
	return s.records.Insert(ctx, s.db, rec)
}

// UpdateJSON goes through the guid-scoped update; callers reach it only after
// a guid+feature lookup succeeded.
func (s *RelationalStore) UpdateJSON(ctx context.Context, rec *multipageform.FormRecord) error {
	if s.db == nil {
		return multipageform.ErrConnectionAbsent
	}
	return s.records.UpdateJSONByGuid(ctx, s.db, rec.SessionGUID, rec.JSON)
}

// Delete removes all rows for the guid; feature is not part of the statement.
func (s *RelationalStore) Delete(ctx context.Context, guid uuid.UUID, feature string) error {
	if s.db == nil {
		return multipageform.ErrConnectionAbsent
	}
	return s.records.DeleteByGuid(ctx, s.db, guid)
}

// Close releases the connection pool
func (s *RelationalStore) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}
