package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/sicko7947/multipageform"
)

// DBTX is the live connection handle every record operation runs against
type DBTX interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// Verify that the database/sql handles implement our interface
var (
	_ DBTX = (*sql.DB)(nil)
	_ DBTX = (*sql.Conn)(nil)
	_ DBTX = (*sql.Tx)(nil)
)

// RecordStore runs the parameterised statements against the MultiPageFormData
// table. It holds no connection of its own.
type RecordStore struct {
	dialect Dialect
}

// NewRecordStore creates a record store for the given dialect
func NewRecordStore(dialect Dialect) *RecordStore {
	return &RecordStore{dialect: dialect}
}

// Dialect returns the SQL dialect in use
func (r *RecordStore) Dialect() Dialect {
	return r.dialect
}

// TableExists inspects the catalog for the form data table
func (r *RecordStore) TableExists(ctx context.Context, db DBTX) (bool, error) {
	var count int
	err := db.QueryRowContext(ctx, r.dialect.rebind(r.dialect.tableExists), TableName).Scan(&count)
	if err != nil {
		return false, fmt.Errorf("failed to check table %s: %w", TableName, err)
	}
	return count > 0, nil
}

// CreateTable creates the form data table if it is missing
func (r *RecordStore) CreateTable(ctx context.Context, db DBTX) error {
	if _, err := db.ExecContext(ctx, r.dialect.createTable); err != nil {
		return fmt.Errorf("failed to create table %s: %w", TableName, err)
	}
	return nil
}

// FindByGuidAndFeature looks a record up by its composite key
func (r *RecordStore) FindByGuidAndFeature(ctx context.Context, db DBTX, guid uuid.UUID, feature string) (*multipageform.FormRecord, error) {
	query := r.dialect.rebind(`SELECT
			Id,
			TempDataGuid,
			Json,
			Feature,
			CreatedDate
		FROM MultiPageFormData
		WHERE TempDataGuid = ? AND Feature = ?`)

	var (
		rec         multipageform.FormRecord
		rawGUID     any
		createdDate any
	)
	err := db.QueryRowContext(ctx, query, guid.String(), feature).
		Scan(&rec.ID, &rawGUID, &rec.JSON, &rec.Feature, &createdDate)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, multipageform.NotFoundError(guid, feature)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get form data: %w", err)
	}

	if rec.SessionGUID, err = parseGUID(rawGUID); err != nil {
		return nil, fmt.Errorf("failed to read form data guid: %w", err)
	}
	if rec.CreatedAt, err = parseCreatedDate(createdDate); err != nil {
		return nil, fmt.Errorf("failed to read form data created date: %w", err)
	}

	return &rec, nil
}

// Insert appends a new row and writes the assigned id back into rec
func (r *RecordStore) Insert(ctx context.Context, db DBTX, rec *multipageform.FormRecord) error {
	query := r.dialect.rebind(`INSERT INTO MultiPageFormData (TempDataGuid, Json, Feature, CreatedDate)
		VALUES (?, ?, ?, ?)
		RETURNING Id`)

	err := db.QueryRowContext(ctx, query,
		rec.SessionGUID.String(),
		rec.JSON,
		rec.Feature,
		r.dialect.timeArg(rec.CreatedAt),
	).Scan(&rec.ID)
	if err != nil {
		return fmt.Errorf("failed to insert form data: %w", err)
	}
	return nil
}

// UpdateJSONByGuid replaces Json on every row with the given guid. The
// statement is not scoped by feature.
func (r *RecordStore) UpdateJSONByGuid(ctx context.Context, db DBTX, guid uuid.UUID, json string) error {
	query := r.dialect.rebind(`UPDATE MultiPageFormData SET Json = ? WHERE TempDataGuid = ?`)
	if _, err := db.ExecContext(ctx, query, json, guid.String()); err != nil {
		return fmt.Errorf("failed to update form data: %w", err)
	}
	return nil
}

// DeleteByGuid removes every row with the given guid, whatever the feature
func (r *RecordStore) DeleteByGuid(ctx context.Context, db DBTX, guid uuid.UUID) error {
	query := r.dialect.rebind(`DELETE FROM MultiPageFormData WHERE TempDataGuid = ?`)
	if _, err := db.ExecContext(ctx, query, guid.String()); err != nil {
		return fmt.Errorf("failed to delete form data: %w", err)
	}
	return nil
}

// InitConnection provisions the schema on a dedicated connection that is
// closed again before returning.
func InitConnection(ctx context.Context, db *sql.DB, records *RecordStore, logger zerolog.Logger) (err error) {
	if db == nil {
		return multipageform.NewFormDataError(multipageform.ErrCodeConnectionAbsent, multipageform.ErrConnectionAbsent.Message)
	}

	conn, err := db.Conn(ctx)
	if err != nil {
		return fmt.Errorf("failed to open connection: %w", err)
	}
	defer func() {
		if cerr := conn.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("failed to close connection: %w", cerr)
		}
	}()

	exists, err := records.TableExists(ctx, conn)
	if err != nil {
		return err
	}
	if exists {
		return nil
	}

	if err := records.CreateTable(ctx, conn); err != nil {
		return err
	}
	multipageform.LogSchemaCreated(logger, records.dialect.Name, TableName)
	return nil
}
