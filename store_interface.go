package multipageform

import (
	"context"

	"github.com/google/uuid"
)

// FormStore defines the persistence interface for form records.
// Implementations live in the store package: a relational backend and a
// cache backend. The service picks exactly one at construction time.
type FormStore interface {
	// Find returns the live record for (guid, feature) or an error matching
	// ErrRecordNotFound when there is none.
	Find(ctx context.Context, guid uuid.UUID, feature string) (*FormRecord, error)

	// Create persists a new record. Relational backends assign rec.ID.
	Create(ctx context.Context, rec *FormRecord) error

	// UpdateJSON replaces the payload of an existing record. ID and CreatedAt
	// are left untouched.
	UpdateJSON(ctx context.Context, rec *FormRecord) error

	// Delete removes the record for (guid, feature).
	Delete(ctx context.Context, guid uuid.UUID, feature string) error

	// Backend names the implementation for logs and metrics.
	Backend() string
}
