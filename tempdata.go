package multipageform

import (
	"fmt"

	"github.com/google/uuid"
)

// TempData is the request-scoped carrier that holds session guids across
// redirects. The web layer owns its lifetime; the service only reads, writes
// and removes entries.
type TempData interface {
	// Peek reads a value without marking it for removal
	Peek(key string) (any, bool)

	// Set stores a value and keeps it for the next request
	Set(key string, value any)

	// Remove deletes a value
	Remove(key string)
}

// guidFromValue normalises the carrier representations we accept. Values that
// went through a cookie round trip come back as strings.
func guidFromValue(v any) (uuid.UUID, error) {
	switch val := v.(type) {
	case uuid.UUID:
		return val, nil
	case *uuid.UUID:
		if val == nil {
			return uuid.Nil, fmt.Errorf("nil guid pointer")
		}
		return *val, nil
	case string:
		return uuid.Parse(val)
	case []byte:
		return uuid.ParseBytes(val)
	case fmt.Stringer:
		return uuid.Parse(val.String())
	default:
		return uuid.Nil, fmt.Errorf("unsupported guid type %T", v)
	}
}
