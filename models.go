package multipageform

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// TempDataKeySuffix is appended to a feature name to build its carrier key.
const TempDataKeySuffix = ".TempDataKey"

// FormRecord is the persisted state of one multi-page form flow
type FormRecord struct {
	// Identity
	ID          int64     `json:"id,omitempty" dynamodbav:"id,omitempty"` // relational backends only
	SessionGUID uuid.UUID `json:"tempDataGuid" dynamodbav:"temp_data_guid"`
	Feature     string    `json:"feature" dynamodbav:"feature"`

	// Payload (serialized by the caller's form data)
	JSON string `json:"json" dynamodbav:"json"`

	// Timing
	CreatedAt time.Time `json:"createdDate" dynamodbav:"created_date"`
}

// Feature names an independent multi-page flow that shares a browsing session
// with other flows.
type Feature struct {
	Name        string
	TempDataKey string
}

// NewFeature returns a feature whose carrier key is derived from its name
func NewFeature(name string) Feature {
	return Feature{
		Name:        name,
		TempDataKey: name + TempDataKeySuffix,
	}
}

// String returns the feature name
func (f Feature) String() string {
	return f.Name
}

// carrierKey falls back to the derived key when TempDataKey was left empty.
func (f Feature) carrierKey() string {
	if strings.TrimSpace(f.TempDataKey) != "" {
		return f.TempDataKey
	}
	return f.Name + TempDataKeySuffix
}
