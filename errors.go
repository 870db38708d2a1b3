package multipageform

import (
	"errors"
	"fmt"
	"time"
)

// Error codes
const (
	ErrCodeConnectionAbsent    = "CONNECTION_ABSENT"
	ErrCodeMissingIdentifier   = "MISSING_IDENTIFIER"
	ErrCodeInvalidIdentifier   = "INVALID_IDENTIFIER"
	ErrCodeNotFound            = "NOT_FOUND"
	ErrCodeBackendFailure      = "BACKEND_FAILURE"
	ErrCodeSerializationFailed = "SERIALIZATION_FAILED"
)

// Sentinels for errors.Is. Any FormDataError with the same code matches.
var (
	ErrConnectionAbsent  = &FormDataError{Code: ErrCodeConnectionAbsent, Message: "connection object is null or empty"}
	ErrMissingIdentifier = &FormDataError{Code: ErrCodeMissingIdentifier, Message: "no guid identifier in temp data"}
	ErrInvalidIdentifier = &FormDataError{Code: ErrCodeInvalidIdentifier, Message: "temp data guid is not a valid identifier"}
	ErrRecordNotFound    = &FormDataError{Code: ErrCodeNotFound, Message: "form data not found"}
	ErrBackendFailure    = &FormDataError{Code: ErrCodeBackendFailure, Message: "form data backend failure"}
)

// FormDataError represents a failure of a form data operation
type FormDataError struct {
	Message   string    `json:"message"`
	Code      string    `json:"code"`
	Feature   string    `json:"feature,omitempty"`
	GUID      string    `json:"guid,omitempty"`
	Timestamp time.Time `json:"timestamp"`

	cause error
}

// Error implements the error interface
func (e *FormDataError) Error() string {
	msg := fmt.Sprintf("[%s] %s", e.Code, e.Message)
	if e.Feature != "" {
		msg += fmt.Sprintf(" (feature: %s)", e.Feature)
	}
	if e.cause != nil {
		msg += ": " + e.cause.Error()
	}
	return msg
}

// Unwrap exposes the backend error, if any
func (e *FormDataError) Unwrap() error {
	return e.cause
}

// Is matches on code so callers can compare against the sentinels
func (e *FormDataError) Is(target error) bool {
	t, ok := target.(*FormDataError)
	if !ok {
		return false
	}
	return e.Code == t.Code
}

// NewFormDataError creates a new form data error
func NewFormDataError(code, message string) *FormDataError {
	return &FormDataError{
		Message:   message,
		Code:      code,
		Timestamp: time.Now(),
	}
}

// WithFeature records which feature the failing call was for
func (e *FormDataError) WithFeature(feature string) *FormDataError {
	e.Feature = feature
	return e
}

// WithGUID records the session guid involved
func (e *FormDataError) WithGUID(guid fmt.Stringer) *FormDataError {
	e.GUID = guid.String()
	return e
}

// WithCause attaches the underlying error
func (e *FormDataError) WithCause(err error) *FormDataError {
	e.cause = err
	return e
}

// NotFoundError reports a missing record. Stores return it so callers can test
// errors.Is(err, ErrRecordNotFound) regardless of backend.
func NotFoundError(guid fmt.Stringer, feature string) *FormDataError {
	return NewFormDataError(ErrCodeNotFound, fmt.Sprintf("form data not found for %s", guid)).
		WithFeature(feature).
		WithGUID(guid)
}

// toBackendError wraps err unless it already carries a code
func toBackendError(err error, feature string) error {
	if err == nil {
		return nil
	}

	var fe *FormDataError
	if errors.As(err, &fe) {
		return err
	}

	return NewFormDataError(ErrCodeBackendFailure, err.Error()).
		WithFeature(feature).
		WithCause(err)
}

// IsNotFound checks if an error reports a missing record
func IsNotFound(err error) bool {
	return errors.Is(err, ErrRecordNotFound)
}

// IsMissingIdentifier checks if an error reports an absent carrier guid
func IsMissingIdentifier(err error) bool {
	return errors.Is(err, ErrMissingIdentifier)
}
