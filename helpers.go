package multipageform

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
)

// GetFormData is a generic function for type-safe form data retrieval
func GetFormData[T any](ctx context.Context, svc *Service, feature Feature, carrier TempData) (T, error) {
	var result T
	err := svc.Get(ctx, feature, carrier, &result)
	return result, err
}

// SetFormData is a generic function for type-safe form data storage
func SetFormData[T any](ctx context.Context, svc *Service, feature Feature, carrier TempData, formData T) error {
	return svc.Set(ctx, formData, feature, carrier)
}

// GUIDFor returns the session guid the carrier holds for feature, if any
func GUIDFor(feature Feature, carrier TempData) (uuid.UUID, bool) {
	if carrier == nil {
		return uuid.Nil, false
	}
	guid, found, err := carrierGUID(feature, carrier)
	if err != nil {
		return uuid.Nil, false
	}
	return guid, found
}

// ToPtr returns a pointer to the given value.
func ToPtr[T any](v T) *T {
	return &v
}

// CalculateBackoff returns the delay before the given retry attempt.
// Attempt 0 is the first try and never waits.
func CalculateBackoff(baseDelay time.Duration, attempt int, strategy BackoffStrategy) time.Duration {
	if attempt <= 0 {
		return 0
	}

	switch BackoffStrategy(strings.ToUpper(string(strategy))) {
	case BackoffExponential:
		// Exponential: baseDelay * 2^(attempt-1)
		multiplier := 1 << (attempt - 1)
		return baseDelay * time.Duration(multiplier)
	case BackoffNone:
		return 0
	default:
		// Linear: baseDelay * attempt
		return baseDelay * time.Duration(attempt)
	}
}
