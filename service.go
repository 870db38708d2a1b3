package multipageform

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"reflect"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// Service stores multi-page form state for a browsing session. The session guid
// travels in the caller's TempData carrier under the feature's carrier key; it
// is minted on the first Set so flows that never submit leave no records.
type Service struct {
	store   FormStore
	logger  zerolog.Logger
	clock   Clock
	metrics *Metrics
}

// NewService creates a service over the backend chosen at startup.
// A nil store yields a service whose every operation fails with
// ErrConnectionAbsent.
func NewService(store FormStore, opts ...ServiceOption) *Service {
	defaultLogger := zerolog.New(zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.RFC3339}).
		With().
		Timestamp().
		Logger().
		Level(zerolog.InfoLevel)

	svc := &Service{
		store:  store,
		logger: defaultLogger,
		clock:  SystemClock{},
	}

	for _, opt := range opts {
		opt(svc)
	}

	svc.logger = ServiceLogger(svc.logger, svc.backend())
	return svc
}

// Backend names the store in use, or "none" when no store was supplied
func (s *Service) Backend() string {
	return s.backend()
}

func (s *Service) backend() string {
	if s.store == nil {
		return "none"
	}
	return s.store.Backend()
}

// Set serializes formData and upserts it for the carrier's session guid. When
// the carrier has no guid, or its record is gone, a new record is created. The
// resulting guid is always written back into the carrier.
func (s *Service) Set(ctx context.Context, formData any, feature Feature, carrier TempData) (err error) {
	started := time.Now()
	defer func() { s.metrics.observe(OpSet, s.backend(), started, err) }()

	if err := s.ready(feature, carrier); err != nil {
		return err
	}

	payload, err := json.Marshal(formData)
	if err != nil {
		return NewFormDataError(ErrCodeSerializationFailed, "failed to serialize form data").
			WithFeature(feature.Name).
			WithCause(err)
	}

	guid, found, err := carrierGUID(feature, carrier)
	if err != nil {
		return err
	}

	if found {
		existing, err := s.store.Find(ctx, guid, feature.Name)
		switch {
		case err == nil:
			existing.JSON = string(payload)
			if err := s.store.UpdateJSON(ctx, existing); err != nil {
				LogBackendError(s.logger, s.backend(), OpSet, feature.Name, err)
				return toBackendError(err, feature.Name)
			}
			carrier.Set(feature.carrierKey(), guid)
			LogFormDataSaved(s.logger, guid.String(), feature.Name, false, time.Since(started))
			return nil
		case IsNotFound(err):
			// expired or deleted out of band; recreate under the same guid
		default:
			LogBackendError(s.logger, s.backend(), OpSet, feature.Name, err)
			return toBackendError(err, feature.Name)
		}
	} else {
		guid = uuid.New()
		LogGUIDMinted(s.logger, guid.String(), feature.Name)
	}

	rec := &FormRecord{
		SessionGUID: guid,
		JSON:        string(payload),
		Feature:     feature.Name,
		CreatedAt:   s.clock.Now(),
	}
	if err := s.store.Create(ctx, rec); err != nil {
		LogBackendError(s.logger, s.backend(), OpSet, feature.Name, err)
		return toBackendError(err, feature.Name)
	}

	carrier.Set(feature.carrierKey(), guid)
	LogFormDataSaved(s.logger, guid.String(), feature.Name, true, time.Since(started))
	return nil
}

// Get loads the form data for the carrier's session guid into target, which
// must be a non-nil pointer. target is reset to its zero value before decoding
// so nothing it held beforehand is merged into the result.
func (s *Service) Get(ctx context.Context, feature Feature, carrier TempData, target any) (err error) {
	started := time.Now()
	defer func() { s.metrics.observe(OpGet, s.backend(), started, err) }()

	if err := s.ready(feature, carrier); err != nil {
		return err
	}

	guid, err := s.requireGUID(feature, carrier, "Attempted to get data with no Guid identifier")
	if err != nil {
		return err
	}

	rec, err := s.store.Find(ctx, guid, feature.Name)
	if err != nil {
		if IsNotFound(err) {
			LogFormDataMissing(s.logger, feature.Name, "record not found")
			return err
		}
		LogBackendError(s.logger, s.backend(), OpGet, feature.Name, err)
		return toBackendError(err, feature.Name)
	}

	if err := decodeReplace(rec.JSON, target); err != nil {
		return NewFormDataError(ErrCodeSerializationFailed, "failed to deserialize form data").
			WithFeature(feature.Name).
			WithGUID(guid).
			WithCause(err)
	}

	// Re-setting keeps the guid alive for the next request.
	carrier.Set(feature.carrierKey(), guid)
	LogFormDataLoaded(s.logger, guid.String(), feature.Name, time.Since(started))
	return nil
}

// Clear deletes the backing record and drops the guid from the carrier
func (s *Service) Clear(ctx context.Context, feature Feature, carrier TempData) (err error) {
	started := time.Now()
	defer func() { s.metrics.observe(OpClear, s.backend(), started, err) }()

	if err := s.ready(feature, carrier); err != nil {
		return err
	}

	guid, err := s.requireGUID(feature, carrier, "Attempted to clear data with no Guid identifier")
	if err != nil {
		return err
	}

	if err := s.store.Delete(ctx, guid, feature.Name); err != nil {
		LogBackendError(s.logger, s.backend(), OpClear, feature.Name, err)
		return toBackendError(err, feature.Name)
	}

	carrier.Remove(feature.carrierKey())
	LogFormDataCleared(s.logger, guid.String(), feature.Name)
	return nil
}

// Exists reports whether a live record exists for (guid, feature). It does not
// touch any carrier. Backend errors come back as a generic BACKEND_FAILURE
// carrying the original message.
func (s *Service) Exists(ctx context.Context, feature Feature, guid uuid.UUID) (exists bool, err error) {
	started := time.Now()
	defer func() { s.metrics.observe(OpExists, s.backend(), started, err) }()

	if s.store == nil {
		return false, connectionAbsent(feature)
	}

	_, err = s.store.Find(ctx, guid, feature.Name)
	switch {
	case err == nil:
		return true, nil
	case IsNotFound(err):
		return false, nil
	default:
		LogBackendError(s.logger, s.backend(), OpExists, feature.Name, err)
		return false, NewFormDataError(ErrCodeBackendFailure, err.Error()).
			WithFeature(feature.Name).
			WithGUID(guid).
			WithCause(err)
	}
}

func (s *Service) ready(feature Feature, carrier TempData) error {
	if s.store == nil {
		return connectionAbsent(feature)
	}
	if carrier == nil {
		return NewFormDataError(ErrCodeInvalidIdentifier, "temp data carrier is nil").WithFeature(feature.Name)
	}
	return nil
}

func (s *Service) requireGUID(feature Feature, carrier TempData, message string) (uuid.UUID, error) {
	guid, found, err := carrierGUID(feature, carrier)
	if err != nil {
		return uuid.Nil, err
	}
	if !found {
		LogFormDataMissing(s.logger, feature.Name, "no guid in temp data")
		return uuid.Nil, NewFormDataError(ErrCodeMissingIdentifier, message).WithFeature(feature.Name)
	}
	return guid, nil
}

func connectionAbsent(feature Feature) error {
	return NewFormDataError(ErrCodeConnectionAbsent, ErrConnectionAbsent.Message).WithFeature(feature.Name)
}

// carrierGUID peeks the feature's guid. A nil guid counts as absent.
func carrierGUID(feature Feature, carrier TempData) (uuid.UUID, bool, error) {
	raw, ok := carrier.Peek(feature.carrierKey())
	if !ok || raw == nil {
		return uuid.Nil, false, nil
	}

	guid, err := guidFromValue(raw)
	if err != nil {
		return uuid.Nil, false, NewFormDataError(ErrCodeInvalidIdentifier, fmt.Sprintf("temp data key %s holds an invalid guid", feature.carrierKey())).
			WithFeature(feature.Name).
			WithCause(err)
	}
	if guid == uuid.Nil {
		return uuid.Nil, false, nil
	}
	return guid, true, nil
}

// decodeReplace zeroes target before unmarshalling into it
func decodeReplace(payload string, target any) error {
	rv := reflect.ValueOf(target)
	if rv.Kind() != reflect.Pointer || rv.IsNil() {
		return fmt.Errorf("target must be a non-nil pointer, got %T", target)
	}

	elem := rv.Elem()
	elem.Set(reflect.Zero(elem.Type()))

	return json.Unmarshal([]byte(payload), target)
}
