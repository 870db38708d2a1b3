package multipageform

import (
	"time"

	"github.com/rs/zerolog"
)

// Log event names
const (
	// Service events
	EventFormDataSaved   = "form_data_saved"
	EventFormDataLoaded  = "form_data_loaded"
	EventFormDataCleared = "form_data_cleared"
	EventFormDataMissing = "form_data_missing"
	EventGUIDMinted      = "guid_minted"

	// Persistence events
	EventBackendError  = "backend_error"
	EventSchemaCreated = "schema_created"
	EventStoreOpened   = "store_opened"
)

// LogFormDataSaved logs a successful Set
func LogFormDataSaved(logger zerolog.Logger, guid, feature string, created bool, duration time.Duration) {
	logger.Debug().
		Str("event", EventFormDataSaved).
		Str("guid", guid).
		Str("feature", feature).
		Bool("created", created).
		Dur("duration", duration).
		Msg("Form data saved")
}

// LogFormDataLoaded logs a successful Get
func LogFormDataLoaded(logger zerolog.Logger, guid, feature string, duration time.Duration) {
	logger.Debug().
		Str("event", EventFormDataLoaded).
		Str("guid", guid).
		Str("feature", feature).
		Dur("duration", duration).
		Msg("Form data loaded")
}

// LogFormDataCleared logs a successful Clear
func LogFormDataCleared(logger zerolog.Logger, guid, feature string) {
	logger.Debug().
		Str("event", EventFormDataCleared).
		Str("guid", guid).
		Str("feature", feature).
		Msg("Form data cleared")
}

// LogFormDataMissing logs a Get or Clear that found nothing to work with
func LogFormDataMissing(logger zerolog.Logger, feature, reason string) {
	logger.Warn().
		Str("event", EventFormDataMissing).
		Str("feature", feature).
		Str("reason", reason).
		Msg("Form data missing")
}

// LogGUIDMinted logs the first write of a flow
func LogGUIDMinted(logger zerolog.Logger, guid, feature string) {
	logger.Info().
		Str("event", EventGUIDMinted).
		Str("guid", guid).
		Str("feature", feature).
		Msg("Session guid minted")
}

// LogBackendError logs errors raised by the configured store
func LogBackendError(logger zerolog.Logger, backend, operation, feature string, err error) {
	logger.Error().
		Str("event", EventBackendError).
		Str("backend", backend).
		Str("operation", operation).
		Str("feature", feature).
		Err(err).
		Msg("Backend error")
}

// LogSchemaCreated logs table provisioning at startup
func LogSchemaCreated(logger zerolog.Logger, dialect, table string) {
	logger.Info().
		Str("event", EventSchemaCreated).
		Str("dialect", dialect).
		Str("table", table).
		Msg("Form data table created")
}

// LogStoreOpened logs the backend chosen at startup
func LogStoreOpened(logger zerolog.Logger, backend string, useCache bool) {
	logger.Info().
		Str("event", EventStoreOpened).
		Str("backend", backend).
		Bool("use_cache", useCache).
		Msg("Form data store opened")
}

// ServiceLogger creates a logger enriched with the backend name
func ServiceLogger(baseLogger zerolog.Logger, backend string) zerolog.Logger {
	return baseLogger.With().
		Str("component", "multipageform").
		Str("backend", backend).
		Logger()
}
