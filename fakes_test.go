package multipageform

import (
	"context"
	"sync"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// recordingStore is an in-memory FormStore for package tests
type recordingStore struct {
	mu      sync.Mutex
	records map[string]*FormRecord
	nextID  int64
}

func recordKey(guid uuid.UUID, feature string) string {
	return guid.String() + "|" + feature
}

func (s *recordingStore) Find(ctx context.Context, guid uuid.UUID, feature string) (*FormRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rec, ok := s.records[recordKey(guid, feature)]
	if !ok {
		return nil, NotFoundError(guid, feature)
	}
	cp := *rec
	return &cp, nil
}

func (s *recordingStore) Create(ctx context.Context, rec *FormRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.nextID++
	rec.ID = s.nextID
	cp := *rec
	s.records[recordKey(rec.SessionGUID, rec.Feature)] = &cp
	return nil
}

func (s *recordingStore) UpdateJSON(ctx context.Context, rec *FormRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if existing, ok := s.records[recordKey(rec.SessionGUID, rec.Feature)]; ok {
		existing.JSON = rec.JSON
	}
	return nil
}

func (s *recordingStore) Delete(ctx context.Context, guid uuid.UUID, feature string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.records, recordKey(guid, feature))
	return nil
}

func (s *recordingStore) Backend() string { return "recording" }

func testLogger() zerolog.Logger {
	return zerolog.Nop()
}
