package onboarding

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/sicko7947/multipageform"
)

var (
	// ErrInvalidInput is returned when a step is submitted with missing fields
	ErrInvalidInput = errors.New("invalid input")

	// ErrStepOutOfOrder is returned when step 2 is submitted before step 1
	ErrStepOutOfOrder = errors.New("step submitted out of order")
)

// Orchestrator drives the onboarding flow on top of the form data service
type Orchestrator struct {
	svc    *multipageform.Service
	logger zerolog.Logger
}

// NewOrchestrator creates a new onboarding orchestrator
func NewOrchestrator(svc *multipageform.Service, logger zerolog.Logger) *Orchestrator {
	return &Orchestrator{
		svc:    svc,
		logger: logger,
	}
}

// SaveIdentity records step 1. It starts a new flow when the carrier has none.
func (o *Orchestrator) SaveIdentity(ctx context.Context, carrier multipageform.TempData, input IdentityInput) (*ProgressResponse, error) {
	name := strings.TrimSpace(input.Name)
	email := strings.TrimSpace(input.Email)
	if name == "" || email == "" {
		return nil, fmt.Errorf("%w: name and email are required", ErrInvalidInput)
	}

	data, err := o.load(ctx, carrier)
	if err != nil {
		return nil, err
	}

	data.Name = name
	data.Email = email
	if data.Step < 1 {
		data.Step = 1
	}

	return o.save(ctx, carrier, data)
}

// SaveInterests records step 2
func (o *Orchestrator) SaveInterests(ctx context.Context, carrier multipageform.TempData, input InterestsInput) (*ProgressResponse, error) {
	if len(input.Interests) == 0 {
		return nil, fmt.Errorf("%w: at least one interest is required", ErrInvalidInput)
	}

	data, err := o.load(ctx, carrier)
	if err != nil {
		return nil, err
	}
	if data.Step < 1 {
		return nil, ErrStepOutOfOrder
	}

	data.Interests = input.Interests
	data.Step = 2

	return o.save(ctx, carrier, data)
}

// Progress returns the flow state held for the carrier
func (o *Orchestrator) Progress(ctx context.Context, carrier multipageform.TempData) (*ProgressResponse, error) {
	data, err := multipageform.GetFormData[FormData](ctx, o.svc, Feature, carrier)
	if err != nil {
		return nil, err
	}

	guid, _ := multipageform.GUIDFor(Feature, carrier)
	return &ProgressResponse{GUID: guid.String(), Data: data}, nil
}

// Cancel drops the flow
func (o *Orchestrator) Cancel(ctx context.Context, carrier multipageform.TempData) error {
	return o.svc.Clear(ctx, Feature, carrier)
}

// Exists reports whether a flow with the given guid is stored
func (o *Orchestrator) Exists(ctx context.Context, guid string) (bool, error) {
	id, err := uuid.Parse(guid)
	if err != nil {
		return false, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}
	return o.svc.Exists(ctx, Feature, id)
}

// load returns the stored state, or an empty one when no flow is in progress
func (o *Orchestrator) load(ctx context.Context, carrier multipageform.TempData) (FormData, error) {
	data, err := multipageform.GetFormData[FormData](ctx, o.svc, Feature, carrier)
	switch {
	case err == nil:
		return data, nil
	case multipageform.IsMissingIdentifier(err), multipageform.IsNotFound(err):
		return FormData{}, nil
	default:
		return FormData{}, err
	}
}

func (o *Orchestrator) save(ctx context.Context, carrier multipageform.TempData, data FormData) (*ProgressResponse, error) {
	if err := multipageform.SetFormData(ctx, o.svc, Feature, carrier, data); err != nil {
		return nil, fmt.Errorf("failed to save onboarding step %d: %w", data.Step, err)
	}

	guid, _ := multipageform.GUIDFor(Feature, carrier)
	o.logger.Info().
		Str("guid", guid.String()).
		Int("step", data.Step).
		Msg("Onboarding step saved")

	return &ProgressResponse{GUID: guid.String(), Data: data}, nil
}
