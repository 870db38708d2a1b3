package onboarding

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/sicko7947/multipageform"
	"github.com/sicko7947/multipageform/store"
	"github.com/sicko7947/multipageform/tempdata"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestOrchestrator(t *testing.T) *Orchestrator {
	t.Helper()
	st := store.NewCacheBackedStore(store.NewMemoryCache(100, 0))
	svc := multipageform.NewService(st, multipageform.WithLogger(zerolog.Nop()))
	return NewOrchestrator(svc, zerolog.Nop())
}

func TestOrchestrator_FullFlow(t *testing.T) {
	ctx := context.Background()
	o := newTestOrchestrator(t)
	carrier := tempdata.New()

	first, err := o.SaveIdentity(ctx, carrier, IdentityInput{Name: " Ada ", Email: "ada@example.com"})
	require.NoError(t, err)
	assert.Equal(t, 1, first.Data.Step)
	assert.Equal(t, "Ada", first.Data.Name)
	_, err = uuid.Parse(first.GUID)
	require.NoError(t, err)

	second, err := o.SaveInterests(ctx, carrier, InterestsInput{Interests: []string{"go", "databases"}})
	require.NoError(t, err)
	assert.Equal(t, first.GUID, second.GUID)
	assert.Equal(t, FormData{Step: 2, Name: "Ada", Email: "ada@example.com", Interests: []string{"go", "databases"}}, second.Data)

	progress, err := o.Progress(ctx, carrier)
	require.NoError(t, err)
	assert.Equal(t, second, progress)

	exists, err := o.Exists(ctx, first.GUID)
	require.NoError(t, err)
	assert.True(t, exists)

	require.NoError(t, o.Cancel(ctx, carrier))

	exists, err = o.Exists(ctx, first.GUID)
	require.NoError(t, err)
	assert.False(t, exists)

	_, err = o.Progress(ctx, carrier)
	assert.True(t, multipageform.IsMissingIdentifier(err))
}

func TestOrchestrator_EditingIdentityKeepsStep(t *testing.T) {
	ctx := context.Background()
	o := newTestOrchestrator(t)
	carrier := tempdata.New()

	_, err := o.SaveIdentity(ctx, carrier, IdentityInput{Name: "Ada", Email: "ada@example.com"})
	require.NoError(t, err)
	_, err = o.SaveInterests(ctx, carrier, InterestsInput{Interests: []string{"go"}})
	require.NoError(t, err)

	resp, err := o.SaveIdentity(ctx, carrier, IdentityInput{Name: "Ada L.", Email: "ada@example.com"})
	require.NoError(t, err)
	assert.Equal(t, 2, resp.Data.Step)
	assert.Equal(t, "Ada L.", resp.Data.Name)
	assert.Equal(t, []string{"go"}, resp.Data.Interests)
}

func TestOrchestrator_Validation(t *testing.T) {
	ctx := context.Background()
	o := newTestOrchestrator(t)
	carrier := tempdata.New()

	_, err := o.SaveIdentity(ctx, carrier, IdentityInput{Name: "Ada"})
	assert.ErrorIs(t, err, ErrInvalidInput)

	_, err = o.SaveInterests(ctx, carrier, InterestsInput{})
	assert.ErrorIs(t, err, ErrInvalidInput)

	_, err = o.SaveInterests(ctx, carrier, InterestsInput{Interests: []string{"go"}})
	assert.ErrorIs(t, err, ErrStepOutOfOrder)

	_, err = o.Exists(ctx, "not-a-guid")
	assert.ErrorIs(t, err, ErrInvalidInput)

	assert.Equal(t, 0, carrier.Len(), "failed steps must not start a flow")
}

func TestOrchestrator_CancelWithoutFlow(t *testing.T) {
	err := newTestOrchestrator(t).Cancel(context.Background(), tempdata.New())
	assert.True(t, multipageform.IsMissingIdentifier(err))
}
