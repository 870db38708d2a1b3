package store

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryCache_CopiesValues(t *testing.T) {
	ctx := context.Background()
	m := NewMemoryCache(10, 0)
	assert.Equal(t, "memory", m.Name())

	value := []byte("hello")
	require.NoError(t, m.Set(ctx, "k", value))
	value[0] = 'j'

	got, err := m.Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, []byte("hello"), got)

	got[0] = 'y'
	again, err := m.Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, []byte("hello"), again)
}

func TestMemoryCache_Miss(t *testing.T) {
	m := NewMemoryCache(10, 0)

	_, err := m.Get(context.Background(), "missing")
	assert.ErrorIs(t, err, ErrCacheMiss)
	assert.NoError(t, m.Remove(context.Background(), "missing"))
}

func TestMemoryCache_EvictsOldest(t *testing.T) {
	ctx := context.Background()
	m := NewMemoryCache(2, 0)

	require.NoError(t, m.Set(ctx, "a", []byte("1")))
	require.NoError(t, m.Set(ctx, "b", []byte("2")))
	require.NoError(t, m.Set(ctx, "c", []byte("3")))

	assert.Equal(t, 2, m.Len())
	_, err := m.Get(ctx, "a")
	assert.ErrorIs(t, err, ErrCacheMiss)
	_, err = m.Get(ctx, "c")
	assert.NoError(t, err)
}

func TestMemoryCache_Expires(t *testing.T) {
	ctx := context.Background()
	m := NewMemoryCache(10, 20*time.Millisecond)

	require.NoError(t, m.Set(ctx, "k", []byte("v")))
	_, err := m.Get(ctx, "k")
	require.NoError(t, err)

	assert.Eventually(t, func() bool {
		_, err := m.Get(ctx, "k")
		return err == ErrCacheMiss
	}, time.Second, 10*time.Millisecond)
}

func TestMemoryCache_Remove(t *testing.T) {
	ctx := context.Background()
	m := NewMemoryCache(10, 0)

	require.NoError(t, m.Set(ctx, "k", []byte("v")))
	require.NoError(t, m.Remove(ctx, "k"))

	_, err := m.Get(ctx, "k")
	assert.ErrorIs(t, err, ErrCacheMiss)
	assert.Equal(t, 0, m.Len())
}
