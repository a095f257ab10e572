package kvstore

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryStoreGetSetDelete(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()

	_, err := s.Get(ctx, "missing")
	assert.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, s.Set(ctx, "k", "v1"))
	val, err := s.Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, "v1", val)

	require.NoError(t, s.Set(ctx, "k", "v2"))
	val, err = s.Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, "v2", val)

	require.NoError(t, s.Delete(ctx, "k"))
	_, err = s.Get(ctx, "k")
	assert.ErrorIs(t, err, ErrNotFound)

	// Deleting an absent key is not an error.
	require.NoError(t, s.Delete(ctx, "k"))
}

func TestMemoryStoreListByPrefix(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()

	require.NoError(t, s.Set(ctx, "user:u1:notification:n1", "a"))
	require.NoError(t, s.Set(ctx, "user:u1:notification:n2", "b"))
	require.NoError(t, s.Set(ctx, "user:u2:notification:n1", "c"))

	entries, err := s.List(ctx, "user:u1:notification:")
	require.NoError(t, err)
	assert.Len(t, entries, 2)
	assert.Equal(t, "a", entries["user:u1:notification:n1"])
	assert.Equal(t, "b", entries["user:u1:notification:n2"])

	empty, err := s.List(ctx, "user:u3:")
	require.NoError(t, err)
	assert.Empty(t, empty)
}
