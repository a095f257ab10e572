package cache

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeClock is an adjustable time source.
type fakeClock struct {
	now time.Time
}

func (f *fakeClock) Now() time.Time          { return f.now }
func (f *fakeClock) Advance(d time.Duration) { f.now = f.now.Add(d) }

func TestGetOrFetchRespectsTTL(t *testing.T) {
	ctx := context.Background()
	clk := &fakeClock{now: time.Date(2024, 1, 8, 12, 0, 0, 0, time.UTC)}
	c := New[string](clk.Now)

	fetches := 0
	fetch := func(context.Context) (string, error) {
		fetches++
		return "payload", nil
	}

	const ttl = 5000 * time.Millisecond

	got, err := c.GetOrFetch(ctx, "k", ttl, fetch)
	require.NoError(t, err)
	assert.Equal(t, "payload", got)
	assert.Equal(t, 1, fetches)

	// Just inside the TTL: served from cache.
	clk.Advance(4999 * time.Millisecond)
	got, err = c.GetOrFetch(ctx, "k", ttl, fetch)
	require.NoError(t, err)
	assert.Equal(t, "payload", got)
	assert.Equal(t, 1, fetches)

	// Just past the TTL: the entry is absent, fetch runs again.
	clk.Advance(2 * time.Millisecond)
	_, err = c.GetOrFetch(ctx, "k", ttl, fetch)
	require.NoError(t, err)
	assert.Equal(t, 2, fetches)
}

func TestGetOrFetchDoesNotCacheErrors(t *testing.T) {
	ctx := context.Background()
	clk := &fakeClock{now: time.Now()}
	c := New[int](clk.Now)

	boom := errors.New("upstream down")
	fetches := 0

	_, err := c.GetOrFetch(ctx, "k", time.Minute, func(context.Context) (int, error) {
		fetches++
		return 0, boom
	})
	assert.ErrorIs(t, err, boom)

	// The failure left nothing behind; the next call fetches again.
	got, err := c.GetOrFetch(ctx, "k", time.Minute, func(context.Context) (int, error) {
		fetches++
		return 42, nil
	})
	require.NoError(t, err)
	assert.Equal(t, 42, got)
	assert.Equal(t, 2, fetches)
}

func TestInvalidate(t *testing.T) {
	ctx := context.Background()
	clk := &fakeClock{now: time.Now()}
	c := New[string](clk.Now)

	fetches := 0
	fetch := func(context.Context) (string, error) {
		fetches++
		return "v", nil
	}

	_, err := c.GetOrFetch(ctx, "k", time.Minute, fetch)
	require.NoError(t, err)
	c.Invalidate("k")
	_, err = c.GetOrFetch(ctx, "k", time.Minute, fetch)
	require.NoError(t, err)
	assert.Equal(t, 2, fetches)
}

func TestRevalidateOnForegroundDropsOnlyExpired(t *testing.T) {
	ctx := context.Background()
	clk := &fakeClock{now: time.Date(2024, 1, 8, 12, 0, 0, 0, time.UTC)}
	c := New[string](clk.Now)

	fetches := map[string]int{}
	fetch := func(key string) func(context.Context) (string, error) {
		return func(context.Context) (string, error) {
			fetches[key]++
			return key, nil
		}
	}

	_, err := c.GetOrFetch(ctx, "short", time.Minute, fetch("short"))
	require.NoError(t, err)
	_, err = c.GetOrFetch(ctx, "long", time.Hour, fetch("long"))
	require.NoError(t, err)

	clk.Advance(2 * time.Minute)
	c.RevalidateOnForeground()

	_, err = c.GetOrFetch(ctx, "short", time.Minute, fetch("short"))
	require.NoError(t, err)
	_, err = c.GetOrFetch(ctx, "long", time.Hour, fetch("long"))
	require.NoError(t, err)

	assert.Equal(t, 2, fetches["short"])
	assert.Equal(t, 1, fetches["long"])
}
