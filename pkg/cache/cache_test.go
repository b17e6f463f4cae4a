package cache

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCache_SetGet(t *testing.T) {
	c := New(time.Minute)
	defer c.Stop()

	c.Set("key", "value", 0)
	got, found := c.Get("key")
	require.True(t, found)
	assert.Equal(t, "value", got)

	_, found = c.Get("missing")
	assert.False(t, found)
}

func TestCache_Expiry(t *testing.T) {
	c := New(time.Minute)
	defer c.Stop()

	c.Set("short", "value", 10*time.Millisecond)
	time.Sleep(30 * time.Millisecond)

	_, found := c.Get("short")
	assert.False(t, found)
}

func TestCache_GetOrSet(t *testing.T) {
	c := New(time.Minute)
	defer c.Stop()

	calls := 0
	fallback := func(ctx context.Context) (interface{}, error) {
		calls++
		return "computed", nil
	}

	got, err := c.GetOrSet(context.Background(), "key", time.Minute, fallback)
	require.NoError(t, err)
	assert.Equal(t, "computed", got)

	got, err = c.GetOrSet(context.Background(), "key", time.Minute, fallback)
	require.NoError(t, err)
	assert.Equal(t, "computed", got)
	assert.Equal(t, 1, calls)
}

func TestCache_GetOrSetError(t *testing.T) {
	c := New(time.Minute)
	defer c.Stop()

	wantErr := errors.New("backend down")
	_, err := c.GetOrSet(context.Background(), "key", time.Minute, func(ctx context.Context) (interface{}, error) {
		return nil, wantErr
	})
	assert.ErrorIs(t, err, wantErr)

	// Errors are never cached.
	got, err := c.GetOrSet(context.Background(), "key", time.Minute, func(ctx context.Context) (interface{}, error) {
		return "recovered", nil
	})
	require.NoError(t, err)
	assert.Equal(t, "recovered", got)
}

func TestCache_InvalidatePrefix(t *testing.T) {
	c := New(time.Minute)
	defer c.Stop()

	c.Set("results:tool-1", 1, 0)
	c.Set("results:tool-2", 2, 0)
	c.Set("tools:session-1", 3, 0)

	c.Invalidate("results:")

	_, found := c.Get("results:tool-1")
	assert.False(t, found)
	_, found = c.Get("results:tool-2")
	assert.False(t, found)
	_, found = c.Get("tools:session-1")
	assert.True(t, found)
	assert.Equal(t, 1, c.Size())
}
