package cache

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryCache(t *testing.T) {
	ctx := context.Background()
	c := NewMemoryCache()
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	c.now = func() time.Time { return now }

	_, found, err := c.Get(ctx, "zones")
	require.NoError(t, err)
	assert.False(t, found)

	require.NoError(t, c.Set(ctx, "zones", `[{"zone":"1","count":2}]`, time.Minute))
	val, found, err := c.Get(ctx, "zones")
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, `[{"zone":"1","count":2}]`, val)

	now = now.Add(time.Minute)
	_, found, err = c.Get(ctx, "zones")
	require.NoError(t, err)
	assert.False(t, found, "entry should expire after its TTL")

	require.NoError(t, c.Set(ctx, "a", "1", 0))
	require.NoError(t, c.Set(ctx, "b", "2", 0))
	now = now.Add(24 * time.Hour)
	_, found, _ = c.Get(ctx, "a")
	assert.True(t, found, "zero expiration never expires")

	require.NoError(t, c.Delete(ctx, "a", "b", "missing"))
	_, found, _ = c.Get(ctx, "b")
	assert.False(t, found)
}
