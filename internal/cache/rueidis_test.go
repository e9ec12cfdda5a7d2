package cache

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDisabledCacheIsNoop(t *testing.T) {
	c, err := New(Config{Enabled: false, Prefix: "zenshe:"})
	require.NoError(t, err)

	ctx := context.Background()
	require.NoError(t, c.SetJSON(ctx, "services:fr", []string{"massage"}))

	var got []string
	hit, err := c.GetJSON(ctx, "services:fr", &got)
	require.NoError(t, err)
	assert.False(t, hit)
	assert.Nil(t, got)
	assert.NoError(t, c.DeletePrefix(ctx, "services:"))
	c.Close()
}

func TestNilCacheIsNoop(t *testing.T) {
	var c *Cache
	hit, err := c.GetJSON(context.Background(), "k", &struct{}{})
	assert.NoError(t, err)
	assert.False(t, hit)
	assert.NoError(t, c.SetJSON(context.Background(), "k", 1))
	assert.NoError(t, c.DeletePrefix(context.Background(), "k"))
}
