package backend

import (
	"context"
	"testing"
	"time"

	"github.com/rgehrsitz/flipcalc/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryCache(t *testing.T) {
	ctx := context.Background()
	c := NewMemoryCache(time.Minute)

	_, ok := c.Get(ctx, "k")
	assert.False(t, ok)

	require.NoError(t, c.Set(ctx, "k", []byte("v"), 0))
	v, ok := c.Get(ctx, "k")
	assert.True(t, ok)
	assert.Equal(t, []byte("v"), v)

	require.NoError(t, c.Delete(ctx, "k", "missing"))
	_, ok = c.Get(ctx, "k")
	assert.False(t, ok)
}

func TestMemoryCache_Expiry(t *testing.T) {
	ctx := context.Background()
	c := NewMemoryCache(time.Minute)

	require.NoError(t, c.Set(ctx, "k", []byte("v"), 10*time.Millisecond))
	time.Sleep(30 * time.Millisecond)
	_, ok := c.Get(ctx, "k")
	assert.False(t, ok, "Entry should expire")
}

func TestNopCache(t *testing.T) {
	ctx := context.Background()
	var c Cache = NopCache{}

	require.NoError(t, c.Set(ctx, "k", []byte("v"), time.Minute))
	_, ok := c.Get(ctx, "k")
	assert.False(t, ok)
	assert.NoError(t, c.Delete(ctx, "k"))
}

func TestNewCache(t *testing.T) {
	ctx := context.Background()

	c, err := NewCache(ctx, config.CacheSettings{Type: "memory", TTL: time.Minute})
	require.NoError(t, err)
	assert.IsType(t, &MemoryCache{}, c)

	c, err = NewCache(ctx, config.CacheSettings{Type: "none"})
	require.NoError(t, err)
	assert.IsType(t, NopCache{}, c)

	_, err = NewCache(ctx, config.CacheSettings{Type: "disk"})
	assert.Error(t, err)
}

func TestNewCache_RedisUnreachable(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	_, err := NewCache(ctx, config.CacheSettings{Type: "redis", RedisAddr: "127.0.0.1:1"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "redis 127.0.0.1:1")
}
