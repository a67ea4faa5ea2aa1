package storage

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func setupCachedLister(t *testing.T, next Lister) (*CachedLister, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	return NewCachedLister(next, client, "property-images", time.Minute, zap.NewNop()), mr
}

func TestCachedLister_MissThenHit(t *testing.T) {
	next := &fakeLister{keys: map[string][]string{"u/p/": {"u/p/a.jpg"}}}
	c, mr := setupCachedLister(t, next)
	ctx := context.Background()

	keys, err := c.List(ctx, "u/p/")
	require.NoError(t, err)
	assert.Equal(t, []string{"u/p/a.jpg"}, keys)
	assert.True(t, mr.Exists("listing:property-images:u/p/"))

	keys, err = c.List(ctx, "u/p/")
	require.NoError(t, err)
	assert.Equal(t, []string{"u/p/a.jpg"}, keys)
	assert.Equal(t, 1, next.calls)
}

func TestCachedLister_TTL(t *testing.T) {
	next := &fakeLister{keys: map[string][]string{"u/p/": {"u/p/a.jpg"}}}
	c, mr := setupCachedLister(t, next)

	_, err := c.List(context.Background(), "u/p/")
	require.NoError(t, err)

	assert.Equal(t, time.Minute, mr.TTL("listing:property-images:u/p/"))
	mr.FastForward(2 * time.Minute)

	_, err = c.List(context.Background(), "u/p/")
	require.NoError(t, err)
	assert.Equal(t, 2, next.calls)
}

func TestCachedLister_Invalidate(t *testing.T) {
	next := &fakeLister{keys: map[string][]string{"u/p/": {"u/p/a.jpg"}}}
	c, mr := setupCachedLister(t, next)
	ctx := context.Background()

	_, err := c.List(ctx, "u/p/")
	require.NoError(t, err)

	c.Invalidate(ctx, "u/p/")
	assert.False(t, mr.Exists("listing:property-images:u/p/"))
}

func TestCachedLister_CorruptEntry(t *testing.T) {
	next := &fakeLister{keys: map[string][]string{"u/p/": {"u/p/a.jpg"}}}
	c, mr := setupCachedLister(t, next)
	require.NoError(t, mr.Set("listing:property-images:u/p/", "{not json"))

	keys, err := c.List(context.Background(), "u/p/")
	require.NoError(t, err)
	assert.Equal(t, []string{"u/p/a.jpg"}, keys)
	assert.Equal(t, 1, next.calls)
}

func TestCachedLister_RedisDown(t *testing.T) {
	next := &fakeLister{keys: map[string][]string{"u/p/": {"u/p/a.jpg"}}}
	c, mr := setupCachedLister(t, next)
	mr.Close()

	keys, err := c.List(context.Background(), "u/p/")
	require.NoError(t, err)
	assert.Equal(t, []string{"u/p/a.jpg"}, keys)
}

func TestCachedLister_ListerError(t *testing.T) {
	next := &fakeLister{err: assert.AnError}
	c, mr := setupCachedLister(t, next)

	_, err := c.List(context.Background(), "u/p/")
	assert.ErrorIs(t, err, assert.AnError)
	assert.False(t, mr.Exists("listing:property-images:u/p/"))
}
