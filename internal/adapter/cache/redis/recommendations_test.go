package redis_test

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	redcache "github.com/fairyhunter13/sermon-evaluator/internal/adapter/cache/redis"
)

func newCache(t *testing.T, ttl time.Duration) (*redcache.RecommendationCache, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := goredis.NewClient(&goredis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })
	return redcache.New(rdb, ttl), mr
}

func TestCache_SetGetInvalidate(t *testing.T) {
	t.Parallel()
	cache, _ := newCache(t, time.Minute)
	ctx := context.Background()

	_, ok, err := cache.Get(ctx, "owner-1")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, cache.Set(ctx, "owner-1", []string{"a", "b", "c"}))
	ids, ok, err := cache.Get(ctx, "owner-1")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, []string{"a", "b", "c"}, ids)

	require.NoError(t, cache.Invalidate(ctx, "owner-1"))
	_, ok, err = cache.Get(ctx, "owner-1")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestCache_EntriesExpire(t *testing.T) {
	t.Parallel()
	cache, mr := newCache(t, time.Minute)
	ctx := context.Background()

	require.NoError(t, cache.Set(ctx, "owner-1", []string{"a"}))
	mr.FastForward(2 * time.Minute)

	_, ok, err := cache.Get(ctx, "owner-1")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestCache_OwnersIsolated(t *testing.T) {
	t.Parallel()
	cache, _ := newCache(t, time.Minute)
	ctx := context.Background()

	require.NoError(t, cache.Set(ctx, "owner-1", []string{"a"}))
	require.NoError(t, cache.Set(ctx, "owner-2", []string{"b"}))
	require.NoError(t, cache.Invalidate(ctx, "owner-1"))

	ids, ok, err := cache.Get(ctx, "owner-2")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, []string{"b"}, ids)
}

func TestCache_CorruptEntryTreatedAsMiss(t *testing.T) {
	t.Parallel()
	cache, mr := newCache(t, time.Minute)
	ctx := context.Background()

	require.NoError(t, mr.Set("recommendations:owner-1", "not json"))
	_, ok, err := cache.Get(ctx, "owner-1")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestCache_EmptyListRoundTrips(t *testing.T) {
	t.Parallel()
	cache, _ := newCache(t, time.Minute)
	ctx := context.Background()

	require.NoError(t, cache.Set(ctx, "owner-1", []string{}))
	ids, ok, err := cache.Get(ctx, "owner-1")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Empty(t, ids)
}
