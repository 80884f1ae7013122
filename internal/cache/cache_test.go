package cache

import (
	"context"
	"errors"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

type report struct {
	Total int64 `json:"total"`
}

func newTestCache(t *testing.T) (*Cache, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return New(client, time.Minute, zap.NewNop()), mr
}

func TestFetchJSON_CachesLoaderResult(t *testing.T) {
	c, _ := newTestCache(t)
	ctx := context.Background()

	calls := 0
	loader := func(context.Context) (any, error) {
		calls++
		return report{Total: 5_000_000}, nil
	}

	key, err := c.ReportKey(ctx, "summary", "all", "2025-03-15")
	require.NoError(t, err)
	assert.Equal(t, "piutang:aging:summary:all:2025-03-15:v1", key)

	var first, second report
	require.NoError(t, c.FetchJSON(ctx, key, &first, loader))
	require.NoError(t, c.FetchJSON(ctx, key, &second, loader))

	assert.Equal(t, 1, calls)
	assert.Equal(t, int64(5_000_000), first.Total)
	assert.Equal(t, first, second)
}

func TestBump_ChangesKey(t *testing.T) {
	c, _ := newTestCache(t)
	ctx := context.Background()

	before, err := c.ReportKey(ctx, "detailed", "7", "2025-03-15")
	require.NoError(t, err)

	require.NoError(t, c.Bump(ctx))

	after, err := c.ReportKey(ctx, "detailed", "7", "2025-03-15")
	require.NoError(t, err)

	assert.NotEqual(t, before, after)
	assert.Equal(t, "piutang:aging:detailed:7:2025-03-15:v2", after)
}

func TestFetchJSON_EntryExpires(t *testing.T) {
	c, mr := newTestCache(t)
	ctx := context.Background()

	calls := 0
	loader := func(context.Context) (any, error) {
		calls++
		return report{Total: int64(calls)}, nil
	}

	var got report
	require.NoError(t, c.FetchJSON(ctx, "k", &got, loader))
	mr.FastForward(2 * time.Minute)
	require.NoError(t, c.FetchJSON(ctx, "k", &got, loader))

	assert.Equal(t, 2, calls)
	assert.Equal(t, int64(2), got.Total)
}

func TestFetchJSON_LoaderErrorNotCached(t *testing.T) {
	c, mr := newTestCache(t)
	ctx := context.Background()

	boom := errors.New("db down")
	var got report
	err := c.FetchJSON(ctx, "k", &got, func(context.Context) (any, error) { return nil, boom })

	require.ErrorIs(t, err, boom)
	assert.False(t, mr.Exists("k"))
}

func TestNilCache_CallsLoaderEveryTime(t *testing.T) {
	var c *Cache
	ctx := context.Background()

	calls := 0
	loader := func(context.Context) (any, error) {
		calls++
		return report{Total: 1}, nil
	}

	key, err := c.ReportKey(ctx, "summary", "all", "2025-03-15")
	require.NoError(t, err)
	assert.Equal(t, "piutang:aging:summary:all:2025-03-15", key)

	var got report
	require.NoError(t, c.FetchJSON(ctx, key, &got, loader))
	require.NoError(t, c.FetchJSON(ctx, key, &got, loader))
	require.NoError(t, c.Bump(ctx))
	require.NoError(t, c.Ping(ctx))

	assert.Equal(t, 2, calls)
}

func TestFetchJSON_RequiresLoader(t *testing.T) {
	c, _ := newTestCache(t)
	var got report
	assert.Error(t, c.FetchJSON(context.Background(), "k", &got, nil))
}

func TestFetchJSON_RedisDownFallsBackToLoader(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr(), MaxRetries: -1})
	t.Cleanup(func() { _ = client.Close() })

	core, logs := observer.New(zapcore.WarnLevel)
	c := New(client, time.Minute, zap.New(core))
	mr.Close()

	calls := 0
	loader := func(context.Context) (any, error) {
		calls++
		return report{Total: 750_000}, nil
	}

	var got report
	require.NoError(t, c.FetchJSON(context.Background(), "piutang:aging:summary:all:v1", &got, loader))
	require.NoError(t, c.FetchJSON(context.Background(), "piutang:aging:summary:all:v1", &got, loader))

	assert.Equal(t, 2, calls)
	assert.Equal(t, int64(750_000), got.Total)
	assert.Equal(t, 2, logs.FilterMessage("report cache read failed").Len())
}

func TestFetchJSON_EmptyKeySkipsStore(t *testing.T) {
	c, mr := newTestCache(t)

	calls := 0
	loader := func(context.Context) (any, error) {
		calls++
		return report{Total: 1}, nil
	}

	var got report
	require.NoError(t, c.FetchJSON(context.Background(), "", &got, loader))
	require.NoError(t, c.FetchJSON(context.Background(), "", &got, loader))

	assert.Equal(t, 2, calls)
	assert.Empty(t, mr.Keys())
}
