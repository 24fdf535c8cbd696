package cache

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestCache(t *testing.T, ttl time.Duration) (*RedisCache, *miniredis.Miniredis) {
	t.Helper()

	mr := miniredis.RunT(t)
	c, err := NewRedisCache(context.Background(), mr.Addr(), "", 0, ttl)
	require.NoError(t, err)
	t.Cleanup(func() { c.Close() })

	return c, mr
}

func TestLatestKey(t *testing.T) {
	assert.Equal(t, "readings:latest:0:50", latestKey(0, 50))
	assert.Equal(t, "readings:latest:3:0", latestKey(3, 0))
}

func TestNewRedisCacheUnreachable(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	_, err := NewRedisCache(ctx, "127.0.0.1:1", "", 0, time.Minute)
	assert.ErrorContains(t, err, "failed to connect to Redis")
}

func TestSetAndGetLatest(t *testing.T) {
	c, mr := newTestCache(t, time.Minute)
	ctx := context.Background()

	gen, err := c.Generation(ctx)
	require.NoError(t, err)
	assert.Zero(t, gen)

	_, ok, err := c.GetLatest(ctx, gen, 50)
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, c.SetLatest(ctx, gen, 50, []byte(`[{"id":1}]`)))
	require.NoError(t, c.SetLatest(ctx, gen, 10, []byte(`[]`)))

	data, ok, err := c.GetLatest(ctx, gen, 50)
	require.NoError(t, err)
	require.True(t, ok)
	assert.JSONEq(t, `[{"id":1}]`, string(data))

	data, ok, err = c.GetLatest(ctx, gen, 10)
	require.NoError(t, err)
	require.True(t, ok)
	assert.JSONEq(t, `[]`, string(data))

	assert.Equal(t, time.Minute, mr.TTL(latestKey(gen, 50)))
}

func TestInvalidateHidesEveryLimit(t *testing.T) {
	c, _ := newTestCache(t, time.Minute)
	ctx := context.Background()

	for _, limit := range []int{0, 10, 50} {
		require.NoError(t, c.SetLatest(ctx, 0, limit, []byte(`[]`)))
	}

	require.NoError(t, c.Invalidate(ctx))

	gen, err := c.Generation(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), gen)

	for _, limit := range []int{0, 10, 50} {
		_, ok, err := c.GetLatest(ctx, gen, limit)
		require.NoError(t, err)
		assert.False(t, ok, "limit %d must miss after invalidation", limit)
	}
}

func TestSetAfterInvalidateIsNeverServed(t *testing.T) {
	c, _ := newTestCache(t, time.Minute)
	ctx := context.Background()

	// Читатель зафиксировал поколение до записи
	readGen, err := c.Generation(ctx)
	require.NoError(t, err)

	// Запись инвалидирует кэш, затем читатель кладет устаревший список
	require.NoError(t, c.Invalidate(ctx))
	require.NoError(t, c.SetLatest(ctx, readGen, 50, []byte(`[{"id":1}]`)))

	gen, err := c.Generation(ctx)
	require.NoError(t, err)
	_, ok, err := c.GetLatest(ctx, gen, 50)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestLatestExpires(t *testing.T) {
	c, mr := newTestCache(t, 5*time.Second)
	ctx := context.Background()

	require.NoError(t, c.SetLatest(ctx, 0, 50, []byte(`[]`)))

	mr.FastForward(6 * time.Second)

	_, ok, err := c.GetLatest(ctx, 0, 50)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestCounters(t *testing.T) {
	c, _ := newTestCache(t, time.Minute)
	ctx := context.Background()

	n, err := c.GetCounter(ctx, CounterInserted)
	require.NoError(t, err)
	assert.Zero(t, n)

	require.NoError(t, c.IncrementCounter(ctx, CounterInserted))
	require.NoError(t, c.IncrementCounter(ctx, CounterInserted))
	require.NoError(t, c.IncrementCounter(ctx, CounterCleared))

	n, err = c.GetCounter(ctx, CounterInserted)
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)

	n, err = c.GetCounter(ctx, CounterCleared)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	assert.NoError(t, c.Ping(ctx))
	assert.Contains(t, c.GetStats(), "total_conns")
}

func TestCacheErrorsWhenRedisStops(t *testing.T) {
	c, mr := newTestCache(t, time.Minute)
	ctx := context.Background()

	mr.Close()

	_, err := c.Generation(ctx)
	assert.Error(t, err)
	assert.Error(t, c.Invalidate(ctx))
}
