package cache_test

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	redis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/auditkit/revision-service/internal/audit"
	"github.com/auditkit/revision-service/internal/cache"
)

func newCache(t *testing.T, ttl time.Duration) (*cache.TableCache, *miniredis.Miniredis) {
	t.Helper()
	mini, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mini.Close)

	client := redis.NewClient(&redis.Options{Addr: mini.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return cache.NewTableCache(client, ttl), mini
}

func TestTableCache(t *testing.T) {
	ctx := context.Background()
	query := audit.Subscriptions("Ops").Card.Query
	result := audit.Result{
		Columns: []string{"id", "dashboard_id"},
		Rows:    [][]any{{float64(1), float64(4)}},
	}

	t.Run("miss then hit", func(t *testing.T) {
		c, _ := newCache(t, time.Minute)

		_, ok, err := c.Get(ctx, query)
		require.NoError(t, err)
		assert.False(t, ok)

		require.NoError(t, c.Set(ctx, query, result))
		got, ok, err := c.Get(ctx, query)
		require.NoError(t, err)
		assert.True(t, ok)
		assert.Equal(t, result, got)

		other := audit.Subscriptions("Sales").Card.Query
		_, ok, err = c.Get(ctx, other)
		require.NoError(t, err)
		assert.False(t, ok)
	})

	t.Run("entries expire", func(t *testing.T) {
		c, mini := newCache(t, time.Minute)
		require.NoError(t, c.Set(ctx, query, result))
		mini.FastForward(2 * time.Minute)

		_, ok, err := c.Get(ctx, query)
		require.NoError(t, err)
		assert.False(t, ok)
	})

	t.Run("invalidate by table", func(t *testing.T) {
		c, _ := newCache(t, time.Minute)
		alerts := audit.Alerts().Card.Query
		require.NoError(t, c.Set(ctx, query, result))
		require.NoError(t, c.Set(ctx, alerts, result))

		require.NoError(t, c.Invalidate(ctx, audit.SubscriptionsTableFn))

		_, ok, err := c.Get(ctx, query)
		require.NoError(t, err)
		assert.False(t, ok)
		_, ok, err = c.Get(ctx, alerts)
		require.NoError(t, err)
		assert.True(t, ok)
	})

	t.Run("disabled cache is inert", func(t *testing.T) {
		var nilCache *cache.TableCache
		assert.False(t, nilCache.Enabled())
		require.NoError(t, nilCache.Set(ctx, query, result))
		_, ok, err := nilCache.Get(ctx, query)
		require.NoError(t, err)
		assert.False(t, ok)

		c, _ := newCache(t, 0)
		assert.False(t, c.Enabled())
	})
}
