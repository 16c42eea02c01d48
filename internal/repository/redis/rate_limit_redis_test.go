package redis

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRedisRateLimitRepository_IncrementCounter(t *testing.T) {
	ctx := context.Background()
	window := 15 * time.Minute
	start := time.Now().UTC()

	t.Run("CountsWithinWindow", func(t *testing.T) {
		mr, client := newTestRedisClient(t)
		defer mr.Close()
		repo := NewRedisRateLimitRepository(client)

		for i := 1; i <= 6; i++ {
			count, err := repo.IncrementCounter(ctx, "1.2.3.4", window, start.Add(time.Duration(i)*time.Second))
			require.NoError(t, err)
			assert.Equal(t, i, count)
		}

		ttl := mr.TTL(makeRateLimitKey("1.2.3.4"))
		assert.InDelta(t, window.Seconds(), ttl.Seconds(), 5)
	})

	t.Run("ResetsAfterWindow", func(t *testing.T) {
		mr, client := newTestRedisClient(t)
		defer mr.Close()
		repo := NewRedisRateLimitRepository(client)

		for i := 0; i < 5; i++ {
			_, err := repo.IncrementCounter(ctx, "1.2.3.4", window, start)
			require.NoError(t, err)
		}

		count, err := repo.IncrementCounter(ctx, "1.2.3.4", window, start.Add(window+time.Second))
		require.NoError(t, err)
		assert.Equal(t, 1, count)

		count, err = repo.IncrementCounter(ctx, "1.2.3.4", window, start.Add(window+2*time.Second))
		require.NoError(t, err)
		assert.Equal(t, 2, count)
	})

	t.Run("ConcurrentIncrements", func(t *testing.T) {
		mr, client := newTestRedisClient(t)
		defer mr.Close()
		repo := NewRedisRateLimitRepository(client)

		var wg sync.WaitGroup
		for i := 0; i < 25; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				_, _ = repo.IncrementCounter(ctx, "burst", window, start)
			}()
		}
		wg.Wait()

		count, err := repo.IncrementCounter(ctx, "burst", window, start)
		require.NoError(t, err)
		assert.Equal(t, 26, count)
	})

	t.Run("RedisError", func(t *testing.T) {
		mr, client := newTestRedisClient(t)
		repo := NewRedisRateLimitRepository(client)

		mr.Close()
		_, err := repo.IncrementCounter(ctx, "x", window, start)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "failed to increment rate limit counter")
	})
}
