package memory_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/SimpnicServerTeam/scs-reset-server/internal/repository/memory"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryRateLimitRepository(t *testing.T) {
	ctx := context.Background()
	window := 15 * time.Minute
	start := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)

	t.Run("CountsWithinWindow", func(t *testing.T) {
		repo := memory.NewMemoryRateLimitRepository()
		for i := 1; i <= 6; i++ {
			count, err := repo.IncrementCounter(ctx, "1.2.3.4", window, start.Add(time.Duration(i)*time.Minute))
			require.NoError(t, err)
			assert.Equal(t, i, count)
		}
	})

	t.Run("ResetsAfterWindow", func(t *testing.T) {
		repo := memory.NewMemoryRateLimitRepository()
		for i := 0; i < 5; i++ {
			_, err := repo.IncrementCounter(ctx, "1.2.3.4", window, start)
			require.NoError(t, err)
		}

		count, err := repo.IncrementCounter(ctx, "1.2.3.4", window, start.Add(window))
		require.NoError(t, err)
		assert.Equal(t, 6, count, "exactly one window later is still inside the window")

		count, err = repo.IncrementCounter(ctx, "1.2.3.4", window, start.Add(window+time.Second))
		require.NoError(t, err)
		assert.Equal(t, 1, count)
	})

	t.Run("SeparateRequesters", func(t *testing.T) {
		repo := memory.NewMemoryRateLimitRepository()
		_, err := repo.IncrementCounter(ctx, "a", window, start)
		require.NoError(t, err)
		count, err := repo.IncrementCounter(ctx, "b", window, start)
		require.NoError(t, err)
		assert.Equal(t, 1, count)
	})

	t.Run("ConcurrentIncrements", func(t *testing.T) {
		repo := memory.NewMemoryRateLimitRepository()
		var wg sync.WaitGroup
		for i := 0; i < 100; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				_, _ = repo.IncrementCounter(ctx, "burst", window, start)
			}()
		}
		wg.Wait()

		count, err := repo.IncrementCounter(ctx, "burst", window, start)
		require.NoError(t, err)
		assert.Equal(t, 101, count)
	})

	t.Run("PruneCounters", func(t *testing.T) {
		repo := memory.NewMemoryRateLimitRepository()
		_, _ = repo.IncrementCounter(ctx, "stale", window, start)
		_, _ = repo.IncrementCounter(ctx, "fresh", window, start.Add(time.Hour))

		removed, err := repo.PruneCounters(ctx, start.Add(30*time.Minute))
		require.NoError(t, err)
		assert.Equal(t, int64(1), removed)

		count, err := repo.IncrementCounter(ctx, "stale", window, start.Add(time.Hour))
		require.NoError(t, err)
		assert.Equal(t, 1, count)
	})
}
