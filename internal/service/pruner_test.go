package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/SimpnicServerTeam/scs-reset-server/internal/mocks"
	"github.com/SimpnicServerTeam/scs-reset-server/internal/repository/memory"
)

func TestPruner_PruneOnce(t *testing.T) {
	ctx := context.Background()

	t.Run("RemovesSpentDataPastRetention", func(t *testing.T) {
		clock := newFakeClock()
		tokenRepo := memory.NewMemoryPasswordResetTokenRepository()
		counterRepo := memory.NewMemoryRateLimitRepository()
		tokens := NewResetTokenService(tokenRepo, clock, nil)

		used, err := tokens.Issue(ctx, testOwner, time.Hour)
		require.NoError(t, err)
		_, err = tokens.Issue(ctx, testOwner, 10*time.Minute)
		require.NoError(t, err)
		ok, err := tokens.Consume(ctx, used.Secret)
		require.NoError(t, err)
		require.True(t, ok)
		_, err = counterRepo.IncrementCounter(ctx, "1.2.3.4", time.Minute, clock.Now())
		require.NoError(t, err)

		clock.Advance(2 * time.Hour)
		fresh, err := tokens.Issue(ctx, testOwner, time.Hour)
		require.NoError(t, err)

		pruner := NewPruner(tokenRepo, counterRepo, clock, time.Hour, time.Minute, time.Minute)
		removedTokens, removedCounters, err := pruner.PruneOnce(ctx)
		require.NoError(t, err)
		assert.Equal(t, int64(2), removedTokens)
		assert.Equal(t, int64(1), removedCounters)

		_, ok, err = tokens.Validate(ctx, fresh.Secret)
		require.NoError(t, err)
		assert.True(t, ok)
	})

	t.Run("KeepsRecentlySpentTokens", func(t *testing.T) {
		clock := newFakeClock()
		tokenRepo := memory.NewMemoryPasswordResetTokenRepository()
		tokens := NewResetTokenService(tokenRepo, clock, nil)
		_, err := tokens.Issue(ctx, testOwner, time.Minute)
		require.NoError(t, err)

		clock.Advance(30 * time.Minute)
		pruner := NewPruner(tokenRepo, nil, clock, time.Hour, time.Minute, time.Minute)
		removedTokens, removedCounters, err := pruner.PruneOnce(ctx)
		require.NoError(t, err)
		assert.Zero(t, removedTokens)
		assert.Zero(t, removedCounters)
	})

	t.Run("KeepsCountersInsideOpenWindow", func(t *testing.T) {
		clock := newFakeClock()
		counterRepo := memory.NewMemoryRateLimitRepository()
		limiter := NewFixedWindowRateLimiter(counterRepo, clock)
		window := 15 * time.Minute

		for i := 0; i < 6; i++ {
			_, err := limiter.Admit(ctx, "1.2.3.4", 5, window)
			require.NoError(t, err)
		}

		clock.Advance(2 * time.Minute)
		pruner := NewPruner(memory.NewMemoryPasswordResetTokenRepository(), counterRepo, clock, time.Minute, window, time.Minute)
		_, removedCounters, err := pruner.PruneOnce(ctx)
		require.NoError(t, err)
		assert.Zero(t, removedCounters)

		ok, err := limiter.Admit(ctx, "1.2.3.4", 5, window)
		require.NoError(t, err)
		assert.False(t, ok, "requester stays throttled until the window elapses")

		clock.Advance(window)
		_, removedCounters, err = pruner.PruneOnce(ctx)
		require.NoError(t, err)
		assert.Equal(t, int64(1), removedCounters)
	})

	t.Run("NegativeRetentionKeepsUnexpiredTokens", func(t *testing.T) {
		clock := newFakeClock()
		tokenRepo := memory.NewMemoryPasswordResetTokenRepository()
		tokens := NewResetTokenService(tokenRepo, clock, nil)
		fresh, err := tokens.Issue(ctx, testOwner, 30*time.Minute)
		require.NoError(t, err)

		pruner := NewPruner(tokenRepo, nil, clock, -time.Hour, time.Minute, time.Minute)
		removedTokens, _, err := pruner.PruneOnce(ctx)
		require.NoError(t, err)
		assert.Zero(t, removedTokens)

		_, ok, err := tokens.Validate(ctx, fresh.Secret)
		require.NoError(t, err)
		assert.True(t, ok)
	})

	t.Run("ErrorTokenRepository", func(t *testing.T) {
		clock := newFakeClock()
		tokenRepo := new(mocks.MockPasswordResetTokenRepository)
		tokenRepo.On("PruneResetTokens", ctx, clock.Now().Add(-time.Hour)).Return(int64(0), errors.New("locked")).Once()

		pruner := NewPruner(tokenRepo, nil, clock, time.Hour, time.Minute, time.Minute)
		_, _, err := pruner.PruneOnce(ctx)
		require.Error(t, err)
		tokenRepo.AssertExpectations(t)
	})
}

func TestPruner_RunStopsOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	pruner := NewPruner(memory.NewMemoryPasswordResetTokenRepository(), nil, nil, time.Hour, time.Minute, time.Millisecond)

	done := make(chan struct{})
	go func() {
		pruner.Run(ctx)
		close(done)
	}()

	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("pruner did not stop after cancel")
	}
}
