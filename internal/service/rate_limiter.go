package service

import (
	"context"
	"fmt"
	"time"

	"github.com/SimpnicServerTeam/scs-reset-server/internal/repository"
)

var _ RateLimiter = (*FixedWindowRateLimiter)(nil)

// FixedWindowRateLimiter counts every request, including the one that crosses the limit,
// in a window anchored at the first request after the previous window elapsed.
type FixedWindowRateLimiter struct {
	repo  repository.RateLimitRepository
	clock Clock
}

func NewFixedWindowRateLimiter(repo repository.RateLimitRepository, clock Clock) *FixedWindowRateLimiter {
	if clock == nil {
		clock = SystemClock{}
	}
	return &FixedWindowRateLimiter{repo: repo, clock: clock}
}

// Admit increments the requester's counter and reports whether it is still within limit.
// A zero limit admits everything without counting; a negative one is a configuration error.
func (l *FixedWindowRateLimiter) Admit(ctx context.Context, requester string, limit int, window time.Duration) (bool, error) {
	if limit < 0 {
		return false, fmt.Errorf("rate limit must not be negative, got %d", limit)
	}
	if limit == 0 {
		return true, nil
	}
	if window <= 0 {
		return false, fmt.Errorf("rate limit window must be positive")
	}

	count, err := l.repo.IncrementCounter(ctx, requester, window, l.clock.Now())
	if err != nil {
		return false, err
	}
	return count <= limit, nil
}
