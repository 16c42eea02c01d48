package mocks

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"
)

type MockRateLimiter struct {
	mock.Mock
}

func (m *MockRateLimiter) Admit(ctx context.Context, requester string, limit int, window time.Duration) (bool, error) {
	args := m.Called(ctx, requester, limit, window)
	return args.Bool(0), args.Error(1)
}

type MockRateLimitRepository struct {
	mock.Mock
}

func (m *MockRateLimitRepository) IncrementCounter(ctx context.Context, requester string, window time.Duration, now time.Time) (int, error) {
	args := m.Called(ctx, requester, window, now)
	return args.Int(0), args.Error(1)
}
