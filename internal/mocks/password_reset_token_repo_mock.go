package mocks

import (
	"context"
	"time"

	"github.com/SimpnicServerTeam/scs-reset-server/internal/models"
	"github.com/stretchr/testify/mock"
)

// MockPasswordResetTokenRepository is a mock type for the PasswordResetTokenRepository type
type MockPasswordResetTokenRepository struct {
	mock.Mock
}

// StoreResetToken provides a mock function with given fields: ctx, token
func (_m *MockPasswordResetTokenRepository) StoreResetToken(ctx context.Context, token *models.ResetToken) error {
	ret := _m.Called(ctx, token)

	var r0 error
	if rf, ok := ret.Get(0).(func(context.Context, *models.ResetToken) error); ok {
		r0 = rf(ctx, token)
	} else {
		r0 = ret.Error(0)
	}

	return r0
}

// GetResetToken provides a mock function with given fields: ctx, secretHash
func (_m *MockPasswordResetTokenRepository) GetResetToken(ctx context.Context, secretHash string) (*models.ResetToken, error) {
	ret := _m.Called(ctx, secretHash)

	var r0 *models.ResetToken
	if rf, ok := ret.Get(0).(func(context.Context, string) *models.ResetToken); ok {
		r0 = rf(ctx, secretHash)
	} else if ret.Get(0) != nil {
		r0 = ret.Get(0).(*models.ResetToken)
	}

	var r1 error
	if rf, ok := ret.Get(1).(func(context.Context, string) error); ok {
		r1 = rf(ctx, secretHash)
	} else {
		r1 = ret.Error(1)
	}

	return r0, r1
}

// ConsumeResetToken provides a mock function with given fields: ctx, secretHash, now
func (_m *MockPasswordResetTokenRepository) ConsumeResetToken(ctx context.Context, secretHash string, now time.Time) (bool, error) {
	ret := _m.Called(ctx, secretHash, now)

	var r0 bool
	if rf, ok := ret.Get(0).(func(context.Context, string, time.Time) bool); ok {
		r0 = rf(ctx, secretHash, now)
	} else {
		r0 = ret.Get(0).(bool)
	}

	var r1 error
	if rf, ok := ret.Get(1).(func(context.Context, string, time.Time) error); ok {
		r1 = rf(ctx, secretHash, now)
	} else {
		r1 = ret.Error(1)
	}

	return r0, r1
}

// PruneResetTokens provides a mock function with given fields: ctx, before
func (_m *MockPasswordResetTokenRepository) PruneResetTokens(ctx context.Context, before time.Time) (int64, error) {
	ret := _m.Called(ctx, before)

	var r0 int64
	if rf, ok := ret.Get(0).(func(context.Context, time.Time) int64); ok {
		r0 = rf(ctx, before)
	} else {
		r0 = ret.Get(0).(int64)
	}

	return r0, ret.Error(1)
}
