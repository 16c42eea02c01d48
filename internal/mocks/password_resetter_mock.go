package mocks

import (
	"context"

	"github.com/SimpnicServerTeam/scs-reset-server/internal/models"
	"github.com/stretchr/testify/mock"
)

type MockPasswordResetter struct {
	mock.Mock
}

func (m *MockPasswordResetter) RequestReset(ctx context.Context, requester, email string) models.RequestResetResponse {
	args := m.Called(ctx, requester, email)
	return args.Get(0).(models.RequestResetResponse)
}

func (m *MockPasswordResetter) Submit(ctx context.Context, secret, newPassword, confirmPassword string) models.SubmitResetResult {
	args := m.Called(ctx, secret, newPassword, confirmPassword)
	return args.Get(0).(models.SubmitResetResult)
}

func (m *MockPasswordResetter) CheckToken(ctx context.Context, secret string) models.ValidateTokenResponse {
	args := m.Called(ctx, secret)
	return args.Get(0).(models.ValidateTokenResponse)
}
