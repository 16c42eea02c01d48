package mocks

import (
	"context"

	"github.com/SimpnicServerTeam/scs-reset-server/internal/models"
	"github.com/stretchr/testify/mock"
)

type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) FindByEmail(ctx context.Context, email string) (*models.Account, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Account), args.Error(1)
}

func (m *MockUserRepository) UpdateCredential(ctx context.Context, accountID int64, credentialHash string) error {
	args := m.Called(ctx, accountID, credentialHash)
	return args.Error(0)
}
