package repository

import (
	"context"
	"fmt"

	"github.com/SimpnicServerTeam/scs-reset-server/internal/models"
)

// UserRepository is the account store consulted by the reset flow.
type UserRepository interface {
	// FindByEmail returns the account registered under email.
	// It should return ErrUserNotFound if the user does not exist.
	FindByEmail(ctx context.Context, email string) (*models.Account, error)

	// UpdateCredential replaces the credential hash of an account.
	// It should return ErrUserNotFound if the account does not exist.
	UpdateCredential(ctx context.Context, accountID int64, credentialHash string) error
}

// Common errors
var ErrUserNotFound = fmt.Errorf("user not found")
var ErrUserExists = fmt.Errorf("user already exists")
