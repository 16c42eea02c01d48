package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/SimpnicServerTeam/scs-reset-server/internal/models"
)

// ErrResetTokenNotFound is returned when no token record matches a secret hash.
var ErrResetTokenNotFound = fmt.Errorf("password reset token not found")

// ErrResetTokenExists is returned when a secret hash collides with a stored record.
var ErrResetTokenExists = fmt.Errorf("password reset token already exists")

// PasswordResetTokenRepository persists reset token records keyed by the hash of their secret.
type PasswordResetTokenRepository interface {
	// StoreResetToken saves a new token record. The record's Secret field is never persisted.
	StoreResetToken(ctx context.Context, token *models.ResetToken) error
	// GetResetToken returns the record for secretHash regardless of its state.
	// It should return ErrResetTokenNotFound if no record exists.
	GetResetToken(ctx context.Context, secretHash string) (*models.ResetToken, error)
	// ConsumeResetToken marks the record consumed if, and only if, it is unconsumed and
	// not expired at now. It reports whether this call performed the transition.
	// Implementations must make the check and the write a single atomic step.
	ConsumeResetToken(ctx context.Context, secretHash string, now time.Time) (bool, error)
	// PruneResetTokens removes records that expired, or were consumed, before the cutoff.
	PruneResetTokens(ctx context.Context, before time.Time) (int64, error)
}
