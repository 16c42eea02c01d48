package service

import (
	"context"
	"time"

	"github.com/SimpnicServerTeam/scs-reset-server/internal/models"
	"github.com/SimpnicServerTeam/scs-reset-server/internal/repository"
)

// Clock is injected wherever expiry or window arithmetic happens.
type Clock interface {
	Now() time.Time
}

// TokenStore issues, validates and consumes password reset tokens.
type TokenStore interface {
	// Issue mints a token for owner valid for ttl. The returned token is the only
	// place the raw secret is ever available.
	Issue(ctx context.Context, owner string, ttl time.Duration) (*models.ResetToken, error)
	// Validate reports whether secret names a token that is unconsumed and unexpired.
	// It never modifies the token.
	Validate(ctx context.Context, secret string) (*models.ResetToken, bool, error)
	// Consume marks the token used. At most one call per secret returns true.
	Consume(ctx context.Context, secret string) (bool, error)
	// WithRepository returns a TokenStore backed by repo, e.g. a transaction-scoped repository.
	WithRepository(repo repository.PasswordResetTokenRepository) TokenStore
}

// RateLimiter admits or rejects requests per requester identity.
type RateLimiter interface {
	Admit(ctx context.Context, requester string, limit int, window time.Duration) (bool, error)
}

// CredentialHasher turns a plaintext password into the stored credential hash.
type CredentialHasher interface {
	Hash(password string) (string, error)
}

// Mailer delivers a single plain-text message.
type Mailer interface {
	Send(ctx context.Context, toEmail, subject, body string) error
}

// PasswordResetter is the surface exposed to the HTTP layer.
type PasswordResetter interface {
	// RequestReset always returns the same acknowledgement, whatever happened.
	RequestReset(ctx context.Context, requester, email string) models.RequestResetResponse
	// Submit changes the credential of the token's owner.
	Submit(ctx context.Context, secret, newPassword, confirmPassword string) models.SubmitResetResult
	// CheckToken reports whether a token is currently usable.
	CheckToken(ctx context.Context, secret string) models.ValidateTokenResponse
}
