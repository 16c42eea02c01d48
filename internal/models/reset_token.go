package models

import (
	"time"

	"github.com/google/uuid"
)

// ResetToken is a single-use authorization to change the credential of one account.
// Secret is only populated on the value returned from Issue; persisted records carry SecretHash.
type ResetToken struct {
	ID         uuid.UUID  `json:"id"`
	Secret     string     `json:"-"`
	SecretHash string     `json:"secretHash"`
	Owner      string     `json:"owner"` // account email
	IssuedAt   time.Time  `json:"issuedAt"`
	ExpiresAt  time.Time  `json:"expiresAt"`
	Consumed   bool       `json:"consumed"`
	ConsumedAt *time.Time `json:"consumedAt,omitempty"`
}

// IsUsable reports whether the token can still authorize a reset at now.
func (t *ResetToken) IsUsable(now time.Time) bool {
	return !t.Consumed && !now.After(t.ExpiresAt)
}

// RateLimitCounter counts reset requests from one requester inside a fixed window.
type RateLimitCounter struct {
	Requester   string    `json:"requester"`
	WindowStart time.Time `json:"windowStart"`
	Count       int       `json:"count"`
}

// Account is the subset of a user record the reset flow needs.
type Account struct {
	ID             int64  `json:"id"`
	Email          string `json:"email"`
	CredentialHash string `json:"-"`
}
