package repository

import "context"

// Stores groups the repositories that share one transaction.
type Stores struct {
	Users  UserRepository
	Tokens PasswordResetTokenRepository
}

// Transactor is implemented by backends that can run several repository calls atomically.
// If fn returns an error the transaction is rolled back and the error returned unchanged.
type Transactor interface {
	WithinTx(ctx context.Context, fn func(ctx context.Context, stores Stores) error) error
}
