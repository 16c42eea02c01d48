package memory

import (
	"context"
	"sync"
	"time"

	"github.com/SimpnicServerTeam/scs-reset-server/internal/models"
	"github.com/SimpnicServerTeam/scs-reset-server/internal/repository"
)

var _ repository.PasswordResetTokenRepository = (*MemoryPasswordResetTokenRepository)(nil)

// MemoryPasswordResetTokenRepository implements PasswordResetTokenRepository in memory.
// NOT FOR PRODUCTION use.
type MemoryPasswordResetTokenRepository struct {
	tokens map[string]models.ResetToken
	mutex  sync.RWMutex
}

// NewMemoryPasswordResetTokenRepository creates a new in-memory password reset token repository.
func NewMemoryPasswordResetTokenRepository() *MemoryPasswordResetTokenRepository {
	return &MemoryPasswordResetTokenRepository{
		tokens: make(map[string]models.ResetToken),
	}
}

// StoreResetToken saves a new reset token record.
func (r *MemoryPasswordResetTokenRepository) StoreResetToken(ctx context.Context, token *models.ResetToken) error {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	if _, exists := r.tokens[token.SecretHash]; exists {
		return repository.ErrResetTokenExists
	}

	record := *token
	record.Secret = ""
	r.tokens[token.SecretHash] = record
	return nil
}

// GetResetToken returns a copy of the stored record.
func (r *MemoryPasswordResetTokenRepository) GetResetToken(ctx context.Context, secretHash string) (*models.ResetToken, error) {
	r.mutex.RLock()
	defer r.mutex.RUnlock()

	record, exists := r.tokens[secretHash]
	if !exists {
		return nil, repository.ErrResetTokenNotFound
	}
	return &record, nil
}

// ConsumeResetToken flips the consumed flag under the write lock.
func (r *MemoryPasswordResetTokenRepository) ConsumeResetToken(ctx context.Context, secretHash string, now time.Time) (bool, error) {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	record, exists := r.tokens[secretHash]
	if !exists || !record.IsUsable(now) {
		return false, nil
	}

	consumedAt := now
	record.Consumed = true
	record.ConsumedAt = &consumedAt
	r.tokens[secretHash] = record
	return true, nil
}

// PruneResetTokens deletes records that expired or were consumed before the cutoff.
func (r *MemoryPasswordResetTokenRepository) PruneResetTokens(ctx context.Context, before time.Time) (int64, error) {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	var removed int64
	for hash, record := range r.tokens {
		if record.ExpiresAt.Before(before) || (record.ConsumedAt != nil && record.ConsumedAt.Before(before)) {
			delete(r.tokens, hash)
			removed++
		}
	}
	return removed, nil
}
