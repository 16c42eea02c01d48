package service

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/google/uuid"

	"github.com/SimpnicServerTeam/scs-reset-server/internal/models"
	"github.com/SimpnicServerTeam/scs-reset-server/internal/repository"
)

// secretBytes is the entropy of a reset secret; hex encoding doubles its length.
const secretBytes = 32

var _ TokenStore = (*ResetTokenService)(nil)

// ResetTokenService implements TokenStore. Repositories only ever see sha256(secret).
type ResetTokenService struct {
	repo   repository.PasswordResetTokenRepository
	clock  Clock
	random io.Reader
}

// NewResetTokenService creates a ResetTokenService. A nil clock or random source
// falls back to the system clock and crypto/rand.
func NewResetTokenService(repo repository.PasswordResetTokenRepository, clock Clock, random io.Reader) *ResetTokenService {
	if clock == nil {
		clock = SystemClock{}
	}
	if random == nil {
		random = rand.Reader
	}
	return &ResetTokenService{repo: repo, clock: clock, random: random}
}

func (s *ResetTokenService) WithRepository(repo repository.PasswordResetTokenRepository) TokenStore {
	return &ResetTokenService{repo: repo, clock: s.clock, random: s.random}
}

// HashSecret returns the lookup key stored for a secret.
func HashSecret(secret string) string {
	sum := sha256.Sum256([]byte(secret))
	return hex.EncodeToString(sum[:])
}

func (s *ResetTokenService) generateSecret() (string, error) {
	buf := make([]byte, secretBytes)
	if _, err := io.ReadFull(s.random, buf); err != nil {
		return "", fmt.Errorf("failed to read random bytes: %w", err)
	}
	return hex.EncodeToString(buf), nil
}

func (s *ResetTokenService) Issue(ctx context.Context, owner string, ttl time.Duration) (*models.ResetToken, error) {
	if owner == "" {
		return nil, fmt.Errorf("token owner cannot be empty")
	}
	if ttl <= 0 {
		return nil, fmt.Errorf("token ttl must be positive")
	}

	secret, err := s.generateSecret()
	if err != nil {
		return nil, err
	}

	now := s.clock.Now().UTC()
	token := &models.ResetToken{
		ID:         uuid.New(),
		Secret:     secret,
		SecretHash: HashSecret(secret),
		Owner:      owner,
		IssuedAt:   now,
		ExpiresAt:  now.Add(ttl),
	}

	if err := s.repo.StoreResetToken(ctx, token); err != nil {
		return nil, fmt.Errorf("failed to store password reset token: %w", err)
	}
	return token, nil
}

func (s *ResetTokenService) Validate(ctx context.Context, secret string) (*models.ResetToken, bool, error) {
	if len(secret) != 2*secretBytes {
		return nil, false, nil
	}

	token, err := s.repo.GetResetToken(ctx, HashSecret(secret))
	if errors.Is(err, repository.ErrResetTokenNotFound) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("failed to look up password reset token: %w", err)
	}

	if !token.IsUsable(s.clock.Now()) {
		return token, false, nil
	}
	return token, true, nil
}

func (s *ResetTokenService) Consume(ctx context.Context, secret string) (bool, error) {
	if len(secret) != 2*secretBytes {
		return false, nil
	}

	ok, err := s.repo.ConsumeResetToken(ctx, HashSecret(secret), s.clock.Now())
	if err != nil {
		return false, fmt.Errorf("failed to consume password reset token: %w", err)
	}
	return ok, nil
}
