package sql_repo

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/SimpnicServerTeam/scs-reset-server/internal/models"
	"github.com/SimpnicServerTeam/scs-reset-server/internal/repository"
)

var _ repository.PasswordResetTokenRepository = (*SQLPasswordResetTokenRepository)(nil)

// SQLPasswordResetTokenRepository implements PasswordResetTokenRepository on the
// password_reset_tokens table. Rows are kept after use for audit until pruned.
type SQLPasswordResetTokenRepository struct {
	db querier
}

func NewSQLPasswordResetTokenRepository(db *sql.DB) *SQLPasswordResetTokenRepository {
	return &SQLPasswordResetTokenRepository{db: db}
}

func (r *SQLPasswordResetTokenRepository) StoreResetToken(ctx context.Context, token *models.ResetToken) error {
	query := `
		INSERT INTO password_reset_tokens (id, secret_hash, owner, issued_at, expires_at, consumed)
		VALUES ($1, $2, $3, $4, $5, $6)
	`

	_, err := r.db.ExecContext(ctx, query,
		token.ID.String(), token.SecretHash, token.Owner,
		token.IssuedAt.UTC(), token.ExpiresAt.UTC(), token.Consumed,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return repository.ErrResetTokenExists
		}
		return fmt.Errorf("failed to store password reset token: %w", err)
	}
	return nil
}

func (r *SQLPasswordResetTokenRepository) GetResetToken(ctx context.Context, secretHash string) (*models.ResetToken, error) {
	query := `
		SELECT id, secret_hash, owner, issued_at, expires_at, consumed, consumed_at
		FROM password_reset_tokens
		WHERE secret_hash = $1
	`

	var t models.ResetToken
	var id string
	var consumedAt sql.NullTime
	err := r.db.QueryRowContext(ctx, query, secretHash).
		Scan(&id, &t.SecretHash, &t.Owner, &t.IssuedAt, &t.ExpiresAt, &t.Consumed, &consumedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, repository.ErrResetTokenNotFound
		}
		return nil, fmt.Errorf("database query failed for reset token: %w", err)
	}
	if err := t.ID.UnmarshalText([]byte(id)); err != nil {
		return nil, fmt.Errorf("invalid reset token id %q: %w", id, err)
	}
	if consumedAt.Valid {
		ts := consumedAt.Time.UTC()
		t.ConsumedAt = &ts
	}
	t.IssuedAt = t.IssuedAt.UTC()
	t.ExpiresAt = t.ExpiresAt.UTC()
	return &t, nil
}

// ConsumeResetToken is one conditional UPDATE; the row count tells whether this call won.
func (r *SQLPasswordResetTokenRepository) ConsumeResetToken(ctx context.Context, secretHash string, now time.Time) (bool, error) {
	query := `
		UPDATE password_reset_tokens
		SET consumed = TRUE, consumed_at = $1
		WHERE secret_hash = $2 AND consumed = FALSE AND expires_at >= $3
	`

	now = now.UTC()
	res, err := r.db.ExecContext(ctx, query, now, secretHash, now)
	if err != nil {
		return false, fmt.Errorf("failed to consume password reset token: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to read affected rows: %w", err)
	}
	return n == 1, nil
}

func (r *SQLPasswordResetTokenRepository) PruneResetTokens(ctx context.Context, before time.Time) (int64, error) {
	query := `
		DELETE FROM password_reset_tokens
		WHERE expires_at < $1 OR (consumed_at IS NOT NULL AND consumed_at < $2)
	`

	before = before.UTC()
	res, err := r.db.ExecContext(ctx, query, before, before)
	if err != nil {
		return 0, fmt.Errorf("failed to prune password reset tokens: %w", err)
	}
	return res.RowsAffected()
}
