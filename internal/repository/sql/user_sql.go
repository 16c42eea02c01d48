package sql_repo

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/SimpnicServerTeam/scs-reset-server/internal/models"
	"github.com/SimpnicServerTeam/scs-reset-server/internal/repository"
)

var _ repository.UserRepository = (*SQLUserRepository)(nil)

// SQLUserRepository implements UserRepository on the users table.
type SQLUserRepository struct {
	db querier
}

func NewSQLUserRepository(db *sql.DB) *SQLUserRepository {
	return &SQLUserRepository{db: db}
}

// CreateUser inserts an account. Emails are stored lower-cased.
func (r *SQLUserRepository) CreateUser(ctx context.Context, email, credentialHash string) (*models.Account, error) {
	email = strings.ToLower(email)
	query := `
		INSERT INTO users (email, credential_hash, updated_at)
		VALUES ($1, $2, $3)
		RETURNING id
	`

	account := &models.Account{Email: email, CredentialHash: credentialHash}
	err := r.db.QueryRowContext(ctx, query, email, credentialHash, time.Now().UTC()).Scan(&account.ID)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, repository.ErrUserExists
		}
		return nil, fmt.Errorf("failed to create user: %w", err)
	}
	return account, nil
}

func (r *SQLUserRepository) FindByEmail(ctx context.Context, email string) (*models.Account, error) {
	query := `SELECT id, email, credential_hash FROM users WHERE email = $1`

	var account models.Account
	err := r.db.QueryRowContext(ctx, query, strings.ToLower(email)).Scan(&account.ID, &account.Email, &account.CredentialHash)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, repository.ErrUserNotFound
		}
		return nil, fmt.Errorf("database query failed for user: %w", err)
	}
	return &account, nil
}

func (r *SQLUserRepository) UpdateCredential(ctx context.Context, accountID int64, credentialHash string) error {
	query := `UPDATE users SET credential_hash = $1, updated_at = $2 WHERE id = $3`

	res, err := r.db.ExecContext(ctx, query, credentialHash, time.Now().UTC(), accountID)
	if err != nil {
		return fmt.Errorf("failed to update user credential: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read affected rows: %w", err)
	}
	if n == 0 {
		return repository.ErrUserNotFound
	}
	return nil
}
