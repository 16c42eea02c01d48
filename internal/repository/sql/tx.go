package sql_repo

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/SimpnicServerTeam/scs-reset-server/internal/repository"
)

var _ repository.Transactor = (*SQLTransactor)(nil)

// SQLTransactor runs user and token repository calls inside one database transaction.
type SQLTransactor struct {
	db *sql.DB
}

func NewSQLTransactor(db *sql.DB) *SQLTransactor {
	return &SQLTransactor{db: db}
}

func (t *SQLTransactor) WithinTx(ctx context.Context, fn func(ctx context.Context, stores repository.Stores) error) error {
	tx, err := t.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}

	stores := repository.Stores{
		Users:  &SQLUserRepository{db: tx},
		Tokens: &SQLPasswordResetTokenRepository{db: tx},
	}

	if err := fn(ctx, stores); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			return fmt.Errorf("rollback failed: %v (original error: %w)", rbErr, err)
		}
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}
