package sql_repo

import (
	"context"
	"database/sql"
	"fmt"
)

var schema = map[string][]string{
	DriverSQLite: {
		`CREATE TABLE IF NOT EXISTS users (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			email TEXT NOT NULL UNIQUE,
			credential_hash TEXT NOT NULL,
			updated_at TIMESTAMP NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS password_reset_tokens (
			id TEXT PRIMARY KEY,
			secret_hash TEXT NOT NULL UNIQUE,
			owner TEXT NOT NULL,
			issued_at TIMESTAMP NOT NULL,
			expires_at TIMESTAMP NOT NULL,
			consumed BOOLEAN NOT NULL DEFAULT FALSE,
			consumed_at TIMESTAMP NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_password_reset_tokens_expires_at ON password_reset_tokens (expires_at)`,
		`CREATE TABLE IF NOT EXISTS password_reset_rate_limits (
			requester TEXT PRIMARY KEY,
			window_start TIMESTAMP NOT NULL,
			request_count INTEGER NOT NULL
		)`,
	},
	DriverPostgres: {
		`CREATE TABLE IF NOT EXISTS users (
			id BIGSERIAL PRIMARY KEY,
			email VARCHAR(254) NOT NULL UNIQUE,
			credential_hash VARCHAR(255) NOT NULL,
			updated_at TIMESTAMPTZ NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS password_reset_tokens (
			id UUID PRIMARY KEY,
			secret_hash CHAR(64) NOT NULL UNIQUE,
			owner VARCHAR(254) NOT NULL,
			issued_at TIMESTAMPTZ NOT NULL,
			expires_at TIMESTAMPTZ NOT NULL,
			consumed BOOLEAN NOT NULL DEFAULT FALSE,
			consumed_at TIMESTAMPTZ NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_password_reset_tokens_expires_at ON password_reset_tokens (expires_at)`,
		`CREATE TABLE IF NOT EXISTS password_reset_rate_limits (
			requester VARCHAR(64) PRIMARY KEY,
			window_start TIMESTAMPTZ NOT NULL,
			request_count INTEGER NOT NULL
		)`,
	},
}

// Migrate creates the tables used by the SQL repositories if they do not exist.
func Migrate(ctx context.Context, db *sql.DB, driver string) error {
	statements, ok := schema[driver]
	if !ok {
		return fmt.Errorf("no schema for database driver %q", driver)
	}
	for _, stmt := range statements {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("failed to apply migration: %w", err)
		}
	}
	return nil
}
