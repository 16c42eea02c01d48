package sql_repo

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/SimpnicServerTeam/scs-reset-server/internal/repository"
)

var (
	_ repository.RateLimitRepository = (*SQLRateLimitRepository)(nil)
	_ repository.CounterPruner       = (*SQLRateLimitRepository)(nil)
)

// SQLRateLimitRepository keeps one row per requester and updates it with a single UPSERT,
// so concurrent requests from the same requester cannot be undercounted.
type SQLRateLimitRepository struct {
	db *sql.DB
}

func NewSQLRateLimitRepository(db *sql.DB) *SQLRateLimitRepository {
	return &SQLRateLimitRepository{db: db}
}

func (r *SQLRateLimitRepository) IncrementCounter(ctx context.Context, requester string, window time.Duration, now time.Time) (int, error) {
	query := `
		INSERT INTO password_reset_rate_limits (requester, window_start, request_count)
		VALUES ($1, $2, 1)
		ON CONFLICT (requester) DO UPDATE SET
			request_count = CASE
				WHEN password_reset_rate_limits.window_start < $3 THEN 1
				ELSE password_reset_rate_limits.request_count + 1
			END,
			window_start = CASE
				WHEN password_reset_rate_limits.window_start < $4 THEN $5
				ELSE password_reset_rate_limits.window_start
			END
		RETURNING request_count
	`

	now = now.UTC()
	cutoff := now.Add(-window)

	var count int
	err := r.db.QueryRowContext(ctx, query, requester, now, cutoff, cutoff, now).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to increment rate limit counter: %w", err)
	}
	return count, nil
}

func (r *SQLRateLimitRepository) PruneCounters(ctx context.Context, before time.Time) (int64, error) {
	res, err := r.db.ExecContext(ctx, `DELETE FROM password_reset_rate_limits WHERE window_start < $1`, before.UTC())
	if err != nil {
		return 0, fmt.Errorf("failed to prune rate limit counters: %w", err)
	}
	return res.RowsAffected()
}
