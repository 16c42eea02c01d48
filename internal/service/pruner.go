package service

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/SimpnicServerTeam/scs-reset-server/internal/repository"
)

// Pruner periodically deletes spent reset tokens and idle rate limit counters.
type Pruner struct {
	tokens    repository.PasswordResetTokenRepository
	counters  repository.CounterPruner // nil when the backend expires counters itself
	clock     Clock
	retention time.Duration
	// Counters younger than one rate limit window are still counting.
	window   time.Duration
	interval time.Duration
}

// NewPruner creates a Pruner. A negative retention is treated as zero so that
// unexpired tokens are never removed.
func NewPruner(tokens repository.PasswordResetTokenRepository, counters repository.CounterPruner, clock Clock, retention, window, interval time.Duration) *Pruner {
	if clock == nil {
		clock = SystemClock{}
	}
	if retention < 0 {
		retention = 0
	}
	return &Pruner{tokens: tokens, counters: counters, clock: clock, retention: retention, window: window, interval: interval}
}

// PruneOnce removes tokens that expired or were consumed more than the retention ago,
// and counters whose window started more than max(retention, window) ago.
func (p *Pruner) PruneOnce(ctx context.Context) (tokens int64, counters int64, err error) {
	now := p.clock.Now()

	tokens, err = p.tokens.PruneResetTokens(ctx, now.Add(-p.retention))
	if err != nil {
		return 0, 0, err
	}
	if p.counters != nil {
		counterAge := p.retention
		if p.window > counterAge {
			counterAge = p.window
		}
		counters, err = p.counters.PruneCounters(ctx, now.Add(-counterAge))
		if err != nil {
			return tokens, 0, err
		}
	}
	return tokens, counters, nil
}

// Run prunes every interval until ctx is cancelled. A non-positive interval disables pruning.
func (p *Pruner) Run(ctx context.Context) {
	if p.interval <= 0 {
		log.Info().Msg("Reset token pruning disabled")
		return
	}

	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			tokens, counters, err := p.PruneOnce(ctx)
			if err != nil {
				log.Error().Err(err).Msg("Failed to prune password reset data")
				continue
			}
			if tokens > 0 || counters > 0 {
				log.Info().Int64("tokens", tokens).Int64("counters", counters).Msg("Pruned password reset data")
			}
		}
	}
}
