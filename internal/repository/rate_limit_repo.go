package repository

import (
	"context"
	"time"
)

// RateLimitRepository stores fixed-window request counters per requester.
type RateLimitRepository interface {
	// IncrementCounter atomically resets the requester's counter when now is more than
	// window past its start, then adds one and returns the updated count.
	IncrementCounter(ctx context.Context, requester string, window time.Duration, now time.Time) (int, error)
}

// CounterPruner is implemented by backends whose counters do not expire on their own.
type CounterPruner interface {
	// PruneCounters drops counters whose window started before the cutoff.
	PruneCounters(ctx context.Context, before time.Time) (int64, error)
}
