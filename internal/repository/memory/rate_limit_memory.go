package memory

import (
	"context"
	"sync"
	"time"

	"github.com/SimpnicServerTeam/scs-reset-server/internal/models"
	"github.com/SimpnicServerTeam/scs-reset-server/internal/repository"
)

var (
	_ repository.RateLimitRepository = (*MemoryRateLimitRepository)(nil)
	_ repository.CounterPruner       = (*MemoryRateLimitRepository)(nil)
)

// MemoryRateLimitRepository keeps fixed-window counters in a map guarded by one mutex.
type MemoryRateLimitRepository struct {
	mu       sync.Mutex
	counters map[string]*models.RateLimitCounter
}

func NewMemoryRateLimitRepository() *MemoryRateLimitRepository {
	return &MemoryRateLimitRepository{
		counters: make(map[string]*models.RateLimitCounter),
	}
}

func (r *MemoryRateLimitRepository) IncrementCounter(ctx context.Context, requester string, window time.Duration, now time.Time) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	c, exists := r.counters[requester]
	if !exists {
		c = &models.RateLimitCounter{Requester: requester, WindowStart: now}
		r.counters[requester] = c
	} else if now.Sub(c.WindowStart) > window {
		c.WindowStart = now
		c.Count = 0
	}

	c.Count++
	return c.Count, nil
}

func (r *MemoryRateLimitRepository) PruneCounters(ctx context.Context, before time.Time) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var removed int64
	for requester, c := range r.counters {
		if c.WindowStart.Before(before) {
			delete(r.counters, requester)
			removed++
		}
	}
	return removed, nil
}
