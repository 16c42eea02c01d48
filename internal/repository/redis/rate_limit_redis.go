package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/SimpnicServerTeam/scs-reset-server/internal/repository"
	"github.com/redis/go-redis/v9"
)

const (
	rateLimitPrefix = "pwdreset-rate:"
)

var _ repository.RateLimitRepository = (*RedisRateLimitRepository)(nil)

// incrementScript keeps {start, count} in a hash. ARGV: now (ms), window (ms).
var incrementScript = redis.NewScript(`
local now = tonumber(ARGV[1])
local window = tonumber(ARGV[2])
local start = redis.call("HGET", KEYS[1], "start")
if (not start) or (now - tonumber(start) > window) then
  redis.call("HSET", KEYS[1], "start", ARGV[1], "count", 1)
  redis.call("PEXPIRE", KEYS[1], window + 1000)
  return 1
end
return redis.call("HINCRBY", KEYS[1], "count", 1)
`)

// RedisRateLimitRepository implements RateLimitRepository using Redis.
type RedisRateLimitRepository struct {
	client *redis.Client
}

func NewRedisRateLimitRepository(client *redis.Client) *RedisRateLimitRepository {
	return &RedisRateLimitRepository{
		client: client,
	}
}

func makeRateLimitKey(requester string) string {
	return rateLimitPrefix + requester
}

func (r *RedisRateLimitRepository) IncrementCounter(ctx context.Context, requester string, window time.Duration, now time.Time) (int, error) {
	count, err := incrementScript.Run(ctx, r.client, []string{makeRateLimitKey(requester)}, now.UnixMilli(), window.Milliseconds()).Int()
	if err != nil {
		return 0, fmt.Errorf("failed to increment rate limit counter: %w", err)
	}
	return count, nil
}
