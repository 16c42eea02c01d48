package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/goccy/go-json"
	"github.com/google/uuid"

	"github.com/SimpnicServerTeam/scs-reset-server/internal/models"
	"github.com/SimpnicServerTeam/scs-reset-server/internal/repository"
	"github.com/redis/go-redis/v9"
)

const (
	passwordResetTokenPrefix = "pwdreset:"
)

var _ repository.PasswordResetTokenRepository = (*RedisPasswordResetTokenRepository)(nil)

// consumeScript flips the consumed flag of a stored record if it is unconsumed and not expired.
// Returns 1 on success, 0 when the key is missing, -1 when already consumed, -2 when expired.
var consumeScript = redis.NewScript(`
local val = redis.call("GET", KEYS[1])
if not val then return 0 end
local obj = cjson.decode(val)
if obj.consumed then return -1 end
local now = tonumber(ARGV[1])
if now > obj.expiresAtMs then return -2 end
obj.consumed = true
obj.consumedAtMs = now
local ttl = redis.call("PTTL", KEYS[1])
if ttl and ttl > 0 then
  redis.call("SET", KEYS[1], cjson.encode(obj), "PX", ttl)
else
  redis.call("SET", KEYS[1], cjson.encode(obj))
end
return 1
`)

// redisResetToken is the stored shape. Times are unix milliseconds so the Lua script can compare them.
type redisResetToken struct {
	ID           string `json:"id"`
	Owner        string `json:"owner"`
	IssuedAtMs   int64  `json:"issuedAtMs"`
	ExpiresAtMs  int64  `json:"expiresAtMs"`
	Consumed     bool   `json:"consumed"`
	ConsumedAtMs int64  `json:"consumedAtMs,omitempty"`
}

// RedisPasswordResetTokenRepository implements PasswordResetTokenRepository using Redis.
// Records outlive their expiry by the retention period and are then dropped by Redis itself.
type RedisPasswordResetTokenRepository struct {
	client    *redis.Client
	retention time.Duration
}

// NewRedisPasswordResetTokenRepository creates a new Redis-backed password reset token repository.
func NewRedisPasswordResetTokenRepository(client *redis.Client, retention time.Duration) *RedisPasswordResetTokenRepository {
	return &RedisPasswordResetTokenRepository{
		client:    client,
		retention: retention,
	}
}

func makeResetTokenKey(secretHash string) string {
	return passwordResetTokenPrefix + secretHash
}

// StoreResetToken saves the record with a TTL covering its lifetime plus retention.
func (r *RedisPasswordResetTokenRepository) StoreResetToken(ctx context.Context, token *models.ResetToken) error {
	if token == nil || token.SecretHash == "" {
		return fmt.Errorf("invalid reset token: secret hash must be set")
	}

	ttl := token.ExpiresAt.Sub(token.IssuedAt) + r.retention
	if ttl <= 0 {
		return fmt.Errorf("expiry time must be after issue time")
	}

	record := redisResetToken{
		ID:          token.ID.String(),
		Owner:       token.Owner,
		IssuedAtMs:  token.IssuedAt.UnixMilli(),
		ExpiresAtMs: token.ExpiresAt.UnixMilli(),
		Consumed:    token.Consumed,
	}
	jsonData, err := json.Marshal(record)
	if err != nil {
		return fmt.Errorf("failed to marshal reset token: %w", err)
	}

	stored, err := r.client.SetNX(ctx, makeResetTokenKey(token.SecretHash), jsonData, ttl).Result()
	if err != nil {
		return fmt.Errorf("failed to store password reset token in redis: %w", err)
	}
	if !stored {
		return repository.ErrResetTokenExists
	}
	return nil
}

// GetResetToken loads the record without modifying it.
func (r *RedisPasswordResetTokenRepository) GetResetToken(ctx context.Context, secretHash string) (*models.ResetToken, error) {
	jsonData, err := r.client.Get(ctx, makeResetTokenKey(secretHash)).Bytes()
	if err == redis.Nil {
		return nil, repository.ErrResetTokenNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("redis GET failed for reset token: %w", err)
	}

	var record redisResetToken
	if err := json.Unmarshal(jsonData, &record); err != nil {
		return nil, fmt.Errorf("json unmarshal failed for reset token: %w", err)
	}

	id, err := uuid.Parse(record.ID)
	if err != nil {
		return nil, fmt.Errorf("invalid reset token id %q: %w", record.ID, err)
	}

	token := &models.ResetToken{
		ID:         id,
		SecretHash: secretHash,
		Owner:      record.Owner,
		IssuedAt:   time.UnixMilli(record.IssuedAtMs).UTC(),
		ExpiresAt:  time.UnixMilli(record.ExpiresAtMs).UTC(),
		Consumed:   record.Consumed,
	}
	if record.ConsumedAtMs > 0 {
		consumedAt := time.UnixMilli(record.ConsumedAtMs).UTC()
		token.ConsumedAt = &consumedAt
	}
	return token, nil
}

// ConsumeResetToken runs the check and the write inside one Lua script.
func (r *RedisPasswordResetTokenRepository) ConsumeResetToken(ctx context.Context, secretHash string, now time.Time) (bool, error) {
	res, err := consumeScript.Run(ctx, r.client, []string{makeResetTokenKey(secretHash)}, now.UnixMilli()).Int()
	if err != nil {
		return false, fmt.Errorf("failed to consume password reset token: %w", err)
	}
	return res == 1, nil
}

// PruneResetTokens is a no-op: every record carries a Redis TTL.
func (r *RedisPasswordResetTokenRepository) PruneResetTokens(ctx context.Context, before time.Time) (int64, error) {
	return 0, nil
}
