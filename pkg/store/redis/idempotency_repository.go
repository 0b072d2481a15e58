package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
)

const (
	idempotencyKeyPrefix = "idempotency:schedule:" // idempotency:schedule:{owner}:{key}
	idempotencyPending   = "__pending__"
	idempotencyTTL       = 24 * time.Hour
	pendingTTL           = 30 * time.Second // an abandoned reservation frees itself
)

// releaseScript deletes the key only while it still holds the pending marker
var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

// IdempotencyRepository remembers which schedule a client-supplied Idempotency-Key created
type IdempotencyRepository struct {
	redis      *redis.Client
	ttl        time.Duration
	pendingTTL time.Duration
}

// NewIdempotencyRepository creates the repository
func NewIdempotencyRepository(redisClient *RedisClient) *IdempotencyRepository {
	return &IdempotencyRepository{
		redis:      redisClient.GetClient(),
		ttl:        idempotencyTTL,
		pendingTTL: pendingTTL,
	}
}

func idempotencyKey(ownerID, key string) string {
	return idempotencyKeyPrefix + ownerID + ":" + key
}

// Reserve claims key for ownerID. When the key was already used it returns the
// stored schedule id, or "" if the first request is still in flight.
func (r *IdempotencyRepository) Reserve(ctx context.Context, ownerID, key string) (existingID string, reserved bool, err error) {
	redisKey := idempotencyKey(ownerID, key)

	acquired, err := r.redis.SetNX(ctx, redisKey, idempotencyPending, r.pendingTTL).Result()
	if err != nil {
		return "", false, fmt.Errorf("failed to reserve idempotency key: %w", err)
	}
	if acquired {
		return "", true, nil
	}

	value, err := r.redis.Get(ctx, redisKey).Result()
	if err == redis.Nil {
		// expired between SETNX and GET; try once more
		acquired, err = r.redis.SetNX(ctx, redisKey, idempotencyPending, r.pendingTTL).Result()
		if err != nil {
			return "", false, fmt.Errorf("failed to reserve idempotency key: %w", err)
		}
		return "", acquired, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("failed to read idempotency key: %w", err)
	}
	if value == idempotencyPending {
		return "", false, nil
	}
	return value, false, nil
}

// Complete binds key to the created schedule id
func (r *IdempotencyRepository) Complete(ctx context.Context, ownerID, key, scheduleID string) error {
	if err := r.redis.Set(ctx, idempotencyKey(ownerID, key), scheduleID, r.ttl).Err(); err != nil {
		return fmt.Errorf("failed to complete idempotency key: %w", err)
	}
	return nil
}

// Release frees a reservation whose create failed
func (r *IdempotencyRepository) Release(ctx context.Context, ownerID, key string) error {
	if err := releaseScript.Run(ctx, r.redis, []string{idempotencyKey(ownerID, key)}, idempotencyPending).Err(); err != nil && err != redis.Nil {
		return fmt.Errorf("failed to release idempotency key: %w", err)
	}
	return nil
}
