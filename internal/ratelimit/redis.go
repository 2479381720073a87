package ratelimit

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisStore implements Store on a shared redis instance, so the window is
// enforced across every process pointing at the same store. Keys carry the
// window index, making the increment naturally scoped to one fixed window.
type RedisStore struct {
	rdb *redis.Client
}

func NewRedisStore(rdb *redis.Client) *RedisStore {
	return &RedisStore{rdb: rdb}
}

func (s *RedisStore) Increment(ctx context.Context, key string, window time.Duration) (int64, time.Time, error) {
	index, resetAt := windowBounds(time.Now(), window)
	redisKey := fmt.Sprintf("ratelimit:%s:%d", key, index)

	count, err := s.rdb.Incr(ctx, redisKey).Result()
	if err != nil {
		return 0, time.Time{}, err
	}
	// First increment in the window sets the expiry. If this EXPIRE is
	// lost the key still becomes irrelevant at the next window index; a
	// later TTL sweep on the redis side reclaims it.
	if count == 1 {
		if err := s.rdb.Expire(ctx, redisKey, window+time.Second).Err(); err != nil {
			return 0, time.Time{}, err
		}
	}
	return count, resetAt, nil
}
