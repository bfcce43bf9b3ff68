package ratelimit

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/rueidis"
)

// RedisLimiter is a Limiter shared by every process using the same Redis.
type RedisLimiter struct {
	client rueidis.Client
	limit  int64
	now    func() time.Time
}

// NewRedisClient connects to the Redis server at addr.
func NewRedisClient(addr string) (rueidis.Client, error) {
	client, err := rueidis.NewClient(rueidis.ClientOption{
		InitAddress: []string{addr},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create redis client: %w", err)
	}
	return client, nil
}

// NewRedisLimiter allows limit requests per key per window.
func NewRedisLimiter(client rueidis.Client, limit int) *RedisLimiter {
	return &RedisLimiter{client: client, limit: int64(limit), now: time.Now}
}

var _ Limiter = (*RedisLimiter)(nil)

// Allow implements Limiter. The counter key expires with its window.
func (l *RedisLimiter) Allow(ctx context.Context, key string) (bool, error) {
	k := windowKey(key, l.now())

	count, err := l.client.Do(ctx, l.client.B().Incr().Key(k).Build()).AsInt64()
	if err != nil {
		return false, fmt.Errorf("failed to increment rate counter: %w", err)
	}

	if count == 1 {
		expire := l.client.B().Pexpire().Key(k).Milliseconds(Window.Milliseconds()).Build()
		if err := l.client.Do(ctx, expire).Error(); err != nil {
			return false, fmt.Errorf("failed to set rate counter expiry: %w", err)
		}
	}

	return count <= l.limit, nil
}
