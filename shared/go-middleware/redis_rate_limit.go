package middleware

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// SharedCounter reports whether key used more than limit hits in window.
type SharedCounter interface {
	Exceeded(ctx context.Context, key string, limit int, window time.Duration) (bool, error)
}

// RedisCounter is a fixed-window counter in Redis (INCR + EXPIRE).
type RedisCounter struct {
	client *redis.Client
	prefix string
}

func NewRedisCounter(client *redis.Client, prefix string) *RedisCounter {
	return &RedisCounter{client: client, prefix: prefix}
}

func (c *RedisCounter) key(k string) string {
	return fmt.Sprintf("%s:rate_limit:%s", c.prefix, k)
}

func (c *RedisCounter) Exceeded(ctx context.Context, key string, limit int, window time.Duration) (bool, error) {
	redisKey := c.key(key)

	pipe := c.client.TxPipeline()
	incr := pipe.Incr(ctx, redisKey)
	pipe.ExpireNX(ctx, redisKey, window)
	if _, err := pipe.Exec(ctx); err != nil {
		return false, fmt.Errorf("rate limit counter: %w", err)
	}
	return incr.Val() > int64(limit), nil
}
