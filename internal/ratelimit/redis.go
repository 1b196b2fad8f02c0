package ratelimit

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisLimiter shares counters between instances through INCR + EXPIRE.
// It needs no commands newer than Redis 2.6.
type RedisLimiter struct {
	client *redis.Client
	prefix string
	max    int
	window time.Duration
	now    func() time.Time
}

// NewRedisLimiter allows max hits per key in each window
func NewRedisLimiter(client *redis.Client, prefix string, max int, window time.Duration) *RedisLimiter {
	if prefix == "" {
		prefix = "rl:"
	}
	return &RedisLimiter{
		client: client,
		prefix: prefix,
		max:    max,
		window: window,
		now:    time.Now,
	}
}

func (l *RedisLimiter) Allow(ctx context.Context, key string) (Result, error) {
	if l.max <= 0 {
		return Result{Allowed: true}, nil
	}

	now := l.now().UTC()
	winStart := now.Truncate(l.window)
	redisKey := l.key(key, winStart)

	pipe := l.client.TxPipeline()
	incr := pipe.Incr(ctx, redisKey)
	ttl := pipe.TTL(ctx, redisKey)
	if _, err := pipe.Exec(ctx); err != nil {
		return Result{}, fmt.Errorf("rate limit: %w", err)
	}

	if needsExpire(incr.Val(), ttl.Val()) {
		if err := l.client.Expire(ctx, redisKey, l.window).Err(); err != nil {
			return Result{}, fmt.Errorf("rate limit expire: %w", err)
		}
	}

	return decide(incr.Val(), l.max, winStart.Add(l.window).Sub(now)), nil
}

// needsExpire reports whether the window key still lacks a TTL: it was just created,
// or an earlier EXPIRE never landed (TTL reports -1)
func needsExpire(hits int64, ttl time.Duration) bool {
	return hits == 1 || ttl < 0
}

func (l *RedisLimiter) key(key string, winStart time.Time) string {
	return fmt.Sprintf("%s%s:%d", l.prefix, strings.ReplaceAll(key, " ", "_"), winStart.Unix())
}
