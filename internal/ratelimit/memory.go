package ratelimit

import (
	"context"
	"strconv"
	"time"

	gocache "github.com/patrickmn/go-cache"
)

// MemoryLimiter keeps counters in process; use RedisLimiter when several instances serve traffic
type MemoryLimiter struct {
	c      *gocache.Cache
	max    int
	window time.Duration
	now    func() time.Time
}

// NewMemoryLimiter allows max hits per key in each window
func NewMemoryLimiter(max int, window time.Duration) *MemoryLimiter {
	return &MemoryLimiter{
		c:      gocache.New(window, time.Minute),
		max:    max,
		window: window,
		now:    time.Now,
	}
}

func (l *MemoryLimiter) Allow(_ context.Context, key string) (Result, error) {
	if l.max <= 0 {
		return Result{Allowed: true}, nil
	}

	now := l.now()
	winStart := now.Truncate(l.window)
	k := key + ":" + strconv.FormatInt(winStart.Unix(), 10)

	// Add fails when the counter already exists, then it is incremented in place
	if err := l.c.Add(k, int64(1), l.window); err != nil {
		hits, err := l.c.IncrementInt64(k, 1)
		if err != nil {
			return Result{}, err
		}
		return decide(hits, l.max, winStart.Add(l.window).Sub(now)), nil
	}
	return decide(1, l.max, winStart.Add(l.window).Sub(now)), nil
}
