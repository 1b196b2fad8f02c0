package ratelimit

import (
	"context"
	"time"
)

// Result describes the decision for a single hit
type Result struct {
	Allowed    bool
	Remaining  int
	RetryAfter time.Duration
}

// Limiter counts hits per key in fixed windows
type Limiter interface {
	Allow(ctx context.Context, key string) (Result, error)
}

func decide(hits int64, max int, untilReset time.Duration) Result {
	res := Result{
		Allowed:   hits <= int64(max),
		Remaining: max - int(hits),
	}
	if res.Remaining < 0 {
		res.Remaining = 0
	}
	if !res.Allowed {
		res.RetryAfter = untilReset
		if res.RetryAfter <= 0 {
			res.RetryAfter = time.Second
		}
	}
	return res
}
