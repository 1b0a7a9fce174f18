// Copyright (c) 2026 Katalog. All rights reserved.

package redis

import (
	stdctx "context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/EarnestL/k-atalog/internal/platform/constants"
)

// FixedWindow counts requests per key in fixed time windows shared by every
// replica pointing at the same Redis instance.
type FixedWindow struct {
	client *redis.Client
	limit  int64
	window time.Duration
}

// NewFixedWindow constructs a limiter allowing limit hits per window per key.
func NewFixedWindow(client *redis.Client, limit int64, window time.Duration) *FixedWindow {
	return &FixedWindow{client: client, limit: limit, window: window}
}

/*
Allow records one hit for key and reports whether it fits in the current window.

Description: INCR and EXPIRE NX run in one MULTI/EXEC so the first hit of a
window starts its TTL and later hits never extend it.

Returns:
  - bool: Whether the hit is within budget
  - time.Duration: Time until the window resets (retry-after hint)
  - error: Connectivity failures
*/
func (limiter *FixedWindow) Allow(context stdctx.Context, key string) (bool, time.Duration, error) {
	redisKey := constants.RedisPrefixRateLimit + key

	var count *redis.IntCmd
	var ttl *redis.DurationCmd

	_, err := limiter.client.TxPipelined(context, func(pipe redis.Pipeliner) error {
		count = pipe.Incr(context, redisKey)
		pipe.ExpireNX(context, redisKey, limiter.window)
		ttl = pipe.PTTL(context, redisKey)
		return nil
	})
	if err != nil {
		return false, 0, fmt.Errorf("redis_rate_limit_failed: %w", err)
	}

	retryAfter := ttl.Val()
	if retryAfter < 0 {
		retryAfter = limiter.window
	}

	return count.Val() <= limiter.limit, retryAfter, nil
}
