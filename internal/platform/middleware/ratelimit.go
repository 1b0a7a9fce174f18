// Copyright (c) 2026 Katalog. All rights reserved.

package middleware

import (
	"context"
	"log/slog"
	"math"
	"net/http"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"github.com/EarnestL/k-atalog/internal/platform/apperr"
	"github.com/EarnestL/k-atalog/internal/platform/constants"
	"github.com/EarnestL/k-atalog/internal/platform/ctxutil"
	"github.com/EarnestL/k-atalog/internal/platform/respond"
)

// # Rate Limiting

// Limiter decides whether one more request for key is allowed. The returned
// duration is a retry-after hint when it is not.
type Limiter interface {
	Allow(ctx context.Context, key string) (bool, time.Duration, error)
}

type rateLimitClient struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// LocalLimiter is a per-process token bucket per key.
type LocalLimiter struct {
	mu      sync.Mutex
	clients map[string]*rateLimitClient
	limit   rate.Limit
	burst   int
}

// NewLocalLimiter starts a limiter whose idle entries are evicted until ctx
// is cancelled.
func NewLocalLimiter(ctx context.Context, rps float64, burst int) *LocalLimiter {
	limiter := &LocalLimiter{
		clients: make(map[string]*rateLimitClient),
		limit:   rate.Limit(rps),
		burst:   burst,
	}

	go func() {
		ticker := time.NewTicker(constants.RateLimitCleanupInterval)
		defer ticker.Stop()

		for {
			select {
			case <-ticker.C:
				limiter.evict(time.Now())
			case <-ctx.Done():
				return
			}
		}
	}()

	return limiter
}

func (limiter *LocalLimiter) evict(now time.Time) {
	limiter.mu.Lock()
	defer limiter.mu.Unlock()

	for key, client := range limiter.clients {
		if now.Sub(client.lastSeen) > constants.RateLimitClientTTL {
			delete(limiter.clients, key)
		}
	}
}

// Allow implements [Limiter].
func (limiter *LocalLimiter) Allow(_ context.Context, key string) (bool, time.Duration, error) {
	limiter.mu.Lock()
	defer limiter.mu.Unlock()

	client, found := limiter.clients[key]
	if !found {
		client = &rateLimitClient{limiter: rate.NewLimiter(limiter.limit, limiter.burst)}
		limiter.clients[key] = client
	}
	client.lastSeen = time.Now()

	if client.limiter.Allow() {
		return true, 0, nil
	}
	return false, time.Duration(float64(time.Second) / float64(limiter.limit)), nil
}

// RateLimit rejects requests over budget with 429 and a Retry-After header.
// A limiter that errors lets the request through.
func RateLimit(limiter Limiter) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
			allowed, retryAfter, err := limiter.Allow(request.Context(), RealIP(request))
			if err != nil {
				ctxutil.GetLogger(request.Context()).WarnContext(request.Context(), "rate_limit_unavailable",
					slog.Any("error", err),
				)
				next.ServeHTTP(writer, request)
				return
			}

			if !allowed {
				seconds := int(math.Ceil(retryAfter.Seconds()))
				if seconds < 1 {
					seconds = 1
				}
				respond.RetryAfter(writer, seconds)
				respond.Error(writer, request, apperr.RateLimited(seconds))
				return
			}

			next.ServeHTTP(writer, request)
		})
	}
}
