package middleware

import (
	"context"
	"fmt"
	"net/http"

	"github.com/go-redis/redis_rate/v9"
)

type RequestRateLimiter interface {
	Allow(ctx context.Context, key string, limit redis_rate.Limit) (*redis_rate.Result, error)
}

// RateLimit caps requests per minute under the given key. The limiter
// state lives in redis, so the cap holds across service instances.
func RateLimit(limiter RequestRateLimiter, key string, allowedPerMin int) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			res, err := limiter.Allow(r.Context(), key, redis_rate.PerMinute(allowedPerMin))
			if err != nil {
				http.Error(w, "rate limit internal error", http.StatusInternalServerError)
				return
			}
			if res.Allowed == 0 {
				http.Error(
					w,
					fmt.Sprintf("retry after %.0f seconds", res.RetryAfter.Seconds()),
					http.StatusTooManyRequests,
				)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
