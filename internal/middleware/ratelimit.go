package middleware

import (
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	RedisRateLimitWindow      = time.Minute
	RedisRateLimitMaxRequests = 120
	redisRateLimitKeyPrefix   = "ratelimit:"
)

// RedisRateLimit is a fixed-window per-IP counter shared by every instance
// using the same Redis. It fails open when Redis errors.
func RedisRateLimit(client *redis.Client, trustProxy bool) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			key := redisRateLimitKeyPrefix + ClientIP(r, trustProxy)

			pipe := client.TxPipeline()
			incr := pipe.Incr(ctx, key)
			pipe.ExpireNX(ctx, key, RedisRateLimitWindow)
			if _, err := pipe.Exec(ctx); err != nil {
				slog.Warn("rate limit check failed, allowing request", "error", err)
				next.ServeHTTP(w, r)
				return
			}

			count := int(incr.Val())
			if count > RedisRateLimitMaxRequests {
				w.Header().Set("Retry-After", strconv.Itoa(int(RedisRateLimitWindow.Seconds())))
				tooManyRequests(w, "Rate limit exceeded. Please try again later.")
				return
			}

			w.Header().Set("X-RateLimit-Limit", strconv.Itoa(RedisRateLimitMaxRequests))
			w.Header().Set("X-RateLimit-Remaining", strconv.Itoa(RedisRateLimitMaxRequests-count))
			next.ServeHTTP(w, r)
		})
	}
}
