package security

import (
	"fmt"
	"net/http"
	"time"

	"github.com/labstack/echo/v5"
	"github.com/redis/go-redis/v9"
)

// RateLimiter is a Redis-backed fixed-window limiter keyed by client IP.
// Redis being unreachable fails open: limiting protects the queue from
// abuse, it is not a correctness dependency.
type RateLimiter struct {
	redis        *redis.Client
	maxPerMinute int64
}

func NewRateLimiter(redisClient *redis.Client, maxPerMinute int) *RateLimiter {
	return &RateLimiter{
		redis:        redisClient,
		maxPerMinute: int64(maxPerMinute),
	}
}

// Limit returns middleware enforcing the per-minute window for the named
// operation.
func (r *RateLimiter) Limit(operation string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			key := fmt.Sprintf("ratelimit:%s:%s", operation, c.RealIP())
			ctx := c.Request().Context()

			count, err := r.redis.Incr(ctx, key).Result()
			if err != nil {
				return next(c)
			}
			if count == 1 {
				r.redis.Expire(ctx, key, time.Minute)
			}
			if count > r.maxPerMinute {
				return c.JSON(http.StatusTooManyRequests, map[string]string{
					"error": "요청이 너무 많습니다. 잠시 후 다시 시도해주세요.",
				})
			}

			return next(c)
		}
	}
}
