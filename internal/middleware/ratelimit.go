package middleware

import (
	"fmt"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/ulule/limiter/v3"
	"github.com/ulule/limiter/v3/drivers/store/memory"
	sredis "github.com/ulule/limiter/v3/drivers/store/redis"
)

// NewLimiter builds a limiter from a rate such as "300-M". With a nil
// Redis client the counters are kept per instance.
func NewLimiter(rate string, rdb *redis.Client) (*limiter.Limiter, error) {
	r, err := limiter.NewRateFromFormatted(rate)
	if err != nil {
		return nil, fmt.Errorf("invalid RATE_LIMIT %q: %w", rate, err)
	}
	if rdb == nil {
		return limiter.New(memory.NewStore(), r), nil
	}
	store, err := sredis.NewStoreWithOptions(rdb, limiter.StoreOptions{Prefix: "vault_ledger:ratelimit"})
	if err != nil {
		return nil, fmt.Errorf("failed to create redis rate limit store: %w", err)
	}
	return limiter.New(store, r), nil
}

// RateLimit creates a Gin middleware for rate limiting requests per client IP.
func RateLimit(limiterInstance *limiter.Limiter) gin.HandlerFunc {
	return func(c *gin.Context) {
		ip := c.ClientIP()

		context, err := limiterInstance.Get(c.Request.Context(), ip)
		if err != nil {
			GetLoggerFromCtx(c.Request.Context()).Error("Failed to get rate limit context", slog.String("ip", ip), slog.String("error", err.Error()))
			abortWithError(c, http.StatusInternalServerError, "internal_error", "Internal server error during rate limit check")
			return
		}

		c.Header("X-RateLimit-Limit", fmt.Sprint(context.Limit))
		c.Header("X-RateLimit-Remaining", fmt.Sprint(context.Remaining))
		if context.Reached {
			GetLoggerFromCtx(c.Request.Context()).Warn("Rate limit exceeded", slog.String("ip", ip), slog.Int64("limit", context.Limit))
			abortWithError(c, http.StatusTooManyRequests, "rate_limited", "Too many requests. Please try again later.")
			return
		}

		c.Next()
	}
}
