package middleware

import (
	"context"
	"math"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/resonata/resonata-api/internal/logger"
	"github.com/resonata/resonata-api/internal/models"
	"github.com/resonata/resonata-api/internal/ratelimit"
)

// RateLimit rejects a client's requests beyond the limiter's window budget
// before the handler runs. onLimited may be nil.
func RateLimit(limiter *ratelimit.Limiter, onLimited func(ctx context.Context)) gin.HandlerFunc {
	return func(c *gin.Context) {
		clientID, ok := GetClientID(c)
		if !ok {
			clientID = "ip:" + c.ClientIP()
		}

		decision := limiter.Allow(c.Request.Context(), clientID)
		c.Header("X-RateLimit-Limit", strconv.Itoa(limiter.Limit()))
		if decision.Allowed {
			c.Header("X-RateLimit-Remaining", strconv.Itoa(decision.Remaining))
			c.Next()
			return
		}

		if onLimited != nil {
			onLimited(c.Request.Context())
		}
		retryAfter := int(math.Ceil(decision.RetryAfter.Seconds()))
		c.Header("X-RateLimit-Remaining", "0")
		c.Header("Retry-After", strconv.Itoa(retryAfter))

		fields := logger.WithContext(c)
		fields["retry_after_s"] = retryAfter
		logger.Warn("Rate limit exceeded", fields)

		c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
			"success":    false,
			"error":      models.ErrRateLimitExceeded.Error(),
			"retryAfter": retryAfter,
		})
	}
}
