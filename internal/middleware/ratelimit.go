package middleware

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/xjinkx/license-gateway/internal/clientip"
	"github.com/xjinkx/license-gateway/internal/logger"
	"github.com/xjinkx/license-gateway/internal/ratelimit"
)

// RateLimit applies the fixed-window limiter keyed by resolved client IP.
// The health check is exempt.
func RateLimit(limiter ratelimit.Limiter) gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.Request.URL.Path == healthPath {
			c.Next()
			return
		}

		ip := clientip.Resolve(c.Request, c.ClientIP())
		key := ip.ChosenIP

		ctx := c.Request.Context()
		allowed, err := limiter.Allow(ctx, key)
		if err != nil {
			logger.LogEvent(logrus.ErrorLevel, "rate limit check failed", logrus.Fields{
				"ip":    key,
				"error": err.Error(),
			})
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Rate limit check failed"})
			c.Abort()
			return
		}

		remaining, _ := limiter.Remaining(ctx, key)
		resetTime, _ := limiter.Reset(ctx, key)

		c.Header("X-RateLimit-Limit", fmt.Sprintf("%d", limiter.Limit()))
		c.Header("X-RateLimit-Remaining", fmt.Sprintf("%d", remaining))
		c.Header("X-RateLimit-Reset", fmt.Sprintf("%d", resetTime.Unix()))

		if !allowed {
			retryAfter := int(time.Until(resetTime).Seconds())
			if retryAfter < 0 {
				retryAfter = 0
			}
			c.Header("Retry-After", fmt.Sprintf("%d", retryAfter))

			logger.LogEvent(logrus.WarnLevel, "blocked: rate limit exceeded", logrus.Fields{
				"ip":   key,
				"path": c.Request.URL.Path,
			})
			c.JSON(http.StatusTooManyRequests, gin.H{"error": "Too many requests. Please try again later."})
			c.Abort()
			return
		}

		c.Next()
	}
}
