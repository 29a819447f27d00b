package middleware

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/aman-churiwal/inquiry-webhook/internal/metrics"
	"github.com/aman-churiwal/inquiry-webhook/internal/models"
	"github.com/aman-churiwal/inquiry-webhook/internal/ratelimit"
)

// RateLimit applies limiter per source address. scope keeps the counters of
// the two webhooks apart.
func RateLimit(limiter ratelimit.Limiter, scope string, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		source := SourceAddress(c)
		key := scope + ":" + source

		ctx := c.Request.Context()
		allowed, err := limiter.Allow(ctx, key)
		if err != nil {
			logger.Error("rate limit check failed", zap.String("scope", scope), zap.Error(err))
			SetOutcome(c, models.OutcomeError)
			metrics.ObserveSubmission(c.GetString(ContextEndpoint), models.OutcomeError)
			c.JSON(http.StatusInternalServerError, gin.H{
				"success": false,
				"error":   "Internal server error",
			})
			c.Abort()
			return
		}

		c.Header("X-RateLimit-Limit", fmt.Sprintf("%d", limiter.Limit()))

		remaining, err := limiter.Remaining(ctx, key)
		if err != nil {
			logger.Warn("rate limit remaining lookup failed", zap.String("scope", scope), zap.Error(err))
		} else {
			c.Header("X-RateLimit-Remaining", fmt.Sprintf("%d", remaining))
		}

		resetTime, resetErr := limiter.Reset(ctx, key)
		if resetErr != nil {
			logger.Warn("rate limit reset lookup failed", zap.String("scope", scope), zap.Error(resetErr))
		} else {
			c.Header("X-RateLimit-Reset", fmt.Sprintf("%d", resetTime.Unix()))
		}

		if !allowed {
			if resetErr == nil {
				retryAfter := int(time.Until(resetTime).Seconds())
				if retryAfter < 0 {
					retryAfter = 0
				}
				c.Header("Retry-After", fmt.Sprintf("%d", retryAfter))
			}

			logger.Warn("webhook rate limited", zap.String("scope", scope), zap.String("source", source))
			SetOutcome(c, models.OutcomeRateLimited)
			metrics.ObserveRateLimited(scope)

			c.JSON(http.StatusTooManyRequests, gin.H{
				"success": false,
				"error":   "Too many requests",
			})
			c.Abort()
			return
		}

		c.Next()
	}
}
