package middleware

import (
	"crypto/subtle"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/aman-churiwal/inquiry-webhook/internal/metrics"
	"github.com/aman-churiwal/inquiry-webhook/internal/models"
)

// SecretPolicy decides what happens when no webhook secret is configured.
type SecretPolicy int

const (
	// AllowWhenUnset lets every request through while no secret is set. The
	// inquiry webhook runs this way during the sender's migration period.
	AllowWhenUnset SecretPolicy = iota

	// DenyWhenUnset rejects every request while no secret is set.
	DenyWhenUnset
)

func (p SecretPolicy) String() string {
	switch p {
	case AllowWhenUnset:
		return "allow-when-unset"
	case DenyWhenUnset:
		return "deny-when-unset"
	default:
		return "unknown"
	}
}

// VerifySecret reports whether the Authorization header carries the
// configured secret. The header must equal "Bearer " + secret exactly.
func VerifySecret(secret, authHeader string, policy SecretPolicy) bool {
	if secret == "" {
		return policy == AllowWhenUnset
	}
	expected := "Bearer " + secret
	return subtle.ConstantTimeCompare([]byte(authHeader), []byte(expected)) == 1
}

// WebhookSecret rejects requests that fail VerifySecret with 401. The body is
// never read.
func WebhookSecret(secret string, policy SecretPolicy, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		if VerifySecret(secret, c.GetHeader("Authorization"), policy) {
			c.Next()
			return
		}

		endpoint := c.GetString(ContextEndpoint)
		logger.Warn("webhook unauthorized",
			zap.String("endpoint", endpoint),
			zap.String("source", SourceAddress(c)),
			zap.String("request_id", c.GetString(ContextRequestID)),
		)
		SetOutcome(c, models.OutcomeUnauthorized)
		metrics.ObserveSubmission(endpoint, models.OutcomeUnauthorized)

		c.JSON(http.StatusUnauthorized, gin.H{
			"success": false,
			"error":   "Unauthorized",
		})
		c.Abort()
	}
}
