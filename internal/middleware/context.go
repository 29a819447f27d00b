package middleware

import "github.com/gin-gonic/gin"

// Context keys shared by the webhook middleware chain and handlers.
const (
	ContextRequestID = "request_id"
	ContextEndpoint  = "webhook_endpoint"
	ContextOutcome   = "webhook_outcome"
	ContextSource    = "source_address"
)

// Endpoint tags every request of a route group with the webhook it targets.
func Endpoint(name string) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set(ContextEndpoint, name)
		c.Next()
	}
}

// SetOutcome records how a webhook request ended for the delivery log and
// metrics.
func SetOutcome(c *gin.Context, outcome string) {
	c.Set(ContextOutcome, outcome)
}
