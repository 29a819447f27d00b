package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"
)

const unknownSource = "unknown"

// SourceAddress resolves the address a webhook request is attributed to: the
// first X-Forwarded-For entry, then CF-Connecting-IP, then "unknown". Requests
// that cannot be attributed share the "unknown" bucket.
func SourceAddress(c *gin.Context) string {
	if v, ok := c.Get(ContextSource); ok {
		if s, ok := v.(string); ok {
			return s
		}
	}

	addr := resolveSource(c.GetHeader("X-Forwarded-For"), c.GetHeader("CF-Connecting-IP"))
	c.Set(ContextSource, addr)
	return addr
}

func resolveSource(forwardedFor, connectingIP string) string {
	if forwardedFor != "" {
		first, _, _ := strings.Cut(forwardedFor, ",")
		if first = strings.TrimSpace(first); first != "" {
			return first
		}
	}
	if ip := strings.TrimSpace(connectingIP); ip != "" {
		return ip
	}
	return unknownSource
}
