// Package metrics exposes Prometheus collectors for the webhook service.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	webhookSubmissionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "webhook_submissions_total",
			Help: "Total number of webhook submissions, labeled by endpoint and outcome.",
		},
		[]string{"endpoint", "outcome"},
	)

	webhookRateLimitedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "webhook_rate_limited_total",
			Help: "Total number of webhook requests rejected by the rate limiter.",
		},
		[]string{"endpoint"},
	)

	httpRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests, labeled by method and code.",
		},
		[]string{"method", "code"},
	)

	httpRequestDurationSeconds = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "Histogram of HTTP request latencies, labeled by method and route.",
			Buckets: []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2, 5},
		},
		[]string{"method", "route"},
	)
)

// Handler returns an http.Handler for exposing Prometheus metrics.
func Handler() http.Handler {
	return promhttp.Handler()
}

// ObserveSubmission counts a webhook request by its final outcome.
func ObserveSubmission(endpoint, outcome string) {
	if endpoint == "" {
		endpoint = "unknown"
	}
	webhookSubmissionsTotal.WithLabelValues(endpoint, outcome).Inc()
}

func ObserveRateLimited(endpoint string) {
	webhookRateLimitedTotal.WithLabelValues(endpoint).Inc()
	ObserveSubmission(endpoint, "rate_limited")
}

// ObserveHTTPRequest increments the HTTP request metrics.
func ObserveHTTPRequest(method, route string, code int, duration time.Duration) {
	httpRequestsTotal.WithLabelValues(method, strconv.Itoa(code)).Inc()
	httpRequestDurationSeconds.WithLabelValues(method, route).Observe(duration.Seconds())
}

// Middleware records request count and latency. Unmatched paths share the
// "unmatched" route label so scanners cannot blow up cardinality.
func Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		ObserveHTTPRequest(c.Request.Method, route, c.Writer.Status(), time.Since(start))
	}
}
