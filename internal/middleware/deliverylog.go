package middleware

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/aman-churiwal/inquiry-webhook/internal/models"
)

const (
	deliveryBatchSize     = 100
	deliveryFlushInterval = 5 * time.Second
)

// DeliveryWriter persists delivery log batches.
type DeliveryWriter interface {
	CreateBatch(ctx context.Context, logs []models.DeliveryLog) error
}

// DeliveryLogger records every webhook delivery asynchronously. Entries are
// queued on a buffered channel and written in batches; when the queue is full
// the entry is dropped rather than blocking the request.
type DeliveryLogger struct {
	writer  DeliveryWriter
	logger  *zap.Logger
	entries chan models.DeliveryLog
	done    chan struct{}
}

func NewDeliveryLogger(writer DeliveryWriter, bufferSize int, logger *zap.Logger) *DeliveryLogger {
	return &DeliveryLogger{
		writer:  writer,
		logger:  logger,
		entries: make(chan models.DeliveryLog, bufferSize),
		done:    make(chan struct{}),
	}
}

// Start runs the batch writer until ctx is cancelled. Whatever is queued at
// that point is flushed before Start returns.
func (d *DeliveryLogger) Start(ctx context.Context) {
	defer close(d.done)

	batch := make([]models.DeliveryLog, 0, deliveryBatchSize)
	ticker := time.NewTicker(deliveryFlushInterval)
	defer ticker.Stop()

	flush := func() {
		if len(batch) == 0 {
			return
		}
		// The request context is gone by now; writes get their own deadline.
		writeCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := d.writer.CreateBatch(writeCtx, batch); err != nil {
			d.logger.Error("failed to insert delivery logs", zap.Int("count", len(batch)), zap.Error(err))
		}
		batch = make([]models.DeliveryLog, 0, deliveryBatchSize)
	}

	for {
		select {
		case entry := <-d.entries:
			batch = append(batch, entry)
			if len(batch) >= deliveryBatchSize {
				flush()
			}
		case <-ticker.C:
			flush()
		case <-ctx.Done():
			for {
				select {
				case entry := <-d.entries:
					batch = append(batch, entry)
					if len(batch) >= deliveryBatchSize {
						flush()
					}
				default:
					flush()
					return
				}
			}
		}
	}
}

// Wait blocks until Start has flushed and returned.
func (d *DeliveryLogger) Wait() {
	<-d.done
}

// Enqueue queues entry without blocking. It reports whether the entry was
// accepted.
func (d *DeliveryLogger) Enqueue(entry models.DeliveryLog) bool {
	select {
	case d.entries <- entry:
		return true
	default:
		d.logger.Warn("delivery log queue full, dropping entry",
			zap.String("endpoint", entry.Endpoint),
			zap.String("outcome", entry.Outcome),
		)
		return false
	}
}

// Middleware records the delivery once the rest of the chain has run. It must
// sit in front of the secret and rate limit checks so rejected deliveries are
// recorded too.
func (d *DeliveryLogger) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		c.Next()

		outcome := c.GetString(ContextOutcome)
		if outcome == "" {
			outcome = outcomeFromStatus(c.Writer.Status())
		}

		d.Enqueue(models.DeliveryLog{
			Timestamp:      start,
			Endpoint:       c.GetString(ContextEndpoint),
			Outcome:        outcome,
			StatusCode:     c.Writer.Status(),
			ResponseTimeMs: int(time.Since(start).Milliseconds()),
			SourceAddress:  SourceAddress(c),
			UserAgent:      c.Request.UserAgent(),
		})
	}
}

func outcomeFromStatus(status int) string {
	switch {
	case status == http.StatusUnauthorized:
		return models.OutcomeUnauthorized
	case status == http.StatusTooManyRequests:
		return models.OutcomeRateLimited
	case status >= 500:
		return models.OutcomeError
	case status >= 400:
		return models.OutcomeInvalid
	default:
		return models.OutcomeInserted
	}
}
