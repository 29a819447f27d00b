package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/aman-churiwal/inquiry-webhook/internal/logging"
	"github.com/aman-churiwal/inquiry-webhook/internal/metrics"
	"github.com/aman-churiwal/inquiry-webhook/internal/middleware"
	"github.com/aman-churiwal/inquiry-webhook/internal/models"
	"github.com/aman-churiwal/inquiry-webhook/internal/service"
	"github.com/aman-churiwal/inquiry-webhook/internal/validation"
)

// WebhookHandler serves the inquiry and recruit webhooks. Secret and rate
// limit checks run as middleware in front of it.
type WebhookHandler struct {
	inquiries *service.InquiryService
	recruits  *service.RecruitService
	logger    *zap.Logger
}

func NewWebhookHandler(inquiries *service.InquiryService, recruits *service.RecruitService, logger *zap.Logger) *WebhookHandler {
	return &WebhookHandler{
		inquiries: inquiries,
		recruits:  recruits,
		logger:    logger,
	}
}

// Handles POST /webhook-inquiry/
func (h *WebhookHandler) SubmitInquiry(c *gin.Context) {
	var payload validation.InquiryPayload
	if err := validation.Bind(c, &payload); err != nil {
		h.invalid(c, err)
		return
	}

	result, err := h.inquiries.Submit(c.Request.Context(), payload)
	if err != nil {
		fields := append([]zap.Field{zap.Error(err), zap.String("request_id", c.GetString(middleware.ContextRequestID))}, logging.InquiryFields(payload)...)
		h.logger.Error("inquiry submission failed", fields...)
		h.internalError(c)
		return
	}

	h.respond(c, result)
}

// Handles POST /webhook-recruit/
func (h *WebhookHandler) SubmitRecruit(c *gin.Context) {
	var payload validation.RecruitPayload
	if err := validation.Bind(c, &payload); err != nil {
		h.invalid(c, err)
		return
	}

	result, err := h.recruits.Submit(c.Request.Context(), payload)
	if err != nil {
		fields := append([]zap.Field{zap.Error(err), zap.String("request_id", c.GetString(middleware.ContextRequestID))}, logging.RecruitFields(payload)...)
		h.logger.Error("recruit submission failed", fields...)
		h.internalError(c)
		return
	}

	h.respond(c, result)
}

// Handles GET /webhook-*/health
func (h *WebhookHandler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (h *WebhookHandler) respond(c *gin.Context, result *service.Result) {
	h.finish(c, outcomeFor(result.Action))

	body := gin.H{
		"success": true,
		"message": result.Message,
		"id":      result.ID,
	}
	if result.Duplicate {
		body["duplicate"] = true
	}

	c.JSON(http.StatusOK, body)
}

func (h *WebhookHandler) invalid(c *gin.Context, err error) {
	h.finish(c, models.OutcomeInvalid)

	details := []validation.FieldError{}
	var verr *validation.Error
	if errors.As(err, &verr) {
		details = verr.Fields
	}

	c.JSON(http.StatusBadRequest, gin.H{
		"success": false,
		"error":   "Invalid input",
		"details": details,
	})
}

func (h *WebhookHandler) internalError(c *gin.Context) {
	h.finish(c, models.OutcomeError)

	c.JSON(http.StatusInternalServerError, gin.H{
		"success": false,
		"error":   "Internal server error",
	})
}

func (h *WebhookHandler) finish(c *gin.Context, outcome string) {
	middleware.SetOutcome(c, outcome)
	metrics.ObserveSubmission(c.GetString(middleware.ContextEndpoint), outcome)
}

func outcomeFor(action service.Action) string {
	switch action {
	case service.ActionUpdate:
		return models.OutcomeUpdated
	case service.ActionIgnore:
		return models.OutcomeIgnored
	default:
		return models.OutcomeInserted
	}
}
