package handler

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/aman-churiwal/inquiry-webhook/internal/service"
)

const (
	defaultPageSize = 100
	maxPageSize     = 500
)

type AdminHandler struct {
	auth   *service.AuthService
	admin  *service.AdminService
	logger *zap.Logger
}

func NewAdminHandler(auth *service.AuthService, admin *service.AdminService, logger *zap.Logger) *AdminHandler {
	return &AdminHandler{auth: auth, admin: admin, logger: logger}
}

type loginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// Handles POST /admin/login
func (h *AdminHandler) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Email and password are required"})
		return
	}

	token, err := h.auth.Login(c.Request.Context(), req.Email, req.Password)
	if errors.Is(err, service.ErrInvalidCredentials) {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid credentials"})
		return
	}
	if err != nil {
		h.logger.Error("admin login failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"token": token})
}

// Handles GET /admin/inquiries
func (h *AdminHandler) ListInquiries(c *gin.Context) {
	from, to, err := parseTimeRange(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	limit, offset := parsePagination(c)

	page, err := h.admin.ListInquiries(c.Request.Context(), from, to, limit, offset)
	if err != nil {
		h.logger.Error("list inquiries failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}

	c.JSON(http.StatusOK, page)
}

// Handles GET /admin/recruit-inquiries
func (h *AdminHandler) ListRecruitInquiries(c *gin.Context) {
	from, to, err := parseTimeRange(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	limit, offset := parsePagination(c)

	page, err := h.admin.ListRecruitInquiries(c.Request.Context(), from, to, limit, offset)
	if err != nil {
		h.logger.Error("list recruit inquiries failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}

	c.JSON(http.StatusOK, page)
}

// Handles GET /admin/deliveries/stats
func (h *AdminHandler) DeliveryStats(c *gin.Context) {
	from, to, err := parseTimeRange(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	stats, err := h.admin.DeliveryStats(c.Request.Context(), from, to)
	if err != nil {
		h.logger.Error("delivery stats failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}

	c.JSON(http.StatusOK, stats)
}

func parsePagination(c *gin.Context) (int, int) {
	limit := defaultPageSize
	if limitStr := c.Query("limit"); limitStr != "" {
		if l, err := strconv.Atoi(limitStr); err == nil && l > 0 && l <= maxPageSize {
			limit = l
		}
	}

	offset := 0
	if offsetStr := c.Query("offset"); offsetStr != "" {
		if o, err := strconv.Atoi(offsetStr); err == nil && o >= 0 {
			offset = o
		}
	}

	return limit, offset
}

// Parses 'from' and 'to' query parameters
func parseTimeRange(c *gin.Context) (time.Time, time.Time, error) {
	// Default: last 24 hours
	to := time.Now()
	from := to.Add(-24 * time.Hour)

	if fromStr := c.Query("from"); fromStr != "" {
		parsedFrom, err := parseTime(fromStr)
		if err != nil {
			return time.Time{}, time.Time{}, err
		}
		from = parsedFrom
	}

	if toStr := c.Query("to"); toStr != "" {
		parsedTo, err := parseTime(toStr)
		if err != nil {
			return time.Time{}, time.Time{}, err
		}
		to = parsedTo
	}

	if from.After(to) {
		return time.Time{}, time.Time{}, errors.New("from must not be after to")
	}

	return from, to, nil
}

// Accepts RFC3339 or a Unix timestamp
func parseTime(s string) (time.Time, error) {
	t, err := time.Parse(time.RFC3339, s)
	if err == nil {
		return t, nil
	}
	if timestamp, convErr := strconv.ParseInt(s, 10, 64); convErr == nil {
		return time.Unix(timestamp, 0), nil
	}
	return time.Time{}, err
}
