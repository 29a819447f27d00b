package server

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/aman-churiwal/inquiry-webhook/internal/config"
	"github.com/aman-churiwal/inquiry-webhook/internal/handler"
	"github.com/aman-churiwal/inquiry-webhook/internal/healthcheck"
	"github.com/aman-churiwal/inquiry-webhook/internal/metrics"
	"github.com/aman-churiwal/inquiry-webhook/internal/middleware"
	"github.com/aman-churiwal/inquiry-webhook/internal/ratelimit"
	"github.com/aman-churiwal/inquiry-webhook/internal/service"
)

const (
	EndpointInquiry = "inquiry"
	EndpointRecruit = "recruit"
)

// Deps are the collaborators the server routes to. Auth and Admin may be nil,
// in which case the /admin routes are not registered.
type Deps struct {
	Inquiries  *service.InquiryService
	Recruits   *service.RecruitService
	Auth       *service.AuthService
	Admin      *service.AdminService
	Limiter    ratelimit.Limiter
	Deliveries *middleware.DeliveryLogger
	Health     *healthcheck.Checker
}

type Server struct {
	router         *gin.Engine
	config         *config.Config
	logger         *zap.Logger
	deps           Deps
	webhookHandler *handler.WebhookHandler
	httpServer     *http.Server
}

func New(cfg *config.Config, logger *zap.Logger, deps Deps) *Server {
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()

	s := &Server{
		router:         router,
		config:         cfg,
		logger:         logger,
		deps:           deps,
		webhookHandler: handler.NewWebhookHandler(deps.Inquiries, deps.Recruits, logger),
	}

	// Setup middleware
	s.setupMiddleware()

	// Setup routes
	s.setupRoutes()

	return s
}

func (s *Server) setupMiddleware() {
	s.router.Use(middleware.Recovery(s.logger))
	s.router.Use(middleware.RequestID())
	s.router.Use(middleware.Logger(s.logger))
	s.router.Use(metrics.Middleware())
	s.router.Use(middleware.CORS(s.config.AllowedOrigins()))
}

func (s *Server) setupRoutes() {
	s.router.GET("/health", s.healthCheck)
	s.router.GET("/metrics", gin.WrapH(metrics.Handler()))

	// The inquiry sender is still migrating to the shared secret; the recruit
	// webhook has always required it.
	s.setupWebhook("/webhook-inquiry", EndpointInquiry, middleware.AllowWhenUnset, s.webhookHandler.SubmitInquiry)
	s.setupWebhook("/webhook-recruit", EndpointRecruit, middleware.DenyWhenUnset, s.webhookHandler.SubmitRecruit)

	if s.deps.Auth != nil && s.deps.Admin != nil {
		s.setupAdminRoutes()
	}
}

func (s *Server) setupWebhook(path, endpoint string, policy middleware.SecretPolicy, submit gin.HandlerFunc) {
	group := s.router.Group(path, middleware.Endpoint(endpoint))

	var chain []gin.HandlerFunc
	if s.deps.Deliveries != nil {
		chain = append(chain, s.deps.Deliveries.Middleware())
	}
	chain = append(chain,
		middleware.WebhookSecret(s.config.Webhook.Secret, policy, s.logger),
		middleware.RateLimit(s.deps.Limiter, endpoint, s.logger),
		submit,
	)

	// Both spellings are served directly; a redirect would drop the POST body
	// for some senders.
	group.POST("", chain...)
	group.POST("/", chain...)

	// Preflight is answered by the CORS middleware.
	preflight := func(c *gin.Context) { c.Status(http.StatusNoContent) }
	group.OPTIONS("", preflight)
	group.OPTIONS("/", preflight)

	group.GET("/health", s.webhookHandler.Health)
}

func (s *Server) setupAdminRoutes() {
	adminHandler := handler.NewAdminHandler(s.deps.Auth, s.deps.Admin, s.logger)

	admin := s.router.Group("/admin")
	{
		admin.POST("/login", adminHandler.Login)

		protected := admin.Group("", middleware.RequireAuth(s.deps.Auth))
		protected.GET("/inquiries", adminHandler.ListInquiries)
		protected.GET("/recruit-inquiries", adminHandler.ListRecruitInquiries)
		protected.GET("/deliveries/stats", adminHandler.DeliveryStats)
	}
}

func (s *Server) healthCheck(c *gin.Context) {
	overall := healthcheck.Healthy
	checks := []healthcheck.Status{}
	if s.deps.Health != nil {
		overall = s.deps.Health.OverallHealth()
		checks = s.deps.Health.Statuses()
	}

	statusCode := http.StatusOK
	if overall != healthcheck.Healthy {
		statusCode = http.StatusServiceUnavailable
	}

	c.JSON(statusCode, gin.H{
		"status":    overall.String(),
		"service":   "inquiry-webhook",
		"timestamp": time.Now().Unix(),
		"uptime":    time.Since(startTime).Seconds(),
		"checks":    checks,
	})
}

func (s *Server) Run(addr string) error {
	s.httpServer = &http.Server{
		Addr:         addr,
		Handler:      s.router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  15 * time.Second,
	}

	s.logger.Info("starting inquiry webhook",
		zap.String("addr", addr),
		zap.String("environment", s.config.Server.Environment),
	)

	return s.httpServer.ListenAndServe()
}

func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("shutting down server")

	if s.httpServer != nil {
		return s.httpServer.Shutdown(ctx)
	}

	return nil
}

func (s *Server) GetRouter() *gin.Engine {
	return s.router
}

var startTime = time.Now()
