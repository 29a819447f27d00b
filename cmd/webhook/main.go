package main

import (
	"context"
	"errors"
	"flag"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/aman-churiwal/inquiry-webhook/internal/config"
	"github.com/aman-churiwal/inquiry-webhook/internal/healthcheck"
	"github.com/aman-churiwal/inquiry-webhook/internal/logging"
	"github.com/aman-churiwal/inquiry-webhook/internal/middleware"
	"github.com/aman-churiwal/inquiry-webhook/internal/ratelimit"
	"github.com/aman-churiwal/inquiry-webhook/internal/repository"
	"github.com/aman-churiwal/inquiry-webhook/internal/server"
	"github.com/aman-churiwal/inquiry-webhook/internal/service"
	"github.com/aman-churiwal/inquiry-webhook/internal/storage"
)

func main() {
	configPath := flag.String("config", "", "optional config file (yaml, json or toml)")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	logger, err := logging.New(cfg.Logging.Development)
	if err != nil {
		log.Fatalf("Failed to build logger: %v", err)
	}
	defer func() { _ = logger.Sync() }()

	if err := run(cfg, logger); err != nil {
		logger.Fatal("webhook exited", zap.Error(err))
	}
}

func run(cfg *config.Config, logger *zap.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	postgres, err := storage.NewPostgres(cfg.Database.DSN, cfg.Database.Schema)
	if err != nil {
		return err
	}
	defer postgres.Close()

	if err := postgres.AutoMigrate(); err != nil {
		return err
	}
	logger.Info("connected to postgres", zap.String("schema", cfg.Database.Schema))

	targets := map[string]healthcheck.Pinger{"database": postgres}

	var counters ratelimit.CounterStore
	if cfg.Redis.Addr != "" {
		redis, err := storage.NewRedis(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
		if err != nil {
			return err
		}
		defer redis.Close()

		targets["redis"] = redis
		counters = redis
		logger.Info("connected to redis", zap.String("addr", cfg.Redis.Addr))
	}

	limiter := ratelimit.NewLimiter(cfg.RateLimit.Backend, counters, cfg.RateLimit.Limit, cfg.RateLimit.Window)
	if mem, ok := limiter.(*ratelimit.MemoryFixedWindow); ok {
		mem.StartSweeper(ctx, cfg.RateLimit.SweepInterval)
	}
	logger.Info("rate limiter ready",
		zap.String("backend", cfg.RateLimit.Backend),
		zap.Int("limit", cfg.RateLimit.Limit),
		zap.Duration("window", cfg.RateLimit.Window),
	)

	if cfg.Webhook.Secret == "" {
		logger.Warn("WEBHOOK_SECRET is not set: the inquiry webhook accepts unauthenticated requests and the recruit webhook rejects all requests")
	}

	inquiryRepo := repository.NewInquiryRepository(postgres)
	recruitRepo := repository.NewRecruitRepository(postgres)
	deliveryRepo := repository.NewDeliveryLogRepository(postgres)

	opts := service.Options{
		Window:   cfg.Webhook.DedupeWindow,
		Location: cfg.Location(),
	}

	deliveries := middleware.NewDeliveryLogger(deliveryRepo, cfg.DeliveryLog.BufferSize, logger)
	deliveryCtx, stopDeliveries := context.WithCancel(context.Background())
	go deliveries.Start(deliveryCtx)

	adminService := service.NewAdminService(inquiryRepo, recruitRepo, deliveryRepo)
	go runRetention(ctx, adminService, cfg.DeliveryLog.RetentionDays, logger)

	checker := healthcheck.NewChecker(targets, healthcheck.Config{}, logger)
	go checker.Start(ctx)

	deps := server.Deps{
		Inquiries:  service.NewInquiryService(inquiryRepo, opts),
		Recruits:   service.NewRecruitService(recruitRepo, opts),
		Limiter:    limiter,
		Deliveries: deliveries,
		Health:     checker,
	}

	if cfg.AdminEnabled() {
		authService := service.NewAuthService(repository.NewUserRepository(postgres), cfg.Auth.JWTSecret, cfg.Auth.JWTExpiryHours)
		if cfg.Auth.BootstrapEmail != "" {
			created, err := authService.EnsureAdmin(ctx, cfg.Auth.BootstrapEmail, cfg.Auth.BootstrapPassword)
			if err != nil {
				return err
			}
			if created {
				logger.Info("bootstrap admin created", zap.String("email", cfg.Auth.BootstrapEmail))
			}
		}
		deps.Auth = authService
		deps.Admin = adminService
	} else {
		logger.Info("admin API disabled: auth.jwt_secret is not set")
	}

	srv := server.New(cfg, logger, deps)

	errCh := make(chan error, 1)
	go func() {
		if err := srv.Run(":" + cfg.Server.Port); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case <-ctx.Done():
	case err := <-errCh:
		stopDeliveries()
		deliveries.Wait()
		return err
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server forced to shutdown", zap.Error(err))
	}

	// Flush deliveries recorded by in-flight requests.
	stopDeliveries()
	deliveries.Wait()

	logger.Info("server exited")
	return nil
}

// runRetention deletes delivery logs past the retention period once a day.
func runRetention(ctx context.Context, admin *service.AdminService, retentionDays int, logger *zap.Logger) {
	if retentionDays <= 0 {
		return
	}

	cleanup := func() {
		deleted, err := admin.CleanupOldLogs(ctx, retentionDays)
		if err != nil {
			logger.Error("delivery log cleanup failed", zap.Error(err))
			return
		}
		if deleted > 0 {
			logger.Info("delivery log cleanup", zap.Int64("deleted", deleted))
		}
	}

	cleanup()

	ticker := time.NewTicker(24 * time.Hour)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			cleanup()
		}
	}
}
