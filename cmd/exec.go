package cmd

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"

	"waitlist-system/config"
	"waitlist-system/handlers"
	"waitlist-system/internal/email"
	"waitlist-system/internal/kakao"
	"waitlist-system/internal/realtime"
	"waitlist-system/internal/store"
	"waitlist-system/monitoring"
	"waitlist-system/security"
	"waitlist-system/services"
)

func Start() error {
	cfg := config.LoadConfig()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Gateways
	notifier := kakao.NewNotificationService(cfg)
	emailService := email.NewResendService(cfg)
	publisher := realtime.NewPublisher(cfg)

	// Stores
	accountStore := store.NewMongoStore(cfg)

	// Services
	queueService := services.NewQueueService(notifier, publisher)
	accountService := services.NewAccountService(accountStore, emailService)

	// Handlers
	queueHandler := handlers.NewQueueHandler(queueService)
	adminHandler := handlers.NewAdminHandler(queueService)
	authHandler := handlers.NewAuthHandler(accountService, !cfg.IsDevelopment())
	emailHandler := handlers.NewEmailHandler(emailService)

	if cfg.EnableMetrics {
		monitoring.NewMonitor(ctx, queueService)
	}

	e := echo.New()

	// Optional Redis-backed rate limiting on the write-heavy endpoints
	var redisClient *redis.Client
	if cfg.RedisURL != "" {
		redisClient = newRedisClient(cfg)
		defer redisClient.Close()
	}

	if redisClient != nil {
		limiter := security.NewRateLimiter(redisClient, cfg.RateLimitPerMin)
		e.POST("/register-queue", queueHandler.RegisterQueue, limiter.Limit("register"))
		e.POST("/auth/login", authHandler.Login, limiter.Limit("login"))
		e.POST("/auth/reset-password", authHandler.ResetPassword, limiter.Limit("reset"))
	} else {
		e.POST("/register-queue", queueHandler.RegisterQueue)
		e.POST("/auth/login", authHandler.Login)
		e.POST("/auth/reset-password", authHandler.ResetPassword)
	}

	// Queue endpoints
	e.GET("/register-queue", queueHandler.GetQueueTotals)
	e.GET("/queue-status", queueHandler.GetQueueStatus)

	// Admin endpoints
	e.GET("/admin/queue", adminHandler.ListQueue)
	e.PATCH("/admin/queue", adminHandler.TransitionQueue)

	// Account endpoints
	e.POST("/auth/signup", authHandler.Signup)
	e.POST("/auth/find-id", authHandler.FindID)

	// Email debug endpoints, development only
	if cfg.IsDevelopment() {
		e.POST("/api/email/test", emailHandler.SendTest)
		e.GET("/api/email/status", emailHandler.GetStatus)
	}

	if cfg.EnableMetrics {
		e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))
	}

	e.GET("/health", func(c echo.Context) error {
		checkCtx, checkCancel := context.WithTimeout(c.Request().Context(), 2*time.Second)
		defer checkCancel()

		if err := accountStore.Ping(checkCtx); err != nil {
			return c.JSON(http.StatusServiceUnavailable, map[string]string{
				"status": "unhealthy",
				"error":  err.Error(),
			})
		}
		if redisClient != nil {
			if err := redisClient.Ping(checkCtx).Err(); err != nil {
				return c.JSON(http.StatusServiceUnavailable, map[string]string{
					"status": "unhealthy",
					"error":  err.Error(),
				})
			}
		}
		return c.JSON(http.StatusOK, map[string]string{"status": "healthy"})
	})

	server := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: e,
	}

	go handleShutdown(server, cancel)

	slog.Info("server starting", "port", cfg.Port, "environment", cfg.Environment)
	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}

	return nil
}

func newRedisClient(cfg *config.Config) *redis.Client {
	opts, err := redis.ParseURL(cfg.RedisURL)
	if err != nil {
		opts = &redis.Options{
			Addr:     cfg.RedisURL,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		}
	}

	client := redis.NewClient(opts)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		slog.Error("redis unreachable, rate limiting will fail open", "error", err)
	} else {
		slog.Info("connected to redis", "addr", opts.Addr)
	}

	return client
}

func handleShutdown(server *http.Server, cancel context.CancelFunc) {
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	<-sigChan
	slog.Info("shutdown signal received, draining connections")
	cancel()

	ctx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(ctx); err != nil {
		slog.Error("server shutdown failed", "error", err)
	}
}
