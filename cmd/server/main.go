package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/slotbook/service-booking/internal/adapter"
	"github.com/slotbook/service-booking/internal/application"
	"github.com/slotbook/service-booking/internal/config"
	"github.com/slotbook/service-booking/internal/domain/booking"
	"github.com/slotbook/service-booking/internal/domain/catalog"
	"github.com/slotbook/service-booking/internal/domain/schedule"
	"github.com/slotbook/service-booking/internal/events"
	"github.com/slotbook/service-booking/internal/handler"
	"github.com/slotbook/service-booking/internal/repository"
	"github.com/slotbook/service-booking/pkg/kafka"
	"github.com/slotbook/service-booking/pkg/logger"
	"github.com/slotbook/service-booking/pkg/metrics"
	"github.com/slotbook/service-booking/pkg/middleware"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load configuration: %v", err)
	}

	// Initialize logger
	zapLogger, err := logger.NewNamed(cfg.AppEnv, "service-booking")
	if err != nil {
		log.Fatalf("failed to initialize logger: %v", err)
	}
	defer zapLogger.Sync()

	zapLogger.Info("starting service-booking",
		zap.String("port", cfg.Port),
		zap.String("env", cfg.AppEnv),
	)

	// Initialize booking store. Redis is the production store; without an
	// address the service falls back to an in-memory store for local runs.
	var repo booking.Repository
	if cfg.RedisConfig.Addr != "" {
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.RedisConfig.Addr,
			Password: cfg.RedisConfig.Password,
			DB:       cfg.RedisConfig.DB,
		})
		pingCtx, pingCancel := context.WithTimeout(context.Background(), 5*time.Second)
		if err := client.Ping(pingCtx).Err(); err != nil {
			pingCancel()
			zapLogger.Fatal("failed to connect to redis", zap.Error(err))
		}
		pingCancel()
		defer client.Close()

		repo = repository.NewRedisBookingRepository(client)
		zapLogger.Info("using redis booking store", zap.String("addr", cfg.RedisConfig.Addr))
	} else {
		repo = repository.NewMemoryBookingRepository()
		zapLogger.Warn("REDIS_ADDR not set, using in-memory booking store")
	}

	// Initialize Stripe adapter (mock unless a secret key is configured)
	var stripeAdapter adapter.StripeAdapter
	if cfg.StripeConfig.SecretKey != "" {
		stripeAdapter = adapter.NewHTTPStripeAdapter(cfg.StripeConfig.SecretKey, cfg.StripeConfig.WebhookSecret, zapLogger)
		zapLogger.Info("using live payment gateway")
	} else {
		stripeAdapter = adapter.NewMockStripeAdapter(zapLogger)
		zapLogger.Warn("STRIPE_SECRET_KEY not set, using mock payment gateway")
	}

	// Initialize event publisher (optional)
	var publisher *events.Publisher
	if cfg.KafkaConfig.Enabled && len(cfg.KafkaConfig.Brokers) > 0 {
		producer := kafka.NewProducer(cfg.KafkaConfig.Brokers, zapLogger)
		defer producer.Close()
		publisher = events.NewPublisher(producer, zapLogger)
		zapLogger.Info("event publishing enabled", zap.Strings("brokers", cfg.KafkaConfig.Brokers))
	} else {
		publisher = events.NewPublisher(nil, zapLogger)
	}

	// Initialize metrics
	m := metrics.NewMetrics("booking")

	// Initialize domain services
	cat := catalog.Default()
	hours := schedule.BusinessHours{
		Start:               cfg.Schedule.StartHour,
		End:                 cfg.Schedule.EndHour,
		SlotDurationMinutes: cfg.Schedule.SlotDurationMinutes,
		DaysOff:             cfg.Schedule.DaysOff,
	}

	bookingService := application.NewBookingService(repo, cat, stripeAdapter, hours, publisher, m, zapLogger)
	paymentService := application.NewPaymentService(stripeAdapter, zapLogger)
	connectService := application.NewConnectService(stripeAdapter, cfg.StripeConfig.ConnectAccountID, cfg.AppURL, zapLogger)

	// Initialize HTTP handlers
	serviceHandler := handler.NewServiceHandler(cat, bookingService)
	bookingHandler := handler.NewBookingHandler(bookingService)
	paymentHandler := handler.NewPaymentHandler(paymentService, bookingService, stripeAdapter, zapLogger)
	adminHandler := handler.NewAdminHandler(connectService)

	// Setup Gin router
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()

	// Apply global middleware
	router.Use(middleware.RecoveryMiddleware(zapLogger))
	router.Use(middleware.LoggerMiddleware(zapLogger))
	router.Use(middleware.CORSMiddleware(cfg.CORSOrigins))
	router.Use(middleware.RequestIDMiddleware())
	router.Use(middleware.SecurityHeadersMiddleware())

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":    "ok",
			"timestamp": time.Now().UTC().Format(time.RFC3339),
		})
	})
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// Register API routes
	api := router.Group("/api")
	serviceHandler.RegisterRoutes(api)
	bookingHandler.RegisterRoutes(api)
	paymentHandler.RegisterRoutes(api)
	adminHandler.RegisterRoutes(api)

	// Create HTTP server
	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in a goroutine
	go func() {
		zapLogger.Info("HTTP server starting", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			zapLogger.Fatal("HTTP server failed", zap.Error(err))
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	zapLogger.Info("shutting down service-booking...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		zapLogger.Error("server forced to shutdown", zap.Error(err))
	}

	zapLogger.Info("service-booking stopped")
}
