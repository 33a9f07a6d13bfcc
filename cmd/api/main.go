package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"dq-index/internal/adapter"
	"dq-index/internal/cache"
	"dq-index/internal/config"
	"dq-index/internal/database"
	"dq-index/internal/domain"
	"dq-index/internal/handler"
	"dq-index/internal/logger"
	"dq-index/internal/middleware"
	"dq-index/internal/repository"
	"dq-index/internal/service"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.uber.org/zap"
)

const (
	rateLimiterTTL     = 10 * time.Minute
	rateLimiterCleanup = time.Minute
	shutdownTimeout    = 10 * time.Second
)

func main() {
	// Load configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// Initialize logger
	if err := logger.Initialize(cfg.Logger); err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	appLogger := logger.Get()
	defer logger.Sync()

	// Connect to database and make sure the schema exists
	db, err := database.NewSQLXSQLiteDB(cfg.DB.Path)
	if err != nil {
		appLogger.Fatal("Failed to connect to database", zap.Error(err), zap.String("path", cfg.DB.Path))
	}
	defer db.Close()

	if err := database.RunMigrations(cfg.DB.Path); err != nil {
		appLogger.Fatal("Failed to apply schema", zap.Error(err))
	}
	appLogger.Info("Database ready", zap.String("path", cfg.DB.Path))

	// Initialize repositories
	submissionRepository := repository.NewSQLXSubmissionRepository(db)
	txManager := repository.NewTransactionManagerAdapter(db)

	// Optional Redis cache
	var cacheAdapter domain.Cache
	if cfg.CacheEnabled() {
		redisClient, err := cache.NewRedisClient(cfg.Redis)
		if err != nil {
			appLogger.Fatal("Failed to connect to Redis", zap.Error(err))
		}
		defer redisClient.Close()
		cacheAdapter = adapter.NewRedisCacheAdapter(redisClient)
		appLogger.Info("Redis cache enabled", zap.String("address", cfg.Redis.Address), zap.Duration("ttl", cfg.Redis.TTL))
	} else {
		appLogger.Info("Redis cache disabled")
	}

	// Initialize services
	submissionService := service.NewSubmissionService(submissionRepository, txManager, cacheAdapter, cfg.Redis.TTL)
	exportService := service.NewExportService(submissionRepository)

	// Metrics
	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	metrics := middleware.NewMetrics(registry)

	// Rate limiter for submissions
	submitLimiter := middleware.NewIPRateLimiter(cfg.RateLimit.SubmissionsPerMinute, cfg.RateLimit.Burst, rateLimiterTTL)
	stopCleanup := make(chan struct{})
	go submitLimiter.RunCleanup(rateLimiterCleanup, stopCleanup)
	defer close(stopCleanup)

	// Create Fiber app
	app := fiber.New(fiber.Config{
		AppName:      "Data Quality Index API",
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.ReadTimeout,
		BodyLimit:    10 * 1024 * 1024,
		ErrorHandler: middleware.ErrorHandler(),
	})

	app.Use(recover.New())
	app.Use(middleware.RequestLogger())
	app.Use(metrics.Middleware())
	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowMethods: "GET,POST,OPTIONS",
		AllowHeaders: "Origin,Content-Type,Accept," + middleware.RequestIDHeader,
		MaxAge:       300,
	}))

	handler.RegisterRoutes(app, handler.Routes{
		Submissions:   handler.NewSubmissionHandler(submissionService),
		Exports:       handler.NewExportHandler(exportService),
		Health:        handler.NewHealthHandler(submissionRepository, cacheAdapter),
		SubmitLimiter: submitLimiter,
		Metrics:       metrics,
	})

	// Start server
	go func() {
		appLogger.Info("Starting server", zap.Int("port", cfg.Server.Port), zap.String("env", cfg.Logger.Env))
		if err := app.Listen(":" + strconv.Itoa(cfg.Server.Port)); err != nil {
			appLogger.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	appLogger.Info("Shutting down server...")
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := app.ShutdownWithContext(ctx); err != nil {
		appLogger.Error("Server forced to shutdown", zap.Error(err))
		return
	}
	appLogger.Info("Server exited gracefully")
}
