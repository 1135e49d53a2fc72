package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"strings"
	"syscall"
	"time"

	aws_pkg "github.com/QJQnova/Eps-sub001/internal/aws"
	"github.com/QJQnova/Eps-sub001/internal/config"
	"github.com/QJQnova/Eps-sub001/internal/controllers"
	"github.com/QJQnova/Eps-sub001/internal/database"
	apperrors "github.com/QJQnova/Eps-sub001/internal/errors"
	"github.com/QJQnova/Eps-sub001/internal/importer"
	"github.com/QJQnova/Eps-sub001/internal/logger"
	"github.com/QJQnova/Eps-sub001/internal/middleware"
	"github.com/QJQnova/Eps-sub001/internal/repository"
	"github.com/QJQnova/Eps-sub001/internal/routes"
	"github.com/QJQnova/Eps-sub001/internal/services"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

const (
	requestTimeout  = 30 * time.Second
	shutdownTimeout = 5 * time.Second
	bulkImportPath  = "/api/products/bulk-import"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg := config.Load()
	cfg.ApplySecrets(ctx)

	log, err := logger.Initialize(cfg.Env, cfg.LogWriter(ctx, "server"))
	if err != nil {
		panic("failed to initialize logger: " + err.Error())
	}
	defer log.Sync()

	if err := cfg.RequireServer(); err != nil {
		log.Fatal("Invalid configuration", zap.Error(err))
	}

	// --- 1. Storage ---

	db, err := database.Connect(cfg.DatabaseURL, log)
	if err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer database.Close(db)

	if err := database.Migrate(db); err != nil {
		log.Fatal("Failed to migrate database", zap.Error(err))
	}

	// Redis backs the product cache and async imports; both are optional.
	var rdb *redis.Client
	if cfg.RedisURL != "" {
		rdb, err = database.NewRedisClient(ctx, cfg.RedisURL, log)
		if err != nil {
			log.Warn("Redis unavailable, running without cache and async import", zap.Error(err))
			rdb = nil
		}
	}

	// --- 2. AWS collaborators ---

	var (
		images  controllers.ImagePresigner
		events  aws_pkg.SNSPublisher
		metrics aws_pkg.MetricsRecorder
	)
	if cfg.S3Bucket != "" || cfg.OrderEventsTopicARN != "" || cfg.ImportEventsTopic != "" || cfg.CloudWatchEnabled {
		awsCfg, err := aws_pkg.LoadAWSConfig(ctx, cfg.AWS)
		if err != nil {
			log.Warn("AWS config unavailable, image uploads, events and metrics disabled", zap.Error(err))
		} else {
			if cfg.S3Bucket != "" {
				images = aws_pkg.NewImageStore(awsCfg, cfg.S3Bucket, cfg.S3Prefix, cfg.S3PublicURL)
			}
			if cfg.OrderEventsTopicARN != "" || cfg.ImportEventsTopic != "" {
				events = aws_pkg.NewSNSClient(awsCfg)
			}
			if cfg.CloudWatchEnabled {
				metrics = aws_pkg.NewMetricsClient(awsCfg, cfg.CloudWatchNamespace)
			}
		}
	}

	// --- 3. Dependency injection ---

	categoryRepo := repository.NewGormCategoryRepository(db)
	productRepo := repository.NewGormProductRepository(db)
	cartRepo := repository.NewGormCartRepository(db)
	orderRepo := repository.NewGormOrderRepository(db)
	userRepo := repository.NewGormUserRepository(db)

	cache := controllers.NewCacheManager(rdb, cfg.CacheTTL)
	tokens := services.NewTokenService(cfg.JWTSecret)

	categoryService := services.NewCategoryService(categoryRepo, productRepo)
	productService := services.NewProductService(productRepo, categoryRepo)
	cartService := services.NewCartService(cartRepo, productRepo)
	orderService := services.NewOrderService(orderRepo, cartRepo, events, cfg.OrderEventsTopicARN, metrics)
	authService := services.NewAuthService(userRepo, tokens, cfg.AdminUsername)
	importService := services.NewImportService(importer.NewGormStore(db), log, services.ImportServiceOptions{
		BatchSize:   cfg.ImportBatchSize,
		Cache:       cache,
		Metrics:     metrics,
		Events:      events,
		EventsTopic: cfg.ImportEventsTopic,
	})

	var jobs controllers.JobQueueAPI
	var queue *services.JobQueue
	if rdb != nil {
		queue = services.NewJobQueue(rdb, cfg.BulkStorageDir)
		jobs = queue
	}
	workerDone := services.StartBulkImportWorker(ctx, queue, importService)

	validator := controllers.NewRequestValidator()
	handlers := routes.Handlers{
		Categories: controllers.NewCategoryController(categoryService),
		Products:   controllers.NewProductController(productService, cache, validator),
		BulkImport: controllers.NewBulkImportHandler(importService, jobs, validator),
		Presign:    controllers.NewPresignedURLHandler(images, validator),
		Cart:       controllers.NewCartController(cartService),
		Orders:     controllers.NewOrderController(orderService, validator),
		Auth:       controllers.NewAuthController(authService, cfg.Env == "production"),
	}

	// --- 4. HTTP server & middleware ---

	if cfg.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(logger.RequestID())
	r.Use(logger.RequestLogger(log))
	r.Use(middleware.SecurityHeaders())
	r.Use(middleware.CORS(cfg.CORSAllowedOrigins))
	r.Use(middleware.NewRateLimiter(ctx, rate.Limit(cfg.RateLimitRPS), cfg.RateLimitBurst, 10*time.Minute).Middleware())
	r.Use(middleware.Timeout(requestTimeout, bulkImportPath))
	r.Use(middleware.Metrics(metrics, "storefront"))
	r.Use(apperrors.ErrorMiddleware())

	routes.Register(r, handlers, tokens)

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.Info("Storefront starting",
			zap.String("port", cfg.Port),
			zap.String("env", cfg.Env),
			zap.Bool("redis", rdb != nil),
			zap.Bool("images", images != nil),
			zap.String("cors", strings.Join(cfg.CORSAllowedOrigins, ",")),
		)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	// --- 5. Graceful shutdown ---

	<-ctx.Done()
	log.Info("Shutting down storefront...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("Server forced to shutdown", zap.Error(err))
	}

	select {
	case <-workerDone:
	case <-shutdownCtx.Done():
		log.Warn("Bulk import worker did not stop in time")
	}

	if rdb != nil {
		if err := rdb.Close(); err != nil {
			log.Error("Failed to close Redis", zap.Error(err))
		}
	}
	log.Info("Storefront stopped gracefully")
}
