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
	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"

	"github.com/Bishal-code0731/ecom/config"
	"github.com/Bishal-code0731/ecom/controllers"
	"github.com/Bishal-code0731/ecom/database"
	"github.com/Bishal-code0731/ecom/events"
	"github.com/Bishal-code0731/ecom/models"
	"github.com/Bishal-code0731/ecom/repository"
	"github.com/Bishal-code0731/ecom/routes"
	"github.com/Bishal-code0731/ecom/services"
)

func main() {
	logger, err := zap.NewProduction()
	if err != nil {
		panic("failed to initialize logger: " + err.Error())
	}
	defer logger.Sync()

	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("Config load failed", zap.Error(err))
	}

	// --- Database ---
	if err := database.Connect(cfg); err != nil {
		logger.Fatal("DB connection failed", zap.Error(err))
	}
	if err := models.Migrate(database.DB); err != nil {
		logger.Fatal("Migration failed", zap.Error(err))
	}

	// --- Optional integrations ---
	var redisClient *redis.Client
	if cfg.RedisAddr != "" {
		redisClient = redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
		})
		pingCtx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
		if err := redisClient.Ping(pingCtx).Err(); err != nil {
			logger.Warn("Redis unreachable, product caching disabled", zap.Error(err))
			redisClient = nil
		}
		cancel()
	}

	var sinks []events.Sink
	if len(cfg.KafkaBrokers) > 0 {
		sinks = append(sinks, events.NewKafkaSink(cfg.KafkaBrokers, cfg.KafkaTopic))
	}
	if cfg.SNSTopicARN != "" {
		snsSink, err := events.NewSNSSink(context.Background(), cfg.SNSTopicARN)
		if err != nil {
			logger.Warn("SNS init failed (non-fatal)", zap.Error(err))
		} else {
			sinks = append(sinks, snsSink)
		}
	}
	publisher := events.NewPublisher(logger, sinks...)

	// --- HTTP router ---
	if err := controllers.RegisterValidators(); err != nil {
		logger.Fatal("Validator registration failed", zap.Error(err))
	}
	r := gin.New()
	r.Use(gin.Recovery())

	// Structured HTTP request logging
	r.Use(func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path
		method := c.Request.Method
		c.Next()
		latency := time.Since(start)
		status := c.Writer.Status()
		fields := []zap.Field{
			zap.String("method", method),
			zap.String("path", path),
			zap.Int("status", status),
			zap.Duration("latency", latency),
			zap.String("client_ip", c.ClientIP()),
			zap.Int("body_size", c.Writer.Size()),
		}
		switch {
		case status >= 500:
			logger.Error("http_request", fields...)
		case status >= 400:
			logger.Warn("http_request", fields...)
		default:
			logger.Info("http_request", fields...)
		}
	})

	// Request timeout middleware
	r.Use(func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 30*time.Second)
		defer cancel()
		c.Request = c.Request.WithContext(ctx)
		c.Next()
	})

	// --- Dependency injection ---
	store := repository.NewGormStore(database.DB)
	tokenService := services.NewTokenService(cfg.JWTSecret)
	authService := services.NewAuthService(store, tokenService, logger)
	productCache := services.NewProductCache(redisClient, logger)
	productService := services.NewProductService(store, productCache, logger)
	orderService := services.NewOrderService(store, publisher, cfg.TaxRate, cfg.ShippingFee, logger)
	stripeService := services.NewStripeService(cfg.StripeSecretKey, cfg.StripeWebhookSecret)
	paymentService := services.NewPaymentService(store, stripeService, publisher, logger)

	ctrl := routes.Controllers{
		Auth:    controllers.NewAuthController(authService, logger),
		Product: controllers.NewProductController(productService, logger),
		Order:   controllers.NewOrderController(orderService, logger),
		Payment: controllers.NewPaymentController(paymentService, logger),
	}
	routes.Register(r, ctrl, tokenService, authService)

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "OK", "service": "ecom"})
	})

	// --- HTTP server ---
	srv := &http.Server{Addr: ":" + cfg.Port, Handler: r}
	go func() {
		logger.Info("Server started", zap.String("port", cfg.Port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("server failed", zap.Error(err))
		}
	}()

	// --- Graceful shutdown ---
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Initiating graceful shutdown...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Server shutdown error", zap.Error(err))
	}
	if redisClient != nil {
		if err := redisClient.Close(); err != nil {
			logger.Error("Redis close error", zap.Error(err))
		}
	}
	if err := database.Close(); err != nil {
		logger.Error("Database close error", zap.Error(err))
	}

	log.Println("Server stopped gracefully")
}
