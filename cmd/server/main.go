package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"

	"github.com/Serai-Stays/service-reservation/internal/application"
	"github.com/Serai-Stays/service-reservation/internal/auth"
	"github.com/Serai-Stays/service-reservation/internal/cache"
	"github.com/Serai-Stays/service-reservation/internal/config"
	"github.com/Serai-Stays/service-reservation/internal/consumer"
	"github.com/Serai-Stays/service-reservation/internal/database"
	bookingDomain "github.com/Serai-Stays/service-reservation/internal/domain/booking"
	"github.com/Serai-Stays/service-reservation/internal/gateway"
	"github.com/Serai-Stays/service-reservation/internal/handler"
	"github.com/Serai-Stays/service-reservation/internal/health"
	"github.com/Serai-Stays/service-reservation/internal/kafka"
	"github.com/Serai-Stays/service-reservation/internal/lock"
	"github.com/Serai-Stays/service-reservation/internal/logger"
	"github.com/Serai-Stays/service-reservation/internal/middleware"
	"github.com/Serai-Stays/service-reservation/internal/repository"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	// Initialize logger
	log, err := logger.NewNamed(cfg.AppEnv, "service-reservation")
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to create logger: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = log.Sync() }()

	log.Info("starting service-reservation",
		zap.String("port", cfg.Port),
	)

	// Connect to database
	dbConfig := database.PostgresConfig{
		Host:     cfg.DBConfig.Host,
		Port:     cfg.DBConfig.Port,
		User:     cfg.DBConfig.User,
		Password: cfg.DBConfig.Password,
		DBName:   cfg.DBConfig.DBName,
		SSLMode:  cfg.DBConfig.SSLMode,
	}
	db, err := database.Connect(dbConfig, log)
	if err != nil {
		log.Fatal("failed to connect to database", zap.Error(err))
	}

	// Run database migrations
	if cfg.AppEnv == "development" {
		if err := db.AutoMigrate(
			&repository.AccommodationModel{},
			&repository.RoomModel{},
			&repository.RoomInventoryModel{},
			&repository.BookingModel{},
			&repository.BookingItemModel{},
			&repository.PaymentModel{},
			&repository.NotificationModel{},
			&repository.AuditEntryModel{},
		); err != nil {
			log.Fatal("failed to run auto-migration", zap.Error(err))
		}
		log.Info("database migration completed (dev auto-migrate)")
	} else {
		dbURL := dbConfig.DatabaseURL()
		if err := database.RunMigrations(dbURL, "migrations", log); err != nil {
			log.Fatal("failed to run migrations", zap.Error(err))
		}
	}

	// Initialize JWT manager
	jwtManager := auth.NewJWTManager(
		cfg.JWTConfig.Secret,
		15*time.Minute,
		7*24*time.Hour,
	)

	// Initialize Redis-backed lock and cache
	redisClient := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisConfig.Addr,
		Password: cfg.RedisConfig.Password,
		DB:       cfg.RedisConfig.DB,
	})
	defer func() { _ = redisClient.Close() }()

	locker := lock.NewRedisLocker(redisClient, log)
	availabilityCache := cache.NewRedisCache(redisClient)

	// Initialize Kafka producer
	kafkaProducer := kafka.NewProducer(cfg.KafkaConfig.Brokers, log)
	defer func() { _ = kafkaProducer.Close() }()

	// Initialize payment gateways
	gateways := gateway.NewRegistry(
		gateway.NewStripeGateway(cfg.PaymentConfig.StripeKey, log),
		gateway.NewBillplzGateway(cfg.PaymentConfig.BillplzKey, log),
		gateway.NewIPay88Gateway(cfg.PaymentConfig.IPay88Key, log),
	)

	// Initialize store and pricing strategy
	st := repository.NewGormStore(db)
	pricingStrategy := bookingDomain.NewStandardPricingStrategy()

	// Initialize application services. The notification service doubles as
	// the Notifier used by the booking and payment services.
	notificationService := application.NewNotificationService(st, kafkaProducer, log)
	accommodationService := application.NewAccommodationService(st, availabilityCache, log)
	availabilityService := application.NewAvailabilityService(st, availabilityCache, log)
	bookingService := application.NewBookingService(
		st,
		pricingStrategy,
		locker,
		availabilityCache,
		notificationService,
		kafkaProducer,
		log,
	)
	paymentService := application.NewPaymentService(
		st,
		gateways,
		notificationService,
		kafkaProducer,
		log,
	)

	// Initialize and start payment event consumer in a goroutine
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	groupID := cfg.KafkaConfig.GroupPrefix + "reservation-service"
	paymentConsumer := consumer.NewPaymentEventConsumer(
		cfg.KafkaConfig.Brokers,
		groupID,
		paymentService,
		log,
	)
	defer func() { _ = paymentConsumer.Close() }()

	go func() {
		log.Info("starting payment event consumer")
		if err := paymentConsumer.Start(ctx); err != nil && err != context.Canceled {
			log.Error("payment event consumer error", zap.Error(err))
		}
	}()

	// Initialize HTTP handlers
	accommodationHandler := handler.NewAccommodationHandler(accommodationService, availabilityService)
	bookingHandler := handler.NewBookingHandler(bookingService)
	paymentHandler := handler.NewPaymentHandler(paymentService, cfg.PaymentConfig.WebhookSecret)
	notificationHandler := handler.NewNotificationHandler(notificationService)
	adminHandler := handler.NewAdminHandler(accommodationService, availabilityService, bookingService)

	// Setup Gin router
	gin.SetMode(gin.ReleaseMode)
	router := gin.New()

	// Apply global middleware
	router.Use(middleware.RecoveryMiddleware(log))
	router.Use(middleware.LoggerMiddleware(log))
	router.Use(middleware.RequestIDMiddleware())
	router.Use(middleware.CORSMiddleware())
	router.Use(middleware.SecurityHeadersMiddleware())
	router.Use(middleware.RateLimitMiddleware(redisClient, cfg.RateLimitPerMin, time.Minute, log))

	// Register health check routes
	healthHandler := health.NewHandler(db, "service-reservation")
	healthHandler.RegisterRoutes(router)

	// Register routes
	accommodationHandler.RegisterRoutes(&router.RouterGroup)
	bookingHandler.RegisterRoutes(&router.RouterGroup, jwtManager)
	paymentHandler.RegisterRoutes(&router.RouterGroup, jwtManager)
	notificationHandler.RegisterRoutes(&router.RouterGroup, jwtManager)
	adminHandler.RegisterRoutes(&router.RouterGroup, jwtManager)

	// Create HTTP server
	srv := &http.Server{
		Addr:         cfg.Port,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in a goroutine
	go func() {
		log.Info("HTTP server starting", zap.String("addr", cfg.Port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("HTTP server error", zap.Error(err))
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down service-reservation...")

	// Cancel the consumer context
	cancel()

	// Shutdown HTTP server with timeout
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("HTTP server forced shutdown", zap.Error(err))
	}

	log.Info("service-reservation stopped")
}
