package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	gocache "github.com/patrickmn/go-cache"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/harborview/hotel-backend/internal/application"
	"github.com/harborview/hotel-backend/internal/auth"
	"github.com/harborview/hotel-backend/internal/config"
	"github.com/harborview/hotel-backend/internal/database"
	"github.com/harborview/hotel-backend/internal/events"
	"github.com/harborview/hotel-backend/internal/handler"
	"github.com/harborview/hotel-backend/internal/kafka"
	"github.com/harborview/hotel-backend/internal/logger"
	"github.com/harborview/hotel-backend/internal/metrics"
	"github.com/harborview/hotel-backend/internal/middleware"
	"github.com/harborview/hotel-backend/internal/notify"
	"github.com/harborview/hotel-backend/internal/repository"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	// Initialize logger
	log, err := logger.NewNamed(cfg.AppEnv, "hotel-backend")
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to create logger: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = log.Sync() }()

	log.Info("starting hotel-backend", zap.String("port", cfg.Port))

	// Connect to database
	db, err := database.Connect(cfg.DB, log)
	if err != nil {
		log.Fatal("failed to connect to database", zap.Error(err))
	}

	// Run database migrations
	if cfg.AppEnv == "development" {
		if err := db.AutoMigrate(&repository.RoomModel{}, &repository.BookingModel{}); err != nil {
			log.Fatal("failed to run auto-migration", zap.Error(err))
		}
		log.Info("database migration completed (dev auto-migrate)")
	} else {
		if err := database.RunMigrations(cfg.DB.URL(), "migrations", log); err != nil {
			log.Fatal("failed to run migrations", zap.Error(err))
		}
	}

	// Initialize JWT manager
	jwtManager := auth.NewJWTManager(cfg.JWT.Secret, cfg.JWT.AccessTTL)

	// Initialize Kafka producer
	var publisher kafka.Publisher
	var producer *kafka.Producer
	if cfg.Kafka.Enabled {
		producer = kafka.NewProducer(cfg.Kafka.Brokers, log)
		defer func() { _ = producer.Close() }()
		publisher = producer
	}

	// Initialize repositories and unit of work
	bookingRepo := repository.NewGormBookingRepository(db)
	roomRepo := repository.NewGormRoomRepository(db)
	uow := repository.NewGormUnitOfWork(db)

	// Initialize application services
	notifier := notify.NewRegistry()
	bookingService := application.NewBookingService(uow, bookingRepo, roomRepo, publisher, notifier, log)
	roomService := application.NewRoomService(roomRepo, log)
	financialService := application.NewFinancialService(bookingRepo, roomRepo, log)
	reconciler := application.NewReconciler(bookingRepo, cfg.Reconciler.Interval, log)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Start the background reconciler
	go reconciler.Run(ctx)

	// Start the housekeeping event consumer
	if cfg.Kafka.Enabled {
		consumer := kafka.NewConsumer(cfg.Kafka.Brokers, cfg.Kafka.GroupID, events.TopicHousekeepingEvents, log)
		defer func() { _ = consumer.Close() }()
		housekeeping := events.NewHousekeepingConsumer(consumer, roomService, log)
		go func() {
			log.Info("starting housekeeping event consumer")
			if err := housekeeping.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
				log.Error("housekeeping event consumer error", zap.Error(err))
			}
		}()
	}

	// Initialize HTTP handlers
	bookingHandler := handler.NewBookingHandler(bookingService, reconciler, log)
	guestHandler := handler.NewGuestBookingHandler(bookingService, notifier, log)
	roomHandler := handler.NewRoomHandler(roomService, log)
	financialHandler := handler.NewFinancialHandler(financialService, log)

	// Setup Gin router
	if cfg.AppEnv != "development" {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()

	// Apply global middleware
	router.Use(middleware.Recovery(log))
	router.Use(middleware.RequestID())
	router.Use(middleware.RequestLogger(log))
	router.Use(middleware.Metrics())
	router.Use(middleware.RateLimit(rate.Limit(cfg.HTTP.RateLimitPerSecond), cfg.HTTP.RateLimitBurst))
	router.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"*"},
		AllowMethods:     []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization", "X-Request-ID"},
		ExposeHeaders:    []string{"X-Request-ID"},
		AllowCredentials: false,
		MaxAge:           12 * time.Hour,
	}))

	// Health and metrics
	router.GET("/healthz", func(c *gin.Context) {
		sqlDB, err := db.DB()
		if err != nil || sqlDB.PingContext(c.Request.Context()) != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "degraded"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	router.GET("/metrics", gin.WrapH(metrics.Handler()))

	// Register routes
	api := router.Group("/api/v1", middleware.Auth(jwtManager))
	bookingHandler.RegisterRoutes(api)
	guestHandler.RegisterRoutes(api)
	roomHandler.RegisterRoutes(api)
	financialHandler.RegisterRoutes(api,
		middleware.Cache(gocache.New(cfg.HTTP.CacheTTL, 2*cfg.HTTP.CacheTTL), cfg.HTTP.CacheTTL))

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
		log.Info("HTTP server starting", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("HTTP server error", zap.Error(err))
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down hotel-backend...")

	// Stop the reconciler and consumer
	cancel()

	// Shutdown HTTP server with timeout
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("HTTP server forced shutdown", zap.Error(err))
	}

	log.Info("hotel-backend stopped")
}
