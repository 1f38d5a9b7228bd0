package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"cheflink/internal/config"
	"cheflink/internal/database"
	"cheflink/internal/handlers"
	"cheflink/internal/kafka"
	"cheflink/internal/logger"
	"cheflink/internal/migrations"
	"cheflink/internal/redis"
	"cheflink/internal/repository"
	"cheflink/internal/services"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
)

const (
	version         = "1.0.0"
	eventBufferSize = 256
	shutdownTimeout = 15 * time.Second
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("invalid configuration")
	}

	appLogger := logger.New(cfg.LogLevel, cfg.LogFormat, os.Stdout)
	gin.SetMode(cfg.GinMode)

	// Initialize database
	db, err := database.Initialize(database.Options{
		URL:             cfg.DatabaseURL(),
		MaxOpenConns:    cfg.DBMaxOpenConns,
		MaxIdleConns:    cfg.DBMaxIdleConns,
		ConnMaxLifetime: cfg.DBConnMaxLifetime,
		LogLevel:        logger.GormLevel(cfg.LogLevel),
	})
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to database")
	}

	if err := migrations.RunMigrations(db); err != nil {
		log.Fatal().Err(err).Msg("failed to migrate database")
	}

	// Order id lock: shared through Redis when configured, process-local otherwise
	var locker services.Locker = services.NewLocalLocker()
	var redisClient *redis.Client
	if cfg.RedisURL != "" {
		redisClient, err = redis.Initialize(cfg.RedisURL, cfg.IDLockTTL)
		if err != nil {
			log.Fatal().Err(err).Msg("failed to connect to Redis")
		}
		locker = redisClient
		log.Info().Msg("using redis for order id locking")
	}

	publisher := services.NopPublisher()
	var producer *kafka.Producer
	if len(cfg.KafkaBrokers) > 0 {
		producer = kafka.NewProducer(cfg.KafkaBrokers, cfg.ServiceName, eventBufferSize)
		producer.Start()
		publisher = producer
		log.Info().Strs("brokers", cfg.KafkaBrokers).Msg("publishing order events to kafka")
	}

	orderRepo := repository.NewOrderRepository(db)
	orderService := services.NewOrderService(orderRepo, locker, publisher)

	router := handlers.NewRouter(
		handlers.NewOrderHandler(orderService),
		handlers.NewSystemHandler(cfg.ServiceName, version, func(ctx context.Context) error {
			return database.Ping(ctx, db)
		}),
		handlers.RouterOptions{Logger: appLogger, AllowedOrigins: cfg.CORSAllowedOrigins},
	)

	srv := &http.Server{
		Addr:              ":" + cfg.ServerPort,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.Info().Str("port", cfg.ServerPort).Msg("server starting")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("failed to start server")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info().Msg("shutting down")

	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Error().Err(err).Msg("http server shutdown")
	}

	shutdown(db, redisClient, producer)
	log.Info().Msg("server stopped")
}

func shutdown(db *gorm.DB, redisClient *redis.Client, producer *kafka.Producer) {
	if producer != nil {
		producer.Close()
	}
	if redisClient != nil {
		if err := redisClient.Close(); err != nil {
			log.Error().Err(err).Msg("closing redis")
		}
	}
	if err := database.Close(db); err != nil {
		log.Error().Err(err).Msg("closing database")
	}
}
