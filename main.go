package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"lms-service/internal/cache"
	"lms-service/internal/config"
	"lms-service/internal/db"
	"lms-service/internal/event"
	"lms-service/internal/handlers"
	"lms-service/internal/repository"
	"lms-service/internal/router"
	"lms-service/internal/service"

	"github.com/rs/zerolog"
)

func main() {
	cfg := config.Load()

	level, err := zerolog.ParseLevel(cfg.LogLevel)
	if err != nil {
		level = zerolog.InfoLevel
	}
	log := zerolog.New(os.Stdout).Level(level).With().Timestamp().Str("service", "lms-service").Logger()

	if cfg.MongoURI == "" {
		log.Fatal().Msg("MONGO_URI is required")
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	mongoClient, err := db.Connect(ctx, cfg.MongoURI)
	if err != nil {
		log.Fatal().Err(err).Msg("mongo connection failed")
	}
	defer func() {
		disconnectCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := mongoClient.Disconnect(disconnectCtx); err != nil {
			log.Error().Err(err).Msg("mongo disconnect failed")
		}
	}()

	database := mongoClient.Database(cfg.MongoDatabase)
	if err := db.EnsureIndexes(ctx, database); err != nil {
		log.Fatal().Err(err).Msg("index creation failed")
	}

	// Redis read cache is optional.
	var categoryCache *cache.Cache
	if cfg.RedisURL != "" {
		redisClient, err := db.NewRedisClient(ctx, cfg.RedisURL)
		if err != nil {
			log.Fatal().Err(err).Msg("redis connection failed")
		}
		defer redisClient.Close()
		categoryCache = cache.New(redisClient, "categories:", 5*time.Minute)
		log.Info().Msg("category read cache enabled")
	} else {
		log.Info().Msg("REDIS_URL not set, category read cache disabled")
	}

	// Event publishing is optional.
	var publisher *event.Publisher
	var events service.EventSink
	if cfg.RabbitMQURI != "" && cfg.RabbitMQExchange != "" {
		publisher, err = event.NewPublisher(cfg.RabbitMQURI, cfg.RabbitMQExchange, log)
		if err != nil {
			log.Fatal().Err(err).Msg("rabbitmq connection failed")
		}
		defer publisher.Close()
		events = publisher
	} else {
		log.Info().Msg("RabbitMQ not configured, domain events will not be published")
	}

	questionRepo := repository.NewExamQuestionRepository(database)
	categoryRepo := repository.NewStageCategoryRepository(database)
	lookupRepo := repository.NewLookupRepository(database)

	questionService := service.NewExamQuestionService(questionRepo, lookupRepo, events, log)
	categoryService := service.NewStageCategoryService(categoryRepo, lookupRepo, categoryCache, events, log)

	questionHandler := handlers.NewExamQuestionHandler(questionService)
	categoryHandler := handlers.NewStageCategoryHandler(categoryService)

	r := router.New(cfg, log, questionHandler, categoryHandler)

	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: r,
	}

	go func() {
		log.Info().Str("port", cfg.Port).Msg("server listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("server failed")
		}
	}()

	<-ctx.Done()
	log.Info().Msg("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("server shutdown failed")
	}
}
