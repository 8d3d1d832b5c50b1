package main

import (
	"context"
	"fmt"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"

	"codeberg.org/pgsuggest/server/internal/buffer"
	"codeberg.org/pgsuggest/server/internal/config"
	"codeberg.org/pgsuggest/server/internal/logger"
	"codeberg.org/pgsuggest/server/internal/storage"
)

// creates and configures a new server instance with all dependencies
func NewServer(ctx context.Context, cfg *config.Config) (*Server, error) {
	store, err := storage.Open(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to open vector store: %w", err)
	}

	if err := store.Initialize(ctx); err != nil {
		store.Close() //nolint:errcheck,gosec // best-effort cleanup on init failure
		return nil, fmt.Errorf("failed to initialize vector store: %w", err)
	}

	// Redis is optional: it backs the embedding cache, the shared history
	// buffer and the rate limiter store when configured
	var (
		redisClient *redis.Client
		history     buffer.HistoryBuffer
	)

	if cfg.RedisURL != "" {
		redisClient, err = buffer.Connect(ctx, cfg.RedisURL)
		if err != nil {
			store.Close() //nolint:errcheck,gosec
			return nil, fmt.Errorf("failed to initialize redis: %w", err)
		}

		history = buffer.NewRedisBuffer(redisClient)
	} else {
		logger.Info("REDIS_URL not set, using in-process history buffer and rate limiter")
		history = buffer.NewMemoryBuffer()
	}

	services, err := InitializeServices(cfg, store, redisClient)
	if err != nil {
		if redisClient != nil {
			redisClient.Close() //nolint:errcheck,gosec
		}

		store.Close() //nolint:errcheck,gosec
		return nil, fmt.Errorf("failed to initialize services: %w", err)
	}

	// create flusher to periodically ingest buffered history
	flusher := buffer.NewFlusher(history, services.Pipeline, cfg.HistoryFlushInterval)

	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()

	server := &Server{
		config:   cfg,
		store:    store,
		redis:    redisClient,
		services: services,
		buffer:   history,
		flusher:  flusher,
		router:   router,
	}

	if err := RegisterRoutes(router, server); err != nil {
		server.Close()
		return nil, err
	}

	logger.Info("server initialized",
		"store", cfg.VectorStore,
		"metric", cfg.DistanceMetric,
		"generator", cfg.GeneratorProvider,
		"generator_ready", services.Orchestrator.Ready(),
	)

	return server, nil
}

// releases the store and Redis connections
func (s *Server) Close() {
	s.buffer.Close() //nolint:errcheck,gosec // best-effort cleanup on shutdown

	if s.redis != nil {
		s.redis.Close() //nolint:errcheck,gosec
	}

	s.store.Close() //nolint:errcheck,gosec
}
