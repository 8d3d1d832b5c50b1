package main

import (
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"codeberg.org/pgsuggest/server/api/rest/completion"
	"codeberg.org/pgsuggest/server/api/rest/health"
	"codeberg.org/pgsuggest/server/api/rest/history"
	"codeberg.org/pgsuggest/server/internal/errors"
)

// sets up all API routes and middleware
func RegisterRoutes(router *gin.Engine, server *Server) error {
	cfg := server.config

	rateLimit, err := RateLimitMiddleware(cfg.RateLimit, server.redis)
	if err != nil {
		return err
	}

	router.Use(gin.Recovery())
	router.Use(RequestLogger())
	router.Use(CORSMiddleware(cfg.CORSOrigins))

	router.GET("/health", health.Handler)
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// path used by the browser extension
	completion.RegisterRoutes(router, server.services.Orchestrator, rateLimit)

	v1 := router.Group("/api/v1")

	{
		v1.GET("/ping", health.PingHandler)
		v1.GET("/ready", health.ReadyHandler(server.store))
		v1.GET("/stats", health.StatsHandler(server.store, server.buffer, health.Info{
			Store:          cfg.VectorStore,
			Metric:         cfg.DistanceMetric,
			Dimension:      cfg.EmbeddingDimension,
			EmbedderModel:  cfg.EmbedderModel,
			GeneratorModel: server.services.Orchestrator.Model(),
			GeneratorReady: server.services.Orchestrator.Ready(),
		}))

		completion.RegisterRoutes(v1, server.services.Orchestrator, rateLimit)
		history.RegisterRoutes(v1, server.buffer)
	}

	router.NoRoute(func(c *gin.Context) {
		errors.NotFound(c, "route")
	})

	return nil
}
