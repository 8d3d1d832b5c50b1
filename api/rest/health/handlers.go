package health

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"codeberg.org/pgsuggest/server/internal/errors"
	"codeberg.org/pgsuggest/server/internal/logger"
)

const (
	serviceName = "pgsuggest"
	version     = "1.0.0"
)

// counts stored queries and checks store connectivity
type Store interface {
	Count(ctx context.Context) (int, error)
	Ping(ctx context.Context) error
}

// counts queries waiting to be ingested
type Pending interface {
	Len(ctx context.Context) (int, error)
}

// static facts about the running configuration
type Info struct {
	Store          string
	Metric         string
	Dimension      int
	EmbedderModel  string
	GeneratorModel string
	GeneratorReady bool
}

// returns the server health status
func Handler(c *gin.Context) {
	c.JSON(http.StatusOK, Response{
		Status:  "healthy",
		Service: serviceName,
		Version: version,
	})
}

// responds with pong for testing
func PingHandler(c *gin.Context) {
	c.JSON(http.StatusOK, PingResponse{Message: "pong"})
}

// reports store size and configuration
func StatsHandler(store Store, pending Pending, info Info) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := c.Request.Context()

		count, err := store.Count(ctx)
		if err != nil {
			errors.Respond(c, err)
			return
		}

		waiting := 0
		if pending != nil {
			if waiting, err = pending.Len(ctx); err != nil {
				logger.Warn("failed to count pending history", "error", err)
			}
		}

		c.JSON(http.StatusOK, StatsResponse{
			Queries:        count,
			Store:          info.Store,
			Metric:         info.Metric,
			Dimension:      info.Dimension,
			EmbedderModel:  info.EmbedderModel,
			GeneratorModel: info.GeneratorModel,
			GeneratorReady: info.GeneratorReady,
			PendingHistory: waiting,
		})
	}
}

// reports whether the vector store is reachable
func ReadyHandler(store Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		if err := store.Ping(c.Request.Context()); err != nil {
			errors.Respond(c, err)
			return
		}

		c.JSON(http.StatusOK, Response{Status: "ready", Service: serviceName, Version: version})
	}
}
