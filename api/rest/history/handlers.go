package history

import (
	"context"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"codeberg.org/pgsuggest/server/internal/errors"
	"codeberg.org/pgsuggest/server/internal/metrics"
)

// queues executed queries for ingestion
type Recorder interface {
	Add(ctx context.Context, queries ...string) error
}

// creates a handler that records executed queries
func Handler(recorder Recorder) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req Request

		if err := c.ShouldBindJSON(&req); err != nil {
			errors.ValidationError(c, err)
			return
		}

		queries := make([]string, 0, len(req.Queries))
		for _, q := range req.Queries {
			if strings.TrimSpace(q) != "" {
				queries = append(queries, q)
			}
		}

		if len(queries) == 0 {
			errors.BadRequest(c, "queries must contain at least one non-blank entry", nil)
			return
		}

		if err := recorder.Add(c.Request.Context(), queries...); err != nil {
			errors.InternalError(c, "failed to record history", err)
			return
		}

		metrics.HistoryBufferedTotal.Add(float64(len(queries)))

		c.JSON(http.StatusAccepted, Response{Accepted: len(queries)})
	}
}

// registers history routes
func RegisterRoutes(router gin.IRoutes, recorder Recorder) {
	router.POST("/history", Handler(recorder))
}
