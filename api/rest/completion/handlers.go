package completion

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"codeberg.org/pgsuggest/server/internal/completion"
	"codeberg.org/pgsuggest/server/internal/errors"
	"codeberg.org/pgsuggest/server/internal/logger"
)

// produces a suggestion for a partial query
type Completer interface {
	Complete(ctx context.Context, req completion.Request) (*completion.Suggestion, error)
}

// creates a handler for query completion
func Handler(completer Completer) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req Request

		if err := c.ShouldBindJSON(&req); err != nil {
			errors.ValidationError(c, err)
			return
		}

		suggestion, err := completer.Complete(c.Request.Context(), completion.Request{
			RecentQueries: req.RecentQueries,
			CurrentQuery:  req.CurrentQuery,
		})
		if err != nil {
			errors.Respond(c, err)
			return
		}

		logger.FromContext(c.Request.Context()).Debug("completion served",
			"similar", len(suggestion.SimilarQueries),
			"empty", suggestion.Text == "",
		)

		c.JSON(http.StatusOK, Response{
			Suggestion:              suggestion.Text,
			SimilarQueriesRetrieved: len(suggestion.SimilarQueries),
			Model:                   suggestion.Model,
		})
	}
}
