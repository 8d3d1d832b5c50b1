package errors

import (
	"net/http"

	"codeberg.org/pgsuggest/server/internal/logger"
	"github.com/gin-gonic/gin"
)

// Error Handling Guidelines:
//
// For HTTP REST handlers:
//   - Use errors.Respond() for errors coming out of the core; it maps the error
//     kind to a status code and handles logging for server-side failures
//   - Use errors.BadRequest(), errors.ValidationError() for request binding failures
//   - Never call both logger.ErrorErr() and errors.InternalError() for the same error
//
// For services/repositories/internal packages:
//   - Return wrapped errors with context using fmt.Errorf("context: %w", err)
//   - Tag failures with a Kind (Configuration, Provider, StoreUnavailable, Validation)
//     at the layer that knows which one it is
//   - Do not log errors in non-handler code (avoid double logging); the retriever's
//     degraded path is the one exception since it swallows the error

// standard error codes
const (
	CodeNotFound         = "not_found"
	CodeValidationError  = "validation_error"
	CodeServerError      = "server_error"
	CodeBadRequest       = "bad_request"
	CodeTooManyRequests  = "too_many_requests"
	CodeConfiguration    = "configuration_error"
	CodeGenerationFailed = "generation_failed"
	CodeStoreUnavailable = "store_unavailable"
)

// returns a 404 not found error
func NotFound(c *gin.Context, resource string) {
	message := "resource not found"

	if resource != "" {
		message = resource + " not found"
	}

	c.JSON(http.StatusNotFound, ErrorResponse{
		Error:   CodeNotFound,
		Message: message,
	})
}

// returns a 400 bad request error
func BadRequest(c *gin.Context, message string, err error) {
	if message == "" {
		message = "invalid request"
	}

	response := ErrorResponse{
		Error:   CodeBadRequest,
		Message: message,
	}

	// add details if error provided
	if err != nil {
		response.Details = sanitizeError(err)
	}

	c.JSON(http.StatusBadRequest, response)
}

// returns a 400 bad request error for validation failures
func ValidationError(c *gin.Context, err error) {
	details := ""

	if err != nil {
		details = err.Error()
	}

	c.JSON(http.StatusBadRequest, ErrorResponse{
		Error:   CodeValidationError,
		Message: "validation failed",
		Details: details,
	})
}

// returns a 500 internal server error
func InternalError(c *gin.Context, message string, err error) {
	serverError(c, http.StatusInternalServerError, CodeServerError, message, err)
}

// returns a 500 error for a capability that cannot run because it is misconfigured
func ConfigurationError(c *gin.Context, err error) {
	serverError(c, http.StatusInternalServerError, CodeConfiguration, "service is not configured", err)
}

// returns a 500 error for a failed generation attempt
func GenerationFailed(c *gin.Context, err error) {
	serverError(c, http.StatusInternalServerError, CodeGenerationFailed, "failed to generate completion", err)
}

// returns a 503 error when the vector store cannot be reached
func StoreUnavailableError(c *gin.Context, err error) {
	serverError(c, http.StatusServiceUnavailable, CodeStoreUnavailable, "vector store unavailable", err)
}

// returns a 429 too many requests error
func TooManyRequests(c *gin.Context, message string) {
	if message == "" {
		message = "too many requests"
	}

	c.JSON(http.StatusTooManyRequests, ErrorResponse{
		Error:   CodeTooManyRequests,
		Message: message,
	})
}

// maps an error from the core onto the matching HTTP response
func Respond(c *gin.Context, err error) {
	switch KindOf(err) {
	case KindValidation:
		ValidationError(c, err)
	case KindConfiguration:
		ConfigurationError(c, err)
	case KindProvider:
		GenerationFailed(c, err)
	case KindStoreUnavailable:
		StoreUnavailableError(c, err)
	default:
		InternalError(c, "", err)
	}
}

func serverError(c *gin.Context, status int, code, message string, err error) {
	if message == "" {
		message = "an error occurred"
	}

	info := classifyError(err)

	// log full error server-side with context
	logger.ErrorErr(err, message,
		"path", c.Request.URL.Path,
		"method", c.Request.Method,
		"request_id", c.GetString("request_id"),
		"category", info.category,
	)

	// return sanitized error to client
	c.JSON(status, ErrorResponse{
		Error:   code,
		Message: message,
		Details: info.sanitized,
	})
}

// sanitizes error messages for production
func sanitizeError(err error) string {
	return classifyError(err).sanitized
}
