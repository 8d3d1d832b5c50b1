package main

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRouter(t *testing.T, middleware ...gin.HandlerFunc) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	router := gin.New()
	router.Use(middleware...)
	router.POST("/complete", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"suggestion": ""})
	})

	return router
}

func TestRateLimitMiddleware(t *testing.T) {
	limit, err := RateLimitMiddleware("1-M", nil)
	require.NoError(t, err)

	router := newTestRouter(t, limit)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/complete", nil))
	assert.Equal(t, http.StatusOK, w.Code)

	w = httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/complete", nil))
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.Contains(t, w.Body.String(), "too_many_requests")
}

func TestRateLimitMiddleware_InvalidRate(t *testing.T) {
	_, err := RateLimitMiddleware("lots", nil)
	assert.Error(t, err)
}

func TestRequestLogger_AssignsRequestID(t *testing.T) {
	router := newTestRouter(t, RequestLogger())

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/complete", nil))
	assert.NotEmpty(t, w.Header().Get(requestIDHeader))

	req := httptest.NewRequest(http.MethodPost, "/complete", nil)
	req.Header.Set(requestIDHeader, "abc-123")
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)
	assert.Equal(t, "abc-123", w.Header().Get(requestIDHeader))
}

func TestCORSMiddleware_AllowsConfiguredOrigin(t *testing.T) {
	router := newTestRouter(t, CORSMiddleware([]string{"http://localhost:5050"}))

	req := httptest.NewRequest(http.MethodOptions, "/complete", nil)
	req.Header.Set("Origin", "http://localhost:5050")
	req.Header.Set("Access-Control-Request-Method", "POST")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, "http://localhost:5050", w.Header().Get("Access-Control-Allow-Origin"))

	req = httptest.NewRequest(http.MethodOptions, "/complete", nil)
	req.Header.Set("Origin", "http://evil.example")
	req.Header.Set("Access-Control-Request-Method", "POST")
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Empty(t, w.Header().Get("Access-Control-Allow-Origin"))
}
