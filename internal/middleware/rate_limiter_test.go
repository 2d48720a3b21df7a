package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"golang.org/x/time/rate"
)

func limitedRouter(burst int) *gin.Engine {
	gin.SetMode(gin.TestMode)
	engine := gin.New()
	engine.Use(NewRateLimiter(RateLimiterConfig{Rate: rate.Limit(0.001), Burst: burst}).RateLimit())
	engine.GET("/ping", func(c *gin.Context) {
		c.Status(http.StatusOK)
	})
	return engine
}

func pingFrom(engine *gin.Engine, remoteAddr string) int {
	req := httptest.NewRequest(http.MethodGet, "/ping", nil)
	req.RemoteAddr = remoteAddr
	w := httptest.NewRecorder()
	engine.ServeHTTP(w, req)
	return w.Code
}

func TestRateLimitExhaustsBurst(t *testing.T) {
	engine := limitedRouter(2)

	assert.Equal(t, http.StatusOK, pingFrom(engine, "10.0.0.1:1234"))
	assert.Equal(t, http.StatusOK, pingFrom(engine, "10.0.0.1:1234"))
	assert.Equal(t, http.StatusTooManyRequests, pingFrom(engine, "10.0.0.1:1234"))
}

func TestRateLimitIsPerClient(t *testing.T) {
	engine := limitedRouter(1)

	assert.Equal(t, http.StatusOK, pingFrom(engine, "10.0.0.1:1234"))
	assert.Equal(t, http.StatusTooManyRequests, pingFrom(engine, "10.0.0.1:1234"))

	// A different client has its own budget.
	assert.Equal(t, http.StatusOK, pingFrom(engine, "10.0.0.2:1234"))
}
