package router

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	apphttp "leadboard_backend/internal/http"
	"leadboard_backend/platform/config"
	"leadboard_backend/platform/httpkit"
	"leadboard_backend/platform/logger"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testOrigin = "http://localhost:5173"

func newTestEngine() *gin.Engine {
	gin.SetMode(gin.TestMode)
	return New(&apphttp.App{
		Config: &config.Config{JWTAccessSecret: "secret", CORSOrigins: []string{testOrigin}},
		Logger: logger.NewDiscard(),
	})
}

func TestCORSAllowsAndExposesRequestID(t *testing.T) {
	engine := newTestEngine()

	preflight := httptest.NewRequest(http.MethodOptions, "/api/health", nil)
	preflight.Header.Set("Origin", testOrigin)
	preflight.Header.Set("Access-Control-Request-Method", http.MethodGet)
	preflight.Header.Set("Access-Control-Request-Headers", httpkit.HeaderRequestID)
	rec := httptest.NewRecorder()
	engine.ServeHTTP(rec, preflight)

	require.Less(t, rec.Code, 300)
	assert.Contains(t, strings.ToLower(rec.Header().Get("Access-Control-Allow-Headers")), "x-request-id")

	req := httptest.NewRequest(http.MethodGet, "/api/health", nil)
	req.Header.Set("Origin", testOrigin)
	req.Header.Set(httpkit.HeaderRequestID, "abc-123")
	rec = httptest.NewRecorder()
	engine.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "abc-123", rec.Header().Get(httpkit.HeaderRequestID))
	assert.Contains(t, strings.ToLower(rec.Header().Get("Access-Control-Expose-Headers")), "x-request-id")
}

func TestHealthWithoutChecker(t *testing.T) {
	rec := httptest.NewRecorder()
	newTestEngine().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/health", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
}
