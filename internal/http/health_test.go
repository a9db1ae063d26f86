package http

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func healthRouter(checks map[string]Pinger) *gin.Engine {
	router := gin.New()
	controller := NewHealthController(checks, "1.2.3")
	router.GET("/health", controller.Status)
	router.GET("/ping", controller.Ping)
	return router
}

func TestHealthController_Status(t *testing.T) {
	ok := PingFunc(func(context.Context) error { return nil })
	failing := PingFunc(func(context.Context) error { return errors.New("connection refused") })

	tests := []struct {
		name       string
		checks     map[string]Pinger
		wantCode   int
		wantStatus string
		wantChecks map[string]string
	}{
		{
			name:       "all dependencies up",
			checks:     map[string]Pinger{"database": ok, "redis": ok},
			wantCode:   http.StatusOK,
			wantStatus: "healthy",
			wantChecks: map[string]string{"database": "ok", "redis": "ok"},
		},
		{
			name:       "unconfigured dependency",
			checks:     map[string]Pinger{"database": ok, "tasks": nil},
			wantCode:   http.StatusOK,
			wantStatus: "healthy",
			wantChecks: map[string]string{"database": "ok", "tasks": "not configured"},
		},
		{
			name:       "failing dependency",
			checks:     map[string]Pinger{"database": ok, "redis": failing},
			wantCode:   http.StatusServiceUnavailable,
			wantStatus: "unhealthy",
			wantChecks: map[string]string{"database": "ok", "redis": "error: connection refused"},
		},
		{
			name:       "no dependencies",
			checks:     nil,
			wantCode:   http.StatusOK,
			wantStatus: "healthy",
			wantChecks: map[string]string{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rr := httptest.NewRecorder()
			healthRouter(tt.checks).ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/health", nil))

			require.Equal(t, tt.wantCode, rr.Code)
			resp := decodeJSON[HealthResponse](t, rr)
			assert.Equal(t, tt.wantStatus, resp.Status)
			assert.Equal(t, "1.2.3", resp.Version)
			assert.Equal(t, tt.wantChecks, resp.Checks)
			assert.NotEmpty(t, resp.Time)
		})
	}
}

func TestHealthController_Ping(t *testing.T) {
	rr := httptest.NewRecorder()
	healthRouter(nil).ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/ping", nil))

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.JSONEq(t, `{"message":"pong"}`, rr.Body.String())
}

func TestRouter_HealthUsesDatabase(t *testing.T) {
	srv := setupTestServer(t, serverOptions{})

	rr := srv.newClient().do(http.MethodGet, "/health")
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, map[string]string{"database": "ok"}, decodeJSON[HealthResponse](t, rr).Checks)
}
