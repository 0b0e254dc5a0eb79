package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stwalsh4118/city-lottery/internal/ordinance"
)

// fakeStore is a Pinger with a fixed result.
type fakeStore struct {
	pingErr error
}

func (f *fakeStore) Ping(ctx context.Context) error {
	return f.pingErr
}

type fakeSettings bool

func (f fakeSettings) Active() bool { return bool(f) }

// setupTestRouter creates a test Gin router.
func setupTestRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)
	return gin.New()
}

func TestHealthHandler_Health(t *testing.T) {
	handler := NewHealthHandler(&fakeStore{}, fakeSettings(false), "test", "sqlite", ordinance.LotteryID)

	router := setupTestRouter()
	router.GET("/health", handler.Health)

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	// Liveness does not depend on the store or the settings
	assert.Equal(t, http.StatusOK, w.Code)

	var response HealthResponse
	require.NoError(t, json.NewDecoder(w.Body).Decode(&response))
	assert.Equal(t, HealthResponse{Status: "healthy"}, response)
}

func TestHealthHandler_Ready(t *testing.T) {
	tests := []struct {
		name           string
		pingErr        error
		active         bool
		expectedStatus int
		expectedBody   ReadyResponse
	}{
		{
			name:           "ready when store is connected and settings are loaded",
			active:         true,
			expectedStatus: http.StatusOK,
			expectedBody:   ReadyResponse{Status: "ready", Database: "connected", Settings: "loaded"},
		},
		{
			name:           "not ready when store is down",
			pingErr:        errors.New("connection refused"),
			active:         true,
			expectedStatus: http.StatusServiceUnavailable,
			expectedBody:   ReadyResponse{Status: "not_ready", Database: "disconnected", Settings: "loaded"},
		},
		{
			name:           "not ready without settings",
			active:         false,
			expectedStatus: http.StatusServiceUnavailable,
			expectedBody:   ReadyResponse{Status: "not_ready", Database: "connected", Settings: "not_loaded"},
		},
		{
			name:           "not ready when both fail",
			pingErr:        errors.New("connection refused"),
			expectedStatus: http.StatusServiceUnavailable,
			expectedBody:   ReadyResponse{Status: "not_ready", Database: "disconnected", Settings: "not_loaded"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			handler := NewHealthHandler(&fakeStore{pingErr: tt.pingErr}, fakeSettings(tt.active), "test", "postgres", ordinance.LotteryID)

			router := setupTestRouter()
			router.GET("/health/ready", handler.Ready)

			req := httptest.NewRequest(http.MethodGet, "/health/ready", nil)
			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)

			assert.Equal(t, tt.expectedStatus, w.Code)

			var response ReadyResponse
			require.NoError(t, json.NewDecoder(w.Body).Decode(&response))
			assert.Equal(t, tt.expectedBody, response)
		})
	}
}

func TestHealthHandler_Info(t *testing.T) {
	tests := []struct {
		name   string
		env    string
		driver string
		uptime time.Duration
	}{
		{name: "development on sqlite", env: "development", driver: "sqlite", uptime: 2 * time.Hour},
		{name: "production on postgres", env: "production", driver: "postgres", uptime: 24 * time.Hour},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			handler := NewHealthHandler(&fakeStore{}, fakeSettings(true), tt.env, tt.driver, ordinance.LotteryID)
			handler.startTime = time.Now().Add(-tt.uptime)

			router := setupTestRouter()
			router.GET("/api/v1/info", handler.Info)

			req := httptest.NewRequest(http.MethodGet, "/api/v1/info", nil)
			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)

			assert.Equal(t, http.StatusOK, w.Code)

			var response InfoResponse
			require.NoError(t, json.NewDecoder(w.Body).Decode(&response))
			assert.Equal(t, APIVersion, response.Version)
			assert.Equal(t, tt.env, response.Environment)
			assert.Equal(t, tt.driver, response.Store)
			assert.Equal(t, "0xe95f7779", response.Ordinance)
			assert.NotEmpty(t, response.Uptime)
		})
	}
}

func TestFormatUptime(t *testing.T) {
	tests := []struct {
		name     string
		duration time.Duration
		expected string
	}{
		{"formats seconds only", 45 * time.Second, "0h 0m 45s"},
		{"formats minutes and seconds", 5*time.Minute + 30*time.Second, "0h 5m 30s"},
		{"formats hours, minutes and seconds", 2*time.Hour + 15*time.Minute + 45*time.Second, "2h 15m 45s"},
		{"formats days", 3*24*time.Hour + 5*time.Hour + 30*time.Minute + 15*time.Second, "3d 5h 30m 15s"},
		{"formats exactly one day", 24 * time.Hour, "1d 0h 0m 0s"},
		{"formats zero duration", 0, "0h 0m 0s"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, formatUptime(tt.duration))
		})
	}
}

func TestReadyResponse_JSON(t *testing.T) {
	data, err := json.Marshal(ReadyResponse{Status: "ready", Database: "connected", Settings: "loaded"})
	require.NoError(t, err)
	assert.JSONEq(t, `{"status":"ready","database":"connected","settings":"loaded"}`, string(data))
}

func BenchmarkHealthHandler_Health(b *testing.B) {
	handler := NewHealthHandler(&fakeStore{}, fakeSettings(true), "test", "sqlite", ordinance.LotteryID)

	router := setupTestRouter()
	router.GET("/health", handler.Health)

	req := httptest.NewRequest(http.MethodGet, "/health", nil)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)
	}
}

func ExampleHealthHandler_Health() {
	handler := NewHealthHandler(&fakeStore{}, fakeSettings(true), "development", "sqlite", ordinance.LotteryID)

	router := setupTestRouter()
	router.GET("/health", handler.Health)

	fmt.Println("Health endpoint registered at /health")
	// Output: Health endpoint registered at /health
}
