package handlers

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stwalsh4118/city-lottery/internal/middleware"
)

const (
	// APIVersion is the current version of the API
	APIVersion = "0.1.0"
	// HealthCheckTimeout is the timeout for save store health checks
	HealthCheckTimeout = 2 * time.Second
)

// Pinger is a save store that can report its connectivity.
type Pinger interface {
	Ping(ctx context.Context) error
}

// SettingsState reports whether the ordinance settings were loaded.
type SettingsState interface {
	Active() bool
}

// HealthHandler handles health check and readiness endpoints.
type HealthHandler struct {
	store     Pinger
	settings  SettingsState
	startTime time.Time
	env       string
	driver    string
	clsid     uint32
}

// NewHealthHandler creates a new HealthHandler instance.
func NewHealthHandler(store Pinger, settings SettingsState, env, driver string, clsid uint32) *HealthHandler {
	return &HealthHandler{
		store:     store,
		settings:  settings,
		startTime: time.Now(),
		env:       env,
		driver:    driver,
		clsid:     clsid,
	}
}

// HealthResponse represents the basic health check response.
type HealthResponse struct {
	Status string `json:"status"`
}

// ReadyResponse represents the readiness check response.
type ReadyResponse struct {
	Status   string `json:"status"`
	Database string `json:"database"`
	Settings string `json:"settings"`
}

// InfoResponse represents the API information response.
type InfoResponse struct {
	Version     string `json:"version"`
	Environment string `json:"environment"`
	Uptime      string `json:"uptime"`
	Store       string `json:"store"`
	Ordinance   string `json:"ordinance"`
}

// Health handles GET /health endpoint.
// This is a liveness check that always returns 200 OK.
func (h *HealthHandler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, HealthResponse{
		Status: "healthy",
	})
}

// Ready handles GET /health/ready endpoint.
// Returns 200 OK when the save store answers and the ordinance settings are
// loaded, 503 Service Unavailable otherwise.
func (h *HealthHandler) Ready(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), HealthCheckTimeout)
	defer cancel()

	resp := ReadyResponse{
		Status:   "ready",
		Database: "connected",
		Settings: "loaded",
	}

	if err := h.store.Ping(ctx); err != nil {
		if log := middleware.GetLogger(c); log != nil {
			log.Error("Save store health check failed", err, map[string]interface{}{
				"timeout": HealthCheckTimeout.String(),
				"driver":  h.driver,
			})
		}
		resp.Status = "not_ready"
		resp.Database = "disconnected"
	}
	if !h.settings.Active() {
		resp.Status = "not_ready"
		resp.Settings = "not_loaded"
	}

	status := http.StatusOK
	if resp.Status != "ready" {
		status = http.StatusServiceUnavailable
	}
	c.JSON(status, resp)
}

// Info handles GET /api/v1/info endpoint.
// Returns API metadata including version, environment, and uptime.
func (h *HealthHandler) Info(c *gin.Context) {
	c.JSON(http.StatusOK, InfoResponse{
		Version:     APIVersion,
		Environment: h.env,
		Uptime:      formatUptime(time.Since(h.startTime)),
		Store:       h.driver,
		Ordinance:   fmt.Sprintf("0x%08x", h.clsid),
	})
}

// formatUptime formats a duration into a human-readable string.
func formatUptime(d time.Duration) string {
	days := int(d.Hours() / 24)
	hours := int(d.Hours()) % 24
	minutes := int(d.Minutes()) % 60
	seconds := int(d.Seconds()) % 60

	if days > 0 {
		return fmt.Sprintf("%dd %dh %dm %ds", days, hours, minutes, seconds)
	}
	return fmt.Sprintf("%dh %dm %ds", hours, minutes, seconds)
}
