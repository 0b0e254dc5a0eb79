package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/stwalsh4118/city-lottery/internal/middleware"
	"github.com/stwalsh4118/city-lottery/internal/services"
)

// OrdinanceHandler handles lottery ordinance HTTP requests.
type OrdinanceHandler struct {
	service services.CityService
}

// NewOrdinanceHandler creates a new OrdinanceHandler instance.
func NewOrdinanceHandler(service services.CityService) *OrdinanceHandler {
	return &OrdinanceHandler{
		service: service,
	}
}

// ToggleRequest enacts or repeals the ordinance.
type ToggleRequest struct {
	On *bool `json:"on" binding:"required"`
}

// AvailabilityRequest makes the ordinance available or unavailable.
type AvailabilityRequest struct {
	Available *bool `json:"available" binding:"required"`
}

// Get handles GET /api/v1/ordinance endpoint.
// It returns the ordinance state together with the open city, if any.
func (h *OrdinanceHandler) Get(c *gin.Context) {
	c.JSON(http.StatusOK, h.service.Status())
}

// Toggle handles POST /api/v1/ordinance/toggle endpoint.
func (h *OrdinanceHandler) Toggle(c *gin.Context) {
	var req ToggleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err, "Invalid request body")
		return
	}

	if log := middleware.GetLogger(c); log != nil {
		log.Info("Toggling ordinance", map[string]interface{}{"on": *req.On})
	}

	status, err := h.service.SetOn(c.Request.Context(), *req.On)
	if err != nil {
		serviceError(c, err, "Failed to toggle the ordinance")
		return
	}

	c.JSON(http.StatusOK, status)
}

// Availability handles POST /api/v1/ordinance/availability endpoint.
func (h *OrdinanceHandler) Availability(c *gin.Context) {
	var req AvailabilityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err, "Invalid request body")
		return
	}

	status, err := h.service.SetAvailable(c.Request.Context(), *req.Available)
	if err != nil {
		serviceError(c, err, "Failed to change ordinance availability")
		return
	}

	c.JSON(http.StatusOK, status)
}
