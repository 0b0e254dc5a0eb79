package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/stwalsh4118/city-lottery/internal/middleware"
	"github.com/stwalsh4118/city-lottery/internal/sandbox"
	"github.com/stwalsh4118/city-lottery/internal/services"
)

// CityHandler handles requests that drive the open city.
type CityHandler struct {
	service services.CityService
}

// NewCityHandler creates a new CityHandler instance.
func NewCityHandler(service services.CityService) *CityHandler {
	return &CityHandler{
		service: service,
	}
}

// PopulationRequest is the residential population of each wealth tier.
type PopulationRequest struct {
	Low  int32 `json:"low" binding:"gte=0"`
	Med  int32 `json:"med" binding:"gte=0"`
	High int32 `json:"high" binding:"gte=0"`
}

func (p PopulationRequest) toPopulation() sandbox.Population {
	return sandbox.Population{Low: p.Low, Med: p.Med, High: p.High}
}

// OpenCityRequest represents the body of the open city endpoint.
// Year and month default to January 2000.
type OpenCityRequest struct {
	Name       string            `json:"name" binding:"required,max=64"`
	Population PopulationRequest `json:"population"`
	Year       uint32            `json:"year" binding:"omitempty,gte=1900,lte=9999"`
	Month      uint32            `json:"month" binding:"omitempty,min=1,max=12"`
}

// Open handles POST /api/v1/city endpoint.
func (h *CityHandler) Open(c *gin.Context) {
	var req OpenCityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err, "Invalid request body")
		return
	}

	if log := middleware.GetLogger(c); log != nil {
		log.Info("Opening city", map[string]interface{}{
			"city": req.Name,
			"year": req.Year,
		})
	}

	status, err := h.service.Open(c.Request.Context(), services.OpenCityRequest{
		Name:       req.Name,
		Population: req.Population.toPopulation(),
		Year:       req.Year,
		Month:      req.Month,
	})
	if err != nil {
		serviceError(c, err, "Failed to open the city")
		return
	}

	c.JSON(http.StatusCreated, status)
}

// Close handles DELETE /api/v1/city endpoint.
func (h *CityHandler) Close(c *gin.Context) {
	if err := h.service.Close(c.Request.Context()); err != nil {
		serviceError(c, err, "Failed to close the city")
		return
	}
	c.Status(http.StatusNoContent)
}

// Population handles PUT /api/v1/city/population endpoint.
func (h *CityHandler) Population(c *gin.Context) {
	var req PopulationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err, "Invalid request body")
		return
	}

	status, err := h.service.UpdatePopulation(c.Request.Context(), req.toPopulation())
	if err != nil {
		serviceError(c, err, "Failed to update the population")
		return
	}

	c.JSON(http.StatusOK, status)
}

// Advance handles POST /api/v1/city/advance endpoint.
// It simulates one month and reports the income collected.
func (h *CityHandler) Advance(c *gin.Context) {
	report, err := h.service.AdvanceMonth(c.Request.Context())
	if err != nil {
		serviceError(c, err, "Failed to advance the month")
		return
	}

	c.JSON(http.StatusOK, report)
}
