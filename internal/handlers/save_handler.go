package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	apierrors "github.com/stwalsh4118/city-lottery/internal/errors"
	"github.com/stwalsh4118/city-lottery/internal/middleware"
	"github.com/stwalsh4118/city-lottery/internal/models"
	"github.com/stwalsh4118/city-lottery/internal/repository"
	"github.com/stwalsh4118/city-lottery/internal/services"
)

// SaveHandler handles city save and load requests.
type SaveHandler struct {
	service services.CityService
}

// NewSaveHandler creates a new SaveHandler instance.
func NewSaveHandler(service services.CityService) *SaveHandler {
	return &SaveHandler{
		service: service,
	}
}

// ListSavesRequest represents the query parameters for the list endpoint.
type ListSavesRequest struct {
	Limit int `form:"limit" binding:"omitempty,min=1,max=100"`
}

// LoadSaveURI is the path of the load endpoint.
type LoadSaveURI struct {
	ID string `uri:"id" binding:"required,uuid"`
}

// SaveResponse wraps a single save.
type SaveResponse struct {
	Save *models.CitySave `json:"save"`
}

// ListSavesResponse represents the response of the list endpoint.
type ListSavesResponse struct {
	Saves []models.CitySave `json:"saves"`
	Count int               `json:"count"`
}

// List handles GET /api/v1/saves endpoint.
func (h *SaveHandler) List(c *gin.Context) {
	var req ListSavesRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		bindError(c, err, "Invalid query parameters")
		return
	}
	if req.Limit == 0 {
		req.Limit = repository.DefaultListLimit
	}

	saves, err := h.service.ListSaves(c.Request.Context(), req.Limit)
	if err != nil {
		serviceError(c, err, "Failed to list saves")
		return
	}
	if saves == nil {
		saves = []models.CitySave{}
	}

	c.JSON(http.StatusOK, ListSavesResponse{
		Saves: saves,
		Count: len(saves),
	})
}

// Create handles POST /api/v1/saves endpoint.
// It serializes the open city and its ordinance.
func (h *SaveHandler) Create(c *gin.Context) {
	save, err := h.service.Save(c.Request.Context())
	if err != nil {
		serviceError(c, err, "Failed to save the city")
		return
	}

	if log := middleware.GetLogger(c); log != nil {
		log.Info("Saved city", map[string]interface{}{
			"save_id": save.ID.String(),
			"bytes":   save.OrdinanceSize(),
		})
	}

	c.JSON(http.StatusCreated, SaveResponse{Save: save})
}

// Load handles POST /api/v1/saves/:id/load endpoint.
// The open city, if any, is replaced by the saved one.
func (h *SaveHandler) Load(c *gin.Context) {
	var uri LoadSaveURI
	if err := c.ShouldBindUri(&uri); err != nil {
		bindError(c, err, "Invalid save id")
		return
	}

	id, err := uuid.Parse(uri.ID)
	if err != nil {
		apierrors.BadRequest(c, "Invalid save id", nil)
		return
	}

	status, err := h.service.Load(c.Request.Context(), id)
	if err != nil {
		serviceError(c, err, "Failed to load the save")
		return
	}

	c.JSON(http.StatusOK, status)
}
