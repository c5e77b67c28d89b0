package handler

import (
	"context"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/roomplan-api/internal/models"
	"github.com/noah-isme/roomplan-api/internal/service"
	appErrors "github.com/noah-isme/roomplan-api/pkg/errors"
	"github.com/noah-isme/roomplan-api/pkg/response"
)

type buildingService interface {
	List(ctx context.Context, filter models.BuildingFilter) ([]models.Building, error)
	Get(ctx context.Context, id string) (*models.Building, error)
	Create(ctx context.Context, req service.BuildingRequest) (*models.Building, error)
	Update(ctx context.Context, id string, req service.BuildingRequest) (*models.Building, error)
	Delete(ctx context.Context, id string) (*models.BuildingDeletion, error)
}

// BuildingHandler wires building services to HTTP routes.
type BuildingHandler struct {
	buildings buildingService
}

// NewBuildingHandler constructs a BuildingHandler.
func NewBuildingHandler(buildings buildingService) *BuildingHandler {
	return &BuildingHandler{buildings: buildings}
}

// List godoc
// @Summary List buildings
// @Tags Buildings
// @Produce json
// @Param search query string false "Search by name or address"
// @Success 200 {object} response.Envelope
// @Router /buildings [get]
func (h *BuildingHandler) List(c *gin.Context) {
	buildings, err := h.buildings.List(c.Request.Context(), models.BuildingFilter{Search: strings.TrimSpace(c.Query("search"))})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, buildings)
}

// Get godoc
// @Summary Get building
// @Tags Buildings
// @Produce json
// @Param id path string true "Building ID"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /buildings/{id} [get]
func (h *BuildingHandler) Get(c *gin.Context) {
	building, err := h.buildings.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, building)
}

// Create godoc
// @Summary Create building
// @Tags Buildings
// @Accept json
// @Produce json
// @Param payload body service.BuildingRequest true "Building payload"
// @Success 201 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /buildings [post]
func (h *BuildingHandler) Create(c *gin.Context) {
	var req service.BuildingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid building payload"))
		return
	}
	building, err := h.buildings.Create(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, building)
}

// Update godoc
// @Summary Replace building
// @Tags Buildings
// @Accept json
// @Produce json
// @Param id path string true "Building ID"
// @Param payload body service.BuildingRequest true "Building payload"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /buildings/{id} [put]
func (h *BuildingHandler) Update(c *gin.Context) {
	var req service.BuildingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid building payload"))
		return
	}
	building, err := h.buildings.Update(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, building)
}

// Delete godoc
// @Summary Delete building with its rooms and bookings
// @Tags Buildings
// @Produce json
// @Param id path string true "Building ID"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /buildings/{id} [delete]
func (h *BuildingHandler) Delete(c *gin.Context) {
	result, err := h.buildings.Delete(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, result, gin.H{"message": "Building and all related data deleted"})
}
