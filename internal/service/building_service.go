package service

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/roomplan-api/internal/models"
	appErrors "github.com/noah-isme/roomplan-api/pkg/errors"
	"github.com/noah-isme/roomplan-api/pkg/events"
)

const duplicateBuildingMessage = "Building with this name and address already exists"

type buildingRepository interface {
	List(ctx context.Context, filter models.BuildingFilter) ([]models.Building, error)
	FindByID(ctx context.Context, id string) (*models.Building, error)
	ExistsByNameAddress(ctx context.Context, name, address, excludeID string) (bool, error)
	Create(ctx context.Context, building *models.Building) error
	Update(ctx context.Context, building *models.Building) error
	DeleteCascade(ctx context.Context, id string) (*models.BuildingDeletion, error)
}

// BuildingRequest is the payload for creating or replacing a building.
type BuildingRequest struct {
	Name        string  `json:"name" validate:"required"`
	Address     string  `json:"address" validate:"required"`
	Description *string `json:"description"`
}

var buildingMessages = map[string]string{
	"name.required":    "Building name is required",
	"address.required": "Building address is required",
}

// BuildingService orchestrates building operations.
type BuildingService struct {
	repo      buildingRepository
	validator *validator.Validate
	notifier  *ChangeNotifier
	logger    *zap.Logger
}

// NewBuildingService constructs a BuildingService.
func NewBuildingService(repo buildingRepository, validate *validator.Validate, notifier *ChangeNotifier, logger *zap.Logger) *BuildingService {
	if validate == nil {
		validate = NewValidator()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &BuildingService{repo: repo, validator: validate, notifier: notifier, logger: logger}
}

// List returns all buildings matching the filter.
func (s *BuildingService) List(ctx context.Context, filter models.BuildingFilter) ([]models.Building, error) {
	buildings, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, appErrors.Internal(err, "failed to list buildings")
	}
	return buildings, nil
}

// Get returns a building by id.
func (s *BuildingService) Get(ctx context.Context, id string) (*models.Building, error) {
	building, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "Building not found")
		}
		return nil, appErrors.Internal(err, "failed to load building")
	}
	return building, nil
}

// Create registers a new building.
func (s *BuildingService) Create(ctx context.Context, req BuildingRequest) (*models.Building, error) {
	req = normalizeBuildingRequest(req)
	if err := s.validator.Struct(req); err != nil {
		return nil, validationError(err, "invalid building payload", buildingMessages)
	}
	if err := s.ensureUnique(ctx, req.Name, req.Address, "", duplicateBuildingMessage); err != nil {
		return nil, err
	}

	building := &models.Building{Name: req.Name, Address: req.Address, Description: req.Description}
	if err := s.repo.Create(ctx, building); err != nil {
		return nil, storeError(err, "Building not found", duplicateBuildingMessage, "failed to create building")
	}
	s.notifier.Notify(ctx, events.BuildingCreated, building)
	return building, nil
}

// Update replaces all fields of an existing building.
func (s *BuildingService) Update(ctx context.Context, id string, req BuildingRequest) (*models.Building, error) {
	req = normalizeBuildingRequest(req)
	if err := s.validator.Struct(req); err != nil {
		return nil, validationError(err, "invalid building payload", buildingMessages)
	}

	building, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	const duplicate = "Another building with this name and address already exists"
	if err := s.ensureUnique(ctx, req.Name, req.Address, id, duplicate); err != nil {
		return nil, err
	}

	building.Name = req.Name
	building.Address = req.Address
	building.Description = req.Description
	if err := s.repo.Update(ctx, building); err != nil {
		return nil, storeError(err, "Building not found", duplicate, "failed to update building")
	}
	s.notifier.Notify(ctx, events.BuildingUpdated, building)
	return building, nil
}

// Delete removes a building with all its rooms and their bookings.
func (s *BuildingService) Delete(ctx context.Context, id string) (*models.BuildingDeletion, error) {
	result, err := s.repo.DeleteCascade(ctx, id)
	if err != nil {
		return nil, storeError(err, "Building not found", duplicateBuildingMessage, "failed to delete building")
	}
	s.logger.Info("building deleted",
		zap.String("building_id", id),
		zap.Int("rooms", len(result.Rooms)),
		zap.Int("bookings", len(result.Bookings)),
	)
	s.notifier.Deleted(ctx, events.BuildingDeleted, "building", 1+len(result.Rooms)+len(result.Bookings), result)
	return result, nil
}

func (s *BuildingService) ensureUnique(ctx context.Context, name, address, excludeID, message string) error {
	exists, err := s.repo.ExistsByNameAddress(ctx, name, address, excludeID)
	if err != nil {
		return appErrors.Internal(err, "failed to validate building")
	}
	if exists {
		return appErrors.Clone(appErrors.ErrDuplicate, message)
	}
	return nil
}

func normalizeBuildingRequest(req BuildingRequest) BuildingRequest {
	req.Name = strings.TrimSpace(req.Name)
	req.Address = strings.TrimSpace(req.Address)
	req.Description = trimOptional(req.Description)
	return req
}
