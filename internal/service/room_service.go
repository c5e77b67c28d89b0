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

const duplicateRoomMessage = "Room number already exists in this building"

type roomRepository interface {
	List(ctx context.Context, filter models.RoomFilter) ([]models.Room, error)
	FindByID(ctx context.Context, id string) (*models.Room, error)
	ExistsByRoomNr(ctx context.Context, buildingID, roomNr, excludeID string) (bool, error)
	Create(ctx context.Context, room *models.Room) error
	Update(ctx context.Context, room *models.Room) error
	DeleteCascade(ctx context.Context, id string) (*models.RoomDeletion, error)
}

type buildingLookup interface {
	FindByID(ctx context.Context, id string) (*models.Building, error)
}

// RoomRequest is the payload for creating or replacing a room. Capacity defaults to 0.
type RoomRequest struct {
	BuildingID  string            `json:"building_id" validate:"required"`
	Floor       *int              `json:"floor" validate:"required"`
	RoomNr      models.RoomNumber `json:"room_nr" validate:"required"`
	Capacity    *int              `json:"capacity" validate:"omitempty,min=0,max=1000"`
	Description *string           `json:"description"`
}

var roomMessages = map[string]string{
	"building_id.required": "Building is required",
	"floor.required":       "Floor is required",
	"room_nr.required":     "Room number is required",
	"capacity.min":         "Capacity cannot be negative",
	"capacity.max":         "Capacity is unrealistically high",
}

// RoomService orchestrates room operations.
type RoomService struct {
	repo      roomRepository
	buildings buildingLookup
	validator *validator.Validate
	notifier  *ChangeNotifier
	logger    *zap.Logger
}

// NewRoomService constructs a RoomService.
func NewRoomService(repo roomRepository, buildings buildingLookup, validate *validator.Validate, notifier *ChangeNotifier, logger *zap.Logger) *RoomService {
	if validate == nil {
		validate = NewValidator()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RoomService{repo: repo, buildings: buildings, validator: validate, notifier: notifier, logger: logger}
}

// List returns rooms, optionally scoped to one building.
func (s *RoomService) List(ctx context.Context, filter models.RoomFilter) ([]models.Room, error) {
	rooms, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, appErrors.Internal(err, "Database error while fetching rooms")
	}
	return rooms, nil
}

// ListByBuilding returns the rooms of an existing building.
func (s *RoomService) ListByBuilding(ctx context.Context, buildingID string) ([]models.Room, error) {
	if _, err := s.buildings.FindByID(ctx, buildingID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "Building not found")
		}
		return nil, appErrors.Internal(err, "failed to load building")
	}
	return s.List(ctx, models.RoomFilter{BuildingID: buildingID})
}

// Get returns a room by id.
func (s *RoomService) Get(ctx context.Context, id string) (*models.Room, error) {
	room, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "Room not found")
		}
		return nil, appErrors.Internal(err, "failed to load room")
	}
	return room, nil
}

// Create registers a new room inside an existing building.
func (s *RoomService) Create(ctx context.Context, req RoomRequest) (*models.Room, error) {
	req = normalizeRoomRequest(req)
	if err := s.validator.Struct(req); err != nil {
		return nil, validationError(err, "invalid room payload", roomMessages)
	}
	if err := s.checkReferences(ctx, req, ""); err != nil {
		return nil, err
	}

	room := &models.Room{}
	applyRoomRequest(room, req)
	if err := s.repo.Create(ctx, room); err != nil {
		return nil, storeError(err, "Room not found", duplicateRoomMessage, "failed to create room")
	}
	s.notifier.Notify(ctx, events.RoomCreated, room)
	return room, nil
}

// Update replaces all fields of an existing room.
func (s *RoomService) Update(ctx context.Context, id string, req RoomRequest) (*models.Room, error) {
	req = normalizeRoomRequest(req)
	if err := s.validator.Struct(req); err != nil {
		return nil, validationError(err, "invalid room payload", roomMessages)
	}

	room, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.checkReferences(ctx, req, id); err != nil {
		return nil, err
	}

	applyRoomRequest(room, req)
	if err := s.repo.Update(ctx, room); err != nil {
		return nil, storeError(err, "Room not found", duplicateRoomMessage, "failed to update room")
	}
	s.notifier.Notify(ctx, events.RoomUpdated, room)
	return room, nil
}

// Delete removes a room together with its bookings.
func (s *RoomService) Delete(ctx context.Context, id string) (*models.RoomDeletion, error) {
	result, err := s.repo.DeleteCascade(ctx, id)
	if err != nil {
		return nil, storeError(err, "Room not found", duplicateRoomMessage, "Database error while deleting room")
	}
	s.logger.Info("room deleted", zap.String("room_id", id), zap.Int("bookings", len(result.Bookings)))
	s.notifier.Deleted(ctx, events.RoomDeleted, "room", 1+len(result.Bookings), result)
	return result, nil
}

func (s *RoomService) checkReferences(ctx context.Context, req RoomRequest, excludeID string) error {
	if _, err := s.buildings.FindByID(ctx, req.BuildingID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return invalid("Building does not exist")
		}
		return appErrors.Internal(err, "failed to load building")
	}
	exists, err := s.repo.ExistsByRoomNr(ctx, req.BuildingID, string(req.RoomNr), excludeID)
	if err != nil {
		return appErrors.Internal(err, "failed to validate room")
	}
	if exists {
		return appErrors.Clone(appErrors.ErrDuplicate, duplicateRoomMessage)
	}
	return nil
}

func normalizeRoomRequest(req RoomRequest) RoomRequest {
	req.BuildingID = strings.TrimSpace(req.BuildingID)
	req.RoomNr = models.RoomNumber(strings.TrimSpace(string(req.RoomNr)))
	req.Description = trimOptional(req.Description)
	return req
}

func applyRoomRequest(room *models.Room, req RoomRequest) {
	room.BuildingID = req.BuildingID
	room.Floor = *req.Floor
	room.RoomNr = string(req.RoomNr)
	room.Capacity = 0
	if req.Capacity != nil {
		room.Capacity = *req.Capacity
	}
	room.Description = req.Description
}
