package service

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/roomplan-api/internal/models"
	appErrors "github.com/noah-isme/roomplan-api/pkg/errors"
	"github.com/noah-isme/roomplan-api/pkg/events"
)

const (
	roomConflictMessage    = "Room is already booked in this period"
	teacherConflictMessage = "Teacher is already booked in this period"
)

// Layouts accepted for timestamps without a zone offset, read in the reference location.
var localTimestampLayouts = []string{
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
}

type bookingRepository interface {
	List(ctx context.Context, filter models.BookingFilter) ([]models.BookingDetail, error)
	FindByID(ctx context.Context, id string) (*models.Booking, error)
	FindOverlapping(ctx context.Context, roomID, teacherID string, start, end time.Time, excludeID string) ([]models.Booking, error)
	Create(ctx context.Context, booking *models.Booking) error
	Update(ctx context.Context, booking *models.Booking) error
	Delete(ctx context.Context, id string) (*models.Booking, error)
}

type roomLookup interface {
	FindByID(ctx context.Context, id string) (*models.Room, error)
}

type teacherLookup interface {
	FindByID(ctx context.Context, id string) (*models.Teacher, error)
}

// BookingRequest is the payload for creating or replacing a timetable entry.
type BookingRequest struct {
	RoomID      string  `json:"room_id" validate:"required"`
	TeacherID   string  `json:"teacher_id" validate:"required"`
	StartTime   string  `json:"start_time" validate:"required"`
	EndTime     string  `json:"end_time" validate:"required"`
	Description *string `json:"description"`
}

var bookingMessages = map[string]string{
	"room_id.required":    "Room is required",
	"teacher_id.required": "Teacher is required",
	"start_time.required": "Start time is required",
	"end_time.required":   "End time is required",
}

// BookingConfig tunes time handling of the booking service.
type BookingConfig struct {
	// Location interprets timestamps sent without an offset.
	Location *time.Location
	// Now overrides the clock used for the past-start check.
	Now func() time.Time
	// Metrics counts rejected bookings.
	Metrics *MetricsService
}

// BookingService validates and stores timetable bookings.
type BookingService struct {
	repo      bookingRepository
	rooms     roomLookup
	teachers  teacherLookup
	validator *validator.Validate
	notifier  *ChangeNotifier
	metrics   *MetricsService
	logger    *zap.Logger
	location  *time.Location
	now       func() time.Time
}

// NewBookingService constructs a BookingService.
func NewBookingService(repo bookingRepository, rooms roomLookup, teachers teacherLookup, validate *validator.Validate, notifier *ChangeNotifier, cfg BookingConfig, logger *zap.Logger) *BookingService {
	if validate == nil {
		validate = NewValidator()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.Location == nil {
		cfg.Location = time.UTC
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	return &BookingService{
		repo:      repo,
		rooms:     rooms,
		teachers:  teachers,
		validator: validate,
		notifier:  notifier,
		metrics:   cfg.Metrics,
		logger:    logger,
		location:  cfg.Location,
		now:       cfg.Now,
	}
}

// List returns bookings enriched with room, building and teacher names.
func (s *BookingService) List(ctx context.Context, filter models.BookingFilter) ([]models.BookingDetail, error) {
	bookings, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, appErrors.Internal(err, "failed to list timetable")
	}
	return bookings, nil
}

// Get returns a booking by id.
func (s *BookingService) Get(ctx context.Context, id string) (*models.Booking, error) {
	booking, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, storeError(err, "Booking not found", "", "failed to load booking")
	}
	return booking, nil
}

// ParseTime reads an RFC 3339 timestamp, or a zone-less one in the reference location, and returns it in UTC.
func (s *BookingService) ParseTime(value string) (time.Time, error) {
	value = strings.TrimSpace(value)
	if t, err := time.Parse(time.RFC3339Nano, value); err == nil {
		return t.UTC(), nil
	}
	for _, layout := range localTimestampLayouts {
		if t, err := time.ParseInLocation(layout, value, s.location); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, errors.New("unsupported timestamp " + value)
}

// Create stores a booking after validating its period and checking for conflicts.
func (s *BookingService) Create(ctx context.Context, req BookingRequest) (*models.Booking, error) {
	booking, err := s.buildBooking(req)
	if err != nil {
		return nil, err
	}
	if booking.StartTime.Before(s.now()) {
		return nil, invalid("Start time lies in the past")
	}
	if err := s.checkReferences(ctx, booking); err != nil {
		return nil, err
	}
	if err := s.ensureNoConflict(ctx, booking, ""); err != nil {
		return nil, err
	}

	if err := s.repo.Create(ctx, booking); err != nil {
		return nil, storeError(err, "Booking not found", "", "failed to create booking")
	}
	s.notifier.Notify(ctx, events.BookingCreated, booking)
	return booking, nil
}

// Update replaces an existing booking. The booking itself is excluded from the conflict scan,
// and the past-start check only applies when the start time changes.
func (s *BookingService) Update(ctx context.Context, id string, req BookingRequest) (*models.Booking, error) {
	candidate, err := s.buildBooking(req)
	if err != nil {
		return nil, err
	}

	existing, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if !candidate.StartTime.Equal(existing.StartTime) && candidate.StartTime.Before(s.now()) {
		return nil, invalid("Start time lies in the past")
	}
	if err := s.checkReferences(ctx, candidate); err != nil {
		return nil, err
	}
	if err := s.ensureNoConflict(ctx, candidate, existing.ID); err != nil {
		return nil, err
	}

	existing.RoomID = candidate.RoomID
	existing.TeacherID = candidate.TeacherID
	existing.StartTime = candidate.StartTime
	existing.EndTime = candidate.EndTime
	existing.Description = candidate.Description
	if err := s.repo.Update(ctx, existing); err != nil {
		return nil, storeError(err, "Booking not found", "", "failed to update booking")
	}
	s.notifier.Notify(ctx, events.BookingUpdated, existing)
	return existing, nil
}

// Delete removes a booking and returns it.
func (s *BookingService) Delete(ctx context.Context, id string) (*models.Booking, error) {
	booking, err := s.repo.Delete(ctx, id)
	if err != nil {
		return nil, storeError(err, "Booking not found", "", "failed to delete booking")
	}
	s.notifier.Notify(ctx, events.BookingDeleted, booking)
	return booking, nil
}

func (s *BookingService) buildBooking(req BookingRequest) (*models.Booking, error) {
	req.RoomID = strings.TrimSpace(req.RoomID)
	req.TeacherID = strings.TrimSpace(req.TeacherID)
	if err := s.validator.Struct(req); err != nil {
		return nil, validationError(err, "invalid booking payload", bookingMessages)
	}

	start, err := s.ParseTime(req.StartTime)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "Invalid start time")
	}
	end, err := s.ParseTime(req.EndTime)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "Invalid end time")
	}
	if !start.Before(end) {
		return nil, invalid("Start time must be before end time")
	}

	return &models.Booking{
		RoomID:      req.RoomID,
		TeacherID:   req.TeacherID,
		StartTime:   start,
		EndTime:     end,
		Description: trimOptional(req.Description),
	}, nil
}

func (s *BookingService) checkReferences(ctx context.Context, booking *models.Booking) error {
	if _, err := s.rooms.FindByID(ctx, booking.RoomID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return invalid("Room does not exist")
		}
		return appErrors.Internal(err, "failed to load room")
	}
	if _, err := s.teachers.FindByID(ctx, booking.TeacherID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return invalid("Teacher does not exist")
		}
		return appErrors.Internal(err, "failed to load teacher")
	}
	return nil
}

// ensureNoConflict rejects the booking when another booking of the same room or
// teacher overlaps it. Room conflicts are reported before teacher conflicts.
func (s *BookingService) ensureNoConflict(ctx context.Context, booking *models.Booking, excludeID string) error {
	candidates, err := s.repo.FindOverlapping(ctx, booking.RoomID, booking.TeacherID, booking.StartTime, booking.EndTime, excludeID)
	if err != nil {
		return appErrors.Internal(err, "failed to check schedule conflicts")
	}

	var roomConflicts, teacherConflicts []models.BookingConflict
	for _, other := range candidates {
		if other.ID == excludeID || !other.Overlaps(booking.StartTime, booking.EndTime) {
			continue
		}
		if other.RoomID == booking.RoomID {
			roomConflicts = append(roomConflicts, newConflict(other, models.ConflictRoom))
		}
		if other.TeacherID == booking.TeacherID {
			teacherConflicts = append(teacherConflicts, newConflict(other, models.ConflictTeacher))
		}
	}

	conflicts := append(roomConflicts, teacherConflicts...)
	if len(conflicts) == 0 {
		return nil
	}

	message := teacherConflictMessage
	if len(roomConflicts) > 0 {
		message = roomConflictMessage
		s.metrics.RecordConflict(models.ConflictRoom)
	}
	if len(teacherConflicts) > 0 {
		s.metrics.RecordConflict(models.ConflictTeacher)
	}
	s.logger.Debug("booking conflict",
		zap.String("room_id", booking.RoomID),
		zap.String("teacher_id", booking.TeacherID),
		zap.Int("conflicts", len(conflicts)),
	)
	appErr := appErrors.Wrap(&models.BookingConflictError{Message: message, Conflicts: conflicts},
		appErrors.ErrScheduleConflict.Code, appErrors.ErrScheduleConflict.Status, message)
	appErr.Details = conflicts
	return appErr
}

func newConflict(other models.Booking, dimension string) models.BookingConflict {
	return models.BookingConflict{
		BookingID: other.ID,
		RoomID:    other.RoomID,
		TeacherID: other.TeacherID,
		StartTime: other.StartTime,
		EndTime:   other.EndTime,
		Dimension: dimension,
	}
}
