package service

import (
	"context"
	"strings"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/roomplan-api/internal/models"
	appErrors "github.com/noah-isme/roomplan-api/pkg/errors"
	"github.com/noah-isme/roomplan-api/pkg/events"
)

type teacherRepository interface {
	List(ctx context.Context, filter models.TeacherFilter) ([]models.Teacher, error)
	FindByID(ctx context.Context, id string) (*models.Teacher, error)
	ExistsByEmail(ctx context.Context, email, excludeID string) (bool, error)
	Create(ctx context.Context, teacher *models.Teacher) error
	Update(ctx context.Context, teacher *models.Teacher) error
	DeleteCascade(ctx context.Context, id string) (*models.TeacherDeletion, error)
}

// TeacherRequest is the payload for creating or replacing a teacher.
type TeacherRequest struct {
	FirstName string `json:"first_name" validate:"required"`
	LastName  string `json:"last_name" validate:"required"`
	Email     string `json:"email" validate:"required,email"`
}

var teacherMessages = map[string]string{
	"first_name.required": "First name is required",
	"last_name.required":  "Last name is required",
	"email.required":      "Email is required",
	"email.email":         "Invalid email format",
}

// TeacherService orchestrates teacher operations.
type TeacherService struct {
	repo      teacherRepository
	validator *validator.Validate
	notifier  *ChangeNotifier
	logger    *zap.Logger
}

// NewTeacherService constructs a TeacherService.
func NewTeacherService(repo teacherRepository, validate *validator.Validate, notifier *ChangeNotifier, logger *zap.Logger) *TeacherService {
	if validate == nil {
		validate = NewValidator()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &TeacherService{repo: repo, validator: validate, notifier: notifier, logger: logger}
}

// List returns teachers matching the filter.
func (s *TeacherService) List(ctx context.Context, filter models.TeacherFilter) ([]models.Teacher, error) {
	teachers, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, appErrors.Internal(err, "failed to list teachers")
	}
	return teachers, nil
}

// Get returns a teacher by id.
func (s *TeacherService) Get(ctx context.Context, id string) (*models.Teacher, error) {
	teacher, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, storeError(err, "Teacher not found", "", "failed to load teacher")
	}
	return teacher, nil
}

// Create registers a new teacher record.
func (s *TeacherService) Create(ctx context.Context, req TeacherRequest) (*models.Teacher, error) {
	req = normalizeTeacherRequest(req)
	if err := s.validator.Struct(req); err != nil {
		return nil, validationError(err, "invalid teacher payload", teacherMessages)
	}

	const duplicate = "Teacher with this email already exists"
	if err := s.ensureUniqueEmail(ctx, req.Email, "", duplicate); err != nil {
		return nil, err
	}

	teacher := &models.Teacher{FirstName: req.FirstName, LastName: req.LastName, Email: req.Email}
	if err := s.repo.Create(ctx, teacher); err != nil {
		return nil, storeError(err, "Teacher not found", duplicate, "failed to create teacher")
	}
	s.notifier.Notify(ctx, events.TeacherCreated, teacher)
	return teacher, nil
}

// Update replaces all fields of an existing teacher.
func (s *TeacherService) Update(ctx context.Context, id string, req TeacherRequest) (*models.Teacher, error) {
	req = normalizeTeacherRequest(req)
	if err := s.validator.Struct(req); err != nil {
		return nil, validationError(err, "invalid teacher payload", teacherMessages)
	}

	teacher, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	const duplicate = "Another teacher already uses this email"
	if err := s.ensureUniqueEmail(ctx, req.Email, id, duplicate); err != nil {
		return nil, err
	}

	teacher.FirstName = req.FirstName
	teacher.LastName = req.LastName
	teacher.Email = req.Email
	if err := s.repo.Update(ctx, teacher); err != nil {
		return nil, storeError(err, "Teacher not found", duplicate, "failed to update teacher")
	}
	s.notifier.Notify(ctx, events.TeacherUpdated, teacher)
	return teacher, nil
}

// Delete removes a teacher and every booking they hold.
func (s *TeacherService) Delete(ctx context.Context, id string) (*models.TeacherDeletion, error) {
	result, err := s.repo.DeleteCascade(ctx, id)
	if err != nil {
		return nil, storeError(err, "Teacher not found", "", "failed to delete teacher")
	}
	s.logger.Info("teacher deleted", zap.String("teacher_id", id), zap.Int("bookings", len(result.Bookings)))
	s.notifier.Deleted(ctx, events.TeacherDeleted, "teacher", 1+len(result.Bookings), result)
	return result, nil
}

func (s *TeacherService) ensureUniqueEmail(ctx context.Context, email, excludeID, message string) error {
	exists, err := s.repo.ExistsByEmail(ctx, email, excludeID)
	if err != nil {
		return appErrors.Internal(err, "failed to validate teacher")
	}
	if exists {
		return appErrors.Clone(appErrors.ErrDuplicate, message)
	}
	return nil
}

func normalizeTeacherRequest(req TeacherRequest) TeacherRequest {
	req.FirstName = strings.TrimSpace(req.FirstName)
	req.LastName = strings.TrimSpace(req.LastName)
	req.Email = strings.TrimSpace(req.Email)
	return req
}
