package service

import (
	"database/sql"
	"errors"

	"github.com/noah-isme/roomplan-api/internal/repository"
	appErrors "github.com/noah-isme/roomplan-api/pkg/errors"
)

// storeError maps repository failures to API errors. Constraint violations
// caught by the store become the same 400s the pre-checks produce.
func storeError(err error, notFound, duplicate, message string) error {
	switch {
	case errors.Is(err, sql.ErrNoRows):
		return appErrors.Clone(appErrors.ErrNotFound, notFound)
	case errors.Is(err, repository.ErrDuplicate):
		return appErrors.Wrap(err, appErrors.ErrDuplicate.Code, appErrors.ErrDuplicate.Status, duplicate)
	case errors.Is(err, repository.ErrMissingReference):
		return appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "referenced record does not exist")
	case errors.Is(err, repository.ErrRoomOverlap):
		return appErrors.Wrap(err, appErrors.ErrScheduleConflict.Code, appErrors.ErrScheduleConflict.Status, roomConflictMessage)
	case errors.Is(err, repository.ErrTeacherOverlap):
		return appErrors.Wrap(err, appErrors.ErrScheduleConflict.Code, appErrors.ErrScheduleConflict.Status, teacherConflictMessage)
	default:
		return appErrors.Internal(err, message)
	}
}
