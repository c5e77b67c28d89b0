package repository

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/roomplan-api/internal/models"
)

const teacherColumns = "id, first_name, last_name, email, created_at, updated_at"

// TeacherRepository manages persistence for teachers.
type TeacherRepository struct {
	db *sqlx.DB
}

// NewTeacherRepository constructs a TeacherRepository.
func NewTeacherRepository(db *sqlx.DB) *TeacherRepository {
	return &TeacherRepository{db: db}
}

// List returns teachers ordered by last and first name.
func (r *TeacherRepository) List(ctx context.Context, filter models.TeacherFilter) ([]models.Teacher, error) {
	query := "SELECT " + teacherColumns + " FROM teachers"
	var args []interface{}
	if filter.Search != "" {
		search := "%" + strings.ToLower(filter.Search) + "%"
		query += " WHERE (LOWER(first_name) LIKE ? OR LOWER(last_name) LIKE ? OR LOWER(email) LIKE ?)"
		args = append(args, search, search, search)
	}
	query += " ORDER BY last_name ASC, first_name ASC"

	teachers := []models.Teacher{}
	if err := r.db.SelectContext(ctx, &teachers, r.db.Rebind(query), args...); err != nil {
		return nil, fmt.Errorf("list teachers: %w", err)
	}
	return teachers, nil
}

// FindByID fetches a teacher by id.
func (r *TeacherRepository) FindByID(ctx context.Context, id string) (*models.Teacher, error) {
	var teacher models.Teacher
	query := r.db.Rebind("SELECT " + teacherColumns + " FROM teachers WHERE id = ?")
	if err := r.db.GetContext(ctx, &teacher, query, id); err != nil {
		return nil, classifyError(err)
	}
	return &teacher, nil
}

// ExistsByEmail checks, case-insensitively, whether another teacher uses the email.
func (r *TeacherRepository) ExistsByEmail(ctx context.Context, email, excludeID string) (bool, error) {
	query := "SELECT COUNT(1) FROM teachers WHERE LOWER(email) = LOWER(?)"
	args := []interface{}{email}
	if excludeID != "" {
		query += " AND id <> ?"
		args = append(args, excludeID)
	}
	var count int
	if err := r.db.GetContext(ctx, &count, r.db.Rebind(query), args...); err != nil {
		return false, fmt.Errorf("check teacher email: %w", err)
	}
	return count > 0, nil
}

// Create inserts a new teacher.
func (r *TeacherRepository) Create(ctx context.Context, teacher *models.Teacher) error {
	if teacher.ID == "" {
		teacher.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	teacher.CreatedAt = now
	teacher.UpdatedAt = now

	query := r.db.Rebind(`INSERT INTO teachers (id, first_name, last_name, email, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?)`)
	if _, err := r.db.ExecContext(ctx, query, teacher.ID, teacher.FirstName, teacher.LastName, teacher.Email, teacher.CreatedAt, teacher.UpdatedAt); err != nil {
		return fmt.Errorf("create teacher: %w", classifyError(err))
	}
	return nil
}

// Update modifies teacher fields.
func (r *TeacherRepository) Update(ctx context.Context, teacher *models.Teacher) error {
	teacher.UpdatedAt = time.Now().UTC()
	query := r.db.Rebind(`UPDATE teachers SET first_name = ?, last_name = ?, email = ?, updated_at = ? WHERE id = ?`)
	res, err := r.db.ExecContext(ctx, query, teacher.FirstName, teacher.LastName, teacher.Email, teacher.UpdatedAt, teacher.ID)
	if err != nil {
		return fmt.Errorf("update teacher: %w", classifyError(err))
	}
	return requireAffected(res)
}

// DeleteCascade removes a teacher and every booking they hold in one transaction.
// sql.ErrNoRows is returned when the teacher does not exist.
func (r *TeacherRepository) DeleteCascade(ctx context.Context, id string) (*models.TeacherDeletion, error) {
	result := &models.TeacherDeletion{Bookings: []models.Booking{}}
	err := withTx(ctx, r.db, "teacher delete", func(tx *sqlx.Tx) error {
		if err := tx.GetContext(ctx, &result.Teacher, tx.Rebind("SELECT "+teacherColumns+" FROM teachers WHERE id = ? FOR UPDATE"), id); err != nil {
			return classifyError(err)
		}
		if err := tx.SelectContext(ctx, &result.Bookings, tx.Rebind("SELECT "+bookingColumns+" FROM bookings WHERE teacher_id = ? ORDER BY start_time ASC"), id); err != nil {
			return fmt.Errorf("collect teacher bookings: %w", err)
		}
		if _, err := tx.ExecContext(ctx, tx.Rebind("DELETE FROM bookings WHERE teacher_id = ?"), id); err != nil {
			return fmt.Errorf("delete teacher bookings: %w", err)
		}
		if _, err := tx.ExecContext(ctx, tx.Rebind("DELETE FROM teachers WHERE id = ?"), id); err != nil {
			return fmt.Errorf("delete teacher: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}
