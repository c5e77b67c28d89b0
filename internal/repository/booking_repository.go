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

const bookingColumns = "id, room_id, teacher_id, start_time, end_time, description, created_at, updated_at"

const bookingDetailSelect = `SELECT b.id, b.room_id, b.teacher_id, b.start_time, b.end_time, b.description, b.created_at, b.updated_at,
	r.room_nr, r.building_id, bu.name AS building_name, CONCAT(t.first_name, ' ', t.last_name) AS teacher_name
	FROM bookings b
	JOIN rooms r ON r.id = b.room_id
	JOIN buildings bu ON bu.id = r.building_id
	JOIN teachers t ON t.id = b.teacher_id`

// BookingRepository manages persistence for timetable bookings.
type BookingRepository struct {
	db *sqlx.DB
}

// NewBookingRepository constructs a BookingRepository.
func NewBookingRepository(db *sqlx.DB) *BookingRepository {
	return &BookingRepository{db: db}
}

// List returns bookings joined with room, building and teacher names ordered by start time.
func (r *BookingRepository) List(ctx context.Context, filter models.BookingFilter) ([]models.BookingDetail, error) {
	var conditions []string
	var args []interface{}

	if filter.RoomID != "" {
		conditions = append(conditions, "b.room_id = ?")
		args = append(args, filter.RoomID)
	}
	if filter.TeacherID != "" {
		conditions = append(conditions, "b.teacher_id = ?")
		args = append(args, filter.TeacherID)
	}
	if filter.BuildingID != "" {
		conditions = append(conditions, "r.building_id = ?")
		args = append(args, filter.BuildingID)
	}
	if filter.From != nil {
		conditions = append(conditions, "b.end_time > ?")
		args = append(args, filter.From.UTC())
	}
	if filter.To != nil {
		conditions = append(conditions, "b.start_time < ?")
		args = append(args, filter.To.UTC())
	}

	query := bookingDetailSelect
	if len(conditions) > 0 {
		query += " WHERE " + strings.Join(conditions, " AND ")
	}
	query += " ORDER BY b.start_time ASC, r.room_nr ASC"

	bookings := []models.BookingDetail{}
	if err := r.db.SelectContext(ctx, &bookings, r.db.Rebind(query), args...); err != nil {
		if isMalformedKey(err) {
			return bookings, nil
		}
		return nil, fmt.Errorf("list bookings: %w", err)
	}
	return bookings, nil
}

// ListUpcoming returns bookings that have not ended at the given instant.
func (r *BookingRepository) ListUpcoming(ctx context.Context, now time.Time) ([]models.BookingDetail, error) {
	query := r.db.Rebind(bookingDetailSelect + " WHERE b.end_time > ? ORDER BY b.start_time ASC, r.room_nr ASC")
	bookings := []models.BookingDetail{}
	if err := r.db.SelectContext(ctx, &bookings, query, now.UTC()); err != nil {
		return nil, fmt.Errorf("list upcoming bookings: %w", err)
	}
	return bookings, nil
}

// FindByID fetches a booking by id.
func (r *BookingRepository) FindByID(ctx context.Context, id string) (*models.Booking, error) {
	var booking models.Booking
	query := r.db.Rebind("SELECT " + bookingColumns + " FROM bookings WHERE id = ?")
	if err := r.db.GetContext(ctx, &booking, query, id); err != nil {
		return nil, classifyError(err)
	}
	return &booking, nil
}

// FindOverlapping returns bookings of the room or the teacher that intersect [start, end).
// excludeID skips the booking being updated.
func (r *BookingRepository) FindOverlapping(ctx context.Context, roomID, teacherID string, start, end time.Time, excludeID string) ([]models.Booking, error) {
	query := "SELECT " + bookingColumns + " FROM bookings WHERE (room_id = ? OR teacher_id = ?) AND start_time < ? AND end_time > ?"
	args := []interface{}{roomID, teacherID, end.UTC(), start.UTC()}
	if excludeID != "" {
		query += " AND id <> ?"
		args = append(args, excludeID)
	}
	query += " ORDER BY start_time ASC"

	bookings := []models.Booking{}
	if err := r.db.SelectContext(ctx, &bookings, r.db.Rebind(query), args...); err != nil {
		return nil, fmt.Errorf("find overlapping bookings: %w", err)
	}
	return bookings, nil
}

// Create inserts a new booking.
func (r *BookingRepository) Create(ctx context.Context, booking *models.Booking) error {
	if booking.ID == "" {
		booking.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	booking.CreatedAt = now
	booking.UpdatedAt = now

	query := r.db.Rebind(`INSERT INTO bookings (id, room_id, teacher_id, start_time, end_time, description, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`)
	if _, err := r.db.ExecContext(ctx, query, booking.ID, booking.RoomID, booking.TeacherID, booking.StartTime.UTC(), booking.EndTime.UTC(), booking.Description, booking.CreatedAt, booking.UpdatedAt); err != nil {
		return fmt.Errorf("create booking: %w", classifyError(err))
	}
	return nil
}

// Update modifies an existing booking.
func (r *BookingRepository) Update(ctx context.Context, booking *models.Booking) error {
	booking.UpdatedAt = time.Now().UTC()
	query := r.db.Rebind(`UPDATE bookings SET room_id = ?, teacher_id = ?, start_time = ?, end_time = ?, description = ?, updated_at = ? WHERE id = ?`)
	res, err := r.db.ExecContext(ctx, query, booking.RoomID, booking.TeacherID, booking.StartTime.UTC(), booking.EndTime.UTC(), booking.Description, booking.UpdatedAt, booking.ID)
	if err != nil {
		return fmt.Errorf("update booking: %w", classifyError(err))
	}
	return requireAffected(res)
}

// Delete removes a booking and returns the deleted row.
// sql.ErrNoRows is returned when the booking does not exist.
func (r *BookingRepository) Delete(ctx context.Context, id string) (*models.Booking, error) {
	var booking models.Booking
	err := withTx(ctx, r.db, "booking delete", func(tx *sqlx.Tx) error {
		if err := tx.GetContext(ctx, &booking, tx.Rebind("SELECT "+bookingColumns+" FROM bookings WHERE id = ? FOR UPDATE"), id); err != nil {
			return classifyError(err)
		}
		if _, err := tx.ExecContext(ctx, tx.Rebind("DELETE FROM bookings WHERE id = ?"), id); err != nil {
			return fmt.Errorf("delete booking: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &booking, nil
}
