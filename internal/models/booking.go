package models

import "time"

// Booking reserves one room for one teacher over [StartTime, EndTime).
type Booking struct {
	ID          string    `db:"id" json:"id"`
	RoomID      string    `db:"room_id" json:"room_id"`
	TeacherID   string    `db:"teacher_id" json:"teacher_id"`
	StartTime   time.Time `db:"start_time" json:"start_time"`
	EndTime     time.Time `db:"end_time" json:"end_time"`
	Description *string   `db:"description" json:"description,omitempty"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
	UpdatedAt   time.Time `db:"updated_at" json:"updated_at"`
}

// Overlaps reports whether the booking intersects [start, end). Touching endpoints do not overlap.
func (b Booking) Overlaps(start, end time.Time) bool {
	return b.StartTime.Before(end) && b.EndTime.After(start)
}

// BookingDetail enriches a booking with display names from rooms, buildings and teachers.
type BookingDetail struct {
	Booking
	RoomNr       string `db:"room_nr" json:"room_nr"`
	BuildingID   string `db:"building_id" json:"building_id"`
	BuildingName string `db:"building_name" json:"building_name"`
	TeacherName  string `db:"teacher_name" json:"teacher_name"`
}

// BookingFilter describes query params for listing bookings.
type BookingFilter struct {
	RoomID     string
	TeacherID  string
	BuildingID string
	From       *time.Time
	To         *time.Time
}

// Conflict dimensions.
const (
	ConflictRoom    = "ROOM"
	ConflictTeacher = "TEACHER"
)

// BookingConflict describes an existing booking that collides with a candidate.
type BookingConflict struct {
	BookingID string    `json:"booking_id"`
	RoomID    string    `json:"room_id"`
	TeacherID string    `json:"teacher_id"`
	StartTime time.Time `json:"start_time"`
	EndTime   time.Time `json:"end_time"`
	Dimension string    `json:"dimension"`
}

// BookingConflictError is returned when a booking collides with existing ones.
type BookingConflictError struct {
	Message   string            `json:"message"`
	Conflicts []BookingConflict `json:"conflicts"`
}

// Error implements the error interface for conflict errors.
func (e *BookingConflictError) Error() string {
	if e == nil {
		return "<nil>"
	}
	return e.Message
}
