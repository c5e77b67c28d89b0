package models

import "time"

// Teacher represents an instructor who can book rooms.
type Teacher struct {
	ID        string    `db:"id" json:"id"`
	FirstName string    `db:"first_name" json:"first_name"`
	LastName  string    `db:"last_name" json:"last_name"`
	Email     string    `db:"email" json:"email"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
}

// FullName joins first and last name for display.
func (t Teacher) FullName() string {
	return t.FirstName + " " + t.LastName
}

// TeacherFilter captures filtering options for listing teachers.
type TeacherFilter struct {
	Search string
}
