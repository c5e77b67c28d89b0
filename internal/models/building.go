package models

import "time"

// Building groups rooms under a postal address.
type Building struct {
	ID          string    `db:"id" json:"id"`
	Name        string    `db:"name" json:"name"`
	Address     string    `db:"address" json:"address"`
	Description *string   `db:"description" json:"description,omitempty"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
	UpdatedAt   time.Time `db:"updated_at" json:"updated_at"`
}

// BuildingFilter captures filtering options for listing buildings.
type BuildingFilter struct {
	Search string
}
