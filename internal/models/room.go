package models

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// Room is a bookable space inside a building.
type Room struct {
	ID          string    `db:"id" json:"id"`
	BuildingID  string    `db:"building_id" json:"building_id"`
	Floor       int       `db:"floor" json:"floor"`
	RoomNr      string    `db:"room_nr" json:"room_nr"`
	Capacity    int       `db:"capacity" json:"capacity"`
	Description *string   `db:"description" json:"description,omitempty"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
	UpdatedAt   time.Time `db:"updated_at" json:"updated_at"`
}

// RoomFilter captures filtering options for listing rooms.
type RoomFilter struct {
	BuildingID string
}

// RoomNumber accepts both JSON strings and numbers, since room numbers like 101 are often sent unquoted.
type RoomNumber string

// UnmarshalJSON implements json.Unmarshaler.
func (n *RoomNumber) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*n = ""
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*n = RoomNumber(strings.TrimSpace(s))
		return nil
	}
	var num json.Number
	if err := json.Unmarshal(data, &num); err != nil {
		return fmt.Errorf("room_nr must be a string or number")
	}
	*n = RoomNumber(num.String())
	return nil
}
