package models

// BuildingDeletion lists everything removed by a building cascade.
type BuildingDeletion struct {
	Building Building  `json:"deleted_building"`
	Rooms    []Room    `json:"deleted_rooms"`
	Bookings []Booking `json:"deleted_bookings"`
}

// RoomDeletion lists everything removed by a room cascade.
type RoomDeletion struct {
	Room     Room      `json:"deleted_room"`
	Bookings []Booking `json:"deleted_bookings"`
}

// TeacherDeletion lists everything removed by a teacher cascade.
type TeacherDeletion struct {
	Teacher  Teacher   `json:"deleted_teacher"`
	Bookings []Booking `json:"deleted_bookings"`
}
