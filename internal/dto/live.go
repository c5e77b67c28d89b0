package dto

import "time"

// LiveEntry is one booking rendered in the display timezone.
type LiveEntry struct {
	ID           string  `json:"id"`
	Start        string  `json:"start"`
	End          string  `json:"end"`
	RoomNr       string  `json:"room_nr"`
	BuildingName string  `json:"building_name"`
	TeacherName  string  `json:"teacher_name"`
	Description  *string `json:"description,omitempty"`
	Current      bool    `json:"current"`
}

// LiveDay groups the entries starting on one local date.
type LiveDay struct {
	Date    string      `json:"date"`
	Label   string      `json:"label"`
	Entries []LiveEntry `json:"entries"`
}

// LiveSchedule is the payload behind the live view.
type LiveSchedule struct {
	GeneratedAt    time.Time `json:"generated_at"`
	Timezone       string    `json:"timezone"`
	RefreshSeconds int       `json:"refresh_seconds"`
	Days           []LiveDay `json:"days"`
}
