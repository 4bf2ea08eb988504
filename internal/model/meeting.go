package model

import "time"

// Meeting is a scheduled discussion tied to a project. Attendees holds the
// user IDs of the invited participants; it is persisted as a JSON array.
type Meeting struct {
	ID          int64     `json:"id" db:"id"`
	ProjectID   int64     `json:"project_id" db:"project_id"`
	Title       string    `json:"title" db:"title"`
	Agenda      string    `json:"agenda" db:"agenda"`
	ScheduledAt time.Time `json:"scheduled_at" db:"scheduled_at"`
	Attendees   []int64   `json:"attendees"`
	CreatedAt   time.Time `json:"created_at" db:"created_at"`
	UpdatedAt   time.Time `json:"updated_at" db:"updated_at"`
}
