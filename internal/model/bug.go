package model

import "time"

// Bug status values.
const (
	BugOpen   = "open"
	BugClosed = "closed"
)

// Bug is a defect report filed against a project.
type Bug struct {
	ID             int64     `json:"id" db:"id"`
	ProjectID      int64     `json:"project_id" db:"project_id"`
	Title          string    `json:"title" db:"title"`
	Description    string    `json:"description" db:"description"`
	Severity       string    `json:"severity" db:"severity"`
	Status         string    `json:"status" db:"status"`
	ReporterUserID int64     `json:"reporter_user_id" db:"reporter_user_id"`
	CreatedAt      time.Time `json:"created_at" db:"created_at"`
	UpdatedAt      time.Time `json:"updated_at" db:"updated_at"`
}
