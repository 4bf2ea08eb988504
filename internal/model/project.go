package model

import "time"

// Project status values.
const (
	ProjectActive   = "active"
	ProjectArchived = "archived"
)

// Project groups tasks, bugs, and meetings under a named effort.
type Project struct {
	ID          int64     `json:"id" db:"id"`
	Name        string    `json:"name" db:"name"`
	Description string    `json:"description" db:"description"`
	Status      string    `json:"status" db:"status"`
	OwnerUserID int64     `json:"owner_user_id" db:"owner_user_id"`
	CreatedAt   time.Time `json:"created_at" db:"created_at"`
	UpdatedAt   time.Time `json:"updated_at" db:"updated_at"`
}
