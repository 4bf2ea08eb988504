package model

import "time"

// Comment is a note attached to a task.
type Comment struct {
	ID           int64     `json:"id" db:"id"`
	TaskID       int64     `json:"task_id" db:"task_id"`
	AuthorUserID int64     `json:"author_user_id" db:"author_user_id"`
	Body         string    `json:"body" db:"body"`
	CreatedAt    time.Time `json:"created_at" db:"created_at"`
}
