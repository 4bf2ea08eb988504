package model

import "time"

// Task status values.
const (
	TaskTodo  = "todo"
	TaskDoing = "doing"
	TaskDone  = "done"
)

// Task is a unit of work inside a project.
type Task struct {
	ID             int64      `json:"id" db:"id"`
	ProjectID      int64      `json:"project_id" db:"project_id"`
	Title          string     `json:"title" db:"title"`
	Description    string     `json:"description" db:"description"`
	Status         string     `json:"status" db:"status"`
	Priority       int        `json:"priority" db:"priority"`
	AssigneeUserID *int64     `json:"assignee_user_id,omitempty" db:"assignee_user_id"`
	DueAt          *time.Time `json:"due_at,omitempty" db:"due_at"`
	CreatedAt      time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt      time.Time  `json:"updated_at" db:"updated_at"`
}

// ValidTaskStatus reports whether s is one of the known task states.
func ValidTaskStatus(s string) bool {
	return s == TaskTodo || s == TaskDoing || s == TaskDone
}
