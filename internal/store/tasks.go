package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/plankhq/plank/internal/model"
)

// CreateTask inserts a new task. The ID, CreatedAt, and UpdatedAt fields on
// t are populated after a successful insert.
func (s *Store) CreateTask(ctx context.Context, t *model.Task) error {
	now := time.Now().UTC()
	t.CreatedAt = now
	t.UpdatedAt = now
	if t.Status == "" {
		t.Status = model.TaskTodo
	}

	const q = `INSERT INTO tasks
		(project_id, title, description, status, priority, assignee_user_id, due_at, created_at, updated_at)
		VALUES
		(:project_id, :title, :description, :status, :priority, :assignee_user_id, :due_at, :created_at, :updated_at)`

	id, err := s.namedInsert(ctx, q, t)
	if err != nil {
		return fmt.Errorf("insert task: %w", err)
	}
	t.ID = id
	return nil
}

// GetTask returns a task by ID.
func (s *Store) GetTask(ctx context.Context, id int64) (*model.Task, error) {
	var t model.Task
	if err := s.get(ctx, &t, "SELECT * FROM tasks WHERE id = ?", id); err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get task: %w", err)
	}
	return &t, nil
}

// ListTasks returns all tasks, newest first.
func (s *Store) ListTasks(ctx context.Context) ([]model.Task, error) {
	var tasks []model.Task
	if err := s.sel(ctx, &tasks, "SELECT * FROM tasks ORDER BY created_at DESC"); err != nil {
		return nil, fmt.Errorf("list tasks: %w", err)
	}
	return tasks, nil
}

// ListTasksByProject returns all tasks belonging to a project, highest
// priority first.
func (s *Store) ListTasksByProject(ctx context.Context, projectID int64) ([]model.Task, error) {
	var tasks []model.Task
	const q = "SELECT * FROM tasks WHERE project_id = ? ORDER BY priority DESC, created_at DESC"
	if err := s.sel(ctx, &tasks, q, projectID); err != nil {
		return nil, fmt.Errorf("list tasks by project: %w", err)
	}
	return tasks, nil
}

// UpdateTask updates an existing task. The UpdatedAt field on t is refreshed
// automatically.
func (s *Store) UpdateTask(ctx context.Context, t *model.Task) error {
	t.UpdatedAt = time.Now().UTC()

	const q = `UPDATE tasks SET
		project_id = :project_id, title = :title, description = :description,
		status = :status, priority = :priority, assignee_user_id = :assignee_user_id,
		due_at = :due_at, updated_at = :updated_at
		WHERE id = :id`

	result, err := s.db.NamedExecContext(ctx, q, t)
	if err != nil {
		return fmt.Errorf("update task: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("update task rows affected: %w", err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

// DeleteTask removes a task by ID. Comments under the task are cascade
// deleted by the foreign key constraint.
func (s *Store) DeleteTask(ctx context.Context, id int64) error {
	result, err := s.exec(ctx, "DELETE FROM tasks WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("delete task: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete task rows affected: %w", err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}
