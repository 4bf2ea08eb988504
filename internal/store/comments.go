package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/plankhq/plank/internal/model"
)

// CreateComment inserts a new comment on a task. The ID and CreatedAt fields
// on c are populated after a successful insert.
func (s *Store) CreateComment(ctx context.Context, c *model.Comment) error {
	c.CreatedAt = time.Now().UTC()

	const q = `INSERT INTO comments
		(task_id, author_user_id, body, created_at)
		VALUES
		(:task_id, :author_user_id, :body, :created_at)`

	id, err := s.namedInsert(ctx, q, c)
	if err != nil {
		return fmt.Errorf("insert comment: %w", err)
	}
	c.ID = id
	return nil
}

// GetComment returns a comment by ID.
func (s *Store) GetComment(ctx context.Context, id int64) (*model.Comment, error) {
	var c model.Comment
	if err := s.get(ctx, &c, "SELECT * FROM comments WHERE id = ?", id); err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get comment: %w", err)
	}
	return &c, nil
}

// ListCommentsByTask returns all comments on a task, oldest first.
func (s *Store) ListCommentsByTask(ctx context.Context, taskID int64) ([]model.Comment, error) {
	var comments []model.Comment
	const q = "SELECT * FROM comments WHERE task_id = ? ORDER BY created_at"
	if err := s.sel(ctx, &comments, q, taskID); err != nil {
		return nil, fmt.Errorf("list comments by task: %w", err)
	}
	return comments, nil
}

// DeleteComment removes a comment by ID.
func (s *Store) DeleteComment(ctx context.Context, id int64) error {
	result, err := s.exec(ctx, "DELETE FROM comments WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("delete comment: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete comment rows affected: %w", err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}
