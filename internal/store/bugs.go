package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/plankhq/plank/internal/model"
)

// CreateBug inserts a new bug report. The ID, CreatedAt, and UpdatedAt fields
// on b are populated after a successful insert.
func (s *Store) CreateBug(ctx context.Context, b *model.Bug) error {
	now := time.Now().UTC()
	b.CreatedAt = now
	b.UpdatedAt = now
	if b.Status == "" {
		b.Status = model.BugOpen
	}
	if b.Severity == "" {
		b.Severity = "normal"
	}

	const q = `INSERT INTO bugs
		(project_id, title, description, severity, status, reporter_user_id, created_at, updated_at)
		VALUES
		(:project_id, :title, :description, :severity, :status, :reporter_user_id, :created_at, :updated_at)`

	id, err := s.namedInsert(ctx, q, b)
	if err != nil {
		return fmt.Errorf("insert bug: %w", err)
	}
	b.ID = id
	return nil
}

// GetBug returns a bug by ID.
func (s *Store) GetBug(ctx context.Context, id int64) (*model.Bug, error) {
	var b model.Bug
	if err := s.get(ctx, &b, "SELECT * FROM bugs WHERE id = ?", id); err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get bug: %w", err)
	}
	return &b, nil
}

// ListBugs returns all bugs, newest first.
func (s *Store) ListBugs(ctx context.Context) ([]model.Bug, error) {
	var bugs []model.Bug
	if err := s.sel(ctx, &bugs, "SELECT * FROM bugs ORDER BY created_at DESC"); err != nil {
		return nil, fmt.Errorf("list bugs: %w", err)
	}
	return bugs, nil
}

// ListBugsByProject returns all bugs filed against a project, newest first.
func (s *Store) ListBugsByProject(ctx context.Context, projectID int64) ([]model.Bug, error) {
	var bugs []model.Bug
	const q = "SELECT * FROM bugs WHERE project_id = ? ORDER BY created_at DESC"
	if err := s.sel(ctx, &bugs, q, projectID); err != nil {
		return nil, fmt.Errorf("list bugs by project: %w", err)
	}
	return bugs, nil
}

// UpdateBug updates an existing bug. The UpdatedAt field on b is refreshed
// automatically.
func (s *Store) UpdateBug(ctx context.Context, b *model.Bug) error {
	b.UpdatedAt = time.Now().UTC()

	const q = `UPDATE bugs SET
		project_id = :project_id, title = :title, description = :description,
		severity = :severity, status = :status, reporter_user_id = :reporter_user_id,
		updated_at = :updated_at
		WHERE id = :id`

	result, err := s.db.NamedExecContext(ctx, q, b)
	if err != nil {
		return fmt.Errorf("update bug: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("update bug rows affected: %w", err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

// DeleteBug removes a bug by ID.
func (s *Store) DeleteBug(ctx context.Context, id int64) error {
	result, err := s.exec(ctx, "DELETE FROM bugs WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("delete bug: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete bug rows affected: %w", err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}
