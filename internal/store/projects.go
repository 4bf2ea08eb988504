package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/plankhq/plank/internal/model"
)

// CreateProject inserts a new project. The ID, CreatedAt, and UpdatedAt
// fields on p are populated after a successful insert.
func (s *Store) CreateProject(ctx context.Context, p *model.Project) error {
	now := time.Now().UTC()
	p.CreatedAt = now
	p.UpdatedAt = now
	if p.Status == "" {
		p.Status = model.ProjectActive
	}

	const q = `INSERT INTO projects
		(name, description, status, owner_user_id, created_at, updated_at)
		VALUES
		(:name, :description, :status, :owner_user_id, :created_at, :updated_at)`

	id, err := s.namedInsert(ctx, q, p)
	if err != nil {
		return fmt.Errorf("insert project: %w", err)
	}
	p.ID = id
	return nil
}

// GetProject returns a project by ID.
func (s *Store) GetProject(ctx context.Context, id int64) (*model.Project, error) {
	var p model.Project
	if err := s.get(ctx, &p, "SELECT * FROM projects WHERE id = ?", id); err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get project: %w", err)
	}
	return &p, nil
}

// ListProjects returns all projects ordered by name.
func (s *Store) ListProjects(ctx context.Context) ([]model.Project, error) {
	var projects []model.Project
	if err := s.sel(ctx, &projects, "SELECT * FROM projects ORDER BY name"); err != nil {
		return nil, fmt.Errorf("list projects: %w", err)
	}
	return projects, nil
}

// UpdateProject updates an existing project. The UpdatedAt field on p is
// refreshed automatically.
func (s *Store) UpdateProject(ctx context.Context, p *model.Project) error {
	p.UpdatedAt = time.Now().UTC()

	const q = `UPDATE projects SET
		name = :name, description = :description, status = :status,
		owner_user_id = :owner_user_id, updated_at = :updated_at
		WHERE id = :id`

	result, err := s.db.NamedExecContext(ctx, q, p)
	if err != nil {
		return fmt.Errorf("update project: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("update project rows affected: %w", err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

// DeleteProject removes a project by ID. Tasks, bugs, and meetings under the
// project are cascade deleted by the foreign key constraints.
func (s *Store) DeleteProject(ctx context.Context, id int64) error {
	result, err := s.exec(ctx, "DELETE FROM projects WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("delete project: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete project rows affected: %w", err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}
