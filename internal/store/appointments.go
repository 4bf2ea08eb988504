package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/plankhq/plank/internal/model"
)

// CreateAppointment inserts a new appointment. The ID, CreatedAt, and
// UpdatedAt fields on a are populated after a successful insert.
func (s *Store) CreateAppointment(ctx context.Context, a *model.Appointment) error {
	now := time.Now().UTC()
	a.CreatedAt = now
	a.UpdatedAt = now

	const q = `INSERT INTO appointments
		(user_id, title, location, starts_at, ends_at, created_at, updated_at)
		VALUES
		(:user_id, :title, :location, :starts_at, :ends_at, :created_at, :updated_at)`

	id, err := s.namedInsert(ctx, q, a)
	if err != nil {
		return fmt.Errorf("insert appointment: %w", err)
	}
	a.ID = id
	return nil
}

// GetAppointment returns an appointment by ID.
func (s *Store) GetAppointment(ctx context.Context, id int64) (*model.Appointment, error) {
	var a model.Appointment
	if err := s.get(ctx, &a, "SELECT * FROM appointments WHERE id = ?", id); err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get appointment: %w", err)
	}
	return &a, nil
}

// ListAppointments returns all appointments ordered by start time.
func (s *Store) ListAppointments(ctx context.Context) ([]model.Appointment, error) {
	var appts []model.Appointment
	if err := s.sel(ctx, &appts, "SELECT * FROM appointments ORDER BY starts_at"); err != nil {
		return nil, fmt.Errorf("list appointments: %w", err)
	}
	return appts, nil
}

// UpdateAppointment updates an existing appointment. The UpdatedAt field on a
// is refreshed automatically.
func (s *Store) UpdateAppointment(ctx context.Context, a *model.Appointment) error {
	a.UpdatedAt = time.Now().UTC()

	const q = `UPDATE appointments SET
		user_id = :user_id, title = :title, location = :location,
		starts_at = :starts_at, ends_at = :ends_at, updated_at = :updated_at
		WHERE id = :id`

	result, err := s.db.NamedExecContext(ctx, q, a)
	if err != nil {
		return fmt.Errorf("update appointment: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("update appointment rows affected: %w", err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

// DeleteAppointment removes an appointment by ID.
func (s *Store) DeleteAppointment(ctx context.Context, id int64) error {
	result, err := s.exec(ctx, "DELETE FROM appointments WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("delete appointment: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete appointment rows affected: %w", err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}
