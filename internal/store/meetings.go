package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/plankhq/plank/internal/model"
)

// meetingRow mirrors the meetings table. Attendees are stored as a JSON
// array of user IDs in the attendees_json column.
type meetingRow struct {
	ID            int64     `db:"id"`
	ProjectID     int64     `db:"project_id"`
	Title         string    `db:"title"`
	Agenda        string    `db:"agenda"`
	ScheduledAt   time.Time `db:"scheduled_at"`
	AttendeesJSON string    `db:"attendees_json"`
	CreatedAt     time.Time `db:"created_at"`
	UpdatedAt     time.Time `db:"updated_at"`
}

func (r *meetingRow) toMeeting() (*model.Meeting, error) {
	m := &model.Meeting{
		ID:          r.ID,
		ProjectID:   r.ProjectID,
		Title:       r.Title,
		Agenda:      r.Agenda,
		ScheduledAt: r.ScheduledAt,
		CreatedAt:   r.CreatedAt,
		UpdatedAt:   r.UpdatedAt,
	}
	if r.AttendeesJSON != "" {
		if err := json.Unmarshal([]byte(r.AttendeesJSON), &m.Attendees); err != nil {
			return nil, fmt.Errorf("decode meeting attendees: %w", err)
		}
	}
	return m, nil
}

func meetingToRow(m *model.Meeting) (*meetingRow, error) {
	attendees := m.Attendees
	if attendees == nil {
		attendees = []int64{}
	}
	encoded, err := json.Marshal(attendees)
	if err != nil {
		return nil, fmt.Errorf("encode meeting attendees: %w", err)
	}
	return &meetingRow{
		ID:            m.ID,
		ProjectID:     m.ProjectID,
		Title:         m.Title,
		Agenda:        m.Agenda,
		ScheduledAt:   m.ScheduledAt,
		AttendeesJSON: string(encoded),
		CreatedAt:     m.CreatedAt,
		UpdatedAt:     m.UpdatedAt,
	}, nil
}

// CreateMeeting inserts a new meeting. The ID, CreatedAt, and UpdatedAt
// fields on m are populated after a successful insert.
func (s *Store) CreateMeeting(ctx context.Context, m *model.Meeting) error {
	now := time.Now().UTC()
	m.CreatedAt = now
	m.UpdatedAt = now

	row, err := meetingToRow(m)
	if err != nil {
		return err
	}

	const q = `INSERT INTO meetings
		(project_id, title, agenda, scheduled_at, attendees_json, created_at, updated_at)
		VALUES
		(:project_id, :title, :agenda, :scheduled_at, :attendees_json, :created_at, :updated_at)`

	id, err := s.namedInsert(ctx, q, row)
	if err != nil {
		return fmt.Errorf("insert meeting: %w", err)
	}
	m.ID = id
	return nil
}

// GetMeeting returns a meeting by ID.
func (s *Store) GetMeeting(ctx context.Context, id int64) (*model.Meeting, error) {
	var row meetingRow
	if err := s.get(ctx, &row, "SELECT * FROM meetings WHERE id = ?", id); err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get meeting: %w", err)
	}
	return row.toMeeting()
}

// ListMeetingsByProject returns all meetings for a project ordered by
// scheduled time.
func (s *Store) ListMeetingsByProject(ctx context.Context, projectID int64) ([]model.Meeting, error) {
	var rows []meetingRow
	const q = "SELECT * FROM meetings WHERE project_id = ? ORDER BY scheduled_at"
	if err := s.sel(ctx, &rows, q, projectID); err != nil {
		return nil, fmt.Errorf("list meetings by project: %w", err)
	}
	meetings := make([]model.Meeting, 0, len(rows))
	for i := range rows {
		m, err := rows[i].toMeeting()
		if err != nil {
			return nil, err
		}
		meetings = append(meetings, *m)
	}
	return meetings, nil
}

// UpdateMeeting updates an existing meeting. The UpdatedAt field on m is
// refreshed automatically.
func (s *Store) UpdateMeeting(ctx context.Context, m *model.Meeting) error {
	m.UpdatedAt = time.Now().UTC()

	row, err := meetingToRow(m)
	if err != nil {
		return err
	}

	const q = `UPDATE meetings SET
		project_id = :project_id, title = :title, agenda = :agenda,
		scheduled_at = :scheduled_at, attendees_json = :attendees_json,
		updated_at = :updated_at
		WHERE id = :id`

	result, err := s.db.NamedExecContext(ctx, q, row)
	if err != nil {
		return fmt.Errorf("update meeting: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("update meeting rows affected: %w", err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

// DeleteMeeting removes a meeting by ID.
func (s *Store) DeleteMeeting(ctx context.Context, id int64) error {
	result, err := s.exec(ctx, "DELETE FROM meetings WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("delete meeting: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete meeting rows affected: %w", err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}
