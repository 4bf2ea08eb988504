package handler

import (
	"net/http"
	"time"

	"github.com/plankhq/plank/internal/model"
	"github.com/plankhq/plank/internal/store"
)

// MeetingHandler serves project meeting CRUD.
type MeetingHandler struct {
	store *store.Store
}

func NewMeetingHandler(st *store.Store) *MeetingHandler {
	return &MeetingHandler{store: st}
}

// meetingRequest is the payload for create and update.
type meetingRequest struct {
	ProjectID   int64      `json:"project_id"`
	Title       string     `json:"title"`
	Agenda      string     `json:"agenda"`
	ScheduledAt *time.Time `json:"scheduled_at"`
	Attendees   []int64    `json:"attendees"`
}

// List returns meetings for the project named by the project_id query
// parameter, or a 400 when it is missing.
// GET /api/meetings?project_id=N
func (h *MeetingHandler) List(w http.ResponseWriter, r *http.Request) {
	projectID := queryInt(r, "project_id", 0)
	if projectID <= 0 {
		writeError(w, http.StatusBadRequest, "project_id query parameter is required")
		return
	}
	meetings, err := h.store.ListMeetingsByProject(r.Context(), int64(projectID))
	if err != nil {
		writeStoreError(w, err, "Failed to list meetings")
		return
	}
	writeJSON(w, http.StatusOK, listResponse(meetings, len(meetings)))
}

// Get returns one meeting by ID.
// GET /api/meetings/{id}
func (h *MeetingHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	m, err := h.store.GetMeeting(r.Context(), id)
	if err != nil {
		writeStoreError(w, err, "Failed to get meeting")
		return
	}
	writeJSON(w, http.StatusOK, m)
}

// Create schedules a new meeting on a project.
// POST /api/meetings
func (h *MeetingHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req meetingRequest
	if err := readJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return
	}
	if req.Title == "" || req.ProjectID == 0 || req.ScheduledAt == nil {
		writeError(w, http.StatusBadRequest, "project_id, title, and scheduled_at are required")
		return
	}
	if _, err := h.store.GetProject(r.Context(), req.ProjectID); err != nil {
		writeStoreError(w, err, "Failed to get project")
		return
	}

	m := &model.Meeting{
		ProjectID:   req.ProjectID,
		Title:       req.Title,
		Agenda:      req.Agenda,
		ScheduledAt: *req.ScheduledAt,
		Attendees:   req.Attendees,
	}
	if err := h.store.CreateMeeting(r.Context(), m); err != nil {
		writeStoreError(w, err, "Failed to create meeting")
		return
	}
	writeJSON(w, http.StatusCreated, m)
}

// Update replaces a meeting's fields, including the attendee list.
// PUT /api/meetings/{id}
func (h *MeetingHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	var req meetingRequest
	if err := readJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return
	}
	if req.Title == "" || req.ScheduledAt == nil {
		writeError(w, http.StatusBadRequest, "title and scheduled_at are required")
		return
	}

	m, err := h.store.GetMeeting(r.Context(), id)
	if err != nil {
		writeStoreError(w, err, "Failed to get meeting")
		return
	}
	m.Title = req.Title
	m.Agenda = req.Agenda
	m.ScheduledAt = *req.ScheduledAt
	m.Attendees = req.Attendees
	if req.ProjectID != 0 {
		m.ProjectID = req.ProjectID
	}

	if err := h.store.UpdateMeeting(r.Context(), m); err != nil {
		writeStoreError(w, err, "Failed to update meeting")
		return
	}
	writeJSON(w, http.StatusOK, m)
}

// Delete removes a meeting.
// DELETE /api/meetings/{id}
func (h *MeetingHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	if err := h.store.DeleteMeeting(r.Context(), id); err != nil {
		writeStoreError(w, err, "Failed to delete meeting")
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"message": "Meeting deleted",
	})
}
