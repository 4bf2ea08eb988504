package handler

import (
	"net/http"
	"time"

	"github.com/plankhq/plank/internal/model"
	"github.com/plankhq/plank/internal/store"
)

// AppointmentHandler serves personal appointment CRUD.
type AppointmentHandler struct {
	store *store.Store
}

func NewAppointmentHandler(st *store.Store) *AppointmentHandler {
	return &AppointmentHandler{store: st}
}

// appointmentRequest is the payload for create and update.
type appointmentRequest struct {
	UserID   int64      `json:"user_id"`
	Title    string     `json:"title"`
	Location string     `json:"location"`
	StartsAt *time.Time `json:"starts_at"`
	EndsAt   *time.Time `json:"ends_at"`
}

func (req *appointmentRequest) validate() (string, bool) {
	if req.Title == "" {
		return "title is required", false
	}
	if req.StartsAt == nil || req.EndsAt == nil {
		return "starts_at and ends_at are required", false
	}
	if !req.EndsAt.After(*req.StartsAt) {
		return "ends_at must be after starts_at", false
	}
	return "", true
}

// List returns all appointments ordered by start time.
// GET /api/appointments
func (h *AppointmentHandler) List(w http.ResponseWriter, r *http.Request) {
	appts, err := h.store.ListAppointments(r.Context())
	if err != nil {
		writeStoreError(w, err, "Failed to list appointments")
		return
	}
	writeJSON(w, http.StatusOK, listResponse(appts, len(appts)))
}

// Get returns one appointment by ID.
// GET /api/appointments/{id}
func (h *AppointmentHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	a, err := h.store.GetAppointment(r.Context(), id)
	if err != nil {
		writeStoreError(w, err, "Failed to get appointment")
		return
	}
	writeJSON(w, http.StatusOK, a)
}

// Create adds a new appointment.
// POST /api/appointments
func (h *AppointmentHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req appointmentRequest
	if err := readJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return
	}
	if msg, ok := req.validate(); !ok {
		writeError(w, http.StatusBadRequest, msg)
		return
	}

	a := &model.Appointment{
		UserID:   req.UserID,
		Title:    req.Title,
		Location: req.Location,
		StartsAt: *req.StartsAt,
		EndsAt:   *req.EndsAt,
	}
	if err := h.store.CreateAppointment(r.Context(), a); err != nil {
		writeStoreError(w, err, "Failed to create appointment")
		return
	}
	writeJSON(w, http.StatusCreated, a)
}

// Update replaces an appointment's fields.
// PUT /api/appointments/{id}
func (h *AppointmentHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	var req appointmentRequest
	if err := readJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return
	}
	if msg, ok := req.validate(); !ok {
		writeError(w, http.StatusBadRequest, msg)
		return
	}

	a, err := h.store.GetAppointment(r.Context(), id)
	if err != nil {
		writeStoreError(w, err, "Failed to get appointment")
		return
	}
	a.Title = req.Title
	a.Location = req.Location
	a.StartsAt = *req.StartsAt
	a.EndsAt = *req.EndsAt
	if req.UserID != 0 {
		a.UserID = req.UserID
	}

	if err := h.store.UpdateAppointment(r.Context(), a); err != nil {
		writeStoreError(w, err, "Failed to update appointment")
		return
	}
	writeJSON(w, http.StatusOK, a)
}

// Delete removes an appointment.
// DELETE /api/appointments/{id}
func (h *AppointmentHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	if err := h.store.DeleteAppointment(r.Context(), id); err != nil {
		writeStoreError(w, err, "Failed to delete appointment")
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"message": "Appointment deleted",
	})
}
