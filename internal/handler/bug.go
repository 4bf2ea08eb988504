package handler

import (
	"net/http"

	"github.com/plankhq/plank/internal/model"
	"github.com/plankhq/plank/internal/store"
)

// BugHandler serves bug report CRUD.
type BugHandler struct {
	store *store.Store
}

func NewBugHandler(st *store.Store) *BugHandler {
	return &BugHandler{store: st}
}

// bugRequest is the payload for create and update.
type bugRequest struct {
	ProjectID      int64  `json:"project_id"`
	Title          string `json:"title"`
	Description    string `json:"description"`
	Severity       string `json:"severity"`
	Status         string `json:"status"`
	ReporterUserID int64  `json:"reporter_user_id"`
}

// List returns all bugs, optionally filtered by project_id.
// GET /api/bugs
func (h *BugHandler) List(w http.ResponseWriter, r *http.Request) {
	var (
		bugs []model.Bug
		err  error
	)
	if projectID := queryInt(r, "project_id", 0); projectID > 0 {
		bugs, err = h.store.ListBugsByProject(r.Context(), int64(projectID))
	} else {
		bugs, err = h.store.ListBugs(r.Context())
	}
	if err != nil {
		writeStoreError(w, err, "Failed to list bugs")
		return
	}
	writeJSON(w, http.StatusOK, listResponse(bugs, len(bugs)))
}

// Get returns one bug by ID.
// GET /api/bugs/{id}
func (h *BugHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	b, err := h.store.GetBug(r.Context(), id)
	if err != nil {
		writeStoreError(w, err, "Failed to get bug")
		return
	}
	writeJSON(w, http.StatusOK, b)
}

// Create files a new bug against a project.
// POST /api/bugs
func (h *BugHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req bugRequest
	if err := readJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return
	}
	if req.Title == "" || req.ProjectID == 0 {
		writeError(w, http.StatusBadRequest, "project_id and title are required")
		return
	}
	if req.Status != "" && req.Status != model.BugOpen && req.Status != model.BugClosed {
		writeError(w, http.StatusBadRequest, "Invalid status: "+req.Status)
		return
	}
	if _, err := h.store.GetProject(r.Context(), req.ProjectID); err != nil {
		writeStoreError(w, err, "Failed to get project")
		return
	}

	b := &model.Bug{
		ProjectID:      req.ProjectID,
		Title:          req.Title,
		Description:    req.Description,
		Severity:       req.Severity,
		Status:         req.Status,
		ReporterUserID: req.ReporterUserID,
	}
	if err := h.store.CreateBug(r.Context(), b); err != nil {
		writeStoreError(w, err, "Failed to create bug")
		return
	}
	writeJSON(w, http.StatusCreated, b)
}

// Update replaces a bug's mutable fields. Closing a bug is an update with
// status "closed".
// PUT /api/bugs/{id}
func (h *BugHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	var req bugRequest
	if err := readJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return
	}
	if req.Title == "" {
		writeError(w, http.StatusBadRequest, "title is required")
		return
	}
	if req.Status != "" && req.Status != model.BugOpen && req.Status != model.BugClosed {
		writeError(w, http.StatusBadRequest, "Invalid status: "+req.Status)
		return
	}

	b, err := h.store.GetBug(r.Context(), id)
	if err != nil {
		writeStoreError(w, err, "Failed to get bug")
		return
	}
	b.Title = req.Title
	b.Description = req.Description
	if req.Severity != "" {
		b.Severity = req.Severity
	}
	if req.Status != "" {
		b.Status = req.Status
	}
	if req.ProjectID != 0 {
		b.ProjectID = req.ProjectID
	}
	if req.ReporterUserID != 0 {
		b.ReporterUserID = req.ReporterUserID
	}

	if err := h.store.UpdateBug(r.Context(), b); err != nil {
		writeStoreError(w, err, "Failed to update bug")
		return
	}
	writeJSON(w, http.StatusOK, b)
}

// Delete removes a bug.
// DELETE /api/bugs/{id}
func (h *BugHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	if err := h.store.DeleteBug(r.Context(), id); err != nil {
		writeStoreError(w, err, "Failed to delete bug")
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"message": "Bug deleted",
	})
}
