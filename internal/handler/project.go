package handler

import (
	"net/http"

	"github.com/plankhq/plank/internal/model"
	"github.com/plankhq/plank/internal/store"
)

// ProjectHandler serves project CRUD and the per-project task listing.
type ProjectHandler struct {
	store *store.Store
}

func NewProjectHandler(st *store.Store) *ProjectHandler {
	return &ProjectHandler{store: st}
}

// projectRequest is the payload for create and update.
type projectRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Status      string `json:"status"`
	OwnerUserID int64  `json:"owner_user_id"`
}

// List returns all projects.
// GET /api/projects
func (h *ProjectHandler) List(w http.ResponseWriter, r *http.Request) {
	projects, err := h.store.ListProjects(r.Context())
	if err != nil {
		writeStoreError(w, err, "Failed to list projects")
		return
	}
	writeJSON(w, http.StatusOK, listResponse(projects, len(projects)))
}

// Get returns one project by ID.
// GET /api/projects/{id}
func (h *ProjectHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	p, err := h.store.GetProject(r.Context(), id)
	if err != nil {
		writeStoreError(w, err, "Failed to get project")
		return
	}
	writeJSON(w, http.StatusOK, p)
}

// Create adds a new project.
// POST /api/projects
func (h *ProjectHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req projectRequest
	if err := readJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return
	}
	if req.Name == "" {
		writeError(w, http.StatusBadRequest, "name is required")
		return
	}
	if req.Status != "" && req.Status != model.ProjectActive && req.Status != model.ProjectArchived {
		writeError(w, http.StatusBadRequest, "Invalid status: "+req.Status)
		return
	}

	p := &model.Project{
		Name:        req.Name,
		Description: req.Description,
		Status:      req.Status,
		OwnerUserID: req.OwnerUserID,
	}
	if err := h.store.CreateProject(r.Context(), p); err != nil {
		writeStoreError(w, err, "Failed to create project")
		return
	}
	writeJSON(w, http.StatusCreated, p)
}

// Update replaces a project's mutable fields. Archiving is an update with
// status "archived".
// PUT /api/projects/{id}
func (h *ProjectHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	var req projectRequest
	if err := readJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return
	}
	if req.Name == "" {
		writeError(w, http.StatusBadRequest, "name is required")
		return
	}
	if req.Status != "" && req.Status != model.ProjectActive && req.Status != model.ProjectArchived {
		writeError(w, http.StatusBadRequest, "Invalid status: "+req.Status)
		return
	}

	p, err := h.store.GetProject(r.Context(), id)
	if err != nil {
		writeStoreError(w, err, "Failed to get project")
		return
	}
	p.Name = req.Name
	p.Description = req.Description
	if req.Status != "" {
		p.Status = req.Status
	}
	if req.OwnerUserID != 0 {
		p.OwnerUserID = req.OwnerUserID
	}

	if err := h.store.UpdateProject(r.Context(), p); err != nil {
		writeStoreError(w, err, "Failed to update project")
		return
	}
	writeJSON(w, http.StatusOK, p)
}

// Delete removes a project and everything under it.
// DELETE /api/projects/{id}
func (h *ProjectHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	if err := h.store.DeleteProject(r.Context(), id); err != nil {
		writeStoreError(w, err, "Failed to delete project")
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"message": "Project deleted",
	})
}

// ListTasks returns the project's tasks, highest priority first.
// GET /api/projects/{id}/tasks
func (h *ProjectHandler) ListTasks(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	if _, err := h.store.GetProject(r.Context(), id); err != nil {
		writeStoreError(w, err, "Failed to get project")
		return
	}
	tasks, err := h.store.ListTasksByProject(r.Context(), id)
	if err != nil {
		writeStoreError(w, err, "Failed to list tasks")
		return
	}
	writeJSON(w, http.StatusOK, listResponse(tasks, len(tasks)))
}
