package handler

import (
	"net/http"
	"time"

	"github.com/plankhq/plank/internal/model"
	"github.com/plankhq/plank/internal/store"
)

// TaskHandler serves task CRUD and per-task comment routes.
type TaskHandler struct {
	store *store.Store
}

func NewTaskHandler(st *store.Store) *TaskHandler {
	return &TaskHandler{store: st}
}

// taskRequest is the payload for create and update.
type taskRequest struct {
	ProjectID      int64      `json:"project_id"`
	Title          string     `json:"title"`
	Description    string     `json:"description"`
	Status         string     `json:"status"`
	Priority       int        `json:"priority"`
	AssigneeUserID *int64     `json:"assignee_user_id"`
	DueAt          *time.Time `json:"due_at"`
}

// List returns all tasks.
// GET /api/tasks
func (h *TaskHandler) List(w http.ResponseWriter, r *http.Request) {
	tasks, err := h.store.ListTasks(r.Context())
	if err != nil {
		writeStoreError(w, err, "Failed to list tasks")
		return
	}
	writeJSON(w, http.StatusOK, listResponse(tasks, len(tasks)))
}

// Get returns one task by ID.
// GET /api/tasks/{id}
func (h *TaskHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	t, err := h.store.GetTask(r.Context(), id)
	if err != nil {
		writeStoreError(w, err, "Failed to get task")
		return
	}
	writeJSON(w, http.StatusOK, t)
}

// Create adds a new task to a project.
// POST /api/tasks
func (h *TaskHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req taskRequest
	if err := readJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return
	}
	if req.Title == "" || req.ProjectID == 0 {
		writeError(w, http.StatusBadRequest, "project_id and title are required")
		return
	}
	if req.Status != "" && !model.ValidTaskStatus(req.Status) {
		writeError(w, http.StatusBadRequest, "Invalid status: "+req.Status)
		return
	}
	if _, err := h.store.GetProject(r.Context(), req.ProjectID); err != nil {
		writeStoreError(w, err, "Failed to get project")
		return
	}

	t := &model.Task{
		ProjectID:      req.ProjectID,
		Title:          req.Title,
		Description:    req.Description,
		Status:         req.Status,
		Priority:       req.Priority,
		AssigneeUserID: req.AssigneeUserID,
		DueAt:          req.DueAt,
	}
	if err := h.store.CreateTask(r.Context(), t); err != nil {
		writeStoreError(w, err, "Failed to create task")
		return
	}
	writeJSON(w, http.StatusCreated, t)
}

// Update replaces a task's mutable fields.
// PUT /api/tasks/{id}
func (h *TaskHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	var req taskRequest
	if err := readJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return
	}
	if req.Title == "" {
		writeError(w, http.StatusBadRequest, "title is required")
		return
	}
	if req.Status != "" && !model.ValidTaskStatus(req.Status) {
		writeError(w, http.StatusBadRequest, "Invalid status: "+req.Status)
		return
	}

	t, err := h.store.GetTask(r.Context(), id)
	if err != nil {
		writeStoreError(w, err, "Failed to get task")
		return
	}
	t.Title = req.Title
	t.Description = req.Description
	t.Priority = req.Priority
	t.AssigneeUserID = req.AssigneeUserID
	t.DueAt = req.DueAt
	if req.Status != "" {
		t.Status = req.Status
	}
	if req.ProjectID != 0 {
		t.ProjectID = req.ProjectID
	}

	if err := h.store.UpdateTask(r.Context(), t); err != nil {
		writeStoreError(w, err, "Failed to update task")
		return
	}
	writeJSON(w, http.StatusOK, t)
}

// Delete removes a task and its comments.
// DELETE /api/tasks/{id}
func (h *TaskHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	if err := h.store.DeleteTask(r.Context(), id); err != nil {
		writeStoreError(w, err, "Failed to delete task")
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"message": "Task deleted",
	})
}

// commentRequest is the payload for creating a comment.
type commentRequest struct {
	AuthorUserID int64  `json:"author_user_id"`
	Body         string `json:"body"`
}

// ListComments returns the task's comments, oldest first.
// GET /api/tasks/{id}/comments
func (h *TaskHandler) ListComments(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	if _, err := h.store.GetTask(r.Context(), id); err != nil {
		writeStoreError(w, err, "Failed to get task")
		return
	}
	comments, err := h.store.ListCommentsByTask(r.Context(), id)
	if err != nil {
		writeStoreError(w, err, "Failed to list comments")
		return
	}
	writeJSON(w, http.StatusOK, listResponse(comments, len(comments)))
}

// CreateComment adds a comment to a task.
// POST /api/tasks/{id}/comments
func (h *TaskHandler) CreateComment(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	var req commentRequest
	if err := readJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return
	}
	if req.Body == "" {
		writeError(w, http.StatusBadRequest, "body is required")
		return
	}
	if _, err := h.store.GetTask(r.Context(), id); err != nil {
		writeStoreError(w, err, "Failed to get task")
		return
	}

	c := &model.Comment{
		TaskID:       id,
		AuthorUserID: req.AuthorUserID,
		Body:         req.Body,
	}
	if err := h.store.CreateComment(r.Context(), c); err != nil {
		writeStoreError(w, err, "Failed to create comment")
		return
	}
	writeJSON(w, http.StatusCreated, c)
}
