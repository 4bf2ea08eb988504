package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/plankhq/plank/internal/model"
	"github.com/plankhq/plank/internal/objectstore"
	"github.com/plankhq/plank/internal/store"
)

// SnapshotHandler exports a project and everything under it as a
// content-addressed JSON blob, and serves stored blobs back by CID.
type SnapshotHandler struct {
	store   *store.Store
	objects *objectstore.Store
}

func NewSnapshotHandler(st *store.Store, objects *objectstore.Store) *SnapshotHandler {
	return &SnapshotHandler{store: st, objects: objects}
}

// projectSnapshot is the export format.
type projectSnapshot struct {
	ExportedAt time.Time       `json:"exported_at"`
	Project    *model.Project  `json:"project"`
	Tasks      []model.Task    `json:"tasks"`
	Comments   []model.Comment `json:"comments"`
	Bugs       []model.Bug     `json:"bugs"`
	Meetings   []model.Meeting `json:"meetings"`
}

// Create exports a project snapshot and returns its CID.
// POST /api/projects/{id}/snapshot
func (h *SnapshotHandler) Create(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	ctx := r.Context()

	project, err := h.store.GetProject(ctx, id)
	if err != nil {
		writeStoreError(w, err, "Failed to get project")
		return
	}
	tasks, err := h.store.ListTasksByProject(ctx, id)
	if err != nil {
		writeStoreError(w, err, "Failed to list tasks")
		return
	}
	var comments []model.Comment
	for i := range tasks {
		taskComments, err := h.store.ListCommentsByTask(ctx, tasks[i].ID)
		if err != nil {
			writeStoreError(w, err, "Failed to list comments")
			return
		}
		comments = append(comments, taskComments...)
	}
	bugs, err := h.store.ListBugsByProject(ctx, id)
	if err != nil {
		writeStoreError(w, err, "Failed to list bugs")
		return
	}
	meetings, err := h.store.ListMeetingsByProject(ctx, id)
	if err != nil {
		writeStoreError(w, err, "Failed to list meetings")
		return
	}

	blob, err := json.Marshal(projectSnapshot{
		ExportedAt: time.Now().UTC(),
		Project:    project,
		Tasks:      tasks,
		Comments:   comments,
		Bugs:       bugs,
		Meetings:   meetings,
	})
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to encode snapshot: "+err.Error())
		return
	}

	cid, err := h.objects.Put(blob)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to store snapshot: "+err.Error())
		return
	}

	writeJSON(w, http.StatusCreated, map[string]interface{}{
		"cid":        cid,
		"size_bytes": len(blob),
		"project_id": project.ID,
	})
}

// Get returns a stored snapshot blob by CID.
// GET /api/snapshots/{cid}
func (h *SnapshotHandler) Get(w http.ResponseWriter, r *http.Request) {
	cid := chi.URLParam(r, "cid")
	blob, err := h.objects.Get(cid)
	if err != nil {
		if errors.Is(err, objectstore.ErrNotFound) {
			writeError(w, http.StatusNotFound, "Snapshot not found: "+cid)
			return
		}
		writeError(w, http.StatusInternalServerError, "Failed to read snapshot: "+err.Error())
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write(blob)
}
