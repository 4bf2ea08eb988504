package handler

import (
	"net/http"

	"github.com/plankhq/plank/internal/store"
)

// CommentHandler serves the standalone comment routes.
type CommentHandler struct {
	store *store.Store
}

func NewCommentHandler(st *store.Store) *CommentHandler {
	return &CommentHandler{store: st}
}

// Get returns one comment by ID.
// GET /api/comments/{id}
func (h *CommentHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	c, err := h.store.GetComment(r.Context(), id)
	if err != nil {
		writeStoreError(w, err, "Failed to get comment")
		return
	}
	writeJSON(w, http.StatusOK, c)
}

// Delete removes a comment.
// DELETE /api/comments/{id}
func (h *CommentHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	if err := h.store.DeleteComment(r.Context(), id); err != nil {
		writeStoreError(w, err, "Failed to delete comment")
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"message": "Comment deleted",
	})
}
