package handler

import (
	"net/http"

	"github.com/plankhq/plank/internal/store"
)

// UserHandler serves the read-only user routes. PasswordHash is excluded
// from JSON at the model level.
type UserHandler struct {
	store *store.Store
}

func NewUserHandler(st *store.Store) *UserHandler {
	return &UserHandler{store: st}
}

// List returns all user accounts.
// GET /api/users
func (h *UserHandler) List(w http.ResponseWriter, r *http.Request) {
	users, err := h.store.ListUsers(r.Context())
	if err != nil {
		writeStoreError(w, err, "Failed to list users")
		return
	}
	writeJSON(w, http.StatusOK, listResponse(users, len(users)))
}

// Get returns one user by ID.
// GET /api/users/{id}
func (h *UserHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	user, err := h.store.GetUser(r.Context(), id)
	if err != nil {
		writeStoreError(w, err, "Failed to get user")
		return
	}
	writeJSON(w, http.StatusOK, user)
}
