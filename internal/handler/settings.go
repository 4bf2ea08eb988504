package handler

import (
	"net/http"

	"github.com/plankhq/plank/internal/store"
)

// SettingsHandler serves the application settings routes.
type SettingsHandler struct {
	store *store.Store
}

func NewSettingsHandler(st *store.Store) *SettingsHandler {
	return &SettingsHandler{store: st}
}

// GetAll returns every settings key-value pair.
// GET /api/settings
func (h *SettingsHandler) GetAll(w http.ResponseWriter, r *http.Request) {
	settings, err := h.store.AllSettings(r.Context())
	if err != nil {
		writeStoreError(w, err, "Failed to load settings")
		return
	}
	writeJSON(w, http.StatusOK, settings)
}

// Put upserts the submitted keys. Keys absent from the body are untouched.
// PUT /api/settings
func (h *SettingsHandler) Put(w http.ResponseWriter, r *http.Request) {
	var req map[string]string
	if err := readJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return
	}
	if len(req) == 0 {
		writeError(w, http.StatusBadRequest, "at least one setting is required")
		return
	}

	for key, value := range req {
		if key == "" {
			writeError(w, http.StatusBadRequest, "setting keys must be non-empty")
			return
		}
		if err := h.store.SetSetting(r.Context(), key, value); err != nil {
			writeStoreError(w, err, "Failed to save setting "+key)
			return
		}
	}

	settings, err := h.store.AllSettings(r.Context())
	if err != nil {
		writeStoreError(w, err, "Failed to load settings")
		return
	}
	writeJSON(w, http.StatusOK, settings)
}
