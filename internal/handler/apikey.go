package handler

import (
	"net/http"
	"time"

	"github.com/plankhq/plank/internal/store"
)

// APIKeyHandler serves API key management routes. Plaintext keys are
// returned exactly once, at creation.
type APIKeyHandler struct {
	store *store.Store
}

func NewAPIKeyHandler(st *store.Store) *APIKeyHandler {
	return &APIKeyHandler{store: st}
}

// List returns all API keys (hashes are never serialized).
// GET /api/keys
func (h *APIKeyHandler) List(w http.ResponseWriter, r *http.Request) {
	keys, err := h.store.ListAPIKeys(r.Context())
	if err != nil {
		writeStoreError(w, err, "Failed to list API keys")
		return
	}
	writeJSON(w, http.StatusOK, listResponse(keys, len(keys)))
}

// createKeyRequest is the payload for Create.
type createKeyRequest struct {
	Label       string `json:"label"`
	OwnerUserID *int64 `json:"owner_user_id"`
}

// createKeyResponse includes the plaintext key (shown once only).
type createKeyResponse struct {
	ID        int64     `json:"id"`
	Key       string    `json:"api_key"` // Plaintext, shown ONCE.
	KeyPrefix string    `json:"key_prefix"`
	Label     string    `json:"label"`
	IsActive  bool      `json:"is_active"`
	CreatedAt time.Time `json:"created_at"`
}

// Create generates a new API key, stores its hash, and returns the
// plaintext exactly once.
// POST /api/keys
func (h *APIKeyHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req createKeyRequest
	if err := readJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return
	}

	if req.OwnerUserID != nil {
		if _, err := h.store.GetUser(r.Context(), *req.OwnerUserID); err != nil {
			writeStoreError(w, err, "Failed to get owner user")
			return
		}
	}

	plaintext, key, err := generateAPIKey()
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to generate key: "+err.Error())
		return
	}
	key.Label = req.Label
	key.OwnerUserID = req.OwnerUserID

	if err := h.store.CreateAPIKey(r.Context(), key); err != nil {
		writeStoreError(w, err, "Failed to save API key")
		return
	}

	writeJSON(w, http.StatusCreated, createKeyResponse{
		ID:        key.ID,
		Key:       plaintext,
		KeyPrefix: key.KeyPrefix,
		Label:     key.Label,
		IsActive:  key.IsActive,
		CreatedAt: key.CreatedAt,
	})
}

// Revoke deactivates an API key. The record is kept for audit; only
// is_active flips.
// DELETE /api/keys/{id}
func (h *APIKeyHandler) Revoke(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	if err := h.store.RevokeAPIKey(r.Context(), id); err != nil {
		writeStoreError(w, err, "Failed to revoke API key")
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"message": "API key revoked",
	})
}
