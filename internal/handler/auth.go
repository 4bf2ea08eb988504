package handler

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"net/http"
	"net/mail"
	"time"

	"github.com/google/uuid"

	"github.com/plankhq/plank/internal/model"
	"github.com/plankhq/plank/internal/service"
	"github.com/plankhq/plank/internal/store"
)

// AuthHandler serves the public authentication routes: signup, login, the
// OAuth trigger, and the email helper checks used by the signup form.
type AuthHandler struct {
	store    *store.Store
	authSvc  *service.AuthService
	oauthURL string
}

// NewAuthHandler creates a new AuthHandler. oauthURL may be empty, which
// disables the OAuth trigger route.
func NewAuthHandler(st *store.Store, authSvc *service.AuthService, oauthURL string) *AuthHandler {
	return &AuthHandler{store: st, authSvc: authSvc, oauthURL: oauthURL}
}

// signupRequest is the expected payload for Signup.
type signupRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Name     string `json:"name"`
}

// signupResponse includes the plaintext API key (shown once only).
type signupResponse struct {
	User   *model.User `json:"user"`
	APIKey string      `json:"api_key"` // Plaintext, shown ONCE.
}

// Signup creates a user account and issues it a fresh API key.
// POST /api/auth/signup
func (h *AuthHandler) Signup(w http.ResponseWriter, r *http.Request) {
	var req signupRequest
	if err := readJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return
	}
	if req.Email == "" || req.Password == "" {
		writeError(w, http.StatusBadRequest, "email and password are required")
		return
	}
	if _, err := mail.ParseAddress(req.Email); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid email address: "+req.Email)
		return
	}

	passwordHash, err := store.HashPassword(req.Password)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to hash password: "+err.Error())
		return
	}
	user := &model.User{
		Email:        req.Email,
		PasswordHash: passwordHash,
		Name:         req.Name,
		IsActive:     true,
	}
	if err := h.store.CreateUser(r.Context(), user); err != nil {
		writeStoreError(w, err, "Failed to create user")
		return
	}

	plaintext, key, err := generateAPIKey()
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to generate key: "+err.Error())
		return
	}
	key.Label = "signup"
	key.OwnerUserID = &user.ID
	if err := h.store.CreateAPIKey(r.Context(), key); err != nil {
		writeStoreError(w, err, "Failed to save API key")
		return
	}

	writeJSON(w, http.StatusCreated, signupResponse{User: user, APIKey: plaintext})
}

// loginRequest is the expected payload for Login.
type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// loginResponse is the response payload for a successful login.
type loginResponse struct {
	Token     string `json:"session_token"`
	TokenType string `json:"token_type"`
	ExpiresIn int    `json:"expires_in"`
	UserID    int64  `json:"user_id"`
	Email     string `json:"email"`
	Name      string `json:"name"`
}

// Login verifies a user's password and returns a JWT session token.
// POST /api/auth/login
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := readJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return
	}
	if req.Email == "" || req.Password == "" {
		writeError(w, http.StatusBadRequest, "email and password are required")
		return
	}

	user, err := h.authSvc.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		writeError(w, http.StatusUnauthorized, "Invalid credentials")
		return
	}

	ttl := 24 * time.Hour
	token, err := h.authSvc.IssueJWT(r.Context(), user.ID, user.Email, ttl)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to issue token: "+err.Error())
		return
	}

	writeJSON(w, http.StatusOK, loginResponse{
		Token:     token,
		TokenType: "bearer",
		ExpiresIn: int(ttl.Seconds()),
		UserID:    user.ID,
		Email:     user.Email,
		Name:      user.Name,
	})
}

// OAuth returns the configured provider's authorization URL with a fresh
// state parameter. The actual token exchange happens out of band.
// POST /api/auth/oauth
func (h *AuthHandler) OAuth(w http.ResponseWriter, r *http.Request) {
	if h.oauthURL == "" {
		writeError(w, http.StatusBadRequest, "OAuth login is not configured")
		return
	}
	state := uuid.Must(uuid.NewV7()).String()
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"authorization_url": h.oauthURL,
		"state":             state,
	})
}

// emailRequest is the shared payload for the email helper routes.
type emailRequest struct {
	Email string `json:"email"`
}

// ValidateEmail checks whether a string parses as an email address.
// POST /api/auth/email/validate
func (h *AuthHandler) ValidateEmail(w http.ResponseWriter, r *http.Request) {
	var req emailRequest
	if err := readJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return
	}
	if req.Email == "" {
		writeError(w, http.StatusBadRequest, "email is required")
		return
	}
	_, err := mail.ParseAddress(req.Email)
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"email": req.Email,
		"valid": err == nil,
	})
}

// EmailExists checks whether an account already exists for the address.
// POST /api/auth/email/exists
func (h *AuthHandler) EmailExists(w http.ResponseWriter, r *http.Request) {
	var req emailRequest
	if err := readJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return
	}
	if req.Email == "" {
		writeError(w, http.StatusBadRequest, "email is required")
		return
	}

	exists := true
	if _, err := h.store.GetUserByEmail(r.Context(), req.Email); err != nil {
		if !errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusInternalServerError, "Lookup failed: "+err.Error())
			return
		}
		exists = false
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"email":  req.Email,
		"exists": exists,
	})
}

// generateAPIKey produces a fresh random key. The plaintext is returned for
// one-time display; the model carries only the hash and display prefix.
func generateAPIKey() (string, *model.APIKey, error) {
	rawBytes := make([]byte, 32)
	if _, err := rand.Read(rawBytes); err != nil {
		return "", nil, err
	}
	plaintext := "plank_" + hex.EncodeToString(rawBytes)
	return plaintext, &model.APIKey{
		KeyHash:   store.HashAPIKey(plaintext),
		KeyPrefix: plaintext[:14], // "plank_" + first 8 hex chars
		IsActive:  true,
	}, nil
}
