package service

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/plankhq/plank/internal/model"
	"github.com/plankhq/plank/internal/origin"
	"github.com/plankhq/plank/internal/store"
)

var (
	// ErrMissingCredential means a public-origin request carried no API key.
	ErrMissingCredential = errors.New("missing credential")
	// ErrInvalidCredential means the presented API key or token did not
	// resolve to an active identity.
	ErrInvalidCredential = errors.New("invalid credential")
)

// Identity describes who a request is acting as after authentication.
type Identity struct {
	// TrustedOrigin is set for loopback and private LAN requests, which
	// are accepted without a credential.
	TrustedOrigin bool
	// DevBypass is set when the configured development bypass key was used.
	DevBypass bool
	// APIKeyID is the authenticated key's ID, zero for trusted origins.
	APIKeyID int64
	// UserID is the key owner's user ID, if the key is bound to a user.
	UserID *int64
}

// SessionPrincipal is the identity carried by a browser session token.
type SessionPrincipal struct {
	UserID int64
	Email  string
}

// AuthService decides whether requests are allowed in, based on their
// network origin and any presented API key, and manages browser session
// tokens for the embedded UI.
type AuthService struct {
	store        *store.Store
	jwtSecret    []byte
	devBypassKey string
	logger       *slog.Logger
}

func NewAuthService(st *store.Store, jwtSecret, devBypassKey string, logger *slog.Logger) *AuthService {
	if logger == nil {
		logger = slog.Default()
	}
	return &AuthService{
		store:        st,
		jwtSecret:    []byte(jwtSecret),
		devBypassKey: devBypassKey,
		logger:       logger,
	}
}

// Authenticate resolves a request to an Identity. Requests from trusted
// origins pass without a key lookup. Public requests must present a key:
// absence is ErrMissingCredential, anything that fails to resolve to an
// active key is ErrInvalidCredential.
func (s *AuthService) Authenticate(ctx context.Context, class origin.Class, rawKey string) (*Identity, error) {
	if class.Trusted() {
		return &Identity{TrustedOrigin: true}, nil
	}

	if rawKey == "" {
		return nil, ErrMissingCredential
	}

	if s.devBypassKey != "" && rawKey == s.devBypassKey {
		return &Identity{DevBypass: true}, nil
	}

	key, err := s.store.GetAPIKeyByHash(ctx, store.HashAPIKey(rawKey))
	if err != nil {
		// Unknown keys and store faults both surface as a refusal; the
		// caller never sees a panic or an internal error here.
		if err != store.ErrNotFound {
			s.logger.Error("api key lookup failed", "error", err)
		}
		return nil, ErrInvalidCredential
	}
	if !key.IsActive {
		return nil, ErrInvalidCredential
	}

	// Usage tracking must never reject an otherwise valid key.
	if err := s.store.TouchAPIKey(ctx, key.ID); err != nil {
		s.logger.Warn("failed to update key last_used_at", "key_id", key.ID, "error", err)
	}

	return &Identity{APIKeyID: key.ID, UserID: key.OwnerUserID}, nil
}

// Login verifies a user's email and password and returns the user record.
func (s *AuthService) Login(ctx context.Context, email, password string) (*model.User, error) {
	user, err := s.store.GetUserByEmail(ctx, email)
	if err != nil {
		return nil, ErrInvalidCredential
	}
	if !user.IsActive || !store.CheckPassword(user.PasswordHash, password) {
		return nil, ErrInvalidCredential
	}
	if err := s.store.UpdateUserLastLogin(ctx, user.ID); err != nil {
		s.logger.Warn("failed to update last_login_at", "user_id", user.ID, "error", err)
	}
	return user, nil
}

// IssueJWT creates a signed session token for the given user.
func (s *AuthService) IssueJWT(ctx context.Context, userID int64, email string, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := jwtClaims{
		UserID: userID,
		Email:  email,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			Issuer:    "plank",
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(s.jwtSecret)
}

// ValidateJWT verifies a session token and returns the user identity it
// carries.
func (s *AuthService) ValidateJWT(ctx context.Context, tokenStr string) (*SessionPrincipal, error) {
	claims := &jwtClaims{}

	token, err := jwt.ParseWithClaims(tokenStr, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return s.jwtSecret, nil
	})
	if err != nil || !token.Valid {
		return nil, ErrInvalidCredential
	}

	return &SessionPrincipal{
		UserID: claims.UserID,
		Email:  claims.Email,
	}, nil
}

type jwtClaims struct {
	UserID int64  `json:"user_id"`
	Email  string `json:"email"`
	jwt.RegisteredClaims
}
