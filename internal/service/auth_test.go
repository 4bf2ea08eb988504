package service

import (
	"context"
	"testing"
	"time"

	"github.com/plankhq/plank/internal/model"
	"github.com/plankhq/plank/internal/origin"
	"github.com/plankhq/plank/internal/store"
)

func newTestAuth(t *testing.T, devBypass string) (*AuthService, *store.Store) {
	t.Helper()
	st, err := store.Open(store.Options{})
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { st.Close() })
	return NewAuthService(st, "test-secret", devBypass, nil), st
}

func TestAuthenticateTrustedOrigin(t *testing.T) {
	svc, _ := newTestAuth(t, "")
	ctx := context.Background()

	for _, class := range []origin.Class{origin.Loopback, origin.PrivateLAN} {
		id, err := svc.Authenticate(ctx, class, "")
		if err != nil {
			t.Fatalf("authenticate %v: %v", class, err)
		}
		if !id.TrustedOrigin {
			t.Fatalf("expected trusted origin identity for %v", class)
		}
		if id.APIKeyID != 0 {
			t.Fatalf("trusted origin must not carry a key id, got %d", id.APIKeyID)
		}
	}

	// A key presented from a trusted origin is ignored, not validated.
	id, err := svc.Authenticate(ctx, origin.Loopback, "garbage")
	if err != nil {
		t.Fatalf("authenticate with stray key: %v", err)
	}
	if !id.TrustedOrigin {
		t.Fatal("expected trusted origin identity")
	}
}

func TestAuthenticatePublicMissingKey(t *testing.T) {
	svc, _ := newTestAuth(t, "")
	if _, err := svc.Authenticate(context.Background(), origin.Public, ""); err != ErrMissingCredential {
		t.Fatalf("expected ErrMissingCredential, got %v", err)
	}
}

func TestAuthenticateAPIKey(t *testing.T) {
	svc, st := newTestAuth(t, "")
	ctx := context.Background()

	ownerID := int64(42)
	raw := "plank_deadbeefcafe"
	key := &model.APIKey{
		KeyHash:     store.HashAPIKey(raw),
		KeyPrefix:   raw[:12],
		OwnerUserID: &ownerID,
		IsActive:    true,
	}
	if err := st.CreateAPIKey(ctx, key); err != nil {
		t.Fatalf("create key: %v", err)
	}

	id, err := svc.Authenticate(ctx, origin.Public, raw)
	if err != nil {
		t.Fatalf("authenticate: %v", err)
	}
	if id.APIKeyID != key.ID {
		t.Fatalf("expected key id %d, got %d", key.ID, id.APIKeyID)
	}
	if id.UserID == nil || *id.UserID != ownerID {
		t.Fatalf("expected user id %d, got %v", ownerID, id.UserID)
	}
	if id.TrustedOrigin || id.DevBypass {
		t.Fatalf("unexpected identity flags: %+v", id)
	}

	// A successful use stamps last_used_at.
	stored, err := st.GetAPIKeyByHash(ctx, store.HashAPIKey(raw))
	if err != nil {
		t.Fatalf("get key: %v", err)
	}
	if stored.LastUsedAt == nil {
		t.Fatal("expected last_used_at to be set")
	}

	if _, err := svc.Authenticate(ctx, origin.Public, "plank_wrong"); err != ErrInvalidCredential {
		t.Fatalf("expected ErrInvalidCredential for unknown key, got %v", err)
	}
}

func TestAuthenticateRevokedKey(t *testing.T) {
	svc, st := newTestAuth(t, "")
	ctx := context.Background()

	raw := "plank_revoked"
	key := &model.APIKey{KeyHash: store.HashAPIKey(raw), KeyPrefix: raw, IsActive: true}
	if err := st.CreateAPIKey(ctx, key); err != nil {
		t.Fatalf("create key: %v", err)
	}
	if err := st.RevokeAPIKey(ctx, key.ID); err != nil {
		t.Fatalf("revoke key: %v", err)
	}

	if _, err := svc.Authenticate(ctx, origin.Public, raw); err != ErrInvalidCredential {
		t.Fatalf("expected ErrInvalidCredential for revoked key, got %v", err)
	}
}

func TestAuthenticateDevBypass(t *testing.T) {
	svc, _ := newTestAuth(t, "dev-key")
	ctx := context.Background()

	id, err := svc.Authenticate(ctx, origin.Public, "dev-key")
	if err != nil {
		t.Fatalf("authenticate with bypass key: %v", err)
	}
	if !id.DevBypass {
		t.Fatal("expected dev bypass identity")
	}

	// Exact string match only.
	if _, err := svc.Authenticate(ctx, origin.Public, "dev-key "); err != ErrInvalidCredential {
		t.Fatalf("expected ErrInvalidCredential for near-miss, got %v", err)
	}

	// Bypass is inert when not configured.
	off, _ := newTestAuth(t, "")
	if _, err := off.Authenticate(ctx, origin.Public, "dev-key"); err != ErrInvalidCredential {
		t.Fatalf("expected ErrInvalidCredential when bypass disabled, got %v", err)
	}
}

func TestLoginAndJWT(t *testing.T) {
	svc, st := newTestAuth(t, "")
	ctx := context.Background()

	hash, err := store.HashPassword("hunter2")
	if err != nil {
		t.Fatalf("hash password: %v", err)
	}
	user := &model.User{
		Email:        "grace@example.com",
		PasswordHash: hash,
		IsActive:     true,
	}
	if err := st.CreateUser(ctx, user); err != nil {
		t.Fatalf("create user: %v", err)
	}

	if _, err := svc.Login(ctx, "grace@example.com", "wrong"); err != ErrInvalidCredential {
		t.Fatalf("expected ErrInvalidCredential for bad password, got %v", err)
	}
	if _, err := svc.Login(ctx, "nobody@example.com", "hunter2"); err != ErrInvalidCredential {
		t.Fatalf("expected ErrInvalidCredential for unknown email, got %v", err)
	}

	got, err := svc.Login(ctx, "grace@example.com", "hunter2")
	if err != nil {
		t.Fatalf("login: %v", err)
	}

	token, err := svc.IssueJWT(ctx, got.ID, got.Email, time.Hour)
	if err != nil {
		t.Fatalf("issue jwt: %v", err)
	}
	principal, err := svc.ValidateJWT(ctx, token)
	if err != nil {
		t.Fatalf("validate jwt: %v", err)
	}
	if principal.UserID != got.ID || principal.Email != "grace@example.com" {
		t.Fatalf("unexpected principal: %+v", principal)
	}

	if _, err := svc.ValidateJWT(ctx, token+"x"); err != ErrInvalidCredential {
		t.Fatalf("expected ErrInvalidCredential for tampered token, got %v", err)
	}

	expired, err := svc.IssueJWT(ctx, got.ID, got.Email, -time.Minute)
	if err != nil {
		t.Fatalf("issue expired jwt: %v", err)
	}
	if _, err := svc.ValidateJWT(ctx, expired); err != ErrInvalidCredential {
		t.Fatalf("expected ErrInvalidCredential for expired token, got %v", err)
	}
}
