package model

import "time"

// APIKey authenticates non-local REST requests. The raw key is never stored;
// only a SHA-256 hash and a short prefix for identification are persisted.
type APIKey struct {
	ID          int64      `json:"id" db:"id"`
	KeyHash     string     `json:"-" db:"key_hash"` // SHA-256 hash, never expose
	KeyPrefix   string     `json:"key_prefix" db:"key_prefix"`
	Label       string     `json:"label" db:"label"`
	OwnerUserID *int64     `json:"owner_user_id,omitempty" db:"owner_user_id"`
	IsActive    bool       `json:"is_active" db:"is_active"`
	CreatedAt   time.Time  `json:"created_at" db:"created_at"`
	LastUsedAt  *time.Time `json:"last_used_at,omitempty" db:"last_used_at"`
}
