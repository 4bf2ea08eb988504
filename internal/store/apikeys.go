package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/plankhq/plank/internal/model"
)

// CreateAPIKey inserts a new API key record. The key_hash must already be set
// (use HashAPIKey). The ID and CreatedAt fields are populated after insert.
func (s *Store) CreateAPIKey(ctx context.Context, key *model.APIKey) error {
	key.CreatedAt = time.Now().UTC()

	const q = `INSERT INTO api_keys
		(key_hash, key_prefix, label, owner_user_id, is_active, created_at)
		VALUES
		(:key_hash, :key_prefix, :label, :owner_user_id, :is_active, :created_at)`

	id, err := s.namedInsert(ctx, q, key)
	if err != nil {
		return fmt.Errorf("insert api key: %w", err)
	}
	key.ID = id
	return nil
}

// GetAPIKeyByHash looks up an API key by its SHA-256 hash.
func (s *Store) GetAPIKeyByHash(ctx context.Context, hash string) (*model.APIKey, error) {
	var key model.APIKey
	if err := s.get(ctx, &key, "SELECT * FROM api_keys WHERE key_hash = ?", hash); err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get api key by hash: %w", err)
	}
	return &key, nil
}

// ListAPIKeys returns all API keys, newest first.
func (s *Store) ListAPIKeys(ctx context.Context) ([]model.APIKey, error) {
	var keys []model.APIKey
	if err := s.sel(ctx, &keys, "SELECT * FROM api_keys ORDER BY created_at DESC"); err != nil {
		return nil, fmt.Errorf("list api keys: %w", err)
	}
	return keys, nil
}

// RevokeAPIKey marks an API key as inactive by ID.
func (s *Store) RevokeAPIKey(ctx context.Context, id int64) error {
	result, err := s.exec(ctx,
		"UPDATE api_keys SET is_active = ? WHERE id = ?", false, id)
	if err != nil {
		return fmt.Errorf("revoke api key: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("revoke api key rows affected: %w", err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

// TouchAPIKey sets the last_used_at timestamp for an API key.
func (s *Store) TouchAPIKey(ctx context.Context, id int64) error {
	now := time.Now().UTC()
	result, err := s.exec(ctx,
		"UPDATE api_keys SET last_used_at = ? WHERE id = ?", now, id)
	if err != nil {
		return fmt.Errorf("touch api key: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("touch api key rows affected: %w", err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}
