package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/scoreboard/scoreboard/internal/kv"
	"github.com/scoreboard/scoreboard/internal/model"
)

// Common errors for token store operations.
var (
	ErrTokenNotFound = errors.New("access token not found")
)

// TokenStore persists access tokens keyed by token value.
// Tokens are never deleted here.
type TokenStore struct {
	table kv.Table
}

// NewTokenStore creates a TokenStore over the given table.
func NewTokenStore(table kv.Table) *TokenStore {
	return &TokenStore{table: table}
}

// Put stores a token under its key.
func (s *TokenStore) Put(ctx context.Context, token *model.AccessToken) error {
	if err := kv.Store(ctx, s.table, token.Key, token); err != nil {
		return fmt.Errorf("failed to store access token: %w", err)
	}
	return nil
}

// Get retrieves a token by key.
func (s *TokenStore) Get(ctx context.Context, key string) (*model.AccessToken, error) {
	var token model.AccessToken
	if err := kv.Load(ctx, s.table, key, &token); err != nil {
		if errors.Is(err, kv.ErrItemNotFound) {
			return nil, ErrTokenNotFound
		}
		return nil, fmt.Errorf("failed to get access token: %w", err)
	}
	return &token, nil
}
