package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/scoreboard/scoreboard/internal/kv"
	"github.com/scoreboard/scoreboard/internal/model"
)

// Common errors for user store operations.
var (
	ErrUserNotFound = errors.New("user not found")
)

// UserStore persists users keyed by username.
type UserStore struct {
	table kv.Table
}

// NewUserStore creates a UserStore over the given table.
func NewUserStore(table kv.Table) *UserStore {
	return &UserStore{table: table}
}

// Get retrieves a user by username.
func (s *UserStore) Get(ctx context.Context, username string) (*model.User, error) {
	var user model.User
	if err := kv.Load(ctx, s.table, username, &user); err != nil {
		if errors.Is(err, kv.ErrItemNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	return &user, nil
}

// Create stores a user. An existing user with the same name is replaced.
func (s *UserStore) Create(ctx context.Context, username, passhash string) (*model.User, error) {
	user := &model.User{
		Username: username,
		PassHash: passhash,
	}

	if err := kv.Store(ctx, s.table, username, user); err != nil {
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	return user, nil
}
