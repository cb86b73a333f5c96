package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/scoreboard/scoreboard/internal/auth"
	"github.com/scoreboard/scoreboard/internal/metrics"
	"github.com/scoreboard/scoreboard/internal/model"
	"github.com/scoreboard/scoreboard/internal/repository"
)

// Authentication errors.
var (
	ErrMissingCredentials = errors.New("username and password are required")
	ErrUnknownUser        = errors.New("unknown user")
	ErrBadPassword        = errors.New("incorrect password")
	ErrUserExists         = errors.New("user already exists")
)

// AuthService verifies credentials and issues access tokens.
type AuthService struct {
	users     *repository.UserStore
	passwords *auth.PasswordManager
	tokens    *auth.Manager
	metrics   metrics.Recorder
}

// NewAuthService creates a new AuthService.
func NewAuthService(users *repository.UserStore, passwords *auth.PasswordManager, tokens *auth.Manager, recorder metrics.Recorder) *AuthService {
	if recorder == nil {
		recorder = metrics.NewNoop()
	}
	return &AuthService{
		users:     users,
		passwords: passwords,
		tokens:    tokens,
		metrics:   recorder,
	}
}

// Authenticate checks username and password and issues a token grant.
func (s *AuthService) Authenticate(ctx context.Context, username, password string) (*model.TokenGrant, error) {
	if username == "" || password == "" {
		return nil, ErrMissingCredentials
	}

	user, err := s.users.Get(ctx, username)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			s.metrics.IncAuthAttempt(metrics.AuthUnknownUser)
			return nil, ErrUnknownUser
		}
		return nil, err
	}

	match, err := s.passwords.Verify(password, user.PassHash)
	if err != nil && !errors.Is(err, auth.ErrInvalidHash) && !errors.Is(err, auth.ErrIncompatibleVersion) {
		return nil, fmt.Errorf("verify password: %w", err)
	}
	if !match {
		s.metrics.IncAuthAttempt(metrics.AuthBadPassword)
		return nil, ErrBadPassword
	}

	grant, err := s.tokens.Issue(ctx, user.Username)
	if err != nil {
		return nil, err
	}

	s.metrics.IncAuthAttempt(metrics.AuthSuccess)
	s.metrics.IncTokenIssued()

	return grant, nil
}

// CheckToken reports whether key is a valid access token and returns its owner.
func (s *AuthService) CheckToken(ctx context.Context, key string) (string, bool, error) {
	token, err := s.tokens.Lookup(ctx, key)
	if err != nil {
		if errors.Is(err, auth.ErrInvalidToken) {
			s.metrics.IncTokenCheck(metrics.TokenInvalid)
			return "", false, nil
		}
		return "", false, err
	}

	s.metrics.IncTokenCheck(metrics.TokenValid)
	return token.Username, true, nil
}

// RegisterInput defines input for registering a user.
type RegisterInput struct {
	Username string
	Password string
	// Overwrite replaces an existing user with the same name.
	Overwrite bool
}

// Register hashes the password and stores the user.
func (s *AuthService) Register(ctx context.Context, input RegisterInput) (*model.User, error) {
	if input.Username == "" || input.Password == "" {
		return nil, ErrMissingCredentials
	}

	if !input.Overwrite {
		_, err := s.users.Get(ctx, input.Username)
		if err == nil {
			return nil, ErrUserExists
		}
		if !errors.Is(err, repository.ErrUserNotFound) {
			return nil, err
		}
	}

	hash, err := s.passwords.Hash(input.Password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	return s.users.Create(ctx, input.Username, hash)
}

// Seed registers username with password unless the user already exists.
// It reports whether a user was created.
func (s *AuthService) Seed(ctx context.Context, username, password string) (bool, error) {
	_, err := s.Register(ctx, RegisterInput{Username: username, Password: password})
	if errors.Is(err, ErrUserExists) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}
