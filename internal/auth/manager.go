package auth

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/scoreboard/scoreboard/internal/cache"
	"github.com/scoreboard/scoreboard/internal/model"
	"github.com/scoreboard/scoreboard/internal/repository"
)

// DefaultTokenTTL is the lifetime recorded on issued tokens.
const DefaultTokenTTL = 24 * time.Hour

// ErrInvalidToken is returned by Lookup for unknown (or, when enforced, expired) keys.
var ErrInvalidToken = errors.New("invalid access token")

// TokenStore persists access tokens.
type TokenStore interface {
	Put(ctx context.Context, token *model.AccessToken) error
	Get(ctx context.Context, key string) (*model.AccessToken, error)
}

// TokenCache caches successful token lookups.
type TokenCache interface {
	GetToken(ctx context.Context, cacheKey string) (*cache.CachedToken, error)
	SetToken(ctx context.Context, cacheKey string, token *model.AccessToken) error
}

// ManagerOptions configures a Manager.
type ManagerOptions struct {
	// TTL is added to the issue time to produce Expires. Default: 24h.
	TTL time.Duration
	// EnforceExpiry makes lookups reject tokens past Expires.
	// Off by default: issued tokens stay valid until removed from the store.
	EnforceExpiry bool
	// Cache is optional.
	Cache TokenCache
	// Now overrides the clock. Default: time.Now.
	Now func() time.Time
	// Logger receives cache failures. Default: discard.
	Logger *slog.Logger
}

// Manager issues and validates access tokens.
type Manager struct {
	tokens        TokenStore
	cache         TokenCache
	ttl           time.Duration
	enforceExpiry bool
	now           func() time.Time
	logger        *slog.Logger
}

// NewManager creates a Manager over the given token store.
func NewManager(tokens TokenStore, opts ManagerOptions) *Manager {
	if opts.TTL <= 0 {
		opts.TTL = DefaultTokenTTL
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.Logger == nil {
		opts.Logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Manager{
		tokens:        tokens,
		cache:         opts.Cache,
		ttl:           opts.TTL,
		enforceExpiry: opts.EnforceExpiry,
		now:           opts.Now,
		logger:        opts.Logger,
	}
}

// Issue creates and persists a token pair for username.
// The returned grant does not carry the owner.
func (m *Manager) Issue(ctx context.Context, username string) (*model.TokenGrant, error) {
	key, err := GenerateToken(AccessKeyBytes)
	if err != nil {
		return nil, err
	}

	refreshKey, err := GenerateToken(RefreshKeyBytes)
	if err != nil {
		return nil, err
	}

	token := &model.AccessToken{
		Key:        key,
		RefreshKey: refreshKey,
		Expires:    m.now().UTC().Add(m.ttl),
		Username:   username,
	}

	if err := m.tokens.Put(ctx, token); err != nil {
		return nil, fmt.Errorf("issue token: %w", err)
	}

	return token.Grant(), nil
}

// Lookup resolves an access key to its token record.
// Only Key, Username and Expires are guaranteed to be set.
func (m *Manager) Lookup(ctx context.Context, key string) (*model.AccessToken, error) {
	if key == "" {
		return nil, ErrInvalidToken
	}

	token, err := m.lookup(ctx, key)
	if err != nil {
		return nil, err
	}

	if m.enforceExpiry && token.IsExpired(m.now()) {
		return nil, ErrInvalidToken
	}

	return token, nil
}

// Check reports whether key names a valid token.
// Without EnforceExpiry, any stored token is valid regardless of Expires.
func (m *Manager) Check(ctx context.Context, key string) (bool, error) {
	_, err := m.Lookup(ctx, key)
	if err == nil {
		return true, nil
	}
	if errors.Is(err, ErrInvalidToken) {
		return false, nil
	}
	return false, err
}

// EnforcesExpiry reports whether expired tokens are rejected.
func (m *Manager) EnforcesExpiry() bool {
	return m.enforceExpiry
}

func (m *Manager) lookup(ctx context.Context, key string) (*model.AccessToken, error) {
	var cacheKey string
	if m.cache != nil {
		cacheKey = QuickHash(key)
		cached, err := m.cache.GetToken(ctx, cacheKey)
		if err != nil {
			m.logger.Warn("token cache read failed", slog.String("error", err.Error()))
		}
		if cached != nil {
			return &model.AccessToken{
				Key:      key,
				Username: cached.Username,
				Expires:  cached.Expires,
			}, nil
		}
	}

	token, err := m.tokens.Get(ctx, key)
	if err != nil {
		if errors.Is(err, repository.ErrTokenNotFound) {
			return nil, ErrInvalidToken
		}
		return nil, fmt.Errorf("lookup token: %w", err)
	}

	if m.cache != nil {
		if err := m.cache.SetToken(ctx, cacheKey, token); err != nil {
			m.logger.Warn("token cache write failed", slog.String("error", err.Error()))
		}
	}

	return token, nil
}
