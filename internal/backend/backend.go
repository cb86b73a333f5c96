// Package backend opens the table backend and optional Redis cache selected
// by configuration.
package backend

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"regexp"
	"strings"

	"github.com/scoreboard/scoreboard/internal/cache"
	"github.com/scoreboard/scoreboard/internal/config"
	"github.com/scoreboard/scoreboard/internal/kv"
	"github.com/scoreboard/scoreboard/internal/repository"
)

// Pinger reports whether a dependency is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Backend holds the three entity tables and the connections behind them.
type Backend struct {
	Kind        string
	Scoreboards kv.Table
	Users       kv.Table
	Tokens      kv.Table

	// Store is pinged by readiness checks.
	Store Pinger
	// Cache is nil when REDIS_URL is unset.
	Cache *cache.Cache

	closers []func()
}

// Open connects to the configured backend. When REDIS_URL is set the Redis
// client is opened as well, whether or not it also serves the tables.
func Open(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*Backend, error) {
	b := &Backend{Kind: cfg.StoreBackend}

	if cfg.RedisURL != "" {
		c, err := cache.New(ctx, cfg.RedisURL)
		if err != nil {
			return nil, fmt.Errorf("connect to redis at %s: %s",
				RedactURL(cfg.RedisURL), SanitizeError(err, cfg.RedisURL))
		}
		b.Cache = c
		b.closers = append(b.closers, func() { _ = c.Close() })
		logger.Info("connected to Redis")
	}

	switch cfg.StoreBackend {
	case config.BackendPostgres:
		repo, err := repository.New(ctx, cfg.DatabaseURL)
		if err != nil {
			b.Close()
			return nil, fmt.Errorf("connect to database at %s: %s",
				RedactURL(cfg.DatabaseURL), SanitizeError(err, cfg.DatabaseURL))
		}
		b.closers = append(b.closers, repo.Close)
		b.Scoreboards = repo.Table(cfg.ScoreboardTable)
		b.Users = repo.Table(cfg.UsersTable)
		b.Tokens = repo.Table(cfg.TokensTable)
		b.Store = repo
		logger.Info("connected to database")

	case config.BackendRedis:
		if b.Cache == nil {
			return nil, errors.New("redis backend requires REDIS_URL")
		}
		b.Scoreboards = b.Cache.Table(cfg.ScoreboardTable)
		b.Users = b.Cache.Table(cfg.UsersTable)
		b.Tokens = b.Cache.Table(cfg.TokensTable)
		b.Store = b.Cache

	case config.BackendMemory:
		scoreboards := kv.NewMemoryTable(cfg.ScoreboardTable)
		b.Scoreboards = scoreboards
		b.Users = kv.NewMemoryTable(cfg.UsersTable)
		b.Tokens = kv.NewMemoryTable(cfg.TokensTable)
		b.Store = scoreboards
		logger.Warn("using in-memory tables; data is lost on restart")

	default:
		b.Close()
		return nil, fmt.Errorf("unknown store backend %q", cfg.StoreBackend)
	}

	return b, nil
}

// Close releases connections in reverse order of opening.
func (b *Backend) Close() {
	for i := len(b.closers) - 1; i >= 0; i-- {
		b.closers[i]()
	}
	b.closers = nil
}

var passwordPattern = regexp.MustCompile(`(?i)password=[^\s]+`)

// RedactURL strips the password from a connection URL.
func RedactURL(raw string) string {
	if raw == "" {
		return ""
	}

	parsed, err := url.Parse(raw)
	if err != nil {
		return "[redacted]"
	}

	if parsed.User != nil {
		username := parsed.User.Username()
		if username == "" {
			parsed.User = url.User("redacted")
		} else {
			parsed.User = url.User(username)
		}
	}

	return parsed.String()
}

// SanitizeError renders err with every secret URL redacted.
func SanitizeError(err error, secrets ...string) string {
	if err == nil {
		return ""
	}

	msg := err.Error()
	for _, secret := range secrets {
		if secret == "" {
			continue
		}
		redacted := RedactURL(secret)
		if redacted == "" {
			redacted = "[redacted]"
		}
		msg = strings.ReplaceAll(msg, secret, redacted)
	}

	return passwordPattern.ReplaceAllString(msg, "password=redacted")
}
