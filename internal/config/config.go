// Package config provides application configuration management.
// Configuration is loaded from environment variables following 12-factor principles.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/caarlos0/env/v10"
	"github.com/google/uuid"
)

// Storage backends.
const (
	BackendPostgres = "postgres"
	BackendRedis    = "redis"
	BackendMemory   = "memory"
)

// Config holds all application configuration.
// All fields are populated from environment variables.
type Config struct {
	// Application settings
	AppEnv  string `env:"APP_ENV" envDefault:"development"`
	AppPort int    `env:"APP_PORT" envDefault:"8080"`

	// Storage backend for the document tables: postgres, redis or memory.
	StoreBackend string `env:"STORE_BACKEND" envDefault:"postgres"`

	// Database (PostgreSQL)
	DatabaseURL string `env:"DATABASE_URL"`

	// Cache (Redis). With the postgres backend it enables the token
	// cache and login rate limiting.
	RedisURL string `env:"REDIS_URL"`

	// Table names
	ScoreboardTable string `env:"SCOREBOARD_TABLE" envDefault:"scoreboard-scoreboards"`
	UsersTable      string `env:"USERS_TABLE" envDefault:"scoreboard-users"`
	TokensTable     string `env:"TOKENS_TABLE" envDefault:"scoreboard-authorizations"`

	// Secret prepended to every password before hashing.
	PassSalt string `env:"PASS_SALT"`

	// Scoreboard served when a request does not name one.
	DefaultScoreboardID string `env:"DEFAULT_SCOREBOARD_ID" envDefault:"d288202a-3fc1-475f-be96-5567a605b287"`

	// Access tokens
	TokenTTL           time.Duration `env:"TOKEN_TTL" envDefault:"24h"`
	EnforceTokenExpiry bool          `env:"ENFORCE_TOKEN_EXPIRY" envDefault:"false"`
	CookieSecure       bool          `env:"COOKIE_SECURE" envDefault:"false"`

	// Logging
	LogLevel  string `env:"LOG_LEVEL" envDefault:"info"`
	LogFormat string `env:"LOG_FORMAT" envDefault:"json"`

	// Server timeouts
	ReadTimeout     time.Duration `env:"READ_TIMEOUT" envDefault:"5s"`
	WriteTimeout    time.Duration `env:"WRITE_TIMEOUT" envDefault:"10s"`
	ShutdownTimeout time.Duration `env:"SHUTDOWN_TIMEOUT" envDefault:"30s"`

	// Login rate limiting
	AuthRateLimitEnabled   bool `env:"AUTH_RATE_LIMIT_ENABLED" envDefault:"true"`
	AuthRateLimitPerMinute int  `env:"AUTH_RATE_LIMIT_PER_MINUTE" envDefault:"10"`
	AuthRateLimitBurst     int  `env:"AUTH_RATE_LIMIT_BURST" envDefault:"5"`

	// Seed user created at startup when absent. Both or neither must be set.
	SeedUsername string `env:"SEED_USERNAME"`
	SeedPassword string `env:"SEED_PASSWORD"`

	// TrustProxyHeaders takes the client IP from forwarding headers.
	TrustProxyHeaders bool `env:"TRUST_PROXY_HEADERS" envDefault:"false"`

	// CORS configuration
	// Comma-separated list of allowed origins (e.g., "https://example.com,https://app.example.com")
	CORSAllowedOrigins string `env:"CORS_ALLOWED_ORIGINS" envDefault:""`

	// Request body size limit in bytes (default 64KB)
	MaxRequestBodySize int64 `env:"MAX_REQUEST_BODY_SIZE" envDefault:"65536"`
}

// IsDevelopment returns true if running in development mode.
func (c *Config) IsDevelopment() bool {
	return c.AppEnv == "development"
}

// IsProduction returns true if running in production mode.
func (c *Config) IsProduction() bool {
	return c.AppEnv == "production"
}

// GetCORSAllowedOrigins parses the comma-separated origins string into a slice.
func (c *Config) GetCORSAllowedOrigins() []string {
	if c.CORSAllowedOrigins == "" {
		return nil
	}

	origins := strings.Split(c.CORSAllowedOrigins, ",")
	result := make([]string, 0, len(origins))

	for _, origin := range origins {
		trimmed := strings.TrimSpace(origin)
		if trimmed != "" {
			result = append(result, trimmed)
		}
	}

	return result
}

// Validate checks cross-field consistency.
func (c *Config) Validate() error {
	var errs []error

	switch c.StoreBackend {
	case BackendPostgres:
		if c.DatabaseURL == "" {
			errs = append(errs, errors.New("DATABASE_URL is required for the postgres backend"))
		}
	case BackendRedis:
		if c.RedisURL == "" {
			errs = append(errs, errors.New("REDIS_URL is required for the redis backend"))
		}
	case BackendMemory:
	default:
		errs = append(errs, fmt.Errorf("unknown STORE_BACKEND %q", c.StoreBackend))
	}

	if c.ScoreboardTable == "" || c.UsersTable == "" || c.TokensTable == "" {
		errs = append(errs, errors.New("table names must not be empty"))
	}

	if _, err := uuid.Parse(c.DefaultScoreboardID); err != nil {
		errs = append(errs, fmt.Errorf("DEFAULT_SCOREBOARD_ID must be a UUID: %w", err))
	}

	if c.TokenTTL <= 0 {
		errs = append(errs, errors.New("TOKEN_TTL must be positive"))
	}

	if c.AuthRateLimitEnabled && (c.AuthRateLimitPerMinute <= 0 || c.AuthRateLimitBurst <= 0) {
		errs = append(errs, errors.New("AUTH_RATE_LIMIT_PER_MINUTE and AUTH_RATE_LIMIT_BURST must be positive"))
	}

	if (c.SeedUsername == "") != (c.SeedPassword == "") {
		errs = append(errs, errors.New("SEED_USERNAME and SEED_PASSWORD must be set together"))
	}

	if c.IsProduction() && c.PassSalt == "" {
		errs = append(errs, errors.New("PASS_SALT is required in production"))
	}

	return errors.Join(errs...)
}

// Load parses environment variables and returns a validated Config.
func Load() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}
