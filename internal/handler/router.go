package handler

import (
	"log/slog"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/scoreboard/scoreboard/internal/middleware"
)

// RouterConfig holds everything the router wires together.
type RouterConfig struct {
	Logger *slog.Logger

	Base       *Handler
	Pages      *PageHandler
	Scoreboard *ScoreboardHandler
	Auth       *AuthHandler
	Health     *HealthHandler
	Metrics    *MetricsHandler

	// Checker validates access tokens for the gated routes.
	Checker middleware.TokenChecker

	// Limiter throttles POST /auth per client IP.
	Limiter          middleware.LoginLimiter
	RateLimitEnabled bool

	// TrustProxyHeaders rewrites RemoteAddr from X-Forwarded-For and
	// X-Real-IP. Enable only behind a proxy that sets them.
	TrustProxyHeaders bool

	Security middleware.SecurityConfig
	CORS     middleware.CORSConfig
}

// NewRouter configures the chi router with all routes and middleware.
func NewRouter(cfg RouterConfig) *chi.Mux {
	r := chi.NewRouter()

	// Global middleware
	if cfg.TrustProxyHeaders {
		r.Use(chimiddleware.RealIP)
	}
	r.Use(middleware.RequestID)
	r.Use(middleware.Logger(cfg.Logger))
	r.Use(middleware.Recoverer(cfg.Logger))
	r.Use(middleware.Security(cfg.Security))
	r.Use(middleware.CORS(cfg.CORS))
	if cfg.Security.MaxRequestBodySize > 0 {
		r.Use(middleware.MaxBodySize(cfg.Security.MaxRequestBodySize))
	}

	// Health and metrics endpoints
	r.Get("/healthz", cfg.Health.Healthz)
	r.Get("/readyz", cfg.Health.Readyz)
	if cfg.Metrics != nil {
		r.Get("/metrics", cfg.Metrics.Metrics)
	}

	authCfg := middleware.AuthConfig{
		Logger:  cfg.Logger,
		Checker: cfg.Checker,
	}

	// Pages
	r.Get("/", cfg.Pages.Index)
	r.With(middleware.OptionalToken(authCfg)).Get("/edit", cfg.Pages.Edit)
	r.With(middleware.StaticFilename(cfg.Logger, StaticParam)).Get("/static/*", cfg.Pages.Static)

	// Login
	r.With(middleware.RateLimitLogin(middleware.RateLimitConfig{
		Logger:  cfg.Logger,
		Limiter: cfg.Limiter,
		Enabled: cfg.RateLimitEnabled,
	})).Post("/auth", cfg.Auth.Auth)

	// Scoreboard mutations
	r.Group(func(r chi.Router) {
		r.Use(middleware.RequireToken(authCfg))

		r.Post("/add-listing", cfg.Scoreboard.AddListing)
		r.Post("/edit-listing", cfg.Scoreboard.EditListing)
		r.Post("/delete-listing", cfg.Scoreboard.DeleteListing)
		r.Post("/edit-scoreboard", cfg.Scoreboard.EditScoreboard)
	})

	// 404 and 405 handlers
	r.NotFound(cfg.Base.NotFound)
	r.MethodNotAllowed(cfg.Base.MethodNotAllowed)

	return r
}
