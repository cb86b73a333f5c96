// Package main is the entrypoint for the scoreboard server.
package main

import (
	"context"
	"log/slog"
	"os"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/scoreboard/scoreboard/internal/auth"
	"github.com/scoreboard/scoreboard/internal/backend"
	"github.com/scoreboard/scoreboard/internal/config"
	"github.com/scoreboard/scoreboard/internal/handler"
	"github.com/scoreboard/scoreboard/internal/metrics"
	"github.com/scoreboard/scoreboard/internal/middleware"
	"github.com/scoreboard/scoreboard/internal/repository"
	"github.com/scoreboard/scoreboard/internal/server"
	"github.com/scoreboard/scoreboard/internal/service"
	"github.com/scoreboard/scoreboard/internal/web"
)

func main() {
	ctx := context.Background()

	// A missing .env is fine; the environment may already be set.
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := initLogger(cfg)

	// Initialize storage
	b, err := backend.Open(ctx, cfg, logger)
	if err != nil {
		logger.Error("failed to open store backend", "backend", cfg.StoreBackend, "error", err)
		os.Exit(1)
	}

	// Initialize metrics
	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	recorder, err := metrics.NewPrometheus(registry)
	if err != nil {
		logger.Error("failed to register metrics", "error", err)
		os.Exit(1)
	}

	// Initialize auth
	passwords := auth.NewPasswordManager(cfg.PassSalt)
	if passwords.UsesDefaultPepper() {
		logger.Warn("PASS_SALT is not set; using the built-in pepper")
	}

	managerOpts := auth.ManagerOptions{
		TTL:           cfg.TokenTTL,
		EnforceExpiry: cfg.EnforceTokenExpiry,
		Logger:        logger,
	}
	if b.Cache != nil {
		managerOpts.Cache = b.Cache
	}
	tokens := auth.NewManager(repository.NewTokenStore(b.Tokens), managerOpts)

	// Initialize services
	authService := service.NewAuthService(repository.NewUserStore(b.Users), passwords, tokens, recorder)
	scoreboardService := service.NewScoreboardService(
		repository.NewScoreboardStore(b.Scoreboards),
		cfg.DefaultScoreboardID,
		recorder,
	)

	if cfg.SeedUsername != "" {
		created, err := authService.Seed(ctx, cfg.SeedUsername, cfg.SeedPassword)
		if err != nil {
			logger.Error("failed to seed user", "error", err)
			os.Exit(1)
		}
		logger.Info("seed user checked", "username", cfg.SeedUsername, "created", created)
	}

	renderer, err := web.NewRenderer()
	if err != nil {
		logger.Error("failed to parse templates", "error", err)
		os.Exit(1)
	}

	// Login rate limiting is shared across instances when Redis is available.
	var limiter middleware.LoginLimiter
	if b.Cache != nil {
		limiter = &middleware.RedisLoginLimiter{
			Cache:     b.Cache,
			PerMinute: cfg.AuthRateLimitPerMinute,
			Burst:     cfg.AuthRateLimitBurst,
		}
	} else {
		limiter = middleware.NewLocalLoginLimiter(cfg.AuthRateLimitPerMinute, cfg.AuthRateLimitBurst)
	}

	var cacheChecker handler.HealthChecker
	if b.Cache != nil {
		cacheChecker = b.Cache
	}

	securityCfg := middleware.DefaultSecurityConfig()
	securityCfg.IsDevelopment = cfg.IsDevelopment()
	securityCfg.MaxRequestBodySize = cfg.MaxRequestBodySize

	corsCfg := middleware.DefaultCORSConfig()
	corsCfg.AllowedOrigins = cfg.GetCORSAllowedOrigins()

	r := handler.NewRouter(handler.RouterConfig{
		Logger:            logger,
		Base:              handler.New(),
		Pages:             handler.NewPageHandler(scoreboardService, renderer, logger),
		Scoreboard:        handler.NewScoreboardHandler(scoreboardService, logger),
		Auth:              handler.NewAuthHandler(authService, handler.CookieConfig{Secure: cfg.CookieSecure}, logger),
		Health:            handler.NewHealthHandler(b.Kind, b.Store, cacheChecker),
		Metrics:           handler.NewMetricsHandler(registry),
		Checker:           authService,
		Limiter:           limiter,
		RateLimitEnabled:  cfg.AuthRateLimitEnabled,
		TrustProxyHeaders: cfg.TrustProxyHeaders,
		Security:          securityCfg,
		CORS:              corsCfg,
	})

	srv := server.New(r, server.Options{
		Port:            cfg.AppPort,
		ReadTimeout:     cfg.ReadTimeout,
		WriteTimeout:    cfg.WriteTimeout,
		ShutdownTimeout: cfg.ShutdownTimeout,
	}, logger)
	srv.OnShutdown(b.Kind+" store", func(context.Context) error {
		b.Close()
		return nil
	})

	logger.Info("starting server",
		"port", cfg.AppPort,
		"env", cfg.AppEnv,
		"store_backend", cfg.StoreBackend,
		"cache", b.Cache != nil,
		"default_scoreboard_id", cfg.DefaultScoreboardID,
		"enforce_token_expiry", cfg.EnforceTokenExpiry,
	)

	if err := srv.Run(); err != nil {
		logger.Error("server error", "error", err)
		os.Exit(1)
	}
}

// initLogger initializes the slog logger based on configuration.
func initLogger(cfg *config.Config) *slog.Logger {
	var h slog.Handler

	opts := &slog.HandlerOptions{
		Level: parseLogLevel(cfg.LogLevel),
	}

	if cfg.LogFormat == "json" {
		h = slog.NewJSONHandler(os.Stdout, opts)
	} else {
		h = slog.NewTextHandler(os.Stdout, opts)
	}

	logger := slog.New(h)
	slog.SetDefault(logger)

	return logger
}

// parseLogLevel converts string log level to slog.Level.
func parseLogLevel(level string) slog.Level {
	switch level {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
