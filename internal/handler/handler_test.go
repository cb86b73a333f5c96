package handler

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/scoreboard/scoreboard/internal/auth"
	"github.com/scoreboard/scoreboard/internal/handler/dto"
	"github.com/scoreboard/scoreboard/internal/kv"
	"github.com/scoreboard/scoreboard/internal/metrics"
	"github.com/scoreboard/scoreboard/internal/middleware"
	"github.com/scoreboard/scoreboard/internal/repository"
	"github.com/scoreboard/scoreboard/internal/service"
	"github.com/scoreboard/scoreboard/internal/web"
)

const (
	testDefaultID = "d288202a-3fc1-475f-be96-5567a605b287"
	testUsername  = "alice"
	testPassword  = "s3cret"
)

type testApp struct {
	router      http.Handler
	scoreboards *service.ScoreboardService
	recorder    *metrics.InMemoryRecorder
	registry    *prometheus.Registry
}

type testAppOptions struct {
	limiter    middleware.LoginLimiter
	trustProxy bool
}

func newTestApp(t *testing.T) *testApp {
	t.Helper()
	return newTestAppWithOptions(t, testAppOptions{})
}

func newTestAppWithOptions(t *testing.T, opts testAppOptions) *testApp {
	t.Helper()

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	scoreboardTable := kv.NewMemoryTable("scoreboards")
	users := repository.NewUserStore(kv.NewMemoryTable("users"))
	tokens := repository.NewTokenStore(kv.NewMemoryTable("tokens"))

	recorder := metrics.NewInMemory()
	authSvc := service.NewAuthService(users, auth.NewPasswordManager("test-pepper"), auth.NewManager(tokens, auth.ManagerOptions{}), recorder)
	scoreboardSvc := service.NewScoreboardService(repository.NewScoreboardStore(scoreboardTable), testDefaultID, recorder)

	if _, err := authSvc.Register(context.Background(), service.RegisterInput{
		Username: testUsername,
		Password: testPassword,
	}); err != nil {
		t.Fatalf("Register failed: %v", err)
	}

	renderer, err := web.NewRenderer()
	if err != nil {
		t.Fatalf("NewRenderer failed: %v", err)
	}

	registry := prometheus.NewRegistry()
	promRecorder, err := metrics.NewPrometheus(registry)
	if err != nil {
		t.Fatalf("NewPrometheus failed: %v", err)
	}
	promRecorder.IncTokenIssued()

	limiter := opts.limiter
	if limiter == nil {
		limiter = middleware.NewLocalLoginLimiter(1000, 1000)
	}

	router := NewRouter(RouterConfig{
		Logger:            logger,
		Base:              New(),
		Pages:             NewPageHandler(scoreboardSvc, renderer, logger),
		Scoreboard:        NewScoreboardHandler(scoreboardSvc, logger),
		Auth:              NewAuthHandler(authSvc, CookieConfig{}, logger),
		Health:            NewHealthHandler("store", scoreboardTable, nil),
		Metrics:           NewMetricsHandler(registry),
		Checker:           authSvc,
		Limiter:           limiter,
		RateLimitEnabled:  true,
		TrustProxyHeaders: opts.trustProxy,
		Security: middleware.SecurityConfig{
			IsDevelopment:      true,
			MaxRequestBodySize: 64 << 10,
		},
		CORS: middleware.DefaultCORSConfig(),
	})

	return &testApp{
		router:      router,
		scoreboards: scoreboardSvc,
		recorder:    recorder,
		registry:    registry,
	}
}

type requestOption func(*http.Request)

func withCookie(token string) requestOption {
	return func(r *http.Request) {
		r.AddCookie(&http.Cookie{Name: middleware.AuthCookieName, Value: token})
	}
}

func withBearer(token string) requestOption {
	return func(r *http.Request) {
		r.Header.Set("Authorization", "Bearer "+token)
	}
}

func withContentType(ct string) requestOption {
	return func(r *http.Request) {
		r.Header.Set("Content-Type", ct)
	}
}

func (a *testApp) do(t *testing.T, method, target, body string, opts ...requestOption) *httptest.ResponseRecorder {
	t.Helper()

	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, target, reader)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	for _, opt := range opts {
		opt(req)
	}

	rec := httptest.NewRecorder()
	a.router.ServeHTTP(rec, req)
	return rec
}

// login posts the login form and returns the issued access key.
func (a *testApp) login(t *testing.T) string {
	t.Helper()

	form := url.Values{"username": {testUsername}, "password": {testPassword}}
	rec := a.do(t, http.MethodPost, "/auth", form.Encode(),
		withContentType("application/x-www-form-urlencoded"))
	if rec.Code != http.StatusOK {
		t.Fatalf("login failed: %d %s", rec.Code, rec.Body.String())
	}

	var grant dto.TokenResponse
	if err := json.NewDecoder(rec.Body).Decode(&grant); err != nil {
		t.Fatalf("failed to decode grant: %v", err)
	}
	return grant.Key
}

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) dto.ErrorResponse {
	t.Helper()

	var resp dto.ErrorResponse
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("failed to decode error response: %v (body %q)", err, rec.Body.String())
	}
	return resp
}

func assertError(t *testing.T, rec *httptest.ResponseRecorder, code dto.ErrorCode) {
	t.Helper()

	if rec.Code != code.Status() {
		t.Errorf("expected status %d, got %d (body %s)", code.Status(), rec.Code, rec.Body.String())
	}
	resp := decodeError(t, rec)
	if resp.Code != code {
		t.Errorf("expected error code %d, got %d", code, resp.Code)
	}
	if resp.Error != code.Message() {
		t.Errorf("expected message %q, got %q", code.Message(), resp.Error)
	}
}

func TestHandler_NotFound(t *testing.T) {
	t.Parallel()

	app := newTestApp(t)
	rec := app.do(t, http.MethodGet, "/nonexistent", "")

	if rec.Code != http.StatusNotFound {
		t.Errorf("expected status 404, got %d", rec.Code)
	}

	var response map[string]string
	if err := json.NewDecoder(rec.Body).Decode(&response); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}

	if response["error"] != "resource not found" {
		t.Errorf("unexpected error message: %s", response["error"])
	}
}

func TestHandler_MethodNotAllowed(t *testing.T) {
	t.Parallel()

	app := newTestApp(t)
	rec := app.do(t, http.MethodGet, "/add-listing", "")

	if rec.Code != http.StatusMethodNotAllowed {
		t.Errorf("expected status 405, got %d", rec.Code)
	}

	var response map[string]string
	if err := json.NewDecoder(rec.Body).Decode(&response); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}

	if response["error"] != "method not allowed" {
		t.Errorf("unexpected error message: %s", response["error"])
	}
}

func TestMetrics_Exposition(t *testing.T) {
	t.Parallel()

	app := newTestApp(t)
	rec := app.do(t, http.MethodGet, "/metrics", "")

	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "scoreboard_tokens_issued_total 1") {
		t.Errorf("metrics output missing tokens_issued_total:\n%s", rec.Body.String())
	}
}

func TestMetrics_NoGatherer(t *testing.T) {
	t.Parallel()

	h := NewMetricsHandler(nil)
	rec := httptest.NewRecorder()
	h.Metrics(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	if rec.Code != http.StatusServiceUnavailable {
		t.Errorf("expected status 503, got %d", rec.Code)
	}
}
