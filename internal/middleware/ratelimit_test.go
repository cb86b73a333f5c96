package middleware

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/scoreboard/scoreboard/internal/cache"
)

type failingLimiter struct{}

func (failingLimiter) Allow(context.Context, string) (*cache.RateLimitResult, error) {
	return nil, errors.New("redis down")
}

var okHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
})

func TestLocalLoginLimiter_Burst(t *testing.T) {
	t.Parallel()

	limiter := NewLocalLoginLimiter(1, 3)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		res, err := limiter.Allow(ctx, "10.0.0.1")
		if err != nil {
			t.Fatalf("Allow failed: %v", err)
		}
		if !res.Allowed {
			t.Fatalf("attempt %d should be allowed", i+1)
		}
	}

	res, err := limiter.Allow(ctx, "10.0.0.1")
	if err != nil {
		t.Fatalf("Allow failed: %v", err)
	}
	if res.Allowed {
		t.Fatal("attempt beyond burst should be rejected")
	}
	if res.RetryAfter <= 0 {
		t.Errorf("RetryAfter = %v, want positive", res.RetryAfter)
	}

	other, _ := limiter.Allow(ctx, "10.0.0.2")
	if !other.Allowed {
		t.Error("other IPs must have their own bucket")
	}
}

func TestRateLimitLogin(t *testing.T) {
	t.Parallel()

	handler := RateLimitLogin(RateLimitConfig{
		Logger:  discardLogger(),
		Limiter: NewLocalLoginLimiter(1, 2),
		Enabled: true,
	})(okHandler)

	statuses := make([]int, 0, 3)
	for i := 0; i < 3; i++ {
		req := httptest.NewRequest(http.MethodPost, "/auth", nil)
		req.RemoteAddr = "192.0.2.10:5555"
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		statuses = append(statuses, rec.Code)

		if rec.Code == http.StatusTooManyRequests && rec.Header().Get("Retry-After") == "" {
			t.Error("429 should carry Retry-After")
		}
	}

	want := []int{http.StatusOK, http.StatusOK, http.StatusTooManyRequests}
	for i := range want {
		if statuses[i] != want[i] {
			t.Fatalf("statuses = %v, want %v", statuses, want)
		}
	}
}

func TestRateLimitLogin_RotatedForwardedFor(t *testing.T) {
	t.Parallel()

	handler := RateLimitLogin(RateLimitConfig{
		Logger:  discardLogger(),
		Limiter: NewLocalLoginLimiter(1, 1),
		Enabled: true,
	})(okHandler)

	passed := 0
	for i := 0; i < 20; i++ {
		req := httptest.NewRequest(http.MethodPost, "/auth", nil)
		req.RemoteAddr = "203.0.113.7:40000"
		req.Header.Set("X-Forwarded-For", fmt.Sprintf("198.51.100.%d", i+1))
		req.Header.Set("X-Real-IP", fmt.Sprintf("192.0.2.%d", i+1))
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		if rec.Code == http.StatusOK {
			passed++
		}
	}

	if passed != 1 {
		t.Errorf("%d attempts passed from one client, want 1", passed)
	}
}

func TestRateLimitLogin_FailOpen(t *testing.T) {
	t.Parallel()

	handler := RateLimitLogin(RateLimitConfig{
		Logger:  discardLogger(),
		Limiter: failingLimiter{},
		Enabled: true,
	})(okHandler)

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/auth", nil))

	if rec.Code != http.StatusOK {
		t.Errorf("status = %d, want 200 when the limiter fails", rec.Code)
	}
}

func TestRateLimitLogin_Disabled(t *testing.T) {
	t.Parallel()

	handler := RateLimitLogin(RateLimitConfig{
		Logger:  discardLogger(),
		Limiter: NewLocalLoginLimiter(1, 1),
		Enabled: false,
	})(okHandler)

	for i := 0; i < 5; i++ {
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/auth", nil))
		if rec.Code != http.StatusOK {
			t.Fatalf("request %d: status = %d, want 200", i, rec.Code)
		}
	}
}

func TestGetClientIP(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		xff        string
		xri        string
		remoteAddr string
		want       string
	}{
		{"forwarded list ignored", "203.0.113.1, 10.0.0.1", "", "10.0.0.2:1234", "10.0.0.2"},
		{"real ip ignored", "", "198.51.100.7", "10.0.0.2:1234", "10.0.0.2"},
		{"remote addr with port", "", "", "192.0.2.1:4321", "192.0.2.1"},
		{"remote addr without port", "", "", "192.0.2.1", "192.0.2.1"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			req.RemoteAddr = tt.remoteAddr
			if tt.xff != "" {
				req.Header.Set("X-Forwarded-For", tt.xff)
			}
			if tt.xri != "" {
				req.Header.Set("X-Real-IP", tt.xri)
			}
			if got := getClientIP(req); got != tt.want {
				t.Errorf("getClientIP() = %q, want %q", got, tt.want)
			}
		})
	}
}
