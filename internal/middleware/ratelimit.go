package middleware

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"net"
	"net/http"
	"strconv"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"github.com/scoreboard/scoreboard/internal/cache"
)

// LoginLimiter decides whether another login attempt from ip is allowed.
type LoginLimiter interface {
	Allow(ctx context.Context, ip string) (*cache.RateLimitResult, error)
}

// RedisLoginLimiter shares login buckets across instances through Redis.
type RedisLoginLimiter struct {
	Cache     *cache.Cache
	PerMinute int
	Burst     int
}

// Allow consumes one attempt from the Redis bucket for ip.
func (l *RedisLoginLimiter) Allow(ctx context.Context, ip string) (*cache.RateLimitResult, error) {
	return l.Cache.CheckLoginRateLimit(ctx, ip, l.PerMinute, l.Burst)
}

const (
	// localCleanupThreshold is the minimum map size before a cleanup pass runs.
	localCleanupThreshold = 500
	// localMaxIdleAge is how long an idle IP keeps its bucket.
	localMaxIdleAge = 10 * time.Minute
)

type ipBucket struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// LocalLoginLimiter keeps per-IP buckets in process memory. It is used
// when no Redis is configured.
type LocalLoginLimiter struct {
	mu    sync.Mutex
	ips   map[string]*ipBucket
	limit rate.Limit
	burst int
}

// NewLocalLoginLimiter creates a LocalLoginLimiter refilling perMinute
// attempts per minute up to burst.
func NewLocalLoginLimiter(perMinute, burst int) *LocalLoginLimiter {
	return &LocalLoginLimiter{
		ips:   make(map[string]*ipBucket),
		limit: rate.Limit(float64(perMinute) / 60.0),
		burst: burst,
	}
}

// Allow consumes one attempt from the bucket for ip.
func (l *LocalLoginLimiter) Allow(_ context.Context, ip string) (*cache.RateLimitResult, error) {
	limiter := l.bucket(ip)
	now := time.Now()

	res := limiter.ReserveN(now, 1)
	if delay := res.DelayFrom(now); delay > 0 {
		res.CancelAt(now)
		return &cache.RateLimitResult{
			Allowed:    false,
			RetryAfter: time.Duration(math.Ceil(delay.Seconds())) * time.Second,
		}, nil
	}

	return &cache.RateLimitResult{
		Allowed:   true,
		Remaining: int64(limiter.TokensAt(now)),
	}, nil
}

func (l *LocalLoginLimiter) bucket(ip string) *rate.Limiter {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := time.Now()
	if len(l.ips) > localCleanupThreshold {
		cutoff := now.Add(-localMaxIdleAge)
		for k, b := range l.ips {
			if b.lastSeen.Before(cutoff) {
				delete(l.ips, k)
			}
		}
	}

	b, ok := l.ips[ip]
	if !ok {
		b = &ipBucket{limiter: rate.NewLimiter(l.limit, l.burst)}
		l.ips[ip] = b
	}
	b.lastSeen = now

	return b.limiter
}

// RateLimitConfig holds configuration for rate limiting middleware.
type RateLimitConfig struct {
	Logger  *slog.Logger
	Limiter LoginLimiter
	Enabled bool
}

// RateLimitLogin returns middleware that limits login attempts per client IP.
// Limiter failures let the request through.
func RateLimitLogin(cfg RateLimitConfig) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !cfg.Enabled || cfg.Limiter == nil {
				next.ServeHTTP(w, r)
				return
			}

			ip := getClientIP(r)

			result, err := cfg.Limiter.Allow(r.Context(), ip)
			if err != nil {
				cfg.Logger.Error("login rate limit check failed",
					slog.String("error", err.Error()),
					slog.String("ip", ip),
				)
				// Fail open - allow request
				next.ServeHTTP(w, r)
				return
			}

			if !result.Allowed {
				cfg.Logger.Warn("rate limit exceeded",
					slog.String("type", "login"),
					slog.String("ip", ip),
					slog.String("endpoint", r.Method+" "+r.URL.Path),
					slog.Int64("retry_after_seconds", int64(result.RetryAfter.Seconds())),
					slog.String("request_id", GetRequestID(r.Context())),
				)

				w.Header().Set("Retry-After", strconv.Itoa(int(result.RetryAfter.Seconds())))
				writeRateLimitError(w, result.RetryAfter)
				return
			}

			w.Header().Set("X-RateLimit-Remaining", strconv.FormatInt(result.Remaining, 10))
			next.ServeHTTP(w, r)
		})
	}
}

// writeRateLimitError writes a 429 Too Many Requests response.
func writeRateLimitError(w http.ResponseWriter, retryAfter time.Duration) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusTooManyRequests)
	msg := fmt.Sprintf(`{"error":"Too many login attempts. Retry after %d seconds."}`,
		int(retryAfter.Seconds()))
	_, _ = w.Write([]byte(msg))
}

// getClientIP returns the host part of r.RemoteAddr. Forwarding headers are
// not read here; chi's RealIP middleware rewrites RemoteAddr upstream.
func getClientIP(r *http.Request) string {
	if host, _, err := net.SplitHostPort(r.RemoteAddr); err == nil {
		return host
	}
	return r.RemoteAddr
}
