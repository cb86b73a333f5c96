package middleware

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strings"

	"github.com/scoreboard/scoreboard/internal/auth"
	"github.com/scoreboard/scoreboard/internal/handler/dto"
)

// AuthCookieName is the cookie carrying the access token.
const AuthCookieName = "authToken"

// maxTokenBodyPeek bounds how much of a JSON body is read looking for access_key.
const maxTokenBodyPeek = 64 << 10

// TokenChecker resolves an access token to its owner.
type TokenChecker interface {
	CheckToken(ctx context.Context, key string) (username string, ok bool, err error)
}

// AuthConfig holds configuration for the auth middleware.
type AuthConfig struct {
	Logger  *slog.Logger
	Checker TokenChecker
}

// RequireToken returns a middleware that rejects requests without a valid
// access token. Candidates are checked in ExtractTokens order and the first
// valid one wins. The token owner is placed on the request context.
func RequireToken(cfg AuthConfig) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			candidates, err := ExtractTokens(r)
			if err != nil {
				var sizeErr *http.MaxBytesError
				if errors.As(err, &sizeErr) {
					writeBodyTooLarge(w)
					return
				}
			}

			if len(candidates) == 0 {
				cfg.Logger.Warn("authentication failed",
					slog.String("reason", "missing_token"),
					slog.String("ip", r.RemoteAddr),
					slog.String("endpoint", r.Method+" "+r.URL.Path),
					slog.String("request_id", GetRequestID(r.Context())),
				)
				writeAuthError(w)
				return
			}

			for _, c := range candidates {
				username, ok, err := cfg.Checker.CheckToken(r.Context(), c.Key)
				if err != nil {
					cfg.Logger.Error("token lookup failed",
						slog.String("error", err.Error()),
						slog.String("request_id", GetRequestID(r.Context())),
					)
					writeInternalError(w)
					return
				}
				if !ok {
					continue
				}

				cfg.Logger.Debug("authentication successful",
					slog.String("username", username),
					slog.String("source", c.Source),
					slog.String("request_id", GetRequestID(r.Context())),
				)

				ctx := auth.ContextWithUsername(r.Context(), username)
				next.ServeHTTP(w, r.WithContext(ctx))
				return
			}

			cfg.Logger.Warn("authentication failed",
				slog.String("reason", "invalid_token"),
				slog.String("source", candidates[len(candidates)-1].Source),
				slog.String("ip", r.RemoteAddr),
				slog.String("endpoint", r.Method+" "+r.URL.Path),
				slog.String("request_id", GetRequestID(r.Context())),
			)
			writeAuthError(w)
		})
	}
}

// OptionalToken resolves the auth cookie when present and valid, and
// otherwise passes the request through unauthenticated.
func OptionalToken(cfg AuthConfig) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			cookie, err := r.Cookie(AuthCookieName)
			if err != nil || cookie.Value == "" {
				next.ServeHTTP(w, r)
				return
			}

			username, ok, err := cfg.Checker.CheckToken(r.Context(), cookie.Value)
			if err != nil {
				cfg.Logger.Error("token lookup failed",
					slog.String("error", err.Error()),
					slog.String("request_id", GetRequestID(r.Context())),
				)
				writeInternalError(w)
				return
			}
			if !ok {
				next.ServeHTTP(w, r)
				return
			}

			ctx := auth.ContextWithUsername(r.Context(), username)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// TokenCandidate is an access token found on a request.
type TokenCandidate struct {
	Key    string
	Source string
}

// ExtractTokens finds access tokens on a request, in order: the auth
// cookie, an "Authorization: Bearer" header, then an "access_key" field in
// a JSON body. The body is restored for the next handler. The error is
// non-nil only when reading the body failed, for example past MaxBodySize.
func ExtractTokens(r *http.Request) ([]TokenCandidate, error) {
	var out []TokenCandidate

	if cookie, err := r.Cookie(AuthCookieName); err == nil && cookie.Value != "" {
		out = append(out, TokenCandidate{Key: cookie.Value, Source: "cookie"})
	}

	if header := r.Header.Get("Authorization"); strings.HasPrefix(header, "Bearer ") {
		if key := strings.TrimSpace(strings.TrimPrefix(header, "Bearer ")); key != "" {
			out = append(out, TokenCandidate{Key: key, Source: "header"})
		}
	}

	key, err := peekBodyToken(r)
	if key != "" {
		out = append(out, TokenCandidate{Key: key, Source: "body"})
	}

	return out, err
}

func peekBodyToken(r *http.Request) (string, error) {
	if r.Body == nil || r.Body == http.NoBody {
		return "", nil
	}
	// Browser scripts post JSON under a form content type, so only
	// multipart bodies are skipped.
	if strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/") {
		return "", nil
	}

	data, err := io.ReadAll(io.LimitReader(r.Body, maxTokenBodyPeek+1))
	rest := r.Body
	r.Body = struct {
		io.Reader
		io.Closer
	}{io.MultiReader(bytes.NewReader(data), rest), rest}
	if err != nil {
		return "", err
	}
	if len(data) > maxTokenBodyPeek {
		return "", nil
	}

	var body struct {
		AccessKey string `json:"access_key"`
	}
	if err := json.Unmarshal(data, &body); err != nil {
		return "", nil
	}
	return body.AccessKey, nil
}

// writeAuthError writes a 401 response with the unauthorized error code.
// Uses the same message for all auth failures to prevent enumeration.
func writeAuthError(w http.ResponseWriter) {
	writeCodedError(w, dto.CodeUnauthorized)
}

func writeCodedError(w http.ResponseWriter, code dto.ErrorCode) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code.Status())
	_ = json.NewEncoder(w).Encode(dto.NewError(code))
}

func writeBodyTooLarge(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusRequestEntityTooLarge)
	_, _ = w.Write([]byte(`{"error":"Request body too large."}`))
}

func writeInternalError(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusInternalServerError)
	_, _ = w.Write([]byte(`{"error":"Internal server error."}`))
}
