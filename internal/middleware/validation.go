package middleware

import (
	"errors"
	"log/slog"
	"net/http"
	"net/url"
	"regexp"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/scoreboard/scoreboard/internal/handler/dto"
)

// MaxStaticFilenameLength is the maximum length for a static asset name.
const MaxStaticFilenameLength = 128

// Validation errors.
var (
	ErrFilenameEmpty     = errors.New("filename is empty")
	ErrFilenameTooLong   = errors.New("filename exceeds maximum length")
	ErrFilenameTraversal = errors.New("filename escapes the static directory")
	ErrFilenameInvalid   = errors.New("filename contains invalid characters")
)

// validFilenamePattern matches a flat file name with optional extensions.
// Allowed: a-z, A-Z, 0-9, hyphen, underscore, and dot-separated extensions.
var validFilenamePattern = regexp.MustCompile(`^[a-zA-Z0-9_-]+(\.[a-zA-Z0-9_-]+)*$`)

// ValidateStaticFilename checks that name refers to a file directly inside
// the static directory.
func ValidateStaticFilename(name string) error {
	if name == "" {
		return ErrFilenameEmpty
	}

	if len(name) > MaxStaticFilenameLength {
		return ErrFilenameTooLong
	}

	// Reject encoded separators that a later decode could turn into a path.
	decoded, err := url.PathUnescape(name)
	if err != nil {
		return ErrFilenameInvalid
	}

	for _, candidate := range []string{name, decoded} {
		if strings.Contains(candidate, "..") ||
			strings.ContainsAny(candidate, `/\`) ||
			strings.HasPrefix(candidate, ".") {
			return ErrFilenameTraversal
		}
	}

	if !validFilenamePattern.MatchString(name) {
		return ErrFilenameInvalid
	}

	return nil
}

// StaticFilename returns middleware that validates the named chi URL
// parameter and answers invalid names with the invalid-path error.
func StaticFilename(logger *slog.Logger, param string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			name := chi.URLParam(r, param)
			if err := ValidateStaticFilename(name); err != nil {
				if errors.Is(err, ErrFilenameTraversal) {
					logger.Warn("static path rejected",
						slog.String("reason", err.Error()),
						slog.String("ip", r.RemoteAddr),
						slog.String("request_id", GetRequestID(r.Context())),
					)
				}
				writeCodedError(w, dto.CodeInvalidPath)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
