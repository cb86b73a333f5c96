package handler

import (
	"errors"
	"log/slog"
	"mime"
	"net/http"
	"time"

	"github.com/scoreboard/scoreboard/internal/handler/dto"
	"github.com/scoreboard/scoreboard/internal/middleware"
	"github.com/scoreboard/scoreboard/internal/model"
	"github.com/scoreboard/scoreboard/internal/service"
)

// Cookies set on a successful login.
const (
	RefreshCookieName = "refreshToken"
	ExpiresCookieName = "tokenExpires"
	UserCookieName    = "authUser"
)

// CookieConfig controls the attributes of the auth cookies.
type CookieConfig struct {
	// Secure marks cookies HTTPS-only.
	Secure bool
}

// AuthHandler handles the login endpoint.
type AuthHandler struct {
	svc     *service.AuthService
	cookies CookieConfig
	logger  *slog.Logger
}

// NewAuthHandler creates a new AuthHandler.
func NewAuthHandler(svc *service.AuthService, cookies CookieConfig, logger *slog.Logger) *AuthHandler {
	return &AuthHandler{
		svc:     svc,
		cookies: cookies,
		logger:  logger,
	}
}

// Auth handles POST /auth.
// Credentials arrive form-encoded from the login page, or as JSON.
// On success the grant is returned and stored in cookies.
func (h *AuthHandler) Auth(w http.ResponseWriter, r *http.Request) {
	req, err := parseAuthRequest(r)
	if err != nil {
		writeDecodeError(w, err)
		return
	}
	if req.Username == nil || req.Password == nil {
		writeError(w, dto.CodeMissingField)
		return
	}
	username := *req.Username

	grant, err := h.svc.Authenticate(r.Context(), username, *req.Password)
	if err != nil {
		h.handleAuthError(w, r, username, err)
		return
	}

	h.setCookies(w, username, grant)

	h.logger.Info("login_succeeded",
		"username", username,
		"expires", grant.Expires,
	)

	writeJSON(w, http.StatusOK, dto.ToTokenResponse(grant))
}

func (h *AuthHandler) handleAuthError(w http.ResponseWriter, r *http.Request, username string, err error) {
	var code dto.ErrorCode
	switch {
	case errors.Is(err, service.ErrMissingCredentials):
		code = dto.CodeMissingField
	case errors.Is(err, service.ErrUnknownUser):
		code = dto.CodeUnknownUser
	case errors.Is(err, service.ErrBadPassword):
		code = dto.CodeBadPassword
	default:
		h.logger.Error("authentication failed",
			slog.String("error", err.Error()),
			slog.String("request_id", middleware.GetRequestID(r.Context())),
		)
		writeInternalError(w)
		return
	}

	h.logger.Warn("login_failed",
		slog.String("username", username),
		slog.Int("code", int(code)),
		slog.String("request_id", middleware.GetRequestID(r.Context())),
	)
	writeError(w, code)
}

func (h *AuthHandler) setCookies(w http.ResponseWriter, username string, grant *model.TokenGrant) {
	cookie := func(name, value string, httpOnly bool) *http.Cookie {
		return &http.Cookie{
			Name:     name,
			Value:    value,
			Path:     "/",
			Expires:  grant.Expires,
			HttpOnly: httpOnly,
			Secure:   h.cookies.Secure,
			SameSite: http.SameSiteLaxMode,
		}
	}

	http.SetCookie(w, cookie(middleware.AuthCookieName, grant.Key, true))
	http.SetCookie(w, cookie(RefreshCookieName, grant.RefreshKey, true))
	http.SetCookie(w, cookie(ExpiresCookieName, grant.Expires.UTC().Format(time.RFC3339), false))
	http.SetCookie(w, cookie(UserCookieName, username, false))
}

// parseAuthRequest reads credentials from a JSON or form body.
// Fields absent from the request stay nil.
func parseAuthRequest(r *http.Request) (*dto.AuthRequest, error) {
	var req dto.AuthRequest

	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if mediaType == "application/json" {
		if err := decodeJSON(r, &req); err != nil {
			return nil, err
		}
		return &req, nil
	}

	if err := r.ParseForm(); err != nil {
		return nil, err
	}
	if values, ok := r.PostForm["username"]; ok && len(values) > 0 {
		req.Username = &values[0]
	}
	if values, ok := r.PostForm["password"]; ok && len(values) > 0 {
		req.Password = &values[0]
	}
	return &req, nil
}
