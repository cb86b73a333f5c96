package handler

import (
	"errors"
	"io/fs"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/scoreboard/scoreboard/internal/auth"
	"github.com/scoreboard/scoreboard/internal/handler/dto"
	"github.com/scoreboard/scoreboard/internal/middleware"
	"github.com/scoreboard/scoreboard/internal/model"
	"github.com/scoreboard/scoreboard/internal/service"
	"github.com/scoreboard/scoreboard/internal/web"
)

// StaticParam is the chi URL parameter holding the static file name.
const StaticParam = "*"

// PageHandler renders the HTML pages and serves static assets.
type PageHandler struct {
	svc      *service.ScoreboardService
	renderer *web.Renderer
	static   fs.FS
	logger   *slog.Logger
}

// NewPageHandler creates a new PageHandler.
func NewPageHandler(svc *service.ScoreboardService, renderer *web.Renderer, logger *slog.Logger) *PageHandler {
	return &PageHandler{
		svc:      svc,
		renderer: renderer,
		static:   web.Static(),
		logger:   logger,
	}
}

// Index handles GET /.
// It shows the ranked listings of the scoreboard named by ?id=, or the default.
func (h *PageHandler) Index(w http.ResponseWriter, r *http.Request) {
	sb, ok := h.loadScoreboard(w, r)
	if !ok {
		return
	}
	h.render(w, r, web.PageIndex, web.NewPageData(sb, auth.UsernameFromContext(r.Context())))
}

// Edit handles GET /edit.
// Requests carrying a valid auth cookie get the edit page; everyone else
// gets the login page.
func (h *PageHandler) Edit(w http.ResponseWriter, r *http.Request) {
	username := auth.UsernameFromContext(r.Context())
	if username == "" {
		h.render(w, r, web.PageLogin, web.PageData{Title: "Sign in"})
		return
	}

	sb, ok := h.loadScoreboard(w, r)
	if !ok {
		return
	}
	h.render(w, r, web.PageEdit, web.NewPageData(sb, username))
}

// Static handles GET /static/*.
// The file name is validated by middleware.StaticFilename before this runs.
func (h *PageHandler) Static(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, StaticParam)

	data, err := fs.ReadFile(h.static, name)
	if err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			h.logger.Error("failed to read static asset",
				slog.String("filename", name),
				slog.String("error", err.Error()),
			)
		}
		writeError(w, dto.CodeInvalidPath)
		return
	}

	w.Header().Set("Content-Type", web.ContentType(name))
	w.Header().Set("Cache-Control", "public, max-age=300")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}

func (h *PageHandler) loadScoreboard(w http.ResponseWriter, r *http.Request) (*model.Scoreboard, bool) {
	id, err := h.svc.ResolveID(r.URL.Query().Get("id"))
	if err != nil {
		writeError(w, dto.CodeInvalidField)
		return nil, false
	}

	sb, err := h.svc.Get(r.Context(), id)
	if err != nil {
		h.logger.Error("failed to load scoreboard",
			slog.String("scoreboard_id", id),
			slog.String("error", err.Error()),
			slog.String("request_id", middleware.GetRequestID(r.Context())),
		)
		writeInternalError(w)
		return nil, false
	}
	return sb, true
}

func (h *PageHandler) render(w http.ResponseWriter, r *http.Request, page string, data web.PageData) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := h.renderer.Render(w, page, data); err != nil {
		h.logger.Error("failed to render page",
			slog.String("page", page),
			slog.String("error", err.Error()),
			slog.String("request_id", middleware.GetRequestID(r.Context())),
		)
		writeInternalError(w)
	}
}
