package handler

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/scoreboard/scoreboard/internal/auth"
	"github.com/scoreboard/scoreboard/internal/handler/dto"
	"github.com/scoreboard/scoreboard/internal/middleware"
	"github.com/scoreboard/scoreboard/internal/service"
)

// ScoreboardHandler handles the scoreboard mutation endpoints.
// Every route is expected behind middleware.RequireToken.
type ScoreboardHandler struct {
	svc    *service.ScoreboardService
	logger *slog.Logger
}

// NewScoreboardHandler creates a new ScoreboardHandler.
func NewScoreboardHandler(svc *service.ScoreboardService, logger *slog.Logger) *ScoreboardHandler {
	return &ScoreboardHandler{
		svc:    svc,
		logger: logger,
	}
}

// AddListing handles POST /add-listing.
func (h *ScoreboardHandler) AddListing(w http.ResponseWriter, r *http.Request) {
	var req dto.AddListingRequest
	if err := decodeJSON(r, &req); err != nil {
		writeDecodeError(w, err)
		return
	}

	id, err := h.svc.ResolveID(req.ScoreboardID)
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}

	listing, err := h.svc.AddListing(r.Context(), id, service.AddListingInput{
		Name:  req.Name,
		Total: req.Total.Ptr(),
	})
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}

	h.logger.Info("listing_created",
		"scoreboard_id", id,
		"listing_id", listing.ListingID,
		"username", auth.UsernameFromContext(r.Context()),
	)

	writeJSON(w, http.StatusOK, dto.ToListingResponse(listing))
}

// EditListing handles POST /edit-listing.
func (h *ScoreboardHandler) EditListing(w http.ResponseWriter, r *http.Request) {
	var req dto.EditListingRequest
	if err := decodeJSON(r, &req); err != nil {
		writeDecodeError(w, err)
		return
	}

	id, err := h.svc.ResolveID(req.ScoreboardID)
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}

	listing, err := h.svc.UpdateListing(r.Context(), id, req.ListingID, req.Patch())
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}

	h.logger.Info("listing_updated",
		"scoreboard_id", id,
		"listing_id", listing.ListingID,
		"name_changed", req.Name != nil,
		"total_changed", req.Total != nil,
		"username", auth.UsernameFromContext(r.Context()),
	)

	writeJSON(w, http.StatusOK, dto.ToListingResponse(listing))
}

// DeleteListing handles POST /delete-listing.
func (h *ScoreboardHandler) DeleteListing(w http.ResponseWriter, r *http.Request) {
	var req dto.DeleteListingRequest
	if err := decodeJSON(r, &req); err != nil {
		writeDecodeError(w, err)
		return
	}

	id, err := h.svc.ResolveID(req.ScoreboardID)
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}

	if err := h.svc.DeleteListing(r.Context(), id, req.ListingID); err != nil {
		h.handleServiceError(w, r, err)
		return
	}

	h.logger.Info("listing_deleted",
		"scoreboard_id", id,
		"listing_id", req.ListingID,
		"username", auth.UsernameFromContext(r.Context()),
	)

	writeJSON(w, http.StatusOK, dto.DeleteListingResponse{
		Deleted:   true,
		ListingID: req.ListingID,
	})
}

// EditScoreboard handles POST /edit-scoreboard.
func (h *ScoreboardHandler) EditScoreboard(w http.ResponseWriter, r *http.Request) {
	var req dto.EditScoreboardRequest
	if err := decodeJSON(r, &req); err != nil {
		writeDecodeError(w, err)
		return
	}

	id, err := h.svc.ResolveID(req.ScoreboardID)
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}

	sb, err := h.svc.UpdateTitle(r.Context(), id, req.Title)
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}

	h.logger.Info("scoreboard_renamed",
		"scoreboard_id", id,
		"username", auth.UsernameFromContext(r.Context()),
	)

	writeJSON(w, http.StatusOK, dto.ToScoreboardResponse(sb))
}

// handleServiceError maps service errors to HTTP responses.
func (h *ScoreboardHandler) handleServiceError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, service.ErrMissingListingID), errors.Is(err, service.ErrMissingTitle):
		writeError(w, dto.CodeMissingField)
	case errors.Is(err, service.ErrListingNotFound):
		writeError(w, dto.CodeListingNotFound)
	case errors.Is(err, service.ErrInvalidName),
		errors.Is(err, service.ErrInvalidTitle),
		errors.Is(err, service.ErrInvalidScoreboardID):
		writeError(w, dto.CodeInvalidField)
	default:
		h.logger.Error("scoreboard operation failed",
			slog.String("error", err.Error()),
			slog.String("endpoint", r.Method+" "+r.URL.Path),
			slog.String("request_id", middleware.GetRequestID(r.Context())),
		)
		writeInternalError(w)
	}
}
