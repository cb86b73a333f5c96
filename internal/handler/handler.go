// Package handler provides HTTP request handlers.
package handler

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/scoreboard/scoreboard/internal/handler/dto"
)

// Handler serves responses for requests that match no route.
type Handler struct{}

// New creates a new Handler instance.
func New() *Handler {
	return &Handler{}
}

// NotFound handles 404 responses.
func (h *Handler) NotFound(w http.ResponseWriter, r *http.Request) {
	response := map[string]string{
		"error": "resource not found",
	}
	writeJSON(w, http.StatusNotFound, response)
}

// MethodNotAllowed handles 405 responses.
func (h *Handler) MethodNotAllowed(w http.ResponseWriter, r *http.Request) {
	response := map[string]string{
		"error": "method not allowed",
	}
	writeJSON(w, http.StatusMethodNotAllowed, response)
}

// writeJSON writes a JSON response with the given status code.
func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

// writeError writes the coded error body with the code's status.
func writeError(w http.ResponseWriter, code dto.ErrorCode) {
	writeJSON(w, code.Status(), dto.NewError(code))
}

func writeInternalError(w http.ResponseWriter) {
	writeJSON(w, http.StatusInternalServerError, map[string]string{
		"error": "Internal server error.",
	})
}

// decodeJSON decodes a request body regardless of its Content-Type.
// An empty body decodes as an empty object.
func decodeJSON(r *http.Request, v any) error {
	if r.Body == nil {
		return nil
	}
	err := json.NewDecoder(r.Body).Decode(v)
	if errors.Is(err, io.EOF) {
		return nil
	}
	return err
}

// writeDecodeError maps a body decoding failure to a response.
// Wrongly typed fields are invalid values; anything else is treated as
// missing input.
func writeDecodeError(w http.ResponseWriter, err error) {
	var (
		fieldErr *dto.FieldError
		typeErr  *json.UnmarshalTypeError
		sizeErr  *http.MaxBytesError
	)
	switch {
	case errors.As(err, &sizeErr):
		writeJSON(w, http.StatusRequestEntityTooLarge, map[string]string{
			"error": "Request body too large.",
		})
	case errors.As(err, &fieldErr), errors.As(err, &typeErr):
		writeError(w, dto.CodeInvalidField)
	default:
		writeError(w, dto.CodeMissingField)
	}
}
