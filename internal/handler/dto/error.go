// Package dto provides Data Transfer Objects for API requests and responses.
package dto

import "net/http"

// ErrorCode identifies a client-visible failure.
type ErrorCode int

// Error codes returned in the "code" field of error bodies.
const (
	CodeMissingField    ErrorCode = 1
	CodeUnknownUser     ErrorCode = 2
	CodeBadPassword     ErrorCode = 3
	CodeUnauthorized    ErrorCode = 4
	CodeInvalidPath     ErrorCode = 5
	CodeListingNotFound ErrorCode = 6
	CodeInvalidField    ErrorCode = 7
)

var errorTable = map[ErrorCode]struct {
	message string
	status  int
}{
	CodeMissingField:    {"Missing required field.", http.StatusBadRequest},
	CodeUnknownUser:     {"User does not exist.", http.StatusBadRequest},
	CodeBadPassword:     {"Incorrect password.", http.StatusUnauthorized},
	CodeUnauthorized:    {"Not authorized.", http.StatusUnauthorized},
	CodeInvalidPath:     {"File not found.", http.StatusNotFound},
	CodeListingNotFound: {"Listing does not exist.", http.StatusNotFound},
	CodeInvalidField:    {"Invalid field value.", http.StatusBadRequest},
}

// Message returns the client-facing message for the code.
func (c ErrorCode) Message() string {
	if e, ok := errorTable[c]; ok {
		return e.message
	}
	return http.StatusText(http.StatusInternalServerError)
}

// Status returns the HTTP status paired with the code.
func (c ErrorCode) Status() int {
	if e, ok := errorTable[c]; ok {
		return e.status
	}
	return http.StatusInternalServerError
}

// ErrorResponse is the body of every coded error.
type ErrorResponse struct {
	Error string    `json:"error"`
	Code  ErrorCode `json:"code"`
}

// NewError builds the error body for code.
func NewError(code ErrorCode) ErrorResponse {
	return ErrorResponse{Error: code.Message(), Code: code}
}
