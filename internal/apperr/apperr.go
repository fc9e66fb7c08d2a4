// Package apperr defines the application error taxonomy and the JSON error
// envelope shared by all HTTP handlers.
package apperr

import (
	"encoding/json"
	"errors"
	"net/http"
)

// Error is a request-terminal failure with a client-safe message and a stable
// HTTP status code.
type Error struct {
	Status  int    `json:"status"`
	Message string `json:"message"`
}

func (e *Error) Error() string { return e.Message }

// Validation reports malformed or missing input (400).
func Validation(message string) *Error {
	return &Error{Status: http.StatusBadRequest, Message: message}
}

// Unauthorized reports bad credentials or a bad token (401).
func Unauthorized(message string) *Error {
	return &Error{Status: http.StatusUnauthorized, Message: message}
}

// Forbidden reports a caller lacking permission for the operation (403).
func Forbidden(message string) *Error {
	return &Error{Status: http.StatusForbidden, Message: message}
}

// NotFound reports an unknown resource (404).
func NotFound(message string) *Error {
	return &Error{Status: http.StatusNotFound, Message: message}
}

// Conflict reports a duplicate-identity collision (409).
func Conflict(message string) *Error {
	return &Error{Status: http.StatusConflict, Message: message}
}

// Internal reports an unexpected failure without leaking detail (500).
func Internal() *Error {
	return &Error{Status: http.StatusInternalServerError, Message: "internal server error"}
}

// envelope is the wire shape of every error response.
type envelope struct {
	Success bool   `json:"success"`
	Status  int    `json:"status"`
	Message string `json:"message"`
}

// WriteJSON writes v as a JSON response with the given status code.
func WriteJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// WriteError writes err as the uniform error envelope. Errors outside the
// taxonomy are surfaced as a generic 500.
func WriteError(w http.ResponseWriter, err error) {
	var appErr *Error
	if !errors.As(err, &appErr) {
		appErr = Internal()
	}
	WriteJSON(w, appErr.Status, envelope{Success: false, Status: appErr.Status, Message: appErr.Message})
}
