// internal/errors/mapper.go
package errors

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"gorm.io/gorm"
)

// APIError is the wire shape for every failure response: {"error": "..."}.
// The legacy OTP route already spoke this shape, so all handlers share it.
type APIError struct {
	Error string `json:"error"`
}

// StatusError carries an HTTP status alongside a user-facing message.
// Services return these for conditions that map to a specific status.
type StatusError struct {
	Status  int
	Message string
}

func (e *StatusError) Error() string { return e.Message }

// New creates a StatusError. Use in service layer for conditions the
// handler should pass through verbatim.
func New(status int, msg string) error {
	return &StatusError{Status: status, Message: msg}
}

// InvalidArgument creates a 400 error for bad input validation.
func InvalidArgument(msg string) error {
	return &StatusError{Status: http.StatusBadRequest, Message: msg}
}

// Conflict creates a 409 error for state conflicts (double-spend, stale version).
func Conflict(msg string) error {
	return &StatusError{Status: http.StatusConflict, Message: msg}
}

// Map converts repo/infra errors into an HTTP status and message.
// Keeps handlers clean by centralizing error mapping.
func Map(err error) (int, string) {
	if err == nil {
		return http.StatusOK, ""
	}

	var se *StatusError
	switch {
	case errors.As(err, &se):
		return se.Status, se.Message

	case errors.Is(err, gorm.ErrRecordNotFound):
		return http.StatusNotFound, "record not found"

	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout, "request timed out"

	case errors.Is(err, context.Canceled):
		return http.StatusServiceUnavailable, "request was canceled"

	default:
		return http.StatusInternalServerError, err.Error()
	}
}

// WriteJSON writes a JSON payload with the given status.
func WriteJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

// WriteError maps err and writes the standard {"error": ...} body.
func WriteError(w http.ResponseWriter, err error) {
	status, msg := Map(err)
	WriteJSON(w, status, APIError{Error: msg})
}
