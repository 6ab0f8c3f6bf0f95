package httpx

import (
	"errors"
	"net/http"
)

// Error is an HTTP-mapped application error. Handlers and services return it
// (or wrap sentinels into it) and WriteError shapes the single JSON error
// envelope the API exposes: {"success": false, "error": "..."}.
type Error struct {
	Status  int
	Message string
}

func (e *Error) Error() string { return e.Message }

func NewError(status int, message string) *Error {
	return &Error{Status: status, Message: message}
}

func BadRequest(message string) *Error   { return NewError(http.StatusBadRequest, message) }
func Unauthorized(message string) *Error { return NewError(http.StatusUnauthorized, message) }
func Forbidden(message string) *Error    { return NewError(http.StatusForbidden, message) }
func NotFound(message string) *Error     { return NewError(http.StatusNotFound, message) }
func ServerError(message string) *Error  { return NewError(http.StatusInternalServerError, message) }

type errorEnvelope struct {
	Success bool   `json:"success"`
	Message string `json:"error"`
}

// WriteError funnels any error through the one error-shaping boundary.
// Unrecognized errors become a generic 500; internals are never exposed.
func WriteError(w http.ResponseWriter, err error) {
	var appErr *Error
	if !errors.As(err, &appErr) {
		appErr = ServerError("Server Error")
	}
	WriteJSON(w, appErr.Status, errorEnvelope{Success: false, Message: appErr.Message})
}
