// Package apperr carries an HTTP status alongside an error message so
// handlers can map service failures to responses without per-service
// error tables.
package apperr

import "errors"

// Error is an application error with an associated HTTP status.
type Error struct {
	Status  int
	Message string
}

func (e *Error) Error() string {
	return e.Message
}

func New(status int, message string) *Error {
	return &Error{Status: status, Message: message}
}

func BadRequest(message string) *Error {
	return New(400, message)
}

func Unauthorized(message string) *Error {
	return New(401, message)
}

func Forbidden(message string) *Error {
	return New(403, message)
}

func NotFound(message string) *Error {
	return New(404, message)
}

func Conflict(message string) *Error {
	return New(409, message)
}

func Internal(message string) *Error {
	return New(500, message)
}

// Status returns the HTTP status carried by err, or 500 for any
// error that is not an *Error.
func Status(err error) int {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr.Status
	}
	return 500
}

// Message returns the carried message for an *Error and a generic
// phrase for anything else, so internal details never leak to clients.
func Message(err error) string {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr.Message
	}
	return "Internal server error"
}
