// Package apperr defines the error taxonomy shared by services and handlers.
// Services raise these; the HTTP layer translates them exactly once.
package apperr

import (
	"errors"
	"fmt"
	"net/http"
)

// FieldError points a validation failure at one request field.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// Error carries an HTTP status alongside a caller-safe message.
type Error struct {
	Status  int
	Message string
	Fields  []FieldError
	cause   error
}

func (e *Error) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.cause)
	}
	return e.Message
}

func (e *Error) Unwrap() error { return e.cause }

// WithCause attaches an underlying error for logging; the cause is never
// sent to the client.
func (e *Error) WithCause(err error) *Error {
	c := *e
	c.cause = err
	return &c
}

func newErr(status int, msg string) *Error {
	return &Error{Status: status, Message: msg}
}

// Validation is a 400 with per-field detail.
func Validation(msg string, fields ...FieldError) *Error {
	return &Error{Status: http.StatusBadRequest, Message: msg, Fields: fields}
}

// Conflict is a 409 for duplicate unique fields.
func Conflict(msg string) *Error { return newErr(http.StatusConflict, msg) }

// Unauthorized is a 401.
func Unauthorized(msg string) *Error { return newErr(http.StatusUnauthorized, msg) }

// InvalidToken is a 401 for malformed or badly signed tokens.
func InvalidToken() *Error { return newErr(http.StatusUnauthorized, "Invalid token") }

// ExpiredToken is a 401 for tokens past their expiry.
func ExpiredToken() *Error { return newErr(http.StatusUnauthorized, "Token expired") }

// Locked is a 423 for accounts inside their lockout window.
func Locked(msg string) *Error { return newErr(http.StatusLocked, msg) }

// Forbidden is a 403.
func Forbidden(msg string) *Error { return newErr(http.StatusForbidden, msg) }

// NotFound is a 404.
func NotFound(msg string) *Error { return newErr(http.StatusNotFound, msg) }

// Internal is the 500 fallback; detail stays in the cause.
func Internal(err error) *Error {
	return &Error{Status: http.StatusInternalServerError, Message: "Internal server error", cause: err}
}

// From returns err as an *Error, wrapping unknown errors as Internal.
func From(err error) *Error {
	var ae *Error
	if errors.As(err, &ae) {
		return ae
	}
	return Internal(err)
}
