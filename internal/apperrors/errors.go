// Package apperrors defines the error taxonomy surfaced by the HTTP API.
package apperrors

import (
	"errors"
	"fmt"
	"net/http"
)

// Kind classifies an Error independently of its message.
type Kind string

const (
	KindUnauthenticated   Kind = "Unauthenticated"
	KindInvalidToken      Kind = "InvalidToken"
	KindStaleIdentity     Kind = "StaleIdentity"
	KindAuthFailed        Kind = "AuthFailed"
	KindForbidden         Kind = "Forbidden"
	KindNotFound          Kind = "NotFound"
	KindValidation        Kind = "ValidationFailed"
	KindDuplicateUsername Kind = "DuplicateUsername"
	KindInternal          Kind = "InternalError"
)

type Error struct {
	Kind    Kind     `json:"-"`
	Code    int      `json:"-"`
	Message string   `json:"message"`
	Errors  []string `json:"errors,omitempty"`
}

func (e *Error) Error() string {
	return fmt.Sprintf("%d: %s", e.Code, e.Message)
}

// Is matches any Error of the same kind, so errors.Is works against the
// sentinels below even when the message differs.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	return ok && t.Kind == e.Kind
}

var (
	ErrUnauthenticated   = &Error{Kind: KindUnauthenticated, Code: http.StatusUnauthorized, Message: "Access denied"}
	ErrInvalidToken      = &Error{Kind: KindInvalidToken, Code: http.StatusUnauthorized, Message: "Invalid or expired token"}
	ErrStaleIdentity     = &Error{Kind: KindStaleIdentity, Code: http.StatusUnauthorized, Message: "User no longer exists"}
	ErrAuthFailed        = &Error{Kind: KindAuthFailed, Code: http.StatusUnauthorized, Message: "Authentication failed"}
	ErrForbidden         = &Error{Kind: KindForbidden, Code: http.StatusForbidden, Message: "Admin privileges required"}
	ErrNotFound          = &Error{Kind: KindNotFound, Code: http.StatusNotFound, Message: "Not found"}
	ErrValidation        = &Error{Kind: KindValidation, Code: http.StatusBadRequest, Message: "Validation errors"}
	ErrDuplicateUsername = &Error{Kind: KindDuplicateUsername, Code: http.StatusBadRequest, Message: "Username already exists"}
	ErrInternal          = &Error{Kind: KindInternal, Code: http.StatusInternalServerError, Message: "Internal server error"}
)

// NotFound returns a NotFound error with a specific message.
func NotFound(message string) *Error {
	return &Error{Kind: KindNotFound, Code: http.StatusNotFound, Message: message}
}

// Unauthorized returns an AuthFailed error with a specific message.
func Unauthorized(message string) *Error {
	return &Error{Kind: KindAuthFailed, Code: http.StatusUnauthorized, Message: message}
}

// Validation returns a ValidationFailed error. The optional details are
// returned to the client as a list so every field can be fixed at once.
func Validation(message string, details ...string) *Error {
	return &Error{Kind: KindValidation, Code: http.StatusBadRequest, Message: message, Errors: details}
}

// Status maps err to an HTTP status code. Unknown errors are 500.
func Status(err error) int {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr.Code
	}
	return http.StatusInternalServerError
}

// Public returns the client-facing form of err. Anything that is not an
// *Error is replaced by ErrInternal so no internal detail leaks.
func Public(err error) *Error {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr
	}
	return ErrInternal
}
