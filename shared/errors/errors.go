package errors

import (
	"errors"
	"fmt"
	"net/http"
)

// default error is internal service error at handler level
// if error has different status code use ErrorWithStatusCode
type ErrorWithStatusCode struct {
	Message    string
	StatusCode int
}

func (e *ErrorWithStatusCode) Error() string {
	return e.Message
}

var NotFound = errors.New("Not found")

// Check if err is instance of T for custom error types
func Is[T error](err error) bool {
	if _, ok := err.(T); ok {
		return true
	}
	return false
}

type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("Validation error: %s", e.Message)
}

// Constructors for the error kinds handlers translate to status codes.
// Permission denials are deliberately generic: the message must not reveal
// whether the cause was a missing membership, a low role or the sandbox
// override.

func Unauthorized(msg string) error {
	if msg == "" {
		msg = "Not authorized"
	}
	return &ErrorWithStatusCode{Message: msg, StatusCode: http.StatusUnauthorized}
}

func Forbidden() error {
	return &ErrorWithStatusCode{Message: "Insufficient permissions", StatusCode: http.StatusForbidden}
}

func NotFoundError(what string) error {
	return &ErrorWithStatusCode{Message: what + " not found", StatusCode: http.StatusNotFound}
}

func Validation(msg string) error {
	return &ErrorWithStatusCode{Message: msg, StatusCode: http.StatusBadRequest}
}

func Conflict(msg string) error {
	return &ErrorWithStatusCode{Message: msg, StatusCode: http.StatusConflict}
}

// Upstream hides the raw collaborator error from the response body.
// The underlying cause belongs in logs, never on the wire.
func Upstream(what string) error {
	return &ErrorWithStatusCode{Message: what + " is unavailable", StatusCode: http.StatusBadGateway}
}
