// Package apperr is the error taxonomy shared by the HTTP handlers. Every
// kind maps to exactly one status code and a JSON body with an "error" field.
package apperr

import (
	"errors"
	"fmt"
	"net/http"
)

type Kind string

const (
	KindValidation   Kind = "validation"
	KindConflict     Kind = "conflict"
	KindUnauthorized Kind = "unauthorized"
	KindRateLimited  Kind = "rate_limited"
	KindStorage      Kind = "storage"
	KindNotFound     Kind = "not_found"
	KindUnavailable  Kind = "unavailable"
	KindInternal     Kind = "internal"
)

// Error is a client-visible failure. Message is sent as is; Cause is only logged.
type Error struct {
	Kind      Kind
	Message   string
	RetrySecs int
	Cause     error
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error { return e.Cause }

// Status returns the HTTP status code for the error kind.
func (e *Error) Status() int {
	switch e.Kind {
	case KindValidation, KindConflict:
		return http.StatusBadRequest
	case KindUnauthorized:
		return http.StatusUnauthorized
	case KindRateLimited:
		return http.StatusTooManyRequests
	case KindNotFound:
		return http.StatusNotFound
	case KindUnavailable:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// Response is the JSON error body.
type Response struct {
	Error     string `json:"error"`
	RetrySecs *int   `json:"retrySecs,omitempty"`
}

func (e *Error) Response() Response {
	resp := Response{Error: e.Message}
	if e.Kind == KindRateLimited {
		secs := e.RetrySecs
		resp.RetrySecs = &secs
	}
	return resp
}

func Validation(message string) *Error {
	return &Error{Kind: KindValidation, Message: message}
}

// Conflict is a request that contradicts the current state, answered with 400.
func Conflict(message string) *Error {
	return &Error{Kind: KindConflict, Message: message}
}

func Unauthorized(message string) *Error {
	return &Error{Kind: KindUnauthorized, Message: message}
}

func RateLimited(message string, retrySecs int) *Error {
	return &Error{Kind: KindRateLimited, Message: message, RetrySecs: retrySecs}
}

func Storage(message string, cause error) *Error {
	return &Error{Kind: KindStorage, Message: message, Cause: cause}
}

func NotFound() *Error {
	return &Error{Kind: KindNotFound, Message: "Not Found"}
}

func Unavailable(message string) *Error {
	return &Error{Kind: KindUnavailable, Message: message}
}

func Internal(message string, cause error) *Error {
	return &Error{Kind: KindInternal, Message: message, Cause: cause}
}

// From converts any error to an *Error, wrapping unknown ones as internal.
func From(err error) *Error {
	var e *Error
	if errors.As(err, &e) {
		return e
	}
	return Internal(http.StatusText(http.StatusInternalServerError), err)
}
