package seo

import (
	"errors"
	"fmt"
	"net/http"
)

// ErrorKind discriminates the domain error taxonomy.
type ErrorKind string

// The full set of error kinds the API can surface.
const (
	KindValidation   ErrorKind = "VALIDATION_ERROR"
	KindUnauthorized ErrorKind = "UNAUTHORIZED"
	KindNotFound     ErrorKind = "NOT_FOUND"
	KindDuplicate    ErrorKind = "DUPLICATE"
	KindDatabase     ErrorKind = "DATABASE_ERROR"
	KindExternal     ErrorKind = "EXTERNAL_API_ERROR"
)

// Error is the tagged-variant domain error. Handlers map it onto the uniform
// failure envelope; anything that is not a *Error is reported generically.
type Error struct {
	Kind    ErrorKind
	Message string
	Details string
	cause   error
}

func (e *Error) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.cause)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

// Unwrap exposes the original cause for errors.Is/As.
func (e *Error) Unwrap() error { return e.cause }

// HTTPStatus maps the error kind to a response status code.
func (e *Error) HTTPStatus() int {
	switch e.Kind {
	case KindValidation:
		return http.StatusBadRequest
	case KindUnauthorized:
		return http.StatusUnauthorized
	case KindNotFound:
		return http.StatusNotFound
	case KindDuplicate:
		return http.StatusConflict
	case KindExternal:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// NewValidation builds a validation error with a formatted message.
func NewValidation(format string, args ...any) *Error {
	return &Error{Kind: KindValidation, Message: fmt.Sprintf(format, args...)}
}

// NewUnauthorized builds an unauthorized error.
func NewUnauthorized(msg string) *Error {
	return &Error{Kind: KindUnauthorized, Message: msg}
}

// NewNotFound builds a not-found error for the named resource.
func NewNotFound(resource string) *Error {
	return &Error{Kind: KindNotFound, Message: resource + " not found"}
}

// NewDuplicate builds a duplicate error with constraint details.
func NewDuplicate(msg, details string) *Error {
	return &Error{Kind: KindDuplicate, Message: msg, Details: details}
}

// NewDatabase wraps a store failure.
func NewDatabase(cause error) *Error {
	return &Error{Kind: KindDatabase, Message: "database operation failed", cause: cause}
}

// NewExternal wraps a provider failure.
func NewExternal(msg string, cause error) *Error {
	return &Error{Kind: KindExternal, Message: msg, cause: cause}
}

// AsError extracts a *Error from err, or nil if err is not one.
func AsError(err error) *Error {
	var e *Error
	if errors.As(err, &e) {
		return e
	}
	return nil
}
