// Package apperr provides standardized domain error types for the application.
// Services return these typed errors and the HTTP layer maps them to status
// codes, so handlers never need to switch on sentinel values.
package apperr

import (
	"errors"
	"fmt"
	"net/http"
)

// Kind represents the category of error.
type Kind int

const (
	// KindUnknown is the default error kind when none is specified.
	KindUnknown Kind = iota
	// KindNotFound indicates a resource was not found.
	KindNotFound
	// KindValidation indicates malformed input caught before any backend call.
	KindValidation
	// KindConflict indicates a conflict with in-flight or existing state.
	KindConflict
	// KindForbidden indicates the action is not allowed for the user.
	KindForbidden
	// KindUnauthorized indicates authentication is required or failed.
	KindUnauthorized
	// KindBadRequest indicates a malformed request.
	KindBadRequest
	// KindInternal indicates an unexpected internal error.
	KindInternal
	// KindGuardViolation indicates a lifecycle rule blocked a status transition.
	KindGuardViolation
	// KindInvalidFileType indicates a non-image upload attempt.
	KindInvalidFileType
	// KindUnavailable indicates a transport or server failure in a backing service.
	KindUnavailable
)

var kindCodes = map[Kind]string{
	KindUnknown:         "unknown",
	KindNotFound:        "not_found",
	KindValidation:      "validation_error",
	KindConflict:        "conflict",
	KindForbidden:       "forbidden",
	KindUnauthorized:    "unauthorized",
	KindBadRequest:      "bad_request",
	KindInternal:        "internal",
	KindGuardViolation:  "guard_violation",
	KindInvalidFileType: "invalid_file_type",
	KindUnavailable:     "backend_unavailable",
}

// Code returns a stable machine-readable identifier for the kind.
func (k Kind) Code() string {
	if code, ok := kindCodes[k]; ok {
		return code
	}
	return kindCodes[KindUnknown]
}

// Error is a domain error with a typed Kind for HTTP mapping.
type Error struct {
	Kind    Kind
	Message string
	Op      string      // Operation that failed (optional)
	Err     error       // Underlying error (optional)
	Details interface{} // Additional details for response (optional)
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Op != "" {
		return fmt.Sprintf("%s: %s", e.Op, e.Message)
	}
	return e.Message
}

// Unwrap returns the underlying error for errors.Is/As support.
func (e *Error) Unwrap() error {
	return e.Err
}

// HTTPStatus returns the appropriate HTTP status code for this error kind.
func (e *Error) HTTPStatus() int {
	switch e.Kind {
	case KindNotFound:
		return http.StatusNotFound
	case KindValidation, KindBadRequest:
		return http.StatusBadRequest
	case KindConflict:
		return http.StatusConflict
	case KindForbidden:
		return http.StatusForbidden
	case KindUnauthorized:
		return http.StatusUnauthorized
	case KindInternal:
		return http.StatusInternalServerError
	case KindGuardViolation:
		return http.StatusUnprocessableEntity
	case KindInvalidFileType:
		return http.StatusUnsupportedMediaType
	case KindUnavailable:
		return http.StatusServiceUnavailable
	default:
		return http.StatusBadRequest
	}
}

// New creates a new domain error with the given kind and message.
func New(kind Kind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

// Wrap creates a new domain error wrapping an existing error.
func Wrap(kind Kind, message string, err error) *Error {
	return &Error{Kind: kind, Message: message, Err: err}
}

// WithOp returns the error with the operation set.
func (e *Error) WithOp(op string) *Error {
	e.Op = op
	return e
}

// WithDetails returns the error with additional details.
func (e *Error) WithDetails(details interface{}) *Error {
	e.Details = details
	return e
}

// NotFound creates a not found error.
func NotFound(message string) *Error {
	return New(KindNotFound, message)
}

// Validation creates a validation error.
func Validation(message string) *Error {
	return New(KindValidation, message)
}

// Conflict creates a conflict error.
func Conflict(message string) *Error {
	return New(KindConflict, message)
}

// BadRequest creates a bad request error.
func BadRequest(message string) *Error {
	return New(KindBadRequest, message)
}

// GuardViolation creates an error for a blocked lifecycle transition.
// The message is shown to the user as-is and should say how to fix it.
func GuardViolation(message string) *Error {
	return New(KindGuardViolation, message)
}

// InvalidFileType creates an error for rejected upload content types.
func InvalidFileType(message string) *Error {
	return New(KindInvalidFileType, message)
}

// Unavailable wraps a backing-service failure.
func Unavailable(message string, err error) *Error {
	return Wrap(KindUnavailable, message, err)
}

// GetKind extracts the error kind from an error chain.
// Returns KindUnknown if no *Error is found.
func GetKind(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindUnknown
}

// Is checks if err is an *Error with the given kind.
func Is(err error, kind Kind) bool {
	return GetKind(err) == kind
}
