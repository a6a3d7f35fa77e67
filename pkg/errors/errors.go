package errors

import (
	"errors"
	"fmt"
	"net/http"
)

// Error represents a typed domain error with HTTP awareness. The Detail
// field is the human-readable message surfaced verbatim to API consumers.
type Error struct {
	Code   string `json:"code"`
	Detail string `json:"detail"`
	Status int    `json:"status"`
	Err    error  `json:"-"`
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e == nil {
		return "<nil>"
	}
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Detail, e.Err)
	}
	return e.Detail
}

// Unwrap returns the wrapped error.
func (e *Error) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// New creates a new Error instance.
func New(code string, status int, detail string) *Error {
	return &Error{Code: code, Status: status, Detail: detail}
}

// Wrap attaches context to an existing error.
func Wrap(err error, code string, status int, detail string) *Error {
	return &Error{Code: code, Status: status, Detail: detail, Err: err}
}

// Predefined errors for common scenarios.
var (
	ErrInvalidCredentials = New("INVALID_CREDENTIALS", http.StatusUnauthorized, "invalid email or password")
	ErrNotFound           = New("NOT_FOUND", http.StatusNotFound, "resource not found")
	ErrForbidden          = New("FORBIDDEN", http.StatusForbidden, "forbidden")
	ErrUnauthorized       = New("UNAUTHORIZED", http.StatusUnauthorized, "unauthorized")
	ErrConflict           = New("CONFLICT", http.StatusConflict, "conflict")
	ErrValidation         = New("VALIDATION_ERROR", http.StatusBadRequest, "validation failed")
	ErrPolicyViolation    = New("POLICY_VIOLATION", http.StatusForbidden, "selection outside authorized scope")
	ErrUnavailable        = New("UNAVAILABLE", http.StatusServiceUnavailable, "service temporarily unavailable")
	ErrInternal           = New("INTERNAL_ERROR", http.StatusInternalServerError, "internal server error")
	ErrCacheMiss          = New("CACHE_MISS", http.StatusNotFound, "cache miss")
)

// FromError normalises any error into an *Error.
func FromError(err error) *Error {
	if err == nil {
		return nil
	}
	var e *Error
	if errors.As(err, &e) {
		return e
	}
	return Wrap(err, ErrInternal.Code, ErrInternal.Status, ErrInternal.Detail)
}

// Clone returns a copy of the error allowing for detail overrides.
func Clone(err *Error, detail string) *Error {
	if err == nil {
		return nil
	}
	clone := *err
	if detail != "" {
		clone.Detail = detail
	}
	return &clone
}

// IsPolicyViolation reports whether err carries the policy violation code.
func IsPolicyViolation(err error) bool {
	var e *Error
	return errors.As(err, &e) && e.Code == ErrPolicyViolation.Code
}

// IsNotFound reports whether err carries the not found code.
func IsNotFound(err error) bool {
	var e *Error
	return errors.As(err, &e) && e.Code == ErrNotFound.Code
}

// IsTransient reports whether err represents a recoverable fetch failure.
func IsTransient(err error) bool {
	var e *Error
	return errors.As(err, &e) && e.Code == ErrUnavailable.Code
}
