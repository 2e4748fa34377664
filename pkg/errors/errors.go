// Package errors is the error vocabulary shared by every layer. Two shapes
// exist: AppError for request and collaborator failures, and DomainError for
// named rule violations that clients can match on by code. HTTPStatusOf and
// ErrorHandler turn either into a response.
package errors

import (
	"errors"
	"fmt"
	"net/http"
	"runtime"
	"strings"
)

// Kind classifies an AppError
type Kind string

const (
	KindValidation  Kind = "VALIDATION"
	KindInternal    Kind = "INTERNAL"
	KindUnavailable Kind = "UNAVAILABLE"
	KindDatabase    Kind = "DATABASE"
	KindExternal    Kind = "EXTERNAL"

	// Only produced by ErrorHandler.HandleStatus
	kindUnauthorized Kind = "UNAUTHORIZED"
	kindNotFound     Kind = "NOT_FOUND"
	kindRateLimit    Kind = "RATE_LIMIT"
)

// AppError is a failure with a fixed HTTP status
type AppError struct {
	Kind    Kind
	Message string
	Status  int
	Cause   error
	stack   string
}

func (e *AppError) Error() string {
	if e.Cause == nil {
		return fmt.Sprintf("%s: %s", e.Kind, e.Message)
	}
	return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Cause)
}

func (e *AppError) Unwrap() error {
	return e.Cause
}

// WithCause attaches the underlying error
func (e *AppError) WithCause(err error) *AppError {
	e.Cause = err
	return e
}

func newAppError(kind Kind, status int, message string) *AppError {
	return &AppError{Kind: kind, Message: message, Status: status, stack: callers()}
}

// callers renders the stack above the constructor. It is only ever shown
// by an ErrorHandler in debug mode.
func callers() string {
	var pcs [24]uintptr
	n := runtime.Callers(4, pcs[:])
	frames := runtime.CallersFrames(pcs[:n])

	var b strings.Builder
	for {
		f, more := frames.Next()
		fmt.Fprintf(&b, "%s\n\t%s:%d\n", f.Function, f.File, f.Line)
		if !more {
			return b.String()
		}
	}
}

// NewValidationError reports bad client input (400)
func NewValidationError(message string) *AppError {
	return newAppError(KindValidation, http.StatusBadRequest, message)
}

// NewInternalError reports a server-side invariant failure (500)
func NewInternalError(message string) *AppError {
	return newAppError(KindInternal, http.StatusInternalServerError, message)
}

// NewUnavailableError reports a collaborator that is not configured or
// is refusing calls, e.g. behind an open breaker (503)
func NewUnavailableError(service string) *AppError {
	return newAppError(KindUnavailable, http.StatusServiceUnavailable,
		fmt.Sprintf("%s is unavailable", service))
}

// NewDatabaseError reports a failed storage operation (500)
func NewDatabaseError(operation string, err error) *AppError {
	return newAppError(KindDatabase, http.StatusInternalServerError,
		fmt.Sprintf("storage operation %q failed", operation)).WithCause(err)
}

// NewExternalError reports a failed call to a third-party API (502)
func NewExternalError(service string, err error) *AppError {
	return newAppError(KindExternal, http.StatusBadGateway,
		fmt.Sprintf("%s request failed", service)).WithCause(err)
}

func kindOf(err error) (Kind, bool) {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Kind, true
	}
	return "", false
}

// IsValidation reports whether err is, or wraps, a client-input error
func IsValidation(err error) bool {
	if kind, ok := kindOf(err); ok {
		return kind == KindValidation
	}
	var fields *ValidationErrors
	return errors.As(err, &fields)
}

// IsUnavailable reports whether err is, or wraps, an unavailable collaborator
func IsUnavailable(err error) bool {
	kind, ok := kindOf(err)
	return ok && kind == KindUnavailable
}

// HTTPStatusOf returns the status an error maps to, 500 for plain errors
func HTTPStatusOf(err error) int {
	var (
		appErr    *AppError
		fields    *ValidationErrors
		domainErr *DomainError
	)
	switch {
	case errors.As(err, &appErr) && appErr.Status != 0:
		return appErr.Status
	case errors.As(err, &fields):
		return http.StatusBadRequest
	case errors.As(err, &domainErr):
		return domainErr.Status()
	default:
		return http.StatusInternalServerError
	}
}
