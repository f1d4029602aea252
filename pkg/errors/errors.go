package errors

import (
	"errors"
	"fmt"
	"net/http"
)

// ErrorCode represents an error code
type ErrorCode string

const (
	ErrCodeNotFound      ErrorCode = "NOT_FOUND"
	ErrCodeUnauthorized  ErrorCode = "UNAUTHORIZED"
	ErrCodeForbidden     ErrorCode = "FORBIDDEN"
	ErrCodeBadRequest    ErrorCode = "BAD_REQUEST"
	ErrCodeInternalError ErrorCode = "INTERNAL_ERROR"
	ErrCodeValidation    ErrorCode = "VALIDATION_ERROR"
)

// AppError represents an application error
type AppError struct {
	Code    ErrorCode
	Message string
	Err     error
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s (%v)", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// HTTPStatus maps the error code to an HTTP status
func (e *AppError) HTTPStatus() int {
	switch e.Code {
	case ErrCodeNotFound:
		return http.StatusNotFound
	case ErrCodeUnauthorized:
		return http.StatusUnauthorized
	case ErrCodeForbidden:
		return http.StatusForbidden
	case ErrCodeBadRequest:
		return http.StatusBadRequest
	case ErrCodeValidation:
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}

// New creates a new AppError
func New(code ErrorCode, message string) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
	}
}

// Wrap wraps an error with an AppError
func Wrap(code ErrorCode, message string, err error) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
		Err:     err,
	}
}

// NotFound creates a NOT_FOUND error
func NotFound(message string) *AppError {
	return New(ErrCodeNotFound, message)
}

// Unauthorized creates an UNAUTHORIZED error
func Unauthorized(message string) *AppError {
	return New(ErrCodeUnauthorized, message)
}

// Forbidden creates a FORBIDDEN error
func Forbidden(message string) *AppError {
	return New(ErrCodeForbidden, message)
}

// BadRequest creates a BAD_REQUEST error
func BadRequest(message string) *AppError {
	return New(ErrCodeBadRequest, message)
}

// Validation creates a VALIDATION_ERROR error
func Validation(message string) *AppError {
	return New(ErrCodeValidation, message)
}

// Internal wraps an error as INTERNAL_ERROR
func Internal(message string, err error) *AppError {
	return Wrap(ErrCodeInternalError, message, err)
}

// As extracts an AppError from an error chain
func As(err error) (*AppError, bool) {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr, true
	}
	return nil, false
}

// IsNotFound checks if error is NotFound
func IsNotFound(err error) bool {
	if appErr, ok := As(err); ok {
		return appErr.Code == ErrCodeNotFound
	}
	return false
}

// IsUnauthorized checks if error is Unauthorized
func IsUnauthorized(err error) bool {
	if appErr, ok := As(err); ok {
		return appErr.Code == ErrCodeUnauthorized
	}
	return false
}

// IsForbidden checks if error is Forbidden
func IsForbidden(err error) bool {
	if appErr, ok := As(err); ok {
		return appErr.Code == ErrCodeForbidden
	}
	return false
}
