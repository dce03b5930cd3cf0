package http

import (
	"errors"
	"fmt"
	"net/http"

	"EnergyView/internal/domain/errs"
)

// AppError represents application-level error with HTTP status.
type AppError struct {
	Code    string                 `json:"code"`
	Message string                 `json:"message"`
	Field   string                 `json:"field,omitempty"`
	Params  map[string]interface{} `json:"params,omitempty"`
	Status  int                    `json:"-"`
	Err     error                  `json:"-"`
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

// Unwrap returns underlying error.
func (e *AppError) Unwrap() error {
	return e.Err
}

// NewAppError creates a new application error.
func NewAppError(code, field, message string, status int) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
		Field:   field,
		Status:  status,
	}
}

// WithParam sets a single error param.
func (e *AppError) WithParam(key string, value interface{}) *AppError {
	if e.Params == nil {
		e.Params = make(map[string]interface{})
	}
	e.Params[key] = value
	return e
}

// WithError wraps an underlying error.
func (e *AppError) WithError(err error) *AppError {
	e.Err = err
	return e
}

// FromDomainError maps a domain error kind to its HTTP form. Errors that are
// already an AppError pass through unchanged.
func FromDomainError(err error) *AppError {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr
	}
	switch {
	case errors.Is(err, errs.ErrNotFound):
		return NotFoundError(err.Error()).WithError(err)
	case errors.Is(err, errs.ErrRange):
		return NewAppError("ERR_RANGE", "", err.Error(), http.StatusBadRequest).WithError(err)
	case errors.Is(err, errs.ErrInvalidArgument):
		return NewAppError("ERR_INVALID_ARGUMENT", "", err.Error(), http.StatusBadRequest).WithError(err)
	case errors.Is(err, errs.ErrEmptyInput):
		return NewAppError("ERR_EMPTY_INPUT", "", err.Error(), http.StatusUnprocessableEntity).WithError(err)
	case errors.Is(err, errs.ErrParse):
		return NewAppError("ERR_PARSE", "", err.Error(), http.StatusUnprocessableEntity).WithError(err)
	default:
		return InternalError("internal error").WithError(err)
	}
}

// NotFoundError creates a 404 error.
func NotFoundError(message string) *AppError {
	return NewAppError("ERR_NOT_FOUND", "", message, http.StatusNotFound)
}

// BadRequestError creates a 400 error.
func BadRequestError(message string) *AppError {
	return NewAppError("ERR_BAD_REQUEST", "", message, http.StatusBadRequest)
}

// BadRequestErrorf creates a 400 error with formatting.
func BadRequestErrorf(format string, a ...interface{}) *AppError {
	return BadRequestError(fmt.Sprintf(format, a...))
}

// InternalError creates a 500 error.
func InternalError(message string) *AppError {
	return NewAppError("ERR_INTERNAL", "", message, http.StatusInternalServerError)
}
