package errors

import (
	stderrors "errors"
	"fmt"
	"net/http"

	"github.com/vytor/pgnarchive/internal/chess"
	"github.com/vytor/pgnarchive/internal/pgn"
)

// Error codes
const (
	ErrCodeNotFound   = "NOT_FOUND"
	ErrCodeValidation = "VALIDATION_ERROR"
	ErrCodeInternal   = "INTERNAL_ERROR"
	ErrCodeBadRequest = "BAD_REQUEST"
	ErrCodeParse      = "PARSE_ERROR"
)

// AppError represents an application error with HTTP status code and error code
type AppError struct {
	Code    string // Error code (e.g., "NOT_FOUND", "PARSE_ERROR")
	Message string // Human-readable error message
	Status  int    // HTTP status code
	Err     error  // Wrapped underlying error (optional)
}

// Error implements the error interface
func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s (%v)", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap returns the underlying error for error wrapping support
func (e *AppError) Unwrap() error {
	return e.Err
}

// NewNotFoundError creates a new NOT_FOUND error
func NewNotFoundError(resource string, id any) *AppError {
	return &AppError{
		Code:    ErrCodeNotFound,
		Message: fmt.Sprintf("%s not found: %v", resource, id),
		Status:  http.StatusNotFound,
	}
}

// NewValidationError creates a new VALIDATION_ERROR
func NewValidationError(field string, reason string) *AppError {
	return &AppError{
		Code:    ErrCodeValidation,
		Message: fmt.Sprintf("validation failed for %s: %s", field, reason),
		Status:  http.StatusBadRequest,
	}
}

// NewInternalError creates a new INTERNAL_ERROR
func NewInternalError(err error) *AppError {
	return &AppError{
		Code:    ErrCodeInternal,
		Message: "internal server error",
		Status:  http.StatusInternalServerError,
		Err:     err,
	}
}

// NewBadRequestError creates a new BAD_REQUEST error
func NewBadRequestError(message string) *AppError {
	return &AppError{
		Code:    ErrCodeBadRequest,
		Message: message,
		Status:  http.StatusBadRequest,
	}
}

// NewParseError creates a PARSE_ERROR for transcript data that could not be
// understood: chess faults as well as bad placement strings and headers.
func NewParseError(err error) *AppError {
	msg := "unparseable game"
	switch {
	case chess.IsFault(err):
		msg = "game could not have been played as written"
	case isRecoverable(err):
		msg = "game metadata is malformed"
	}
	return &AppError{
		Code:    ErrCodeParse,
		Message: msg,
		Status:  http.StatusUnprocessableEntity,
		Err:     err,
	}
}

// IsParseError reports whether err comes from transcript parsing.
func IsParseError(err error) bool {
	return chess.IsFault(err) || isRecoverable(err)
}

func isRecoverable(err error) bool {
	var fe *chess.FENError
	var he *pgn.HeaderError
	return stderrors.As(err, &fe) || stderrors.As(err, &he)
}

// Wrap converts err into an AppError, keeping an existing one as is.
func Wrap(err error) *AppError {
	if err == nil {
		return nil
	}
	var appErr *AppError
	if stderrors.As(err, &appErr) {
		return appErr
	}
	if IsParseError(err) {
		return NewParseError(err)
	}
	return NewInternalError(err)
}
