package apperror

import (
	"errors"
	"fmt"
)

// Code identifies the kind of failure so handlers can branch without string matching.
type Code string

const (
	CodeUnauthorized     Code = "UNAUTHORIZED"      // 401
	CodeValidationFailed Code = "VALIDATION_FAILED" // 400
	CodeNotFound         Code = "NOT_FOUND"         // 404
	CodeSessionBusy      Code = "SESSION_BUSY"      // 409
	CodeStorage          Code = "STORAGE_ERROR"     // 502
	CodeTransport        Code = "TRANSPORT_ERROR"   // 502
	CodeTimeout          Code = "TIMEOUT"           // 504
	CodeInternal         Code = "INTERNAL"          // 500
)

type AppError struct {
	Code    Code
	Status  int
	Message string
	Details map[string]any
	Err     error
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Err
}

func NewUnauthorized(msg string) *AppError {
	return &AppError{Code: CodeUnauthorized, Status: 401, Message: msg}
}

func NewValidation(msg string) *AppError {
	return &AppError{Code: CodeValidationFailed, Status: 400, Message: msg}
}

func NewNotFound(msg string) *AppError {
	return &AppError{Code: CodeNotFound, Status: 404, Message: msg}
}

func NewSessionBusy(sessionID string) *AppError {
	return &AppError{
		Code:    CodeSessionBusy,
		Status:  409,
		Message: "a request is already being processed for this session",
		Details: map[string]any{"session_id": sessionID},
	}
}

// NewStorage wraps a failed bucket operation. op is the adapter operation name.
func NewStorage(op string, err error) *AppError {
	return &AppError{
		Code:    CodeStorage,
		Status:  502,
		Message: fmt.Sprintf("storage %s failed", op),
		Details: map[string]any{"operation": op},
		Err:     err,
	}
}

// NewTransport reports a non-success answer from the inference endpoint.
// status is 0 when the endpoint could not be reached at all.
func NewTransport(status int, display string) *AppError {
	return &AppError{
		Code:    CodeTransport,
		Status:  502,
		Message: display,
		Details: map[string]any{"upstream_status": status},
	}
}

func NewTimeout(display string) *AppError {
	return &AppError{Code: CodeTimeout, Status: 504, Message: display}
}

func NewInternal(err error) *AppError {
	return &AppError{Code: CodeInternal, Status: 500, Message: "internal error", Err: err}
}

// From returns err as an *AppError, wrapping unknown errors as INTERNAL.
func From(err error) *AppError {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr
	}
	return NewInternal(err)
}

// Is reports whether err carries the given code.
func Is(err error, code Code) bool {
	var appErr *AppError
	return errors.As(err, &appErr) && appErr.Code == code
}
