package domain

import (
	"errors"
	"fmt"
	"net/http"
)

// Sentinel errors used with errors.Is.
var (
	ErrNotFound     = errors.New("not found")
	ErrInvalidInput = errors.New("invalid input")
	ErrUnauthorized = errors.New("unauthorized")
	ErrForbidden    = errors.New("forbidden")
	ErrConflict     = errors.New("conflict")
	ErrRemote       = errors.New("remote backend error")
	ErrRejected     = errors.New("rejected by backend")
)

// AppError is an error with a machine code, a user-facing message and an HTTP status.
type AppError struct {
	Code    string
	Message string
	Status  int
	Err     error
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

func NotFound(resource string) *AppError {
	return &AppError{
		Code:    "NOT_FOUND",
		Message: fmt.Sprintf("%s not found", resource),
		Status:  http.StatusNotFound,
		Err:     ErrNotFound,
	}
}

func InvalidInput(msg string) *AppError {
	return &AppError{
		Code:    "INVALID_INPUT",
		Message: msg,
		Status:  http.StatusBadRequest,
		Err:     ErrInvalidInput,
	}
}

func Unauthorized(msg string) *AppError {
	return &AppError{
		Code:    "UNAUTHORIZED",
		Message: msg,
		Status:  http.StatusUnauthorized,
		Err:     ErrUnauthorized,
	}
}

func Forbidden(msg string) *AppError {
	return &AppError{
		Code:    "FORBIDDEN",
		Message: msg,
		Status:  http.StatusForbidden,
		Err:     ErrForbidden,
	}
}

// Rejected wraps a failure the backend reported in its mutation envelope.
func Rejected(msg string) *AppError {
	if msg == "" {
		msg = "request was rejected"
	}
	return &AppError{
		Code:    "REJECTED",
		Message: msg,
		Status:  http.StatusUnprocessableEntity,
		Err:     ErrRejected,
	}
}

// Remote wraps a transport or backend failure.
func Remote(op string, err error) *AppError {
	return &AppError{
		Code:    "REMOTE_ERROR",
		Message: Message(err),
		Status:  http.StatusBadGateway,
		Err:     fmt.Errorf("%s: %w: %w", op, ErrRemote, err),
	}
}

// HTTPStatus maps an error to a response status.
func HTTPStatus(err error) int {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Status
	}
	switch {
	case errors.Is(err, ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrInvalidInput):
		return http.StatusBadRequest
	case errors.Is(err, ErrUnauthorized):
		return http.StatusUnauthorized
	case errors.Is(err, ErrForbidden):
		return http.StatusForbidden
	case errors.Is(err, ErrConflict):
		return http.StatusConflict
	case errors.Is(err, ErrRemote):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// Code returns the machine code of an AppError in err's chain, or "".
func Code(err error) string {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Code
	}
	return ""
}

// Message returns the best human-readable message for err.
func Message(err error) string {
	if err == nil {
		return ""
	}
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Message
	}
	var msgErr interface{ UserMessage() string }
	if errors.As(err, &msgErr) {
		if m := msgErr.UserMessage(); m != "" {
			return m
		}
	}
	return err.Error()
}
