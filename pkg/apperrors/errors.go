package apperrors

import (
	"errors"
	"fmt"
	"net/http"
	"runtime"
)

// AppError is the error type services hand back to handlers. Message is
// always safe to show the client; Err is only ever logged.
type AppError struct {
	Code       string
	Message    string
	HTTPStatus int
	Err        error
	Stack      string
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *AppError) Unwrap() error { return e.Err }

func NewBadRequest(code, message string) *AppError {
	return newError(http.StatusBadRequest, code, message, nil)
}

func NewUnauthorized(code, message string) *AppError {
	return newError(http.StatusUnauthorized, code, message, nil)
}

func NewForbidden(code, message string) *AppError {
	return newError(http.StatusForbidden, code, message, nil)
}

func NewNotFound(code, message string) *AppError {
	return newError(http.StatusNotFound, code, message, nil)
}

func NewConflict(code, message string) *AppError {
	return newError(http.StatusConflict, code, message, nil)
}

func NewTooManyRequests(code, message string) *AppError {
	return newError(http.StatusTooManyRequests, code, message, nil)
}

// NewInternal wraps an unexpected failure. The cause and a stack trace are
// logged by the error handler; the client only sees message.
func NewInternal(code, message string, err error) *AppError {
	return newError(http.StatusInternalServerError, code, message, err)
}

func newError(status int, code, message string, err error) *AppError {
	e := &AppError{Code: code, Message: message, HTTPStatus: status, Err: err}
	if status >= http.StatusInternalServerError {
		buf := make([]byte, 4096)
		e.Stack = string(buf[:runtime.Stack(buf, false)])
	}
	return e
}

// AsAppError finds an AppError anywhere in err's chain.
func AsAppError(err error) (*AppError, bool) {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr, true
	}
	return nil, false
}

// StatusOf returns the HTTP status an error maps to, 500 for anything unknown.
func StatusOf(err error) int {
	if appErr, ok := AsAppError(err); ok {
		return appErr.HTTPStatus
	}
	return http.StatusInternalServerError
}
