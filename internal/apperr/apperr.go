package apperr

import (
	"errors"
	"fmt"
	"net/http"
)

// Error is an application error that carries the HTTP status it should be
// reported with and, optionally, a machine-readable code.
type Error struct {
	Status  int
	Code    string
	Message string
}

func (e *Error) Error() string {
	return e.Message
}

func New(status int, message string) *Error {
	return &Error{Status: status, Message: message}
}

func WithCode(status int, code, message string) *Error {
	return &Error{Status: status, Code: code, Message: message}
}

func Validation(format string, args ...any) *Error {
	return &Error{Status: http.StatusBadRequest, Message: fmt.Sprintf(format, args...)}
}

func NotFound(format string, args ...any) *Error {
	return &Error{Status: http.StatusNotFound, Message: fmt.Sprintf(format, args...)}
}

func Duplicate(format string, args ...any) *Error {
	return &Error{Status: http.StatusBadRequest, Message: fmt.Sprintf(format, args...)}
}

func InvalidID(message string) *Error {
	return &Error{Status: http.StatusBadRequest, Code: "INVALID_ID_FORMAT", Message: message}
}

func Internal(err error) *Error {
	return &Error{Status: http.StatusInternalServerError, Message: err.Error()}
}

// From extracts an *Error from err, wrapping unexpected failures as a 500.
func From(err error) *Error {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr
	}
	return Internal(err)
}
