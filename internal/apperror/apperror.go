// Package apperror defines the error taxonomy shared by the compositing
// pipeline and its HTTP adapter.
package apperror

import (
	"errors"
	"fmt"
	"net/http"
)

// Code identifies a class of failure.
type Code string

const (
	CodeBadRequest       Code = "BAD_REQUEST"
	CodeNotFound         Code = "NOT_FOUND"
	CodeInvalidFormat    Code = "INVALID_FORMAT"
	CodeNoMatchingLayout Code = "NO_MATCHING_LAYOUT"
	CodeDecodeError      Code = "DECODE_ERROR"
	CodeInvalidPayload   Code = "INVALID_PAYLOAD"
	CodeWriteError       Code = "WRITE_ERROR"
	CodeInternal         Code = "INTERNAL"
)

// Error is a coded failure. Message is safe to show to a caller; Err
// carries the underlying cause for logs.
type Error struct {
	Code    Code
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *Error) Unwrap() error { return e.Err }

// New returns an Error without a cause.
func New(code Code, format string, args ...interface{}) *Error {
	return &Error{Code: code, Message: fmt.Sprintf(format, args...)}
}

// Wrap returns an Error that wraps err.
func Wrap(code Code, err error, format string, args ...interface{}) *Error {
	return &Error{Code: code, Message: fmt.Sprintf(format, args...), Err: err}
}

// CodeOf reports the code of the first *Error in err's chain, or
// CodeInternal when there is none.
func CodeOf(err error) Code {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return CodeInternal
}

// Is reports whether err carries the given code.
func Is(err error, code Code) bool {
	return err != nil && CodeOf(err) == code
}

// MessageOf returns the caller-facing message of err.
func MessageOf(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Message
	}
	return err.Error()
}

// HTTPStatus maps a code to the status the HTTP adapter responds with.
func HTTPStatus(code Code) int {
	switch code {
	case CodeBadRequest, CodeNoMatchingLayout, CodeInvalidPayload:
		return http.StatusBadRequest
	case CodeNotFound:
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}
