package apierror

import (
	"errors"
	"fmt"
	"net/http"
)

const (
	CodeBadRequest   = "BAD_REQUEST"
	CodeUnauthorized = "UNAUTHORIZED"
	CodeNotFound     = "NOT_FOUND"
	CodeConflict     = "CONFLICT"
	CodeInternal     = "INTERNAL_ERROR"
	CodeUnavailable  = "SERVICE_UNAVAILABLE"
)

// APIError is a failure that already knows how it should reach the client.
// Cause is kept for logs and errors.Is/As; it is never serialized.
type APIError struct {
	Code       string   `json:"code"`
	Message    string   `json:"message"`
	Errors     []string `json:"errors,omitempty"`
	HTTPStatus int      `json:"-"`
	Cause      error    `json:"-"`
}

func (e *APIError) Error() string {
	if e == nil {
		return ""
	}

	if e.Cause != nil {
		return fmt.Sprintf("%s: %s (%v)", e.Code, e.Message, e.Cause)
	}

	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *APIError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Cause
}

func New(code string, message string, status int, details ...string) *APIError {
	return &APIError{Code: code, Message: message, Errors: details, HTTPStatus: status}
}

// Wrap attaches cause to a new APIError without exposing it to clients.
func Wrap(cause error, code string, message string, status int) *APIError {
	return &APIError{Code: code, Message: message, HTTPStatus: status, Cause: cause}
}

func BadRequest(message string, details ...string) *APIError {
	return New(CodeBadRequest, message, http.StatusBadRequest, details...)
}

func Unauthorized(message string) *APIError {
	return New(CodeUnauthorized, message, http.StatusUnauthorized)
}

func NotFound(message string) *APIError {
	return New(CodeNotFound, message, http.StatusNotFound)
}

func Conflict(message string) *APIError {
	return New(CodeConflict, message, http.StatusConflict)
}

func Internal(cause error, message string) *APIError {
	return Wrap(cause, CodeInternal, message, http.StatusInternalServerError)
}

func Unavailable(cause error, message string) *APIError {
	return Wrap(cause, CodeUnavailable, message, http.StatusServiceUnavailable)
}

// HasCode reports whether err is, or wraps, an APIError carrying code.
func HasCode(err error, code string) bool {
	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		return false
	}
	return apiErr.Code == code
}
