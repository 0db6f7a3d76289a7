package apperr

import (
	"errors"
	"net/http"
)

var (
	// ErrUnauthenticated is returned when no verified caller identity is present.
	ErrUnauthenticated = errors.New("unauthorized")
	// ErrNotProvisioned is returned when the caller is authenticated but has no local profile yet.
	ErrNotProvisioned = errors.New("user is not synced with database")
	// ErrProductNotFound is returned when a product is missing.
	ErrProductNotFound = errors.New("product not found")
	// ErrCommentNotFound is returned when a comment is missing.
	ErrCommentNotFound = errors.New("comment not found")
	// ErrProductForbidden is returned when the caller is neither the product owner nor the site owner.
	ErrProductForbidden = errors.New("you can only modify your own products")
	// ErrCommentForbidden is returned when the caller is neither the comment owner nor the site owner.
	ErrCommentForbidden = errors.New("you can only modify your own comments")
)

// internalMessage is the fixed message surfaced for unexpected failures.
// The real error is logged server-side only.
const internalMessage = "internal server error"

// ErrorResponse is the wire shape of every error body.
type ErrorResponse struct {
	Error   string      `json:"error"`
	Details interface{} `json:"details,omitempty"`
}

// HTTPError pairs a status code with a response body.
type HTTPError struct {
	StatusCode int
	Message    string
	Details    interface{}
}

func (e *HTTPError) Error() string {
	return e.Message
}

// NewHTTPError creates an HTTP error without details.
func NewHTTPError(statusCode int, message string) *HTTPError {
	return &HTTPError{StatusCode: statusCode, Message: message}
}

// Validation builds a 400 error carrying field-level detail.
func Validation(message string, details interface{}) *HTTPError {
	return &HTTPError{StatusCode: http.StatusBadRequest, Message: message, Details: details}
}

// ToErrorResponse converts an HTTPError to its response body.
func (e *HTTPError) ToErrorResponse() ErrorResponse {
	return ErrorResponse{Error: e.Message, Details: e.Details}
}

// Map translates domain errors to HTTP errors. Anything unrecognized becomes
// a 500 with a fixed, non-leaking message.
func Map(err error) *HTTPError {
	var httpErr *HTTPError
	if errors.As(err, &httpErr) {
		return httpErr
	}

	switch {
	case errors.Is(err, ErrUnauthenticated):
		return NewHTTPError(http.StatusUnauthorized, err.Error())
	case errors.Is(err, ErrNotProvisioned):
		return NewHTTPError(http.StatusForbidden, err.Error())
	case errors.Is(err, ErrProductNotFound),
		errors.Is(err, ErrCommentNotFound):
		return NewHTTPError(http.StatusNotFound, err.Error())
	case errors.Is(err, ErrProductForbidden), errors.Is(err, ErrCommentForbidden):
		return NewHTTPError(http.StatusForbidden, err.Error())
	default:
		return NewHTTPError(http.StatusInternalServerError, internalMessage)
	}
}
