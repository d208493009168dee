package apperrors

import (
	"errors"
	"net/http"
)

var (
	// ErrUnauthorized is returned when the auth token is missing, invalid or expired.
	ErrUnauthorized = errors.New("not authorized")
	// ErrForbidden is returned when a valid principal lacks the role or ownership required.
	ErrForbidden = errors.New("access denied")
	// ErrNotFound is returned when a complaint or user does not exist.
	ErrNotFound = errors.New("not found")
	// ErrValidation is returned for malformed input.
	ErrValidation = errors.New("validation failed")
	// ErrInternal wraps store and other unexpected failures.
	ErrInternal = errors.New("internal error")
)

// ErrorResponse is the JSON body of every failed request.
type ErrorResponse struct {
	Message string `json:"message"`
}

// HTTPError represents an HTTP error with status code.
type HTTPError struct {
	StatusCode int
	Message    string
}

func (e *HTTPError) Error() string {
	return e.Message
}

func NewHTTPError(statusCode int, message string) *HTTPError {
	return &HTTPError{StatusCode: statusCode, Message: message}
}

func (e *HTTPError) ToErrorResponse() ErrorResponse {
	return ErrorResponse{Message: e.Message}
}

// MapErrorToHTTP maps domain errors to HTTP errors. Validation errors keep their
// detail; anything unrecognised becomes a generic 500 so internals never leak.
func MapErrorToHTTP(err error) *HTTPError {
	var httpErr *HTTPError
	switch {
	case errors.As(err, &httpErr):
		return httpErr
	case errors.Is(err, ErrUnauthorized):
		return NewHTTPError(http.StatusUnauthorized, "Not authorized")
	case errors.Is(err, ErrForbidden):
		return NewHTTPError(http.StatusForbidden, "Access denied")
	case errors.Is(err, ErrNotFound):
		return NewHTTPError(http.StatusNotFound, notFoundMessage(err))
	case errors.Is(err, ErrValidation):
		return NewHTTPError(http.StatusBadRequest, err.Error())
	default:
		return NewHTTPError(http.StatusInternalServerError, "Something went wrong")
	}
}

func notFoundMessage(err error) string {
	if errors.Is(err, ErrComplaintNotFound) {
		return "Complaint not found"
	}
	return "Not found"
}

// ErrComplaintNotFound is the not-found error for a missing complaint.
var ErrComplaintNotFound = &kindError{msg: "complaint not found", kind: ErrNotFound}

// kindError is a named sentinel that also matches its broader kind with errors.Is.
type kindError struct {
	msg  string
	kind error
}

func (e *kindError) Error() string { return e.msg }

func (e *kindError) Is(target error) bool { return target == e.kind }
