package client

import (
	"errors"
	"fmt"
	"net/http"
)

// HTTPError represents a non-2xx HTTP response from the API.
type HTTPError struct {
	StatusCode int
	Message    string
	// FromAPI is set when Message came from the backend's {"error": ...} body.
	FromAPI bool
}

func (e *HTTPError) Error() string {
	return fmt.Sprintf("HTTP %d: %s", e.StatusCode, e.Message)
}

// IsStatus returns true if err (or any wrapped error) is an HTTPError with the given status code.
func IsStatus(err error, code int) bool {
	var httpErr *HTTPError
	if errors.As(err, &httpErr) {
		return httpErr.StatusCode == code
	}
	return false
}

// IsAuthFailure reports whether err is a 401 or 403 response.
func IsAuthFailure(err error) bool {
	return IsStatus(err, http.StatusUnauthorized) || IsStatus(err, http.StatusForbidden)
}

// IsNotImplemented reports whether err says the endpoint does not exist on
// this backend.
func IsNotImplemented(err error) bool {
	return IsStatus(err, http.StatusNotFound) ||
		IsStatus(err, http.StatusMethodNotAllowed) ||
		IsStatus(err, http.StatusNotImplemented)
}

// APIMessage returns the backend-supplied error message carried by err, if any.
func APIMessage(err error) (string, bool) {
	var httpErr *HTTPError
	if errors.As(err, &httpErr) && httpErr.FromAPI {
		return httpErr.Message, true
	}
	return "", false
}
