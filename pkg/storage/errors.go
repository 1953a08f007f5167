package storage

import (
	"errors"
	"net/http"
)

var (
	ErrNotFound = errors.New("blob not found")
	// ErrEmptyKey and the two key errors below are returned by ValidateKey
	// before any request reaches the blob service.
	ErrEmptyKey   = errors.New("storage key must not be empty")
	ErrInvalidKey = errors.New("storage key contains invalid path segment")
	ErrKeyTooLong = errors.New("storage key exceeds maximum length")
)

// MapHTTPStatus maps storage errors to HTTP status codes. Anything not
// recognized is a backend failure.
func MapHTTPStatus(err error) int {
	switch {
	case errors.Is(err, ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrEmptyKey),
		errors.Is(err, ErrInvalidKey),
		errors.Is(err, ErrKeyTooLong):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}
