package checks

import (
	"errors"
	"net/http"
)

var (
	ErrInvalidType   = errors.New("invalid check type")
	ErrInvalidAnswer = errors.New("invalid answer")
)

// MapHTTPStatus maps vocabulary errors to HTTP status codes.
func MapHTTPStatus(err error) int {
	if errors.Is(err, ErrInvalidType) || errors.Is(err, ErrInvalidAnswer) {
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}
