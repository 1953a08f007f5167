package inspections

import (
	"errors"
	"fmt"
	"net/http"
)

// Domain errors for inspection header operations.
var (
	ErrNotFound      = errors.New("inspection not found")
	ErrDuplicate     = errors.New("inspection already exists")
	ErrCompleted     = errors.New("inspection is completed")
	ErrInvalidHeader = errors.New("invalid inspection header")

	ErrResultsRecorded = errors.New("inspection has recorded results")
)

func invalid(reason string) error {
	return fmt.Errorf("%w: %s", ErrInvalidHeader, reason)
}

// MapHTTPStatus maps inspection domain errors to HTTP status codes.
func MapHTTPStatus(err error) int {
	if errors.Is(err, ErrNotFound) {
		return http.StatusNotFound
	}
	if errors.Is(err, ErrDuplicate) || errors.Is(err, ErrCompleted) || errors.Is(err, ErrResultsRecorded) {
		return http.StatusConflict
	}
	if errors.Is(err, ErrInvalidHeader) {
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}
