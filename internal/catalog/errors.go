package catalog

import (
	"errors"
	"net/http"

	"github.com/JaimeStill/inspector/internal/checks"
)

// Domain errors for catalog operations.
var (
	ErrNotFound        = errors.New("question not found")
	ErrDuplicate       = errors.New("question already exists")
	ErrSeriesRequired  = errors.New("series is required for this check type")
	ErrInvalidQuestion = errors.New("question_id and prompt are required")
)

// MapHTTPStatus maps catalog domain errors to HTTP status codes.
func MapHTTPStatus(err error) int {
	if errors.Is(err, ErrNotFound) {
		return http.StatusNotFound
	}
	if errors.Is(err, ErrDuplicate) {
		return http.StatusConflict
	}
	if errors.Is(err, ErrSeriesRequired) || errors.Is(err, ErrInvalidQuestion) {
		return http.StatusBadRequest
	}
	if errors.Is(err, checks.ErrInvalidType) {
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}
