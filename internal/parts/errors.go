package parts

import (
	"errors"
	"net/http"

	"github.com/JaimeStill/inspector/pkg/database"
)

// Domain errors for part master operations.
var (
	ErrNotFound          = errors.New("part not found")
	ErrInvalidFile       = errors.New("invalid part master file")
	ErrUnsupportedFormat = errors.New("unsupported part master format")
	ErrFileTooLarge      = errors.New("file exceeds maximum upload size")
)

// ErrTimeout is returned when an import exceeds the operation timeout.
var ErrTimeout = database.ErrTimeout

// MapHTTPStatus maps part master errors to HTTP status codes.
func MapHTTPStatus(err error) int {
	switch {
	case errors.Is(err, ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrInvalidFile):
		return http.StatusBadRequest
	case errors.Is(err, ErrUnsupportedFormat):
		return http.StatusUnsupportedMediaType
	case errors.Is(err, ErrFileTooLarge):
		return http.StatusRequestEntityTooLarge
	case errors.Is(err, ErrTimeout):
		return http.StatusGatewayTimeout
	}
	return http.StatusInternalServerError
}
