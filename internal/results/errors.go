package results

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/JaimeStill/inspector/internal/checks"
	"github.com/JaimeStill/inspector/internal/inspections"
	"github.com/JaimeStill/inspector/pkg/storage"
)

// Domain errors for result store operations.
var (
	ErrNotFound       = errors.New("result not found")
	ErrDuplicate      = errors.New("result already exists")
	ErrInvalidPayload = errors.New("invalid result payload")
	ErrFileTooLarge   = errors.New("file exceeds maximum upload size")
	ErrInvalidFile    = errors.New("invalid file")
)

func invalid(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidPayload, fmt.Sprintf(format, args...))
}

// MapHTTPStatus maps result store errors to HTTP status codes.
func MapHTTPStatus(err error) int {
	switch {
	case errors.Is(err, ErrNotFound), errors.Is(err, inspections.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrDuplicate), errors.Is(err, inspections.ErrCompleted):
		return http.StatusConflict
	case errors.Is(err, ErrFileTooLarge):
		return http.StatusRequestEntityTooLarge
	case errors.Is(err, ErrInvalidPayload),
		errors.Is(err, ErrInvalidFile),
		errors.Is(err, checks.ErrInvalidType),
		errors.Is(err, checks.ErrInvalidAnswer):
		return http.StatusBadRequest
	}
	return storage.MapHTTPStatus(err)
}
