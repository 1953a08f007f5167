package summaries

import (
	"errors"
	"net/http"

	"github.com/JaimeStill/inspector/internal/inspections"
	"github.com/JaimeStill/inspector/pkg/database"
	"github.com/JaimeStill/inspector/pkg/mail"
)

// Domain errors for summary operations.
var (
	ErrNotFound         = errors.New("summary not found")
	ErrAlreadyCompleted = errors.New("inspection already has a summary")
	ErrInvalidEmail     = errors.New("invalid email request")
	ErrInvalidFilter    = errors.New("invalid summary filter")
)

// ErrTimeout is returned when aggregation exceeds the operation timeout.
// The call may be retried unchanged.
var ErrTimeout = database.ErrTimeout

// MapHTTPStatus maps summary domain errors to HTTP status codes.
func MapHTTPStatus(err error) int {
	switch {
	case errors.Is(err, ErrNotFound), errors.Is(err, inspections.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrAlreadyCompleted):
		return http.StatusConflict
	case errors.Is(err, ErrTimeout):
		return http.StatusGatewayTimeout
	case errors.Is(err, ErrInvalidEmail), errors.Is(err, ErrInvalidFilter), errors.Is(err, mail.ErrNoRecipients):
		return http.StatusBadRequest
	case errors.Is(err, mail.ErrDisabled):
		return http.StatusServiceUnavailable
	case errors.Is(err, mail.ErrDelivery):
		return http.StatusBadGateway
	}
	return http.StatusInternalServerError
}
