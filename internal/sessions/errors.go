package sessions

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/JaimeStill/inspector/internal/checks"
	"github.com/JaimeStill/inspector/internal/inspections"
	"github.com/JaimeStill/inspector/internal/results"
)

// Domain errors for checklist session operations.
var (
	ErrNotFound        = errors.New("session not found")
	ErrValidation      = errors.New("checklist validation failed")
	ErrUnknownQuestion = errors.New("question is not part of this checklist")
)

// Validation reasons.
const (
	ReasonUnanswered     = "an answer is required"
	ReasonNotesOnFail    = "notes are required when the answer is Fail"
	ReasonPhotoOnFail    = "a photo is required when the answer is Fail"
	ReasonMissingSamples = "samples have not been answered"
)

// ValidationError names the first question that blocks navigation or save.
// QuestionID is empty when the error concerns missing samples.
type ValidationError struct {
	SampleNo   int    `json:"sample_no,omitempty"`
	QuestionID string `json:"question_id,omitempty"`
	Prompt     string `json:"prompt,omitempty"`
	Reason     string `json:"reason"`
	Missing    []int  `json:"missing,omitempty"`
}

func (e *ValidationError) Error() string {
	if e.QuestionID == "" {
		return fmt.Sprintf("%d %s: %v", len(e.Missing), e.Reason, e.Missing)
	}
	if e.SampleNo > 0 {
		return fmt.Sprintf("sample %d, %s (%s): %s", e.SampleNo, e.QuestionID, e.Prompt, e.Reason)
	}
	return fmt.Sprintf("%s (%s): %s", e.QuestionID, e.Prompt, e.Reason)
}

func (e *ValidationError) Unwrap() error {
	return ErrValidation
}

// MapHTTPStatus maps session errors to HTTP status codes.
func MapHTTPStatus(err error) int {
	switch {
	case errors.Is(err, ErrNotFound), errors.Is(err, inspections.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrValidation):
		return http.StatusUnprocessableEntity
	case errors.Is(err, ErrUnknownQuestion),
		errors.Is(err, checks.ErrInvalidType),
		errors.Is(err, checks.ErrInvalidAnswer):
		return http.StatusBadRequest
	case errors.Is(err, inspections.ErrCompleted):
		return http.StatusConflict
	}
	return results.MapHTTPStatus(err)
}
