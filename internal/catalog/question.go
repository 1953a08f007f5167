// Package catalog implements the question catalog: the static, per-check-type
// reference lists of prompts an operator answers during each checklist.
package catalog

import (
	"slices"
	"strings"
	"time"

	"github.com/JaimeStill/inspector/internal/checks"
)

// Question is a single catalog entry. Series is empty for document questions.
// A nil SortOrder sorts after every ordered question.
type Question struct {
	ID                  string      `json:"question_id"`
	Check               checks.Type `json:"check"`
	Series              string      `json:"series,omitempty"`
	Prompt              string      `json:"prompt"`
	Active              bool        `json:"active"`
	SortOrder           *int        `json:"sort_order"`
	Required            bool        `json:"required"`
	PhotoRequiredOnFail bool        `json:"photo_required_on_fail"`
	CreatedAt           time.Time   `json:"created_at"`
	UpdatedAt           time.Time   `json:"updated_at"`
}

// CreateCommand carries the fields for a new catalog entry.
// Required defaults to true when omitted.
type CreateCommand struct {
	ID                  string `json:"question_id"`
	Series              string `json:"series"`
	Prompt              string `json:"prompt"`
	SortOrder           *int   `json:"sort_order"`
	Required            *bool  `json:"required"`
	PhotoRequiredOnFail bool   `json:"photo_required_on_fail"`
}

func (c *CreateCommand) validate(check checks.Type) error {
	c.ID = strings.TrimSpace(c.ID)
	c.Series = strings.TrimSpace(c.Series)
	c.Prompt = strings.TrimSpace(c.Prompt)

	if c.ID == "" || c.Prompt == "" {
		return ErrInvalidQuestion
	}
	if check.Sampled() && c.Series == "" {
		return ErrSeriesRequired
	}
	if !check.Sampled() {
		c.Series = ""
	}
	return nil
}

// Sort orders questions by sort order ascending with unordered questions last,
// breaking ties by question id.
func Sort(qs []Question) {
	slices.SortStableFunc(qs, compare)
}

func compare(a, b Question) int {
	switch {
	case a.SortOrder == nil && b.SortOrder != nil:
		return 1
	case a.SortOrder != nil && b.SortOrder == nil:
		return -1
	case a.SortOrder != nil && b.SortOrder != nil && *a.SortOrder != *b.SortOrder:
		if *a.SortOrder < *b.SortOrder {
			return -1
		}
		return 1
	}
	return strings.Compare(a.ID, b.ID)
}
