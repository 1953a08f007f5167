// Package sessions implements checklist navigation: a per-operator, in-memory
// cache of answers keyed by sample that is validated on every move and
// written to the result store in one call on completion.
package sessions

import (
	"maps"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/JaimeStill/inspector/internal/catalog"
	"github.com/JaimeStill/inspector/internal/checks"
	"github.com/JaimeStill/inspector/internal/results"
)

// Session is a snapshot of checklist navigation state.
// Working holds the answers of the Current sample; Samples holds snapshots
// taken on each validated move. Done is the terminal state reached by Next
// from the last sample.
type Session struct {
	ID           uuid.UUID                        `json:"id"`
	InspectionID string                           `json:"inspection_id"`
	Check        checks.Type                      `json:"check"`
	Series       string                           `json:"series"`
	SampleSize   int                              `json:"sample_size"`
	Current      int                              `json:"current"`
	Done         bool                             `json:"done"`
	Inspector    string                           `json:"inspector"`
	Notice       string                           `json:"notice,omitempty"`
	Questions    []catalog.Question               `json:"questions"`
	Working      map[string]results.Entry         `json:"working"`
	Samples      map[int]map[string]results.Entry `json:"samples"`
	CreatedAt    time.Time                        `json:"created_at"`
}

// StartCommand opens a checklist session for one check of an inspection.
type StartCommand struct {
	InspectionID string      `json:"inspection_id"`
	Check        checks.Type `json:"check"`
	Inspector    string      `json:"inspector"`
}

// AnswerCommand records one answer on the current sample.
type AnswerCommand struct {
	QuestionID string        `json:"question_id"`
	Answer     checks.Answer `json:"answer"`
	Notes      string        `json:"notes"`
	PhotoKey   string        `json:"photo_key"`
}

// CompleteResult reports the result store write performed by Complete.
type CompleteResult struct {
	SessionID    uuid.UUID            `json:"session_id"`
	InspectionID string               `json:"inspection_id"`
	Check        checks.Type          `json:"check"`
	Saved        results.UpsertResult `json:"saved"`
}

// state is the cached, lock-guarded form of a session.
type state struct {
	mu sync.Mutex
	Session
}

func (s *state) snapshot() *Session {
	out := s.Session
	out.Questions = append([]catalog.Question(nil), s.Questions...)
	out.Working = maps.Clone(s.Working)
	out.Samples = make(map[int]map[string]results.Entry, len(s.Samples))
	for n, entries := range s.Samples {
		out.Samples[n] = maps.Clone(entries)
	}
	return &out
}

func (s *state) question(id string) (catalog.Question, bool) {
	for _, q := range s.Questions {
		if q.ID == id {
			return q, true
		}
	}
	return catalog.Question{}, false
}

// missing returns sample numbers in 1..SampleSize without a snapshot.
func (s *state) missing() []int {
	var out []int
	for n := 1; n <= s.SampleSize; n++ {
		if _, ok := s.Samples[n]; !ok {
			out = append(out, n)
		}
	}
	return out
}

// apply records an answer. Pass and NA clear notes.
func apply(working map[string]results.Entry, cmd AnswerCommand) {
	answer := cmd.Answer
	if answer == "" {
		answer = checks.NotAnswered
	}
	e := results.Entry{
		Answer:   answer,
		Notes:    strings.TrimSpace(cmd.Notes),
		PhotoKey: strings.TrimSpace(cmd.PhotoKey),
	}
	if answer == checks.Pass || answer == checks.NA {
		e.Notes = ""
	}
	working[cmd.QuestionID] = e
}

// Validate checks answers for one sample against the question flags and
// returns the first failure in question order. sampleNo is 0 for document checks.
func Validate(questions []catalog.Question, answers map[string]results.Entry, sampleNo int) error {
	for _, q := range questions {
		e, ok := answers[q.ID]
		if !ok || !e.Answer.Answered() {
			if q.Required {
				return fail(q, sampleNo, ReasonUnanswered)
			}
			continue
		}
		if e.Answer == checks.Fail {
			if strings.TrimSpace(e.Notes) == "" {
				return fail(q, sampleNo, ReasonNotesOnFail)
			}
			if q.PhotoRequiredOnFail && strings.TrimSpace(e.PhotoKey) == "" {
				return fail(q, sampleNo, ReasonPhotoOnFail)
			}
		}
	}
	return nil
}

func fail(q catalog.Question, sampleNo int, reason string) error {
	return &ValidationError{
		SampleNo:   sampleNo,
		QuestionID: q.ID,
		Prompt:     q.Prompt,
		Reason:     reason,
	}
}
