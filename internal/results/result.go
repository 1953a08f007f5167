// Package results implements the per-check result store: one row per
// (inspection, sample, question) for sampled checks and per (inspection,
// question) for document checks, written by idempotent upsert.
package results

import (
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/JaimeStill/inspector/internal/checks"
)

// Entry is a single answer as submitted by the operator.
type Entry struct {
	Answer   checks.Answer `json:"answer"`
	Notes    string        `json:"notes,omitempty"`
	PhotoKey string        `json:"photo_key,omitempty"`
}

// Record is a persisted result row. SampleNo is 0 for document results.
type Record struct {
	ID           uuid.UUID     `json:"id"`
	InspectionID string        `json:"inspection_id"`
	Check        checks.Type   `json:"check"`
	SampleNo     int           `json:"sample_no,omitempty"`
	QuestionID   string        `json:"question_id"`
	Answer       checks.Answer `json:"answer"`
	Notes        string        `json:"notes"`
	PhotoKey     *string       `json:"photo_key"`
	Inspector    string        `json:"inspector"`
	Complete     bool          `json:"complete"`
	UpdatedAt    time.Time     `json:"updated_at"`
}

// Entry returns the answer fields of the record.
func (r Record) Entry() Entry {
	e := Entry{Answer: r.Answer, Notes: r.Notes}
	if r.PhotoKey != nil {
		e.PhotoKey = *r.PhotoKey
	}
	return e
}

// UpsertCommand is a batch of answers for one check. Samples is keyed by
// sample label ("sample_N" or "N") and is used by sampled checks; Results is
// used by document checks.
type UpsertCommand struct {
	Inspector string                      `json:"inspector"`
	Samples   map[string]map[string]Entry `json:"samples,omitempty"`
	Results   map[string]Entry            `json:"results,omitempty"`
}

// UpsertResult reports how many leaf records were updated or inserted.
type UpsertResult struct {
	Updated  int `json:"updated"`
	Inserted int `json:"inserted"`
}

// ReadResult holds stored answers for one check, shaped like UpsertCommand.
type ReadResult struct {
	InspectionID string                    `json:"inspection_id"`
	Check        checks.Type               `json:"check"`
	Samples      map[int]map[string]Record `json:"samples,omitempty"`
	Results      map[string]Record         `json:"results,omitempty"`
}

// Sample returns the answers stored for sample n, or nil.
func (r *ReadResult) Sample(n int) map[string]Entry {
	var src map[string]Record
	if r.Check.Sampled() {
		src = r.Samples[n]
	} else if n == 1 {
		src = r.Results
	}
	if len(src) == 0 {
		return nil
	}
	out := make(map[string]Entry, len(src))
	for qid, rec := range src {
		out[qid] = rec.Entry()
	}
	return out
}

// Failure identifies a failing answer in a per-check rollup.
type Failure struct {
	SampleNo   int    `json:"sample_no,omitempty"`
	QuestionID string `json:"question_id"`
	Notes      string `json:"notes"`
}

// Counts is the per-check answer rollup for an inspection.
type Counts struct {
	Check       checks.Type `json:"check"`
	Total       int         `json:"total"`
	Passed      int         `json:"passed"`
	Failed      int         `json:"failed"`
	NA          int         `json:"na"`
	NotAnswered int         `json:"not_answered"`
	Samples     int         `json:"samples"`
	Failures    []Failure   `json:"failures"`
}

// Count rolls up records for a single check.
func Count(check checks.Type, records []Record) Counts {
	c := Counts{Check: check, Failures: []Failure{}}
	samples := make(map[int]struct{})

	for _, r := range records {
		c.Total++
		switch r.Answer {
		case checks.Pass:
			c.Passed++
		case checks.Fail:
			c.Failed++
			c.Failures = append(c.Failures, Failure{
				SampleNo:   r.SampleNo,
				QuestionID: r.QuestionID,
				Notes:      r.Notes,
			})
		case checks.NA:
			c.NA++
		default:
			c.NotAnswered++
		}
		if check.Sampled() {
			samples[r.SampleNo] = struct{}{}
		}
	}

	c.Samples = len(samples)
	slices.SortFunc(c.Failures, func(a, b Failure) int {
		if a.SampleNo != b.SampleNo {
			return a.SampleNo - b.SampleNo
		}
		return strings.Compare(a.QuestionID, b.QuestionID)
	})
	return c
}

// ParseSampleLabel accepts "sample_N" or "N" and returns N.
func ParseSampleLabel(label string) (int, error) {
	s := strings.TrimSpace(strings.ToLower(label))
	s = strings.TrimPrefix(s, "sample_")
	n, err := strconv.Atoi(s)
	if err != nil || n < 1 {
		return 0, invalid("sample label %q", label)
	}
	return n, nil
}

// SampleLabel returns the canonical label for sample n.
func SampleLabel(n int) string {
	return "sample_" + strconv.Itoa(n)
}

// Attachment describes an uploaded photo or document stored in blob storage.
type Attachment struct {
	Key         string `json:"key"`
	Filename    string `json:"filename"`
	ContentType string `json:"content_type"`
	SizeBytes   int64  `json:"size_bytes"`
	PageCount   *int   `json:"page_count"`

	UploadedAt *time.Time `json:"uploaded_at,omitempty"`
}

// AttachCommand carries an uploaded file. PageCount is extracted by the caller
// for PDFs.
type AttachCommand struct {
	Data        []byte
	Filename    string
	ContentType string
	PageCount   *int
}
