// Package checks defines the inspection check vocabulary shared by the catalog,
// result store, session, and summary domains: the four check types and the
// canonical answer enum with its legacy spellings.
package checks

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Type identifies one checklist phase of an inspection.
type Type string

const (
	Document   Type = "document"
	Visual     Type = "visual"
	Dimension  Type = "dimension"
	Functional Type = "functional"
)

var types = []Type{Document, Visual, Dimension, Functional}

// Types returns every check type in checklist order.
func Types() []Type {
	return append([]Type(nil), types...)
}

// ParseType resolves a case-insensitive check type name.
func ParseType(s string) (Type, error) {
	t := Type(strings.ToLower(strings.TrimSpace(s)))
	if !t.Valid() {
		return "", fmt.Errorf("%w: %q", ErrInvalidType, s)
	}
	return t, nil
}

// Valid reports whether t is a known check type.
func (t Type) Valid() bool {
	switch t {
	case Document, Visual, Dimension, Functional:
		return true
	}
	return false
}

// Sampled reports whether results of this type are recorded per sample.
// Document checks apply to the lot as a whole.
func (t Type) Sampled() bool {
	return t != Document
}

// Label returns the display name used in reports.
func (t Type) Label() string {
	if t == "" {
		return ""
	}
	return strings.ToUpper(string(t[:1])) + string(t[1:])
}

func (t *Type) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	parsed, err := ParseType(s)
	if err != nil {
		return err
	}
	*t = parsed
	return nil
}

// Answer is the canonical tri-state result of a single question plus the
// NotAnswered sentinel stored for questions the operator never reached.
type Answer string

const (
	Pass        Answer = "Pass"
	Fail        Answer = "Fail"
	NA          Answer = "NA"
	NotAnswered Answer = "Not Answered"
)

// ParseAnswer maps the canonical values and the legacy ACCEPT/REJECT,
// boolean, and abbreviated spellings onto Answer. Empty input is NotAnswered.
func ParseAnswer(s string) (Answer, error) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "PASS", "P", "ACCEPT", "TRUE", "YES":
		return Pass, nil
	case "FAIL", "F", "REJECT", "FALSE", "NO":
		return Fail, nil
	case "NA", "N/A", "NOT APPLICABLE":
		return NA, nil
	case "", "NOT ANSWERED":
		return NotAnswered, nil
	}
	return "", fmt.Errorf("%w: %q", ErrInvalidAnswer, s)
}

// IsReject reports whether the answer counts toward rejection totals.
func (a Answer) IsReject() bool {
	return a == Fail
}

// Answered reports whether the operator supplied a value.
func (a Answer) Answered() bool {
	return a == Pass || a == Fail || a == NA
}

func (a *Answer) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		*a = NotAnswered
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	parsed, err := ParseAnswer(s)
	if err != nil {
		return err
	}
	*a = parsed
	return nil
}
