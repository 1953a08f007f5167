// Package summaries aggregates rejections across the four result stores,
// derives the lot disposition, records the completion summary, and sends the
// summary notification.
package summaries

import (
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/JaimeStill/inspector/internal/checks"
	"github.com/JaimeStill/inspector/internal/inspections"
	"github.com/JaimeStill/inspector/internal/results"
)

// Dispositions.
const (
	Accept = "ACCEPT"
	Hold   = "HOLD"
	Reject = "REJECT"
)

// Hold thresholds. Anything above either bound is a reject.
const (
	HoldMaxUnitRejects = 1
	HoldMaxAllRejects  = 3
)

// Disposition derives the lot disposition from rejection counts.
// The rules are evaluated top-down.
func Disposition(unitRejects, allRejects int) string {
	switch {
	case allRejects == 0:
		return Accept
	case unitRejects <= HoldMaxUnitRejects && allRejects <= HoldMaxAllRejects:
		return Hold
	default:
		return Reject
	}
}

// CheckRejects is the rejection detail for one check type.
// Samples is empty for document checks.
type CheckRejects struct {
	Rejects int   `json:"rejects"`
	Samples []int `json:"samples,omitempty"`
}

// Metrics holds the rejection figures for an inspection.
type Metrics struct {
	InspectionID string                       `json:"inspection_id"`
	UnitRejects  int                          `json:"unit_rejects"`
	AllRejects   int                          `json:"all_rejects"`
	Disposition  string                       `json:"disposition"`
	Details      map[checks.Type]CheckRejects `json:"details"`
}

// Tally counts rejects across result records grouped by check type.
// Every Fail adds to AllRejects. UnitRejects counts distinct physical sample
// numbers with at least one Fail on any sampled check; document fails have no
// sample and never count as a unit.
func Tally(records map[checks.Type][]results.Record) Metrics {
	m := Metrics{Details: make(map[checks.Type]CheckRejects, len(records))}
	units := make(map[int]struct{})

	for _, check := range checks.Types() {
		recs, ok := records[check]
		if !ok {
			continue
		}

		var detail CheckRejects
		for _, rec := range recs {
			if !rec.Answer.IsReject() {
				continue
			}
			detail.Rejects++
			if check.Sampled() && !slices.Contains(detail.Samples, rec.SampleNo) {
				detail.Samples = append(detail.Samples, rec.SampleNo)
				units[rec.SampleNo] = struct{}{}
			}
		}
		slices.Sort(detail.Samples)

		m.AllRejects += detail.Rejects
		m.Details[check] = detail
	}

	m.UnitRejects = len(units)
	m.Disposition = Disposition(m.UnitRejects, m.AllRejects)
	return m
}

// Readiness reports which check sections have no stored results.
type Readiness struct {
	InspectionID string        `json:"inspection_id"`
	Ready        bool          `json:"ready"`
	Missing      []checks.Type `json:"missing"`
	Message      string        `json:"message"`
}

func readiness(inspectionID string, counts map[checks.Type]int) Readiness {
	r := Readiness{InspectionID: inspectionID, Missing: []checks.Type{}}
	for _, check := range checks.Types() {
		if counts[check] == 0 {
			r.Missing = append(r.Missing, check)
		}
	}
	if len(r.Missing) == 0 {
		r.Ready = true
		r.Message = "all sections complete"
		return r
	}

	labels := make([]string, len(r.Missing))
	for i, check := range r.Missing {
		labels[i] = check.Label()
	}
	r.Message = "missing results: " + strings.Join(labels, ", ")
	return r
}

// Summary is the completion record for an inspection. Header fields are
// copied at completion time.
type Summary struct {
	ID             uuid.UUID `json:"id"`
	InspectionID   string    `json:"inspection_id"`
	InspectionDate time.Time `json:"inspection_date"`
	PONumber       string    `json:"po_number"`
	ReleaseNumber  string    `json:"release_number"`
	Series         string    `json:"series"`
	ProductCode    string    `json:"product_code"`
	OrderQty       int       `json:"order_qty"`
	LotQty         int       `json:"lot_qty"`
	SampleQty      int       `json:"sample_qty"`
	Inspector      string    `json:"inspector"`
	UnitRejects    int       `json:"unit_rejects"`
	AllRejects     int       `json:"all_rejects"`
	Disposition    string    `json:"disposition"`
	CompletedDate  time.Time `json:"completed_date"`
}

// PORelease returns the purchase order and release as "PO-REL".
func (s Summary) PORelease() string {
	if s.ReleaseNumber == "" {
		return s.PONumber
	}
	return s.PONumber + "-" + s.ReleaseNumber
}

func newSummary(insp *inspections.Inspection, m Metrics) Summary {
	return Summary{
		InspectionID:   insp.ID,
		InspectionDate: insp.InspectionDate,
		PONumber:       insp.PONumber,
		ReleaseNumber:  insp.ReleaseNumber,
		Series:         insp.Series,
		ProductCode:    insp.ProductCode,
		OrderQty:       insp.OrderQty,
		LotQty:         insp.LotQty,
		SampleQty:      insp.SampleQty,
		Inspector:      insp.Inspector,
		UnitRejects:    m.UnitRejects,
		AllRejects:     m.AllRejects,
		Disposition:    m.Disposition,
	}
}

// EmailCommand carries the operator's message and optional recipient override.
type EmailCommand struct {
	Message    string   `json:"message"`
	Recipients []string `json:"recipients"`
}

// EmailResult reports a delivered summary notification.
type EmailResult struct {
	InspectionID string   `json:"inspection_id"`
	Recipients   []string `json:"recipients"`
}

// EmailBody formats the notification text for a stored summary.
func EmailBody(s Summary, message string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Inspection Number:  %s\n", s.InspectionID)
	fmt.Fprintf(&b, "Inspection Date:  %s\n", s.InspectionDate.Format(inspections.DateLayout))
	fmt.Fprintf(&b, "Purchase Order:  %s\n", s.PORelease())
	fmt.Fprintf(&b, "Series:  %s  Code:  %s\n", s.Series, s.ProductCode)
	fmt.Fprintf(&b, "Sample Qty:  %d  Unit Rejects:  %d  Total Rejects:  %d\n", s.SampleQty, s.UnitRejects, s.AllRejects)
	fmt.Fprintf(&b, "Disposition:  %s\n", s.Disposition)
	if msg := strings.TrimSpace(message); msg != "" {
		b.WriteString("\n")
		b.WriteString(msg)
		b.WriteString("\n")
	}
	b.WriteString("\nThanks,\nHub Inspections\n")
	return b.String()
}
