// Package inspections implements the inspection header domain: the shipment
// lot metadata an operator records before running the checklists.
package inspections

import (
	"strings"
	"time"
)

// Header status values.
const (
	StatusInProgress = "In Progress"
	StatusCompleted  = "Completed"
)

// DateLayout is the wire format of InspectionDate.
const DateLayout = "2006-01-02"

// Inspection is a persisted inspection header.
type Inspection struct {
	ID             string    `json:"id"`
	InspectionDate time.Time `json:"inspection_date"`
	PONumber       string    `json:"po_number"`
	ReleaseNumber  string    `json:"release_number"`
	Series         string    `json:"series"`
	ProductCode    string    `json:"product_code"`
	OrderQty       int       `json:"order_qty"`
	LotQty         int       `json:"lot_qty"`
	SampleQty      int       `json:"sample_qty"`
	Inspector      string    `json:"inspector"`
	Status         string    `json:"status"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// Completed reports whether the inspection has been finalized.
func (i *Inspection) Completed() bool {
	return i.Status == StatusCompleted
}

// PORelease returns the purchase order and release joined as "PO-REL".
// The release suffix is omitted when empty.
func (i *Inspection) PORelease() string {
	if i.ReleaseNumber == "" {
		return i.PONumber
	}
	return i.PONumber + "-" + i.ReleaseNumber
}

// HeaderCommand carries the editable header fields for Create and Update.
// InspectionDate is a YYYY-MM-DD string.
type HeaderCommand struct {
	InspectionDate string `json:"inspection_date"`
	PONumber       string `json:"po_number"`
	ReleaseNumber  string `json:"release_number"`
	Series         string `json:"series"`
	ProductCode    string `json:"product_code"`
	OrderQty       int    `json:"order_qty"`
	LotQty         int    `json:"lot_qty"`
	SampleQty      int    `json:"sample_qty"`
	Inspector      string `json:"inspector"`
}

// Normalize trims whitespace from all text fields.
func (c *HeaderCommand) Normalize() {
	c.InspectionDate = strings.TrimSpace(c.InspectionDate)
	c.PONumber = strings.TrimSpace(c.PONumber)
	c.ReleaseNumber = strings.TrimSpace(c.ReleaseNumber)
	c.Series = strings.TrimSpace(c.Series)
	c.ProductCode = strings.TrimSpace(c.ProductCode)
	c.Inspector = strings.TrimSpace(c.Inspector)
}

// Validate checks required fields and quantity bounds, returning the parsed
// inspection date.
func (c *HeaderCommand) Validate() (time.Time, error) {
	if c.InspectionDate == "" {
		return time.Time{}, invalid("inspection_date is required")
	}
	date, err := time.Parse(DateLayout, c.InspectionDate)
	if err != nil {
		return time.Time{}, invalid("inspection_date must be YYYY-MM-DD")
	}
	if c.PONumber == "" {
		return time.Time{}, invalid("po_number is required")
	}
	if c.ProductCode == "" {
		return time.Time{}, invalid("product_code is required")
	}
	if c.OrderQty < 1 {
		return time.Time{}, invalid("order_qty must be at least 1")
	}
	if c.LotQty < 1 {
		return time.Time{}, invalid("lot_qty must be at least 1")
	}
	if c.SampleQty < 1 {
		return time.Time{}, invalid("sample_qty must be at least 1")
	}
	return date, nil
}
