package summaries

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/JaimeStill/inspector/pkg/query"
	"github.com/JaimeStill/inspector/pkg/repository"
)

var projection = query.
	NewProjectionMap("public", "inspection_summaries", "s").
	Project("id", "ID").
	Project("inspection_id", "InspectionID").
	Project("inspection_date", "InspectionDate").
	Project("po_number", "PONumber").
	Project("release_number", "ReleaseNumber").
	Project("series", "Series").
	Project("product_code", "ProductCode").
	Project("order_qty", "OrderQty").
	Project("lot_qty", "LotQty").
	Project("sample_qty", "SampleQty").
	Project("inspector", "Inspector").
	Project("unit_rejects", "UnitRejects").
	Project("all_rejects", "AllRejects").
	Project("disposition", "Disposition").
	Project("completed_date", "CompletedDate")

var defaultSort = query.SortField{
	Field:      "CompletedDate",
	Descending: true,
}

const returning = `id, inspection_id, inspection_date, po_number, release_number, series,
	product_code, order_qty, lot_qty, sample_qty, inspector, unit_rejects, all_rejects,
	disposition, completed_date`

// dateLayout is the format of the from and to query parameters.
const dateLayout = "2006-01-02"

// Filters contains optional filtering criteria for summary queries.
// From and To bound the inspection date inclusively.
type Filters struct {
	Dispositions []string   `json:"dispositions,omitempty"`
	Series       *string    `json:"series,omitempty"`
	PONumber     *string    `json:"po_number,omitempty"`
	ProductCode  *string    `json:"product_code,omitempty"`
	From         *time.Time `json:"from,omitempty"`
	To           *time.Time `json:"to,omitempty"`
}

// Apply adds filter conditions to a query builder.
func (f Filters) Apply(b *query.Builder) *query.Builder {
	dispositions := make([]any, len(f.Dispositions))
	for i, d := range f.Dispositions {
		dispositions[i] = d
	}

	return b.
		WhereIn("Disposition", dispositions).
		WhereEquals("Series", f.Series).
		WhereContains("PONumber", f.PONumber).
		WhereContains("ProductCode", f.ProductCode).
		WhereRange("InspectionDate", f.From, f.To)
}

// FiltersFromQuery extracts filter values from URL query parameters.
// Disposition accepts a comma separated list and is matched upper-cased.
// from and to take YYYY-MM-DD dates; a malformed date or a reversed range
// returns ErrInvalidFilter.
func FiltersFromQuery(values url.Values) (Filters, error) {
	var f Filters

	for d := range strings.SplitSeq(values.Get("disposition"), ",") {
		if d = strings.ToUpper(strings.TrimSpace(d)); d != "" {
			f.Dispositions = append(f.Dispositions, d)
		}
	}
	if s := values.Get("series"); s != "" {
		f.Series = &s
	}
	if po := values.Get("po_number"); po != "" {
		f.PONumber = &po
	}
	if pc := values.Get("product_code"); pc != "" {
		f.ProductCode = &pc
	}

	for _, bound := range []struct {
		name string
		dst  **time.Time
	}{
		{"from", &f.From},
		{"to", &f.To},
	} {
		v := values.Get(bound.name)
		if v == "" {
			continue
		}
		d, err := time.Parse(dateLayout, v)
		if err != nil {
			return Filters{}, fmt.Errorf("%w: %s must be YYYY-MM-DD", ErrInvalidFilter, bound.name)
		}
		*bound.dst = &d
	}
	if f.From != nil && f.To != nil && f.To.Before(*f.From) {
		return Filters{}, fmt.Errorf("%w: to precedes from", ErrInvalidFilter)
	}

	return f, nil
}

func scanSummary(s repository.Scanner) (Summary, error) {
	var sm Summary
	err := s.Scan(
		&sm.ID,
		&sm.InspectionID,
		&sm.InspectionDate,
		&sm.PONumber,
		&sm.ReleaseNumber,
		&sm.Series,
		&sm.ProductCode,
		&sm.OrderQty,
		&sm.LotQty,
		&sm.SampleQty,
		&sm.Inspector,
		&sm.UnitRejects,
		&sm.AllRejects,
		&sm.Disposition,
		&sm.CompletedDate,
	)
	return sm, err
}
