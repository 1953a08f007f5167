package inspections

import (
	"net/url"

	"github.com/JaimeStill/inspector/pkg/query"
	"github.com/JaimeStill/inspector/pkg/repository"
)

var projection = query.
	NewProjectionMap("public", "inspections", "i").
	Project("id", "ID").
	Project("inspection_date", "InspectionDate").
	Project("po_number", "PONumber").
	Project("release_number", "ReleaseNumber").
	Project("series", "Series").
	Project("product_code", "ProductCode").
	Project("order_qty", "OrderQty").
	Project("lot_qty", "LotQty").
	Project("sample_qty", "SampleQty").
	Project("inspector", "Inspector").
	Project("status", "Status").
	Project("created_at", "CreatedAt").
	Project("updated_at", "UpdatedAt")

var defaultSort = query.SortField{
	Field:      "CreatedAt",
	Descending: true,
}

const returning = `id, inspection_date, po_number, release_number, series, product_code,
	order_qty, lot_qty, sample_qty, inspector, status, created_at, updated_at`

// Filters contains optional filtering criteria for inspection queries.
// Status and Series use exact matching; PONumber and ProductCode use
// case-insensitive contains matching.
type Filters struct {
	Status      *string `json:"status,omitempty"`
	PONumber    *string `json:"po_number,omitempty"`
	Series      *string `json:"series,omitempty"`
	ProductCode *string `json:"product_code,omitempty"`
}

// Apply adds filter conditions to a query builder.
func (f Filters) Apply(b *query.Builder) *query.Builder {
	return b.
		WhereEquals("Status", f.Status).
		WhereContains("PONumber", f.PONumber).
		WhereEquals("Series", f.Series).
		WhereContains("ProductCode", f.ProductCode)
}

// FiltersFromQuery extracts filter values from URL query parameters.
func FiltersFromQuery(values url.Values) Filters {
	var f Filters

	if s := values.Get("status"); s != "" {
		f.Status = &s
	}
	if po := values.Get("po_number"); po != "" {
		f.PONumber = &po
	}
	if se := values.Get("series"); se != "" {
		f.Series = &se
	}
	if pc := values.Get("product_code"); pc != "" {
		f.ProductCode = &pc
	}

	return f
}

func scanInspection(s repository.Scanner) (Inspection, error) {
	var i Inspection
	err := s.Scan(
		&i.ID,
		&i.InspectionDate,
		&i.PONumber,
		&i.ReleaseNumber,
		&i.Series,
		&i.ProductCode,
		&i.OrderQty,
		&i.LotQty,
		&i.SampleQty,
		&i.Inspector,
		&i.Status,
		&i.CreatedAt,
		&i.UpdatedAt,
	)
	return i, err
}
