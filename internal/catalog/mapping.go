package catalog

import (
	"net/url"
	"strconv"

	"github.com/JaimeStill/inspector/internal/checks"
	"github.com/JaimeStill/inspector/pkg/query"
	"github.com/JaimeStill/inspector/pkg/repository"
)

var projections = map[checks.Type]*query.ProjectionMap{
	checks.Document:   newProjection(checks.Document),
	checks.Visual:     newProjection(checks.Visual),
	checks.Dimension:  newProjection(checks.Dimension),
	checks.Functional: newProjection(checks.Functional),
}

func newProjection(check checks.Type) *query.ProjectionMap {
	p := query.
		NewProjectionMap("public", table(check), "q").
		Project("question_id", "ID")

	if check.Sampled() {
		p.Project("series", "Series")
	}

	return p.
		Project("prompt", "Prompt").
		Project("active", "Active").
		Project("sort_order", "SortOrder").
		Project("required", "Required").
		Project("photo_required_on_fail", "PhotoRequiredOnFail").
		Project("created_at", "CreatedAt").
		Project("updated_at", "UpdatedAt")
}

func table(check checks.Type) string {
	return string(check) + "_questions"
}

var defaultSort = []query.SortField{
	{Field: "SortOrder", NullsLast: true},
	{Field: "ID"},
}

// Filters contains optional filtering criteria for catalog maintenance queries.
// Series is ignored for document questions.
type Filters struct {
	Series *string `json:"series,omitempty"`
	Active *bool   `json:"active,omitempty"`
}

// Apply adds filter conditions to a query builder.
func (f Filters) Apply(check checks.Type, b *query.Builder) *query.Builder {
	if check.Sampled() {
		b.WhereEquals("Series", f.Series)
	}
	return b.WhereEquals("Active", f.Active)
}

// FiltersFromQuery extracts filter values from URL query parameters.
func FiltersFromQuery(values url.Values) Filters {
	var f Filters

	if s := values.Get("series"); s != "" {
		f.Series = &s
	}
	if a := values.Get("active"); a != "" {
		if v, err := strconv.ParseBool(a); err == nil {
			f.Active = &v
		}
	}

	return f
}

func scanner(check checks.Type) repository.ScanFunc[Question] {
	return func(s repository.Scanner) (Question, error) {
		q := Question{Check: check}
		dest := []any{&q.ID}
		if check.Sampled() {
			dest = append(dest, &q.Series)
		}
		dest = append(dest,
			&q.Prompt,
			&q.Active,
			&q.SortOrder,
			&q.Required,
			&q.PhotoRequiredOnFail,
			&q.CreatedAt,
			&q.UpdatedAt,
		)
		err := s.Scan(dest...)
		return q, err
	}
}
