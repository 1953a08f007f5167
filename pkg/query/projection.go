// Package query builds parameterized PostgreSQL SELECTs over a projection of
// one table, with filters, sorting, and paging.
package query

import (
	"strings"
)

// ProjectionMap binds the view names used in code and request parameters to
// alias-qualified columns of a single table. Lookups ignore case and
// underscores, so "InspectionDate", "inspectionDate", and "inspection_date"
// name the same column.
type ProjectionMap struct {
	schema  string
	table   string
	alias   string
	lookup  map[string]string
	ordered []string
}

func NewProjectionMap(schema, table, alias string) *ProjectionMap {
	return &ProjectionMap{
		schema: schema,
		table:  table,
		alias:  alias,
		lookup: make(map[string]string),
	}
}

// Project appends column to the select list under viewName. The raw column
// name resolves too.
func (p *ProjectionMap) Project(column, viewName string) *ProjectionMap {
	qualified := p.alias + "." + column
	p.lookup[viewKey(viewName)] = qualified
	p.lookup[viewKey(column)] = qualified
	p.ordered = append(p.ordered, qualified)
	return p
}

// Table returns "schema.table alias".
func (p *ProjectionMap) Table() string {
	return p.schema + "." + p.table + " " + p.alias
}

// Column resolves viewName, returning it untouched when it is not projected.
func (p *ProjectionMap) Column(viewName string) string {
	if col, ok := p.lookup[viewKey(viewName)]; ok {
		return col
	}
	return viewName
}

// Has reports whether viewName resolves to a projected column.
func (p *ProjectionMap) Has(viewName string) bool {
	_, ok := p.lookup[viewKey(viewName)]
	return ok
}

// Columns returns the select list in projection order.
func (p *ProjectionMap) Columns() string {
	return strings.Join(p.ordered, ", ")
}

// ColumnList returns a copy of the select list in projection order.
func (p *ProjectionMap) ColumnList() []string {
	return append([]string(nil), p.ordered...)
}

func viewKey(name string) string {
	return strings.ToLower(strings.ReplaceAll(name, "_", ""))
}
