package query

import (
	"reflect"
	"strconv"
	"strings"
)

// SortField is one ORDER BY term. Field is a view name resolved through the
// projection; terms naming unprojected fields are dropped.
type SortField struct {
	Field      string `json:"field"`
	Descending bool   `json:"descending,omitempty"`
	NullsLast  bool   `json:"nulls_last,omitempty"`
}

// ParseSortFields reads "series,-inspection_date" style lists. A leading "-"
// sorts descending. Empty input returns nil.
func ParseSortFields(s string) []SortField {
	var fields []SortField
	for part := range strings.SplitSeq(s, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		name, desc := strings.CutPrefix(part, "-")
		fields = append(fields, SortField{Field: name, Descending: desc})
	}
	return fields
}

// predicate is a WHERE fragment whose "?" markers are numbered $n when the
// query is rendered.
type predicate struct {
	sql  string
	args []any
}

// Builder accumulates AND-ed predicates and ordering over one projection.
// Filter methods skip nil or empty values so optional request parameters can
// be passed straight through.
type Builder struct {
	projection  *ProjectionMap
	predicates  []predicate
	sort        []SortField
	defaultSort []SortField
}

func NewBuilder(projection *ProjectionMap, defaultSort ...SortField) *Builder {
	return &Builder{
		projection:  projection,
		defaultSort: defaultSort,
	}
}

// Build returns the filtered, ordered SELECT.
func (b *Builder) Build() (string, []any) {
	where, args := b.where()
	return b.selectFrom() + where + b.orderBy(), args
}

// BuildCount returns COUNT(*) under the same predicates.
func (b *Builder) BuildCount() (string, []any) {
	where, args := b.where()
	return "SELECT COUNT(*) FROM " + b.projection.Table() + where, args
}

// BuildPage returns Build with LIMIT and OFFSET appended. A negative offset
// becomes zero.
func (b *Builder) BuildPage(limit, offset int) (string, []any) {
	q, args := b.Build()
	return q + " LIMIT " + strconv.Itoa(limit) + " OFFSET " + strconv.Itoa(max(offset, 0)), args
}

// BuildSingle selects the row whose idField equals id, ignoring any
// accumulated predicates.
func (b *Builder) BuildSingle(idField string, id any) (string, []any) {
	return b.selectFrom() + " WHERE " + b.projection.Column(idField) + " = $1", []any{id}
}

// OrderByFields replaces the default sort. Passing nil restores it.
func (b *Builder) OrderByFields(fields []SortField) *Builder {
	b.sort = fields
	return b
}

// WhereEquals adds field = value.
func (b *Builder) WhereEquals(field string, value any) *Builder {
	if isNil(value) {
		return b
	}
	return b.add(b.projection.Column(field)+" = ?", value)
}

// WhereContains adds a case-insensitive substring match.
func (b *Builder) WhereContains(field string, value *string) *Builder {
	if value == nil || *value == "" {
		return b
	}
	return b.add(b.projection.Column(field)+" ILIKE ?", "%"+*value+"%")
}

// WhereIn adds field IN (...).
func (b *Builder) WhereIn(field string, values []any) *Builder {
	if len(values) == 0 {
		return b
	}
	marks := strings.TrimSuffix(strings.Repeat("?, ", len(values)), ", ")
	return b.add(b.projection.Column(field)+" IN ("+marks+")", values...)
}

// WhereRange bounds field inclusively. A nil bound is skipped, so passing two
// nils adds nothing.
func (b *Builder) WhereRange(field string, from, to any) *Builder {
	col := b.projection.Column(field)
	if !isNil(from) {
		b.add(col+" >= ?", from)
	}
	if !isNil(to) {
		b.add(col+" <= ?", to)
	}
	return b
}

// WhereSearch matches search as a substring of any of fields.
func (b *Builder) WhereSearch(search *string, fields ...string) *Builder {
	if search == nil || *search == "" || len(fields) == 0 {
		return b
	}

	pattern := "%" + *search + "%"
	terms := make([]string, len(fields))
	args := make([]any, len(fields))
	for i, field := range fields {
		terms[i] = b.projection.Column(field) + " ILIKE ?"
		args[i] = pattern
	}
	return b.add("("+strings.Join(terms, " OR ")+")", args...)
}

func (b *Builder) add(sql string, args ...any) *Builder {
	b.predicates = append(b.predicates, predicate{sql: sql, args: args})
	return b
}

func (b *Builder) selectFrom() string {
	return "SELECT " + b.projection.Columns() + " FROM " + b.projection.Table()
}

func (b *Builder) where() (string, []any) {
	if len(b.predicates) == 0 {
		return "", nil
	}

	var (
		sb   strings.Builder
		args []any
	)
	sb.WriteString(" WHERE ")
	for i, p := range b.predicates {
		if i > 0 {
			sb.WriteString(" AND ")
		}
		rest := p.sql
		for _, arg := range p.args {
			before, after, _ := strings.Cut(rest, "?")
			args = append(args, arg)
			sb.WriteString(before)
			sb.WriteString("$" + strconv.Itoa(len(args)))
			rest = after
		}
		sb.WriteString(rest)
	}
	return sb.String(), args
}

func (b *Builder) orderBy() string {
	fields := b.sort
	if len(fields) == 0 {
		fields = b.defaultSort
	}

	terms := make([]string, 0, len(fields))
	for _, f := range fields {
		if !b.projection.Has(f.Field) {
			continue
		}
		term := b.projection.Column(f.Field) + " ASC"
		if f.Descending {
			term = b.projection.Column(f.Field) + " DESC"
		}
		if f.NullsLast {
			term += " NULLS LAST"
		}
		terms = append(terms, term)
	}

	if len(terms) == 0 {
		return ""
	}
	return " ORDER BY " + strings.Join(terms, ", ")
}

func isNil(value any) bool {
	if value == nil {
		return true
	}
	switch v := reflect.ValueOf(value); v.Kind() {
	case reflect.Pointer, reflect.Map, reflect.Slice, reflect.Chan, reflect.Func, reflect.Interface:
		return v.IsNil()
	}
	return false
}
