package query

import (
	"fmt"
	"reflect"
	"strings"
)

// SortField orders results by a logical field.
type SortField struct {
	Field      string
	Descending bool
}

// ParseSortFields parses "field,-other" into sort fields; a leading "-" means
// descending.
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

type condition struct {
	// format holds one %s per arg, replaced with numbered placeholders.
	format string
	args   []any
}

// Builder accumulates conditions and ordering for one projection. Conditions
// are joined with AND. Unmapped field names are ignored so request input can
// never reach the SQL text.
type Builder struct {
	proj       *Projection
	conditions []condition
	sort       []SortField
	fallback   []SortField
}

// NewBuilder returns a builder ordering by fallback unless OrderBy is given
// fields.
func NewBuilder(proj *Projection, fallback ...SortField) *Builder {
	return &Builder{proj: proj, fallback: fallback}
}

// WhereEquals adds field = value. Nil values are skipped.
func (b *Builder) WhereEquals(field string, value any) *Builder {
	return b.where(field, "%s = %%s", value)
}

// WhereAtLeast adds field >= value. Nil values are skipped.
func (b *Builder) WhereAtLeast(field string, value any) *Builder {
	return b.where(field, "%s >= %%s", value)
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// WhereContains adds a case-insensitive substring match. LIKE wildcards in
// value match literally. Nil or empty values are skipped.
func (b *Builder) WhereContains(field string, value *string) *Builder {
	if value == nil || *value == "" {
		return b
	}
	return b.where(field, `%s ILIKE %%s ESCAPE '\'`, "%"+likeEscaper.Replace(*value)+"%")
}

// WhereHas adds field ? value, matching JSONB arrays that contain the string
// value. Nil values are skipped.
func (b *Builder) WhereHas(field string, value any) *Builder {
	return b.where(field, "%s ? %%s", value)
}

func (b *Builder) where(field, format string, value any) *Builder {
	if isNil(value) {
		return b
	}
	col, ok := b.proj.Column(field)
	if !ok {
		return b
	}
	b.conditions = append(b.conditions, condition{
		format: fmt.Sprintf(format, col),
		args:   []any{value},
	})
	return b
}

// OrderBy replaces the fallback ordering. Unmapped fields are dropped.
func (b *Builder) OrderBy(fields []SortField) *Builder {
	b.sort = fields
	return b
}

// Build returns the full SELECT.
func (b *Builder) Build() (string, []any) {
	where, args := b.whereClause()
	return fmt.Sprintf("SELECT %s FROM %s%s%s",
		b.proj.Columns(), b.proj.From(), where, b.orderClause()), args
}

// BuildCount returns SELECT COUNT(*) under the same conditions.
func (b *Builder) BuildCount() (string, []any) {
	where, args := b.whereClause()
	return fmt.Sprintf("SELECT COUNT(*) FROM %s%s", b.proj.From(), where), args
}

// BuildAggregate returns SELECT columns under the same conditions. join is
// appended to the FROM clause and tail (GROUP BY, ORDER BY, LIMIT) after the
// WHERE clause. Both are fixed SQL supplied by the caller, never request input.
func (b *Builder) BuildAggregate(columns, join, tail string) (string, []any) {
	where, args := b.whereClause()
	q := fmt.Sprintf("SELECT %s FROM %s", columns, b.proj.From())
	if join != "" {
		q += " " + join
	}
	q += where
	if tail != "" {
		q += " " + tail
	}
	return q, args
}

// BuildPage returns the SELECT limited to one page. page is 1-based.
func (b *Builder) BuildPage(page, size int) (string, []any) {
	q, args := b.Build()
	return fmt.Sprintf("%s LIMIT %d OFFSET %d", q, size, (page-1)*size), args
}

// BuildSingle selects rows where field equals value, ignoring other conditions.
func (b *Builder) BuildSingle(field string, value any) (string, []any) {
	col, ok := b.proj.Column(field)
	if !ok {
		col = field
	}
	return fmt.Sprintf("SELECT %s FROM %s WHERE %s = $1",
		b.proj.Columns(), b.proj.From(), col), []any{value}
}

func (b *Builder) whereClause() (string, []any) {
	if len(b.conditions) == 0 {
		return "", nil
	}

	clauses := make([]string, len(b.conditions))
	var args []any
	for i, c := range b.conditions {
		placeholders := make([]any, len(c.args))
		for j := range c.args {
			placeholders[j] = fmt.Sprintf("$%d", len(args)+j+1)
		}
		clauses[i] = fmt.Sprintf(c.format, placeholders...)
		args = append(args, c.args...)
	}
	return " WHERE " + strings.Join(clauses, " AND "), args
}

func (b *Builder) orderClause() string {
	fields := b.sort
	if len(fields) == 0 {
		fields = b.fallback
	}

	var parts []string
	for _, f := range fields {
		col, ok := b.proj.Column(f.Field)
		if !ok {
			continue
		}
		dir := "ASC"
		if f.Descending {
			dir = "DESC"
		}
		parts = append(parts, col+" "+dir)
	}

	if len(parts) == 0 {
		return ""
	}
	return " ORDER BY " + strings.Join(parts, ", ")
}

func isNil(v any) bool {
	if v == nil {
		return true
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Pointer, reflect.Map, reflect.Slice, reflect.Interface:
		return rv.IsNil()
	}
	return false
}
