// Package query builds parameterized PostgreSQL SELECT statements over a
// projected table.
package query

import "strings"

// Projection maps logical field names to alias-qualified columns of one table.
type Projection struct {
	table   string
	alias   string
	fields  map[string]string
	columns []string
}

// NewProjection starts a projection over table (optionally schema-qualified)
// under alias.
func NewProjection(table, alias string) *Projection {
	return &Projection{
		table:  table,
		alias:  alias,
		fields: make(map[string]string),
	}
}

// Field maps field to column. Columns are selected in registration order.
func (p *Projection) Field(column, field string) *Projection {
	qualified := p.alias + "." + column
	p.fields[field] = qualified
	p.columns = append(p.columns, qualified)
	return p
}

// From returns the table reference with alias.
func (p *Projection) From() string {
	return p.table + " " + p.alias
}

// Column returns the qualified column for field and whether it is mapped.
func (p *Projection) Column(field string) (string, bool) {
	col, ok := p.fields[field]
	return col, ok
}

// Columns returns the select list.
func (p *Projection) Columns() string {
	return strings.Join(p.columns, ", ")
}
