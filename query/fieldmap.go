// Package query builds the dynamic parts of SQL statements: SET lists for
// partial updates and WHERE predicates for filtered listings. Everything here
// is pure; values never enter statement text and every identifier that does
// is quoted.
package query

import "strings"

// FieldMap translates logical (API-facing) field names into physical column
// names. Fields without an entry map to themselves.
type FieldMap map[string]string

// Column returns the physical column for field.
func (m FieldMap) Column(field string) string {
	if col, ok := m[field]; ok {
		return col
	}
	return field
}

// Field is the inverse of Column.
func (m FieldMap) Field(column string) string {
	for field, col := range m {
		if col == column {
			return field
		}
	}
	return column
}

// SelectList renders fields as a projection whose result columns carry the
// logical names, e.g. `"num_employees" AS "numEmployees"`.
func (m FieldMap) SelectList(fields ...string) string {
	parts := make([]string, len(fields))
	for i, f := range fields {
		col := m.Column(f)
		if col == f {
			parts[i] = QuoteIdent(col)
			continue
		}
		parts[i] = QuoteIdent(col) + " AS " + QuoteIdent(f)
	}
	return strings.Join(parts, ", ")
}

// QuoteIdent double-quotes an identifier, doubling embedded quotes.
func QuoteIdent(name string) string {
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}
