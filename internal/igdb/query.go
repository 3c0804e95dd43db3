package igdb

import (
	"fmt"
	"strings"
)

// QueryBuilder assembles APICalypse query strings for the catalog API.
// The zero value is ready to use.
type QueryBuilder struct {
	fields []string
	where  []string
	sort   string
	limit  int
	offset int
	search string

	hasLimit  bool
	hasOffset bool
}

// Select adds result fields. Empty names are ignored.
func (b *QueryBuilder) Select(fields ...string) *QueryBuilder {
	for _, f := range fields {
		if f != "" {
			b.fields = append(b.fields, f)
		}
	}
	return b
}

// Where adds a filter clause. Clauses are combined with &.
func (b *QueryBuilder) Where(clause string) *QueryBuilder {
	if clause != "" {
		b.where = append(b.where, clause)
	}
	return b
}

// Sort sets the sort field and direction ("asc" or "desc").
func (b *QueryBuilder) Sort(field, direction string) *QueryBuilder {
	if field != "" {
		b.sort = field + " " + direction
	}
	return b
}

// Limit sets the result limit. Negative values are ignored.
func (b *QueryBuilder) Limit(n int) *QueryBuilder {
	if n >= 0 {
		b.limit = n
		b.hasLimit = true
	}
	return b
}

// Offset sets the result offset. Negative values are ignored.
func (b *QueryBuilder) Offset(n int) *QueryBuilder {
	if n >= 0 {
		b.offset = n
		b.hasOffset = true
	}
	return b
}

// Search sets a full-text search term. Quotes in the term are escaped.
func (b *QueryBuilder) Search(term string) *QueryBuilder {
	if term != "" {
		b.search = term
	}
	return b
}

// Build renders the query in APICalypse syntax.
func (b *QueryBuilder) Build() string {
	var parts []string
	if len(b.fields) > 0 {
		parts = append(parts, "fields "+strings.Join(b.fields, ", ")+";")
	}
	if b.search != "" {
		parts = append(parts, `search "`+EscapeTerm(b.search)+`";`)
	}
	if len(b.where) > 0 {
		parts = append(parts, "where "+strings.Join(b.where, " & ")+";")
	}
	if b.sort != "" {
		parts = append(parts, "sort "+b.sort+";")
	}
	if b.hasLimit {
		parts = append(parts, fmt.Sprintf("limit %d;", b.limit))
	}
	if b.hasOffset {
		parts = append(parts, fmt.Sprintf("offset %d;", b.offset))
	}
	return strings.Join(parts, " ")
}

// EscapeTerm escapes double quotes for use inside quoted APICalypse values.
func EscapeTerm(term string) string {
	return strings.ReplaceAll(term, `"`, `\"`)
}
