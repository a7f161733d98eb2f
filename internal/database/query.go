package database

import (
	"strings"

	"github.com/koustreak/pgdiscovery/internal/errs"
)

// validOps is the allowlist of comparison operators for WHERE clauses.
// The operator position cannot be parameterized, so anything else is rejected.
var validOps = map[string]bool{
	"=":     true,
	"!=":    true,
	"<>":    true,
	"<":     true,
	">":     true,
	"<=":    true,
	">=":    true,
	"LIKE":  true,
	"ILIKE": true,
}

// SelectBuilder constructs a parameterized catalog SELECT.
//
// Field expressions, the FROM source, joins and raw predicates are SQL text
// owned by the calling code; they must never carry caller input. Values
// passed to Where are always bound as arguments.
//
// Usage (Postgres):
//
//	sql, args, err := Select("information_schema.tables", DialectPostgres).
//	    Field("table_name", "name").
//	    Field("table_schema", "owner").
//	    Where("table_schema", "=", owner).
//	    Build()
type SelectBuilder struct {
	from    string
	dialect Dialect
	fields  []field
	joins   []string
	where   []whereClause
}

type field struct {
	expr  string
	alias string
}

type whereClause struct {
	column string
	op     string
	value  any
	raw    bool
}

// Select starts a new SelectBuilder reading from the given source.
func Select(from string, d Dialect) *SelectBuilder {
	return &SelectBuilder{from: from, dialect: d}
}

// Field appends expr to the select list. A non-empty alias is emitted as a
// double-quoted identifier so mixed-case names survive.
func (b *SelectBuilder) Field(expr, alias string) *SelectBuilder {
	b.fields = append(b.fields, field{expr: expr, alias: alias})
	return b
}

// Join appends a join clause verbatim, e.g.
// "JOIN information_schema.table_constraints tc ON tc.constraint_name = kcu.constraint_name".
func (b *SelectBuilder) Join(clause string) *SelectBuilder {
	b.joins = append(b.joins, clause)
	return b
}

// Where adds a bound WHERE condition. op must be one of the allowed comparison
// operators (=, !=, <>, <, >, <=, >=, LIKE, ILIKE).
// Multiple conditions are combined with AND in the order they were added.
func (b *SelectBuilder) Where(column, op string, value any) *SelectBuilder {
	b.where = append(b.where, whereClause{column: column, op: op, value: value})
	return b
}

// WhereRaw adds a fixed predicate that takes no arguments, such as
// "tc.constraint_type = 'PRIMARY KEY'".
func (b *SelectBuilder) WhereRaw(cond string) *SelectBuilder {
	b.where = append(b.where, whereClause{column: cond, raw: true})
	return b
}

// Build produces the final SQL string and argument slice.
// Returns an InvalidArgument error if the select list is empty or a WHERE
// operator is not in the allowlist.
func (b *SelectBuilder) Build() (string, []any, error) {
	if len(b.fields) == 0 {
		return "", nil, errs.New(errs.ErrKindInvalidArgument, "select list is empty")
	}

	var sb strings.Builder
	sb.WriteString("SELECT ")
	for i, f := range b.fields {
		if i > 0 {
			sb.WriteString(", ")
		}
		sb.WriteString(f.expr)
		if f.alias != "" {
			sb.WriteString(" AS ")
			sb.WriteString(quoteIdent(f.alias))
		}
	}
	sb.WriteString(" FROM ")
	sb.WriteString(b.from)

	for _, j := range b.joins {
		sb.WriteString(" ")
		sb.WriteString(j)
	}

	var args []any
	argIdx := 1

	if len(b.where) > 0 {
		parts := make([]string, 0, len(b.where))
		for _, w := range b.where {
			if w.raw {
				parts = append(parts, w.column)
				continue
			}
			op := strings.ToUpper(w.op)
			if !validOps[op] {
				return "", nil, errs.Newf(errs.ErrKindInvalidArgument, "unsupported WHERE operator: %q", w.op)
			}
			parts = append(parts, w.column+" "+op+" "+b.dialect.Placeholder(argIdx))
			args = append(args, w.value)
			argIdx++
		}
		sb.WriteString(" WHERE ")
		sb.WriteString(strings.Join(parts, " AND "))
	}

	return sb.String(), args, nil
}

// quoteIdent wraps a SQL identifier in double-quotes (ANSI standard).
// MySQL reads a double-quoted alias as a string-literal alias, which yields
// the same column label.
func quoteIdent(name string) string {
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}
