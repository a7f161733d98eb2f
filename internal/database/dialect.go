package database

import "fmt"

// Dialect selects the information_schema flavour and the placeholder style
// used when building catalog queries.
type Dialect int

const (
	// DialectPostgres uses $1, $2, … placeholders and PostgreSQL's
	// constraint tables.
	DialectPostgres Dialect = iota

	// DialectMySQL uses ? placeholders and MySQL's key_column_usage
	// extensions (referenced_table_name, …).
	DialectMySQL
)

func (d Dialect) String() string {
	switch d {
	case DialectPostgres:
		return "postgres"
	case DialectMySQL:
		return "mysql"
	default:
		return fmt.Sprintf("dialect(%d)", int(d))
	}
}

// Placeholder returns the bind parameter marker for the idx-th argument (1-based).
func (d Dialect) Placeholder(idx int) string {
	if d == DialectMySQL {
		return "?"
	}
	return fmt.Sprintf("$%d", idx)
}

// MaxIdentifierLength is the longest table or schema name the catalog can hold,
// in bytes.
func (d Dialect) MaxIdentifierLength() int {
	if d == DialectMySQL {
		return 64
	}
	return 63 // NAMEDATALEN - 1
}

// CurrentSchemaExpr is the SQL expression naming the session's default schema.
func (d Dialect) CurrentSchemaExpr() string {
	if d == DialectMySQL {
		return "DATABASE()"
	}
	return "current_schema()"
}
