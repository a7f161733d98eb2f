package discovery

import (
	"github.com/koustreak/pgdiscovery/internal/database"
)

// Query is a catalog statement plus its bound arguments.
type Query struct {
	SQL  string
	Args []any
}

// Postgres reports catalog columns through information_schema domains
// (sql_identifier, cardinal_number, yes_or_no). They are cast to plain types
// so both drivers scan them into string / int64 destinations.
func text(d database.Dialect, expr string) string {
	if d == database.DialectPostgres {
		return expr + "::text"
	}
	return expr
}

func integer(d database.Dialect, expr string) string {
	if d == database.DialectPostgres {
		return expr + "::bigint"
	}
	return expr
}

func build(d database.Dialect, b *database.SelectBuilder, orderBy string, opts *Options) (Query, error) {
	sql, args, err := b.Build()
	if err != nil {
		return Query{}, err
	}
	return Query{SQL: paginateFor(d, sql, orderBy, opts), Args: args}, nil
}

// queryRelations lists base tables (source information_schema.tables) or
// views (information_schema.views) in one of three scopes: every schema,
// one owner, or the session's current schema.
func queryRelations(d database.Dialect, kind, source string, opts *Options) (Query, error) {
	owner := opts.OwnerName()

	b := database.Select(source, d).
		Field("'"+kind+"'", "type").
		Field(text(d, "table_name"), "name")

	if kind == RelationTable {
		b.WhereRaw("table_type = 'BASE TABLE'")
	}

	switch {
	case opts != nil && opts.All && owner == "":
		b.Field(text(d, "table_schema"), "owner")
		return build(d, b, "table_schema, table_name", opts)
	case owner != "":
		b.Field(text(d, "table_schema"), "owner").
			Where("table_schema", "=", owner)
		return build(d, b, "table_schema, table_name", opts)
	default:
		b.Field(text(d, d.CurrentSchemaExpr()), "owner").
			WhereRaw("table_schema = " + d.CurrentSchemaExpr())
		return build(d, b, "table_name", opts)
	}
}

// queryTables builds the table listing for DiscoverModelDefinitions.
func queryTables(d database.Dialect, opts *Options) (Query, error) {
	return queryRelations(d, RelationTable, "information_schema.tables", opts)
}

// queryViews builds the view listing. ok is false when opts does not ask for
// views, in which case no statement is built.
func queryViews(d database.Dialect, opts *Options) (q Query, ok bool, err error) {
	if opts == nil || !opts.Views {
		return Query{}, false, nil
	}
	q, err = queryRelations(d, RelationView, "information_schema.views", opts)
	return q, err == nil, err
}

// lengthExpr is the catalog length reported as dataLength. Postgres gives
// the worst-case encoded size as the octet length of a fixed-width
// character column (4 for char(1) under UTF8), so the declared length is
// used for that family.
func lengthExpr(d database.Dialect) string {
	if d == database.DialectPostgres {
		return "(CASE WHEN data_type = 'character' THEN character_maximum_length ELSE character_octet_length END)"
	}
	return "character_octet_length"
}

// queryColumns selects one row per (table, column), ordered by table name
// and ordinal position. Without an owner the session's current schema is
// both the reported owner and the filter.
func queryColumns(d database.Dialect, owner, table string) (Query, error) {
	ownerExpr := "table_schema"
	if owner == "" {
		ownerExpr = d.CurrentSchemaExpr()
	}

	b := database.Select("information_schema.columns", d).
		Field(text(d, ownerExpr), "owner").
		Field(text(d, "table_name"), "tableName").
		Field(text(d, "column_name"), "columnName").
		Field(text(d, "data_type"), "dataType").
		Field(integer(d, lengthExpr(d)), "dataLength").
		Field(integer(d, "numeric_precision"), "dataPrecision").
		Field(integer(d, "numeric_scale"), "dataScale").
		Field(text(d, "is_nullable"), "nullable")

	if owner != "" {
		b.Where("table_schema", "=", owner)
	} else {
		b.WhereRaw("table_schema = " + d.CurrentSchemaExpr())
	}
	if table != "" {
		b.Where("table_name", "=", table)
	}

	return build(d, b, "table_name, ordinal_position", nil)
}

// queryPrimaryKeys selects primary key columns ordered by
// (schema, constraint, table, position).
func queryPrimaryKeys(d database.Dialect, owner, table string) (Query, error) {
	b := database.Select("information_schema.key_column_usage kcu", d).
		Field(text(d, "kcu.table_schema"), "owner").
		Field(text(d, "kcu.table_name"), "tableName").
		Field(text(d, "kcu.column_name"), "columnName").
		Field(integer(d, "kcu.ordinal_position"), "keySeq").
		Field(text(d, "kcu.constraint_name"), "pkName")

	if d == database.DialectMySQL {
		b.WhereRaw("kcu.constraint_name = 'PRIMARY'")
	} else {
		b.Join("JOIN information_schema.table_constraints tc" +
			" ON tc.constraint_schema = kcu.constraint_schema" +
			" AND tc.constraint_name = kcu.constraint_name" +
			" AND tc.table_name = kcu.table_name").
			WhereRaw("tc.constraint_type = 'PRIMARY KEY'")
	}

	if owner != "" {
		b.Where("kcu.table_schema", "=", owner)
	}
	if table != "" {
		b.Where("kcu.table_name", "=", table)
	}

	return build(d, b, "kcu.table_schema, kcu.constraint_name, kcu.table_name, kcu.ordinal_position", nil)
}

// foreignKeySelect is the select list and joins shared by the foreign key and
// exported foreign key builders. The referenced side is aliased pk on
// postgres; on mysql it lives in the referenced_* columns of kcu itself.
func foreignKeySelect(d database.Dialect, mysqlPKName string) *database.SelectBuilder {
	b := database.Select("information_schema.key_column_usage kcu", d).
		Field(text(d, "kcu.table_schema"), "fkOwner").
		Field(text(d, "kcu.constraint_name"), "fkName").
		Field(text(d, "kcu.table_name"), "fkTableName").
		Field(text(d, "kcu.column_name"), "fkColumnName").
		Field(integer(d, "kcu.ordinal_position"), "keySeq")

	if d == database.DialectMySQL {
		b.Field("kcu.referenced_table_schema", "pkOwner").
			Field(mysqlPKName, "pkName").
			Field("kcu.referenced_table_name", "pkTableName").
			Field("kcu.referenced_column_name", "pkColumnName")
	} else {
		b.Field(text(d, "pk.table_schema"), "pkOwner").
			Field(text(d, "pk.constraint_name"), "pkName").
			Field(text(d, "pk.table_name"), "pkTableName").
			Field(text(d, "pk.column_name"), "pkColumnName").
			Join("JOIN information_schema.referential_constraints rc" +
				" ON rc.constraint_schema = kcu.constraint_schema" +
				" AND rc.constraint_name = kcu.constraint_name").
			Join("JOIN information_schema.key_column_usage pk" +
				" ON pk.constraint_schema = rc.unique_constraint_schema" +
				" AND pk.constraint_name = rc.unique_constraint_name" +
				" AND pk.ordinal_position = kcu.position_in_unique_constraint")
	}

	return b.WhereRaw("kcu.position_in_unique_constraint IS NOT NULL")
}

// referenced returns the column holding the referenced schema / table name.
func referenced(d database.Dialect, what string) string {
	if d == database.DialectMySQL {
		return "kcu.referenced_table_" + what
	}
	return "pk.table_" + what
}

// queryForeignKeys selects the foreign keys declared on owner.table (the
// local side), ordered by (fk schema, fk table, constraint, position).
func queryForeignKeys(d database.Dialect, owner, table string) (Query, error) {
	b := foreignKeySelect(d, "'PRIMARY'")
	if d == database.DialectMySQL {
		b.WhereRaw("kcu.constraint_name != 'PRIMARY'")
	}

	if owner != "" {
		b.Where("kcu.table_schema", "=", owner)
	}
	if table != "" {
		b.Where("kcu.table_name", "=", table)
	}

	return build(d, b, "kcu.table_schema, kcu.table_name, kcu.constraint_name, kcu.ordinal_position", nil)
}

// queryExportedForeignKeys selects the foreign keys of other tables that
// point into owner.table (the referenced side), ordered by referenced schema
// and table, then by the referencing key and its position.
func queryExportedForeignKeys(d database.Dialect, owner, table string) (Query, error) {
	b := foreignKeySelect(d, "NULL")

	if owner != "" {
		b.Where(referenced(d, "schema"), "=", owner)
	}
	if table != "" {
		b.Where(referenced(d, "name"), "=", table)
	}

	orderBy := referenced(d, "schema") + ", " + referenced(d, "name") +
		", kcu.table_schema, kcu.table_name, kcu.constraint_name, kcu.ordinal_position"
	return build(d, b, orderBy, nil)
}
