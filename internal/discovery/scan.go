package discovery

import (
	"context"

	"github.com/koustreak/pgdiscovery/internal/database"
)

// collect runs q and scans every row with scan. Driver errors are returned
// unchanged; the result is never nil on success.
func collect[T any](ctx context.Context, d *Discoverer, op string, q Query, scan func(database.Rows) (T, error)) ([]T, error) {
	d.log.DebugWith("catalog query", map[string]any{
		"op":   op,
		"sql":  q.SQL,
		"args": len(q.Args),
	})

	rows, err := d.db.Query(ctx, q.SQL, q.Args...)
	if err != nil {
		d.log.ErrorWith("catalog query failed", err, map[string]any{"op": op})
		return nil, err
	}
	defer rows.Close()

	out := make([]T, 0)
	for rows.Next() {
		v, err := scan(rows)
		if err != nil {
			d.log.ErrorWith("catalog row scan failed", err, map[string]any{"op": op})
			return nil, err
		}
		out = append(out, v)
	}
	if err := rows.Err(); err != nil {
		d.log.ErrorWith("catalog row iteration failed", err, map[string]any{"op": op})
		return nil, err
	}

	d.log.DebugWith("catalog query done", map[string]any{"op": op, "rows": len(out)})
	return out, nil
}

func scanTable(rows database.Rows) (TableDescriptor, error) {
	var t TableDescriptor
	err := rows.Scan(&t.Type, &t.Name, &t.Owner)
	return t, err
}

func scanColumn(rows database.Rows) (ColumnDescriptor, error) {
	var c ColumnDescriptor
	var nullable string
	err := rows.Scan(
		&c.Owner,
		&c.TableName,
		&c.ColumnName,
		&c.DataType,
		&c.DataLength,
		&c.DataPrecision,
		&c.DataScale,
		&nullable,
	)
	c.Nullable = nullable == "YES"
	return c, err
}

func scanPrimaryKey(rows database.Rows) (PrimaryKeyDescriptor, error) {
	var pk PrimaryKeyDescriptor
	err := rows.Scan(&pk.Owner, &pk.TableName, &pk.ColumnName, &pk.KeySeq, &pk.PKName)
	return pk, err
}

func scanForeignKey(rows database.Rows) (ForeignKeyDescriptor, error) {
	var fk ForeignKeyDescriptor
	var pkName *string
	err := rows.Scan(
		&fk.FKOwner,
		&fk.FKName,
		&fk.FKTableName,
		&fk.FKColumnName,
		&fk.KeySeq,
		&fk.PKOwner,
		&pkName,
		&fk.PKTableName,
		&fk.PKColumnName,
	)
	if pkName != nil {
		fk.PKName = *pkName
	}
	return fk, err
}
