package schema

import (
	"context"
	"testing"
	"time"

	"github.com/koustreak/pgdiscovery/internal/discovery"
	"github.com/koustreak/pgdiscovery/internal/errs"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func shopCatalog() *fakeDiscoverer {
	return &fakeDiscoverer{
		defs: []discovery.TableDescriptor{
			{Type: discovery.RelationTable, Name: "orders", Owner: "public"},
			{Type: discovery.RelationTable, Name: "order_items", Owner: "public"},
			{Type: discovery.RelationView, Name: "open_orders", Owner: "public"},
		},
		columns: map[string][]discovery.ColumnDescriptor{
			"orders": {
				{Owner: "public", TableName: "orders", ColumnName: "id", DataType: "integer", Type: discovery.TypeNumber},
			},
			"order_items": {
				{Owner: "public", TableName: "order_items", ColumnName: "order_id", DataType: "integer", Type: discovery.TypeNumber},
			},
			"open_orders": {
				{Owner: "public", TableName: "open_orders", ColumnName: "id", DataType: "integer", Type: discovery.TypeNumber},
			},
		},
		pks: map[string][]discovery.PrimaryKeyDescriptor{
			"orders": {{Owner: "public", TableName: "orders", ColumnName: "id", KeySeq: 1, PKName: "orders_pkey"}},
		},
		fks: map[string][]discovery.ForeignKeyDescriptor{
			"order_items": {{
				FKOwner: "public", FKName: "items_order_fk", FKTableName: "order_items", FKColumnName: "order_id", KeySeq: 1,
				PKOwner: "public", PKName: "orders_pkey", PKTableName: "orders", PKColumnName: "id",
			}},
		},
	}
}

func TestInspectSchema(t *testing.T) {
	fd := shopCatalog()
	fixed := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	i := NewInspector(fd, WithConcurrency(2))
	i.now = func() time.Time { return fixed }

	snap, err := i.InspectSchema(context.Background(), &discovery.Options{Owner: "public", Views: true})
	require.NoError(t, err)

	assert.Equal(t, "postgres", snap.Dialect)
	assert.Equal(t, "public", snap.Owner)
	assert.False(t, snap.All)
	assert.Equal(t, fixed, snap.TakenAt)

	require.Len(t, snap.Relations, 3)
	assert.Equal(t, []string{"orders", "order_items", "open_orders"},
		[]string{snap.Relations[0].Name, snap.Relations[1].Name, snap.Relations[2].Name})

	orders := snap.Relation("public", "orders")
	require.NotNil(t, orders)
	assert.Len(t, orders.PrimaryKeys, 1)
	assert.Empty(t, orders.ForeignKeys)
	require.Len(t, orders.ExportedForeignKeys, 1)
	assert.Equal(t, "order_items", orders.ExportedForeignKeys[0].FKTableName)

	items := snap.Relation("", "order_items")
	require.NotNil(t, items)
	assert.Len(t, items.ForeignKeys, 1)
	assert.NotNil(t, items.PrimaryKeys)

	view := snap.Relation("public", "open_orders")
	require.NotNil(t, view)
	assert.Equal(t, discovery.RelationView, view.Type)
	assert.Len(t, view.Columns, 1)
	assert.NotNil(t, view.PrimaryKeys)
	assert.Empty(t, view.PrimaryKeys)

	assert.Equal(t, []string{"order_items", "orders"}, fd.called("pks"), "views skip key lookups")
	assert.Equal(t, []string{"open_orders", "order_items", "orders"}, fd.called("columns"))
	assert.Nil(t, snap.Relation("public", "missing"))
}

func TestInspectSchema_AllScope(t *testing.T) {
	snap, err := Inspect(context.Background(), shopCatalog(), &discovery.Options{All: true})
	require.NoError(t, err)
	assert.True(t, snap.All)
	assert.Equal(t, "", snap.Owner)
}

func TestInspectSchema_ErrorAbortsSnapshot(t *testing.T) {
	fd := shopCatalog()
	fd.failOn = "fks:order_items"

	snap, err := NewInspector(fd).InspectSchema(context.Background(), nil)
	require.Error(t, err)
	assert.Nil(t, snap)
	assert.True(t, errs.IsQueryFailed(err))
}

func TestInspectSchema_DefinitionsError(t *testing.T) {
	fd := shopCatalog()
	fd.failOn = "defs:"

	_, err := NewInspector(fd).InspectSchema(context.Background(), nil)
	require.Error(t, err)
	assert.Empty(t, fd.called("columns"))
}

func TestInspectTable(t *testing.T) {
	fd := shopCatalog()

	rel, err := NewInspector(fd).InspectTable(context.Background(), "", "orders")
	require.NoError(t, err)
	assert.Equal(t, "public", rel.Owner, "owner is taken from the catalog")
	assert.Equal(t, "orders", rel.Name)
	assert.Len(t, rel.Columns, 1)
	assert.Len(t, rel.PrimaryKeys, 1)
	assert.Len(t, rel.ExportedForeignKeys, 1)
}

func TestInspectTable_NotFound(t *testing.T) {
	_, err := NewInspector(shopCatalog()).InspectTable(context.Background(), "public", "missing")
	require.Error(t, err)
	assert.True(t, errs.IsNotFound(err))
	assert.Contains(t, err.Error(), "public.missing")
}

func TestInspectTable_KeysUseResolvedOwner(t *testing.T) {
	fd := shopCatalog()

	rel, err := NewInspector(fd).InspectTable(context.Background(), "", "orders")
	require.NoError(t, err)
	require.Equal(t, "public", rel.Owner)

	owner, ok := fd.ownerOf("columns", "orders")
	require.True(t, ok)
	assert.Equal(t, "", owner, "columns are read from the current schema")

	for _, op := range []string{"pks", "fks", "exported"} {
		owner, ok := fd.ownerOf(op, "orders")
		require.True(t, ok, op)
		assert.Equal(t, "public", owner, op)
	}
}

func TestInspectTable_NoKeyLookupsWhenMissing(t *testing.T) {
	fd := shopCatalog()

	_, err := NewInspector(fd).InspectTable(context.Background(), "", "missing")
	require.Error(t, err)
	assert.True(t, errs.IsNotFound(err))
	assert.Empty(t, fd.called("pks"))
	assert.Empty(t, fd.called("fks"))
	assert.Empty(t, fd.called("exported"))
}
