// Package discovery reads schema metadata (tables, views, columns, primary
// keys, foreign keys) from an information_schema catalog.
//
// Every operation builds one parameterized catalog query, runs it through a
// database.DB and scans the rows into descriptor structs. Owner and table
// names are always bound arguments.
//
// Usage:
//
//	d := discovery.New(db, discovery.WithLogger(log))
//	tables, err := d.DiscoverModelDefinitions(ctx, &discovery.Options{Owner: "public", Views: true})
//	cols, err := d.DiscoverModelProperties(ctx, "orders", &discovery.Options{Owner: "public"})
package discovery

import (
	"context"

	"github.com/koustreak/pgdiscovery/internal/database"
	"github.com/koustreak/pgdiscovery/internal/logger"
	"golang.org/x/sync/errgroup"
)

// SchemaDiscoverer is the blocking discovery capability. *Discoverer
// implements it; consumers such as the schema inspector and the HTTP server
// depend on this interface only.
type SchemaDiscoverer interface {
	// DiscoverModelDefinitions lists tables, followed by views when
	// opts.Views is set.
	DiscoverModelDefinitions(ctx context.Context, opts *Options) ([]TableDescriptor, error)

	// DiscoverModelProperties lists the columns of table with their mapped
	// portable type.
	DiscoverModelProperties(ctx context.Context, table string, opts *Options) ([]ColumnDescriptor, error)

	// DiscoverPrimaryKeys lists the primary key columns of table.
	DiscoverPrimaryKeys(ctx context.Context, table string, opts *Options) ([]PrimaryKeyDescriptor, error)

	// DiscoverForeignKeys lists the foreign keys declared on table.
	DiscoverForeignKeys(ctx context.Context, table string, opts *Options) ([]ForeignKeyDescriptor, error)

	// DiscoverExportedForeignKeys lists the foreign keys of other tables that
	// reference table.
	DiscoverExportedForeignKeys(ctx context.Context, table string, opts *Options) ([]ForeignKeyDescriptor, error)
}

// Discoverer runs discovery queries against one catalog connection.
// It holds no mutable state and is safe for concurrent use.
type Discoverer struct {
	db      database.DB
	dialect database.Dialect
	log     *logger.Logger
}

var _ SchemaDiscoverer = (*Discoverer)(nil)

// Option configures a Discoverer.
type Option func(*Discoverer)

// WithLogger sets the logger used for query tracing. Defaults to logger.Nop().
func WithLogger(l *logger.Logger) Option {
	return func(d *Discoverer) {
		if l != nil {
			d.log = l
		}
	}
}

// New returns a Discoverer that executes through db in db's dialect.
func New(db database.DB, opts ...Option) *Discoverer {
	d := &Discoverer{
		db:      db,
		dialect: db.Dialect(),
		log:     logger.Nop(),
	}
	for _, opt := range opts {
		opt(d)
	}
	d.log = d.log.With().Str("component", "discovery").Str("dialect", d.dialect.String()).Logger()
	return d
}

// Dialect reports the catalog dialect queries are built for.
func (d *Discoverer) Dialect() database.Dialect {
	return d.dialect
}

// DiscoverModelDefinitions lists tables and, when opts.Views is set, views.
// The two queries run concurrently; tables always precede views in the result.
func (d *Discoverer) DiscoverModelDefinitions(ctx context.Context, opts *Options) ([]TableDescriptor, error) {
	opts, err := normalizeOptions(opts)
	if err != nil {
		return nil, err
	}
	tablesQ, err := queryTables(d.dialect, opts)
	if err != nil {
		return nil, err
	}
	viewsQ, withViews, err := queryViews(d.dialect, opts)
	if err != nil {
		return nil, err
	}
	return d.modelDefinitions(ctx, tablesQ, viewsQ, withViews)
}

func (d *Discoverer) modelDefinitions(ctx context.Context, tablesQ, viewsQ Query, withViews bool) ([]TableDescriptor, error) {
	var tables, views []TableDescriptor

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		tables, err = collect(gctx, d, "tables", tablesQ, scanTable)
		return err
	})
	if withViews {
		g.Go(func() error {
			var err error
			views, err = collect(gctx, d, "views", viewsQ, scanTable)
			return err
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	return append(tables, views...), nil
}

// DiscoverModelProperties lists the columns of table. Each row's Type is
// derived from DataType and DataLength by MapType.
func (d *Discoverer) DiscoverModelProperties(ctx context.Context, table string, opts *Options) ([]ColumnDescriptor, error) {
	a, err := normalizeArgs(d.dialect, table, opts)
	if err != nil {
		return nil, err
	}
	return d.modelProperties(ctx, a)
}

func (d *Discoverer) modelProperties(ctx context.Context, a args) ([]ColumnDescriptor, error) {
	q, err := queryColumns(d.dialect, a.owner, a.table)
	if err != nil {
		return nil, err
	}
	cols, err := collect(ctx, d, "columns", q, scanColumn)
	if err != nil {
		return nil, err
	}
	for i := range cols {
		var length int64
		if cols[i].DataLength != nil {
			length = *cols[i].DataLength
		}
		cols[i].Type = MapType(cols[i].DataType, length)
	}
	return cols, nil
}

// DiscoverPrimaryKeys lists the primary key columns of table.
func (d *Discoverer) DiscoverPrimaryKeys(ctx context.Context, table string, opts *Options) ([]PrimaryKeyDescriptor, error) {
	a, err := normalizeArgs(d.dialect, table, opts)
	if err != nil {
		return nil, err
	}
	return d.primaryKeys(ctx, a)
}

func (d *Discoverer) primaryKeys(ctx context.Context, a args) ([]PrimaryKeyDescriptor, error) {
	q, err := queryPrimaryKeys(d.dialect, a.owner, a.table)
	if err != nil {
		return nil, err
	}
	return collect(ctx, d, "primary_keys", q, scanPrimaryKey)
}

// DiscoverForeignKeys lists the foreign keys declared on table.
func (d *Discoverer) DiscoverForeignKeys(ctx context.Context, table string, opts *Options) ([]ForeignKeyDescriptor, error) {
	a, err := normalizeArgs(d.dialect, table, opts)
	if err != nil {
		return nil, err
	}
	return d.foreignKeys(ctx, a)
}

func (d *Discoverer) foreignKeys(ctx context.Context, a args) ([]ForeignKeyDescriptor, error) {
	q, err := queryForeignKeys(d.dialect, a.owner, a.table)
	if err != nil {
		return nil, err
	}
	return collect(ctx, d, "foreign_keys", q, scanForeignKey)
}

// DiscoverExportedForeignKeys lists the foreign keys that reference table.
func (d *Discoverer) DiscoverExportedForeignKeys(ctx context.Context, table string, opts *Options) ([]ForeignKeyDescriptor, error) {
	a, err := normalizeArgs(d.dialect, table, opts)
	if err != nil {
		return nil, err
	}
	return d.exportedForeignKeys(ctx, a)
}

func (d *Discoverer) exportedForeignKeys(ctx context.Context, a args) ([]ForeignKeyDescriptor, error) {
	q, err := queryExportedForeignKeys(d.dialect, a.owner, a.table)
	if err != nil {
		return nil, err
	}
	return collect(ctx, d, "exported_foreign_keys", q, scanForeignKey)
}
