package discovery

import (
	"context"

	"github.com/koustreak/pgdiscovery/internal/errs"
)

// Callback receives the outcome of an asynchronous discovery call. Exactly
// one of rows or err is meaningful: on error rows is nil.
type Callback[T any] func(rows []T, err error)

// The *Async variants validate their arguments on the calling goroutine and
// return InvalidArgument errors directly, before any query is issued. Query
// errors are delivered to cb, which runs on a new goroutine.

func dispatch[T any](cb Callback[T], run func() ([]T, error)) {
	go func() {
		cb(run())
	}()
}

func checkCallback[T any](cb Callback[T]) error {
	if cb == nil {
		return errs.InvalidArgument("callback is required for asynchronous discovery")
	}
	return nil
}

// DiscoverModelDefinitionsAsync is DiscoverModelDefinitions delivering its
// result to cb.
func (d *Discoverer) DiscoverModelDefinitionsAsync(ctx context.Context, opts *Options, cb Callback[TableDescriptor]) error {
	if err := checkCallback(cb); err != nil {
		return err
	}
	opts, err := normalizeOptions(opts)
	if err != nil {
		return err
	}
	tablesQ, err := queryTables(d.dialect, opts)
	if err != nil {
		return err
	}
	viewsQ, withViews, err := queryViews(d.dialect, opts)
	if err != nil {
		return err
	}
	dispatch(cb, func() ([]TableDescriptor, error) {
		return d.modelDefinitions(ctx, tablesQ, viewsQ, withViews)
	})
	return nil
}

// DiscoverModelPropertiesAsync is DiscoverModelProperties delivering its
// result to cb.
func (d *Discoverer) DiscoverModelPropertiesAsync(ctx context.Context, table string, opts *Options, cb Callback[ColumnDescriptor]) error {
	if err := checkCallback(cb); err != nil {
		return err
	}
	a, err := normalizeArgs(d.dialect, table, opts)
	if err != nil {
		return err
	}
	dispatch(cb, func() ([]ColumnDescriptor, error) { return d.modelProperties(ctx, a) })
	return nil
}

// DiscoverPrimaryKeysAsync is DiscoverPrimaryKeys delivering its result to cb.
func (d *Discoverer) DiscoverPrimaryKeysAsync(ctx context.Context, table string, opts *Options, cb Callback[PrimaryKeyDescriptor]) error {
	if err := checkCallback(cb); err != nil {
		return err
	}
	a, err := normalizeArgs(d.dialect, table, opts)
	if err != nil {
		return err
	}
	dispatch(cb, func() ([]PrimaryKeyDescriptor, error) { return d.primaryKeys(ctx, a) })
	return nil
}

// DiscoverForeignKeysAsync is DiscoverForeignKeys delivering its result to cb.
func (d *Discoverer) DiscoverForeignKeysAsync(ctx context.Context, table string, opts *Options, cb Callback[ForeignKeyDescriptor]) error {
	if err := checkCallback(cb); err != nil {
		return err
	}
	a, err := normalizeArgs(d.dialect, table, opts)
	if err != nil {
		return err
	}
	dispatch(cb, func() ([]ForeignKeyDescriptor, error) { return d.foreignKeys(ctx, a) })
	return nil
}

// DiscoverExportedForeignKeysAsync is DiscoverExportedForeignKeys delivering
// its result to cb.
func (d *Discoverer) DiscoverExportedForeignKeysAsync(ctx context.Context, table string, opts *Options, cb Callback[ForeignKeyDescriptor]) error {
	if err := checkCallback(cb); err != nil {
		return err
	}
	a, err := normalizeArgs(d.dialect, table, opts)
	if err != nil {
		return err
	}
	dispatch(cb, func() ([]ForeignKeyDescriptor, error) { return d.exportedForeignKeys(ctx, a) })
	return nil
}
