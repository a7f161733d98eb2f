// Package schema composes the discovery operations into whole-catalog
// snapshots that can be encoded as YAML or JSON and published to object
// storage.
package schema

import (
	"context"
	"time"

	"github.com/koustreak/pgdiscovery/internal/database"
	"github.com/koustreak/pgdiscovery/internal/discovery"
	"github.com/koustreak/pgdiscovery/internal/errs"
	"github.com/koustreak/pgdiscovery/internal/logger"
	"golang.org/x/sync/errgroup"
)

// Reader is the interface for inspecting a catalog.
type Reader interface {
	// InspectTable returns columns and keys for one table. An empty owner
	// means the session's current schema.
	InspectTable(ctx context.Context, owner, table string) (*Relation, error)

	// InspectSchema returns every relation in the scope opts selects.
	InspectSchema(ctx context.Context, opts *discovery.Options) (*Snapshot, error)
}

// DefaultConcurrency bounds how many relations are inspected at once.
const DefaultConcurrency = 4

// Inspector implements Reader on top of a discovery.SchemaDiscoverer.
type Inspector struct {
	d           discovery.SchemaDiscoverer
	log         *logger.Logger
	concurrency int
	now         func() time.Time
}

var _ Reader = (*Inspector)(nil)

// Option configures an Inspector.
type Option func(*Inspector)

// WithLogger sets the inspector's logger.
func WithLogger(l *logger.Logger) Option {
	return func(i *Inspector) {
		if l != nil {
			i.log = l
		}
	}
}

// WithConcurrency sets how many relations are inspected in parallel.
// Values below 1 are ignored.
func WithConcurrency(n int) Option {
	return func(i *Inspector) {
		if n > 0 {
			i.concurrency = n
		}
	}
}

// NewInspector returns an Inspector reading through d.
func NewInspector(d discovery.SchemaDiscoverer, opts ...Option) *Inspector {
	i := &Inspector{
		d:           d,
		log:         logger.Nop(),
		concurrency: DefaultConcurrency,
		now:         time.Now,
	}
	for _, opt := range opts {
		opt(i)
	}
	return i
}

// Inspect is a convenience for NewInspector(d).InspectSchema(ctx, opts).
func Inspect(ctx context.Context, d discovery.SchemaDiscoverer, opts *discovery.Options) (*Snapshot, error) {
	return NewInspector(d).InspectSchema(ctx, opts)
}

// InspectTable returns full details for a single table. It fails with
// NotFound when the catalog reports no columns for it. An empty owner is
// resolved from the columns before any key lookup, so keys never come from
// a same-named table in another schema.
func (i *Inspector) InspectTable(ctx context.Context, owner, table string) (*Relation, error) {
	rel := &Relation{Name: table, Owner: owner}
	if err := i.fillColumns(ctx, rel); err != nil {
		return nil, err
	}
	if len(rel.Columns) == 0 {
		if owner == "" {
			return nil, errs.Newf(errs.ErrKindNotFound, "table %s not found or has no columns", table)
		}
		return nil, errs.Newf(errs.ErrKindNotFound, "table %s.%s not found or has no columns", owner, table)
	}
	rel.Owner = rel.Columns[0].Owner

	if err := i.fillKeys(ctx, rel); err != nil {
		return nil, err
	}
	return rel, nil
}

// InspectSchema lists the relations opts selects, then inspects each one.
// Paging options apply to the relation listing.
func (i *Inspector) InspectSchema(ctx context.Context, opts *discovery.Options) (*Snapshot, error) {
	defs, err := i.d.DiscoverModelDefinitions(ctx, opts)
	if err != nil {
		return nil, err
	}

	snap := &Snapshot{
		Owner:     opts.OwnerName(),
		All:       opts != nil && opts.All && opts.OwnerName() == "",
		TakenAt:   i.now().UTC(),
		Relations: make([]Relation, len(defs)),
	}
	if dd, ok := i.d.(interface{ Dialect() database.Dialect }); ok {
		snap.Dialect = dd.Dialect().String()
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(i.concurrency)
	for idx, def := range defs {
		def := def // per-iteration copy; module targets go 1.21 loop semantics
		snap.Relations[idx] = Relation{Type: def.Type, Name: def.Name, Owner: def.Owner}
		rel := &snap.Relations[idx]
		g.Go(func() error {
			if err := i.fillColumns(gctx, rel); err != nil {
				return err
			}
			if def.Type == discovery.RelationView {
				return nil
			}
			return i.fillKeys(gctx, rel)
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	i.log.InfoWith("schema inspected", map[string]any{
		"dialect":   snap.Dialect,
		"owner":     snap.Owner,
		"relations": len(snap.Relations),
	})
	return snap, nil
}

// fillColumns reads rel's columns and resets its keys to empty slices.
// Views keep the empty keys.
func (i *Inspector) fillColumns(ctx context.Context, rel *Relation) error {
	var err error
	rel.Columns, err = i.d.DiscoverModelProperties(ctx, rel.Name, &discovery.Options{Owner: rel.Owner})
	if err != nil {
		return err
	}

	rel.PrimaryKeys = []discovery.PrimaryKeyDescriptor{}
	rel.ForeignKeys = []discovery.ForeignKeyDescriptor{}
	rel.ExportedForeignKeys = []discovery.ForeignKeyDescriptor{}
	return nil
}

// fillKeys reads rel's primary, foreign and exported keys scoped to
// rel.Owner, which must already be resolved.
func (i *Inspector) fillKeys(ctx context.Context, rel *Relation) error {
	opts := &discovery.Options{Owner: rel.Owner}

	var err error
	if rel.PrimaryKeys, err = i.d.DiscoverPrimaryKeys(ctx, rel.Name, opts); err != nil {
		return err
	}
	if rel.ForeignKeys, err = i.d.DiscoverForeignKeys(ctx, rel.Name, opts); err != nil {
		return err
	}
	if rel.ExportedForeignKeys, err = i.d.DiscoverExportedForeignKeys(ctx, rel.Name, opts); err != nil {
		return err
	}

	i.log.DebugWith("relation inspected", map[string]any{
		"owner":   rel.Owner,
		"name":    rel.Name,
		"columns": len(rel.Columns),
	})
	return nil
}
