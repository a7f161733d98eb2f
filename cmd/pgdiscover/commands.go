package main

import (
	"context"
	"flag"

	"github.com/koustreak/pgdiscovery/internal/database"
	"github.com/koustreak/pgdiscovery/internal/discovery"
	"github.com/koustreak/pgdiscovery/internal/server"
)

func init() {
	register(&command{name: "tables", usage: "list tables (and views with -views)", run: runTables})
	register(&command{name: "columns", usage: "list the columns of <table>", arg: "table",
		run: perTable(func(d *discovery.Discoverer) tableOp[discovery.ColumnDescriptor] { return d.DiscoverModelProperties })})
	register(&command{name: "pks", usage: "list the primary key columns of <table>", arg: "table",
		run: perTable(func(d *discovery.Discoverer) tableOp[discovery.PrimaryKeyDescriptor] { return d.DiscoverPrimaryKeys })})
	register(&command{name: "fks", usage: "list the foreign keys declared on <table>", arg: "table",
		run: perTable(func(d *discovery.Discoverer) tableOp[discovery.ForeignKeyDescriptor] { return d.DiscoverForeignKeys })})
	register(&command{name: "exported", usage: "list the foreign keys that reference <table>", arg: "table",
		run: perTable(func(d *discovery.Discoverer) tableOp[discovery.ForeignKeyDescriptor] { return d.DiscoverExportedForeignKeys })})
	register(&command{name: "inspect", usage: "print columns and keys of <table>", arg: "table", run: runInspect})
	register(&command{name: "snapshot", usage: "inspect a whole scope (-publish uploads it)", run: runSnapshot,
		flags: func(fs *flag.FlagSet, inv *invocation) {
			fs.BoolVar(&inv.publish, "publish", false, "upload the snapshot to the export bucket")
			fs.DurationVar(&inv.presign, "presign", 0, "print a download URL valid for this long after publishing")
		}})
	register(&command{name: "snapshots", usage: "list published snapshots", run: runSnapshots})
	register(&command{name: "fetch", usage: "download the published snapshot <key>", arg: "key", run: runFetch})
	register(&command{name: "ping", usage: "report the server version and session", run: runPing})
	register(&command{name: "serve", usage: "run the HTTP API", run: runServe})
}

type tableOp[T any] func(ctx context.Context, table string, opts *discovery.Options) ([]T, error)

// perTable adapts one per-table discovery method into a command.
func perTable[T any](pick func(*discovery.Discoverer) tableOp[T]) func(context.Context, *app, *invocation) error {
	return func(ctx context.Context, a *app, inv *invocation) error {
		d, err := a.discoverer(ctx)
		if err != nil {
			return err
		}
		ctx, cancel := a.queryContext(ctx)
		defer cancel()

		rows, err := pick(d)(ctx, inv.arg, &inv.opts)
		if err != nil {
			return err
		}
		return a.print(rows)
	}
}

func runTables(ctx context.Context, a *app, inv *invocation) error {
	d, err := a.discoverer(ctx)
	if err != nil {
		return err
	}
	ctx, cancel := a.queryContext(ctx)
	defer cancel()

	rows, err := d.DiscoverModelDefinitions(ctx, &inv.opts)
	if err != nil {
		return err
	}
	return a.print(rows)
}

func runInspect(ctx context.Context, a *app, inv *invocation) error {
	i, err := a.inspector(ctx)
	if err != nil {
		return err
	}
	ctx, cancel := a.queryContext(ctx)
	defer cancel()

	rel, err := i.InspectTable(ctx, inv.opts.OwnerName(), inv.arg)
	if err != nil {
		return err
	}
	return a.print(rel)
}

// publishResult is printed after a snapshot upload.
type publishResult struct {
	Bucket string `json:"bucket" yaml:"bucket"`
	Key    string `json:"key" yaml:"key"`
	Size   int64  `json:"size" yaml:"size"`
	URL    string `json:"url,omitempty" yaml:"url,omitempty"`
}

func runSnapshot(ctx context.Context, a *app, inv *invocation) error {
	i, err := a.inspector(ctx)
	if err != nil {
		return err
	}

	qctx, cancel := a.queryContext(ctx)
	defer cancel()
	snap, err := i.InspectSchema(qctx, &inv.opts)
	if err != nil {
		return err
	}

	if !inv.publish {
		return a.print(snap)
	}

	p, err := a.publisher(ctx)
	if err != nil {
		return err
	}
	info, err := p.Publish(ctx, snap, a.format)
	if err != nil {
		return err
	}
	a.log.InfoWith("snapshot published", map[string]any{
		"bucket": a.cfg.Export.Bucket,
		"key":    info.Key,
		"size":   info.Size,
	})

	res := publishResult{Bucket: a.cfg.Export.Bucket, Key: info.Key, Size: info.Size}
	if inv.presign > 0 {
		if res.URL, err = p.URL(ctx, info.Key, inv.presign); err != nil {
			return err
		}
	}
	return a.print(res)
}

func runSnapshots(ctx context.Context, a *app, inv *invocation) error {
	p, err := a.publisher(ctx)
	if err != nil {
		return err
	}
	objs, err := p.List(ctx, inv.opts.Limit)
	if err != nil {
		return err
	}
	return a.print(objs)
}

func runFetch(ctx context.Context, a *app, inv *invocation) error {
	p, err := a.publisher(ctx)
	if err != nil {
		return err
	}
	snap, err := p.Fetch(ctx, inv.arg)
	if err != nil {
		return err
	}
	return a.print(snap)
}

func runPing(ctx context.Context, a *app, _ *invocation) error {
	db, err := a.database(ctx)
	if err != nil {
		return err
	}
	ctx, cancel := a.queryContext(ctx)
	defer cancel()

	info, err := database.Info(ctx, db)
	if err != nil {
		return err
	}
	return a.print(info)
}

func runServe(ctx context.Context, a *app, _ *invocation) error {
	db, err := a.database(ctx)
	if err != nil {
		return err
	}
	d, err := a.discoverer(ctx)
	if err != nil {
		return err
	}
	i, err := a.inspector(ctx)
	if err != nil {
		return err
	}

	h := server.NewHandler(d, i, db,
		server.WithQueryTimeout(a.cfg.Database.QueryTimeout),
		server.WithHandlerLogger(a.log),
	)
	srv := server.New(&a.cfg.Server, server.NewRouter(h, a.log), a.log)
	return srv.Run(ctx)
}
