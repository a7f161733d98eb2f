package main

import (
	"context"
	"io"

	"github.com/koustreak/pgdiscovery/internal/config"
	"github.com/koustreak/pgdiscovery/internal/database"
	"github.com/koustreak/pgdiscovery/internal/database/mysql"
	"github.com/koustreak/pgdiscovery/internal/database/postgres"
	"github.com/koustreak/pgdiscovery/internal/discovery"
	"github.com/koustreak/pgdiscovery/internal/filestore"
	"github.com/koustreak/pgdiscovery/internal/filestore/minio"
	"github.com/koustreak/pgdiscovery/internal/logger"
	"github.com/koustreak/pgdiscovery/internal/schema"
)

// app holds the resources a command needs. Connections are opened on
// first use so commands that never touch the catalog never dial it.
type app struct {
	cfg    *config.Config
	log    *logger.Logger
	out    io.Writer
	format schema.Format

	db    database.DB
	store filestore.Store
}

func newApp(cfg *config.Config, stdout, stderr io.Writer, format schema.Format) *app {
	logCfg := cfg.Log
	logCfg.Output = stderr
	return &app{
		cfg:    cfg,
		log:    logger.New(&logCfg).With().Str("service", "pgdiscover").Logger(),
		out:    stdout,
		format: format,
	}
}

// connect opens the catalog connection for the configured driver.
func connect(ctx context.Context, cfg *database.Config) (database.DB, error) {
	switch cfg.Driver {
	case database.DriverMySQL:
		db, err := mysql.New(ctx, cfg)
		if err != nil {
			return nil, err
		}
		return db, nil
	default:
		db, err := postgres.New(ctx, cfg)
		if err != nil {
			return nil, err
		}
		return db, nil
	}
}

func (a *app) database(ctx context.Context) (database.DB, error) {
	if a.db != nil {
		return a.db, nil
	}
	db, err := connect(ctx, &a.cfg.Database)
	if err != nil {
		return nil, err
	}
	a.log.InfoWith("connected", map[string]any{"driver": string(a.cfg.Database.Driver)})
	a.db = db
	return db, nil
}

func (a *app) discoverer(ctx context.Context) (*discovery.Discoverer, error) {
	db, err := a.database(ctx)
	if err != nil {
		return nil, err
	}
	return discovery.New(db, discovery.WithLogger(a.log)), nil
}

func (a *app) inspector(ctx context.Context) (*schema.Inspector, error) {
	d, err := a.discoverer(ctx)
	if err != nil {
		return nil, err
	}
	return schema.NewInspector(d,
		schema.WithLogger(a.log),
		schema.WithConcurrency(a.cfg.Concurrency),
	), nil
}

func (a *app) publisher(ctx context.Context) (*schema.Publisher, error) {
	if err := a.cfg.Export.Validate(); err != nil {
		return nil, err
	}
	store, err := minio.New(ctx, &a.cfg.Export)
	if err != nil {
		return nil, err
	}
	a.store = store
	return schema.NewPublisher(store, &a.cfg.Export), nil
}

// queryContext applies the configured per-command query timeout.
func (a *app) queryContext(ctx context.Context) (context.Context, context.CancelFunc) {
	if a.cfg.Database.QueryTimeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, a.cfg.Database.QueryTimeout)
}

func (a *app) print(v any) error {
	return schema.Encode(a.out, a.format, v)
}

func (a *app) close() {
	if a.db != nil {
		a.db.Close()
	}
	if a.store != nil {
		if err := a.store.Close(); err != nil {
			a.log.ErrorWith("failed to close object store", err, nil)
		}
	}
}
