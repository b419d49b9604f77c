package bootstrap

import (
	"context"

	mongods "github.com/nikmy/txnmgr/internal/datasource/mongo"
	"github.com/nikmy/txnmgr/internal/datasource/postgres"
	"github.com/nikmy/txnmgr/pkg/errors"
	"github.com/nikmy/txnmgr/pkg/logger"
	"github.com/nikmy/txnmgr/pkg/txn"
)

// Install validates every config, builds the drivers and registers them
// with the manager. The returned shutdown func deregisters and closes
// everything; on a failed install the already-built datasources are
// closed before the error is returned.
func Install(ctx context.Context, m *txn.Manager, cfgs []Config, log logger.Logger) (func(ctx context.Context), error) {
	log = log.With("bootstrap")

	type installed struct {
		name string
		ds   txn.Datasource
	}
	var done []installed

	teardown := func(ctx context.Context) {
		for _, it := range done {
			m.Deregister(it.name)
			if err := it.ds.Close(ctx); err != nil {
				log.Warn(errors.WrapFailf(err, "close datasource %q", it.name))
			}
		}
	}

	for _, cfg := range cfgs {
		cfg = cfg.withDefaults()

		if err := cfg.validate(); err != nil {
			teardown(ctx)
			return nil, err
		}

		ds, err := build(ctx, cfg, log)
		if err != nil {
			teardown(ctx)
			return nil, errors.WrapFailf(err, "build datasource %q", cfg.Name)
		}

		m.Register(cfg.Name, ds)
		done = append(done, installed{name: cfg.Name, ds: ds})
		log.Infof("datasource %q (%s) installed", cfg.Name, cfg.Type)
	}

	return teardown, nil
}

func build(ctx context.Context, cfg Config, log logger.Logger) (txn.Datasource, error) {
	switch cfg.Type {
	case "postgres":
		var pg postgres.Config
		pg.URL = cfg.URL
		pg.Host = cfg.Host
		pg.Port = cfg.Port
		pg.Database = cfg.Database
		pg.Auth.Username = cfg.Auth.Username
		pg.Auth.Password = cfg.Auth.Password
		pg.Pool.MinSize = cfg.Pool.MinSize
		pg.Pool.MaxSize = cfg.Pool.MaxSize
		pg.Logging = cfg.Logging
		pg.SlowQuery = cfg.SlowQuery
		return postgres.New(ctx, pg, log)

	case "mongodb":
		var mg mongods.Config
		mg.URL = cfg.URL
		mg.Timeout = cfg.Timeout
		mg.Database = cfg.Database
		mg.Auth.Username = cfg.Auth.Username
		mg.Auth.Password = cfg.Auth.Password
		return mongods.New(ctx, mg, log)
	}

	return nil, errors.Fail("build datasource of unsupported type " + cfg.Type)
}
