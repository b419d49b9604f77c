package postgres

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/nikmy/txnmgr/pkg/errors"
	"github.com/nikmy/txnmgr/pkg/logger"
	"github.com/nikmy/txnmgr/pkg/txn"
)

// Datasource hands out one pooled connection per transaction context.
type Datasource struct {
	pool *pgxpool.Pool
	log  logger.Logger
}

func New(ctx context.Context, cfg Config, log logger.Logger) (*Datasource, error) {
	poolCfg, err := pgxpool.ParseConfig(cfg.dsn())
	if err != nil {
		return nil, errors.WrapFail(err, "parse postgres config")
	}

	if cfg.Pool.MinSize > 0 {
		poolCfg.MinConns = cfg.Pool.MinSize
	}
	if cfg.Pool.MaxSize > 0 {
		poolCfg.MaxConns = cfg.Pool.MaxSize
	}

	if cfg.Logging {
		poolCfg.ConnConfig.Tracer = newQueryTracer(log, cfg.SlowQuery)
	}

	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, errors.WrapFail(err, "create postgres pool")
	}

	return &Datasource{
		pool: pool,
		log:  log.With("postgres"),
	}, nil
}

func (d *Datasource) Session(context.Context) (txn.Session, error) {
	return &session{pool: d.pool}, nil
}

func (d *Datasource) Initialized() bool {
	return d != nil && d.pool != nil
}

func (d *Datasource) Status() txn.PoolStatus {
	return txn.PoolStatus{
		Initialized: d.Initialized(),
		HasMetadata: d.Initialized() && d.pool.Config() != nil,
	}
}

func (d *Datasource) Close(context.Context) error {
	d.pool.Close()
	return nil
}
