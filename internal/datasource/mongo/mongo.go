package mongo

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/nikmy/txnmgr/pkg/errors"
	"github.com/nikmy/txnmgr/pkg/logger"
	"github.com/nikmy/txnmgr/pkg/txn"
)

type Config struct {
	URL     string        `yaml:"url"`
	Timeout time.Duration `yaml:"timeout"`

	Database string `yaml:"database"`

	Auth struct {
		Username string `yaml:"username"`
		Password string `yaml:"password"`
	} `yaml:"auth"`
}

// Datasource adapts a mongo client to the session contract. Mongo has no
// savepoints, so Nested scopes over this datasource fail cleanly with
// txn.ErrSavepointsUnsupported.
type Datasource struct {
	client *mongo.Client
	log    logger.Logger
}

func New(ctx context.Context, cfg Config, log logger.Logger) (*Datasource, error) {
	opts := options.Client().ApplyURI(cfg.URL)
	if cfg.Timeout > 0 {
		opts = opts.SetTimeout(cfg.Timeout)
	}
	if cfg.Auth.Username != "" {
		opts = opts.SetAuth(options.Credential{
			Username: cfg.Auth.Username,
			Password: cfg.Auth.Password,
		})
	}

	client, err := mongo.Connect(ctx, opts)
	if err != nil {
		return nil, errors.WrapFail(err, "connect to mongo db")
	}

	return &Datasource{
		client: client,
		log:    log.With("mongo"),
	}, nil
}

func (d *Datasource) Session(context.Context) (txn.Session, error) {
	return &session{client: d.client}, nil
}

func (d *Datasource) Initialized() bool {
	return d != nil && d.client != nil
}

func (d *Datasource) Status() txn.PoolStatus {
	return txn.PoolStatus{
		Initialized: d.Initialized(),
		HasMetadata: d.Initialized(),
	}
}

func (d *Datasource) Close(ctx context.Context) error {
	return d.client.Disconnect(ctx)
}
