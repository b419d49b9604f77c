package txn

import "context"

// Session is a single stateful channel to the database. One transaction
// context owns exactly one session for its entire lifetime; sessions are
// never shared between contexts.
type Session interface {
	Connect(ctx context.Context) error

	Begin(ctx context.Context, level IsolationLevel) error
	Commit(ctx context.Context) error
	Rollback(ctx context.Context) error

	// SetReadOnly puts the running transaction into read-only mode
	// (issued between Begin and the first body operation).
	SetReadOnly(ctx context.Context) error

	Savepoint(ctx context.Context, name string) error
	ReleaseSavepoint(ctx context.Context, name string) error
	RollbackTo(ctx context.Context, name string) error

	// Execute runs a raw statement on the session, inside the running
	// transaction when there is one.
	Execute(ctx context.Context, stmt string) error

	Release(ctx context.Context) error

	Active() bool
	Released() bool

	// Querier exposes the driver-level query handle for the current state
	// of the session (e.g. the live pgx.Tx). The concrete type is owned by
	// the datasource implementation.
	Querier() any
}

// Datasource produces sessions and reports its own health.
type Datasource interface {
	Session(ctx context.Context) (Session, error)
	Initialized() bool
	Status() PoolStatus
	Close(ctx context.Context) error
}

type PoolStatus struct {
	Initialized bool `json:"initialized"`
	HasMetadata bool `json:"hasMetadata"`
}
