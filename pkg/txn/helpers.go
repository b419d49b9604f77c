package txn

import (
	"context"
	"time"
)

// Ambient helpers: each reads the current transaction off the context and
// returns its zero value (or ok=false) outside any transaction.

func IsInTransaction(ctx context.Context) bool {
	_, ok := Current(ctx)
	return ok
}

func CurrentSession(ctx context.Context) Session {
	c, ok := Current(ctx)
	if !ok {
		return nil
	}
	return c.session
}

func CurrentDatasource(ctx context.Context) Datasource {
	c, ok := Current(ctx)
	if !ok {
		return nil
	}
	return c.source
}

// CurrentQuerier is the driver-level query handle of the ambient session
// (e.g. the live pgx.Tx); nil outside a transaction.
func CurrentQuerier(ctx context.Context) any {
	c, ok := Current(ctx)
	if !ok {
		return nil
	}
	return c.session.Querier()
}

func CurrentOptions(ctx context.Context) (Options, bool) {
	c, ok := Current(ctx)
	if !ok {
		return Options{}, false
	}
	return c.opts, true
}

func CurrentStartTime(ctx context.Context) (time.Time, bool) {
	c, ok := Current(ctx)
	if !ok {
		return time.Time{}, false
	}
	return c.started, true
}

func CurrentDuration(ctx context.Context) (time.Duration, bool) {
	c, ok := Current(ctx)
	if !ok {
		return 0, false
	}
	return time.Since(c.started), true
}
