package postgres

import (
	"context"
	"sync/atomic"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/nikmy/txnmgr/pkg/errors"
	"github.com/nikmy/txnmgr/pkg/txn"
)

// session is one acquired connection plus its transaction state. The
// manager owns it exclusively, so no locking beyond the released flag
// (which the registry sweep may race).
type session struct {
	pool *pgxpool.Pool
	conn *pgxpool.Conn
	tx   pgx.Tx

	released atomic.Bool
}

func (s *session) Connect(ctx context.Context) error {
	conn, err := s.pool.Acquire(ctx)
	if err != nil {
		return errors.WrapFail(err, "acquire connection")
	}
	s.conn = conn
	return nil
}

func isoLevel(level txn.IsolationLevel) pgx.TxIsoLevel {
	switch level {
	case txn.ReadUncommitted:
		return pgx.ReadUncommitted
	case txn.ReadCommitted:
		return pgx.ReadCommitted
	case txn.RepeatableRead:
		return pgx.RepeatableRead
	case txn.Serializable:
		return pgx.Serializable
	}
	return ""
}

func (s *session) Begin(ctx context.Context, level txn.IsolationLevel) error {
	tx, err := s.conn.BeginTx(ctx, pgx.TxOptions{IsoLevel: isoLevel(level)})
	if err != nil {
		return errors.WrapFail(err, "begin transaction")
	}
	s.tx = tx
	return nil
}

func (s *session) Commit(ctx context.Context) error {
	if s.tx == nil {
		return errors.Fail("commit without transaction")
	}
	err := s.tx.Commit(ctx)
	s.tx = nil
	return err
}

func (s *session) Rollback(ctx context.Context) error {
	if s.tx == nil {
		return nil
	}
	err := s.tx.Rollback(ctx)
	s.tx = nil
	if errors.Is(err, pgx.ErrTxClosed) {
		return nil
	}
	return err
}

func (s *session) SetReadOnly(ctx context.Context) error {
	return s.Execute(ctx, "SET TRANSACTION READ ONLY")
}

func (s *session) Savepoint(ctx context.Context, name string) error {
	return s.Execute(ctx, "SAVEPOINT "+name)
}

func (s *session) ReleaseSavepoint(ctx context.Context, name string) error {
	return s.Execute(ctx, "RELEASE SAVEPOINT "+name)
}

func (s *session) RollbackTo(ctx context.Context, name string) error {
	return s.Execute(ctx, "ROLLBACK TO SAVEPOINT "+name)
}

func (s *session) Execute(ctx context.Context, stmt string) error {
	if s.tx != nil {
		_, err := s.tx.Exec(ctx, stmt)
		return err
	}
	if s.conn == nil {
		return errors.Fail("execute on unconnected session")
	}
	_, err := s.conn.Exec(ctx, stmt)
	return err
}

func (s *session) Release(context.Context) error {
	if !s.released.CompareAndSwap(false, true) {
		return nil
	}
	if s.conn != nil {
		s.conn.Release()
		s.conn = nil
	}
	return nil
}

func (s *session) Active() bool {
	return s.tx != nil
}

func (s *session) Released() bool {
	return s.released.Load()
}

// Querier exposes the live pgx.Tx inside a transaction and the raw
// connection outside of one.
func (s *session) Querier() any {
	if s.tx != nil {
		return s.tx
	}
	return s.conn
}
