package mongo

import (
	"context"
	"sync/atomic"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readconcern"
	"go.mongodb.org/mongo-driver/mongo/writeconcern"

	"github.com/nikmy/txnmgr/pkg/errors"
	"github.com/nikmy/txnmgr/pkg/txn"
)

type session struct {
	client *mongo.Client
	sess   mongo.Session

	txRunning atomic.Bool
	released  atomic.Bool
}

func (s *session) Connect(context.Context) error {
	sess, err := s.client.StartSession(options.Session())
	if err != nil {
		return errors.WrapFail(err, "start mongo session")
	}
	s.sess = sess
	return nil
}

// concerns maps the isolation level onto mongo's read/write concerns;
// anything above ReadCommitted has no counterpart.
func concerns(level txn.IsolationLevel) (*readconcern.ReadConcern, *writeconcern.WriteConcern, error) {
	switch level {
	case txn.DefaultIsolation, txn.ReadUncommitted:
		return readconcern.Local(), writeconcern.Majority(), nil
	case txn.ReadCommitted:
		return readconcern.Majority(), writeconcern.Majority(), nil
	}
	return nil, nil, errors.Fail("map isolation level " + level.String() + " onto mongo concerns")
}

func (s *session) Begin(_ context.Context, level txn.IsolationLevel) error {
	r, w, err := concerns(level)
	if err != nil {
		return err
	}

	err = s.sess.StartTransaction(
		options.Transaction().
			SetReadConcern(r).
			SetWriteConcern(w),
	)
	if err != nil {
		return errors.WrapFail(err, "start mongo transaction")
	}

	s.txRunning.Store(true)
	return nil
}

func (s *session) Commit(ctx context.Context) error {
	err := s.sess.CommitTransaction(ctx)
	s.txRunning.Store(false)
	return err
}

func (s *session) Rollback(ctx context.Context) error {
	err := s.sess.AbortTransaction(ctx)
	s.txRunning.Store(false)
	return err
}

// SetReadOnly is a no-op: mongo has no per-transaction read-only
// statement, and Begin picks concerns from the isolation level only, so
// read-only mode is not enforced on mongo sessions.
func (s *session) SetReadOnly(context.Context) error {
	return nil
}

func (s *session) Savepoint(context.Context, string) error {
	return txn.ErrSavepointsUnsupported
}

func (s *session) ReleaseSavepoint(context.Context, string) error {
	return txn.ErrSavepointsUnsupported
}

func (s *session) RollbackTo(context.Context, string) error {
	return txn.ErrSavepointsUnsupported
}

func (s *session) Execute(context.Context, string) error {
	return errors.Fail("execute raw statement on a mongo session")
}

func (s *session) Release(ctx context.Context) error {
	if !s.released.CompareAndSwap(false, true) {
		return nil
	}
	if s.sess != nil {
		s.sess.EndSession(ctx)
	}
	return nil
}

func (s *session) Active() bool {
	return s.txRunning.Load()
}

func (s *session) Released() bool {
	return s.released.Load()
}

// Querier exposes the driver session; callers bind it with
// mongo.NewSessionContext to issue operations inside the transaction.
func (s *session) Querier() any {
	return s.sess
}
