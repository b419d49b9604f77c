package txn

import (
	"context"
	"sync"
)

// fakeSource and fakeSession record every session operation in order, so
// scenario tests can assert the exact call sequence the manager drives.

type fakeSource struct {
	mu         sync.Mutex
	sessions   []*fakeSession
	uninit     bool
	sessionErr error

	// prepare seeds error injections into every new session.
	prepare func(*fakeSession)
}

func newFakeSource() *fakeSource {
	return &fakeSource{}
}

func (f *fakeSource) Session(context.Context) (Session, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.sessionErr != nil {
		return nil, f.sessionErr
	}
	s := &fakeSession{}
	if f.prepare != nil {
		f.prepare(s)
	}
	f.sessions = append(f.sessions, s)
	return s, nil
}

func (f *fakeSource) Initialized() bool {
	return !f.uninit
}

func (f *fakeSource) Status() PoolStatus {
	return PoolStatus{Initialized: !f.uninit, HasMetadata: true}
}

func (f *fakeSource) Close(context.Context) error {
	return nil
}

func (f *fakeSource) session(i int) *fakeSession {
	f.mu.Lock()
	defer f.mu.Unlock()

	return f.sessions[i]
}

func (f *fakeSource) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()

	return len(f.sessions)
}

type fakeSession struct {
	mu  sync.Mutex
	ops []string

	active   bool
	released bool

	connectErr   error
	beginErr     error
	commitErr    error
	rollbackErr  error
	releaseErr   error
	readOnlyErr  error
	savepointErr error
	spReleaseErr error
	spRollbackTo error
}

func (s *fakeSession) record(op string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.ops = append(s.ops, op)
}

func (s *fakeSession) sequence() []string {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]string, len(s.ops))
	copy(out, s.ops)
	return out
}

func (s *fakeSession) Connect(context.Context) error {
	s.record("connect")
	return s.connectErr
}

func (s *fakeSession) Begin(_ context.Context, level IsolationLevel) error {
	if level == DefaultIsolation {
		s.record("begin")
	} else {
		s.record("begin(" + level.String() + ")")
	}
	if s.beginErr != nil {
		return s.beginErr
	}
	s.mu.Lock()
	s.active = true
	s.mu.Unlock()
	return nil
}

func (s *fakeSession) Commit(context.Context) error {
	s.record("commit")
	if s.commitErr != nil {
		return s.commitErr
	}
	s.mu.Lock()
	s.active = false
	s.mu.Unlock()
	return nil
}

func (s *fakeSession) Rollback(context.Context) error {
	s.record("rollback")
	s.mu.Lock()
	s.active = false
	s.mu.Unlock()
	return s.rollbackErr
}

func (s *fakeSession) SetReadOnly(context.Context) error {
	s.record("execute(SET TRANSACTION READ ONLY)")
	return s.readOnlyErr
}

func (s *fakeSession) Savepoint(_ context.Context, name string) error {
	s.record("savepoint " + name)
	return s.savepointErr
}

func (s *fakeSession) ReleaseSavepoint(_ context.Context, name string) error {
	s.record("release savepoint " + name)
	return s.spReleaseErr
}

func (s *fakeSession) RollbackTo(_ context.Context, name string) error {
	s.record("rollback to " + name)
	return s.spRollbackTo
}

func (s *fakeSession) Execute(_ context.Context, stmt string) error {
	s.record("execute(" + stmt + ")")
	return nil
}

func (s *fakeSession) Release(context.Context) error {
	s.record("release")
	s.mu.Lock()
	s.released = true
	s.mu.Unlock()
	return s.releaseErr
}

func (s *fakeSession) Active() bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.active
}

func (s *fakeSession) Released() bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.released
}

func (s *fakeSession) Querier() any {
	return s
}
