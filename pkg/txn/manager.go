package txn

import (
	"context"
	"sync"
	"time"

	"github.com/nikmy/txnmgr/pkg/errors"
	"github.com/nikmy/txnmgr/pkg/logger"
	"github.com/nikmy/txnmgr/pkg/tools/await"
)

// Body is the decorated unit of work. It observes its transaction (if any)
// through the passed context and the ambient helpers.
type Body func(ctx context.Context) error

// Manager drives every transactional call: it applies propagation rules,
// acquires and releases sessions, manages savepoint scopes, enforces
// timeouts, fires hooks and collects statistics.
type Manager struct {
	log logger.Logger
	nop logger.Logger

	src   *sources
	live  *registry
	stats *Stats

	mu  sync.Mutex
	cfg Config

	sweepCancel context.CancelFunc
	sweepDone   chan struct{}
}

func NewManager(log logger.Logger, cfg Config) *Manager {
	m := &Manager{
		log:   log.With("txn"),
		nop:   logger.NewStub(),
		src:   newSources(),
		live:  newRegistry(),
		stats: &Stats{},
		cfg:   cfg.withDefaults(),
	}
	m.startSweep()
	return m
}

// Register installs a datasource under name; name "" means DefaultSource.
func (m *Manager) Register(name string, ds Datasource) {
	if name == "" {
		name = DefaultSource
	}
	m.src.register(name, ds)
}

func (m *Manager) Deregister(name string) {
	m.src.deregister(name)
}

func (m *Manager) Config() Config {
	m.mu.Lock()
	defer m.mu.Unlock()

	return m.cfg
}

// Configure merges p into the running config. A changed cleanup interval
// restarts the sweep loop.
func (m *Manager) Configure(p Patch) {
	m.mu.Lock()
	old := m.cfg.CleanupInterval
	m.cfg = p.apply(m.cfg)
	restart := m.cfg.CleanupInterval != old && m.sweepCancel != nil
	m.mu.Unlock()

	if restart {
		m.StopCleanup()
		m.startSweep()
	}
}

func (m *Manager) Stats() StatsSnapshot {
	return m.stats.Snapshot()
}

func (m *Manager) ResetStats() {
	m.stats.Reset()
}

// Contexts lists the live transaction contexts for diagnostics.
func (m *Manager) Contexts() []ContextInfo {
	return m.live.describe(time.Now())
}

// PoolStatus reports the pool of the ambient transaction's datasource.
func (m *Manager) PoolStatus(ctx context.Context) (PoolStatus, bool) {
	c, ok := Current(ctx)
	if !ok {
		return PoolStatus{}, false
	}
	return c.source.Status(), true
}

// SourceStatus reports the pool of a registered datasource by name.
func (m *Manager) SourceStatus(name string) (PoolStatus, bool) {
	ds, ok := m.src.get(name)
	if !ok {
		return PoolStatus{}, false
	}
	return ds.Status(), true
}

// Transactional runs fn under the transaction demarcation selected by
// opts. It updates statistics exactly once per call, pass-throughs and
// failed preconditions included.
func (m *Manager) Transactional(ctx context.Context, opts Options, fn Body) error {
	opts = opts.withDefaults(m.Config())

	start := time.Now()
	err := m.dispatch(ctx, opts, fn)
	m.observe(start, err == nil)

	return err
}

// Wrap decorates fn once so every later invocation goes through the
// manager with the given options.
func (m *Manager) Wrap(opts Options, fn Body) Body {
	return func(ctx context.Context) error {
		return m.Transactional(ctx, opts, fn)
	}
}

// Run is Transactional for bodies that produce a value.
func Run[T any](ctx context.Context, m *Manager, opts Options, fn func(ctx context.Context) (T, error)) (T, error) {
	var out T
	err := m.Transactional(ctx, opts, func(ctx context.Context) error {
		var err error
		out, err = fn(ctx)
		return err
	})
	return out, err
}

func (m *Manager) dispatch(ctx context.Context, opts Options, fn Body) error {
	cur, inTx := Current(ctx)

	switch opts.Propagation {
	case Required:
		if inTx {
			return fn(ctx)
		}
		return m.runRoot(ctx, nil, opts, fn)

	case RequiresNew:
		return m.runRoot(ctx, cur, opts, fn)

	case Supports:
		return fn(ctx)

	case NotSupported:
		if inTx {
			ctx = Detach(ctx)
		}
		return fn(ctx)

	case Never:
		if inTx {
			return errors.Wrapf(ErrPropagationViolation, "NEVER call inside transaction %s", cur.id)
		}
		return fn(ctx)

	case Mandatory:
		if !inTx {
			return errors.Wrap(ErrPropagationViolation, "MANDATORY call outside a transaction")
		}
		return fn(ctx)

	case Nested:
		if !inTx {
			return m.runRoot(ctx, nil, opts, fn)
		}
		return m.runNested(ctx, cur, fn)
	}

	return errors.Fail("dispatch unknown propagation mode")
}

// runRoot owns the full lifecycle of a new root context: acquire, connect,
// begin, body, commit or rollback, release, deregister.
func (m *Manager) runRoot(ctx context.Context, parent *Context, opts Options, fn Body) error {
	log := m.logger()

	ds, err := m.src.lookup(opts.Datasource)
	if err != nil {
		return err
	}

	sess, err := ds.Session(ctx)
	if err != nil {
		return errors.WrapFail(err, "acquire session")
	}

	c := newContext(sess, ds, opts, parent)

	defer func() {
		if !sess.Released() {
			if relErr := sess.Release(ctx); relErr != nil {
				log.Warn(errors.WrapFailf(relErr, "release session of %s", c.id))
			}
		}
		m.live.remove(c.id)
	}()

	if err := sess.Connect(ctx); err != nil {
		return errors.WrapFail(err, "connect session")
	}

	if err := sess.Begin(ctx, opts.Isolation); err != nil {
		return errors.WrapFail(err, "begin transaction")
	}
	c.active.Store(true)

	bodyErr := m.runBegun(ctx, c, fn)

	if bodyErr == nil {
		if commitErr := sess.Commit(ctx); commitErr != nil {
			bodyErr = errors.WrapFail(commitErr, "commit transaction")
		} else {
			c.active.Store(false)
			m.fireHook(ctx, c, opts.Hooks.AfterCommit, "afterCommit")
			return nil
		}
	}

	m.fireHook(ctx, c, opts.Hooks.BeforeRollback, "beforeRollback")
	if sess.Active() {
		if rbErr := sess.Rollback(ctx); rbErr != nil {
			log.Warn(errors.WrapFailf(rbErr, "rollback transaction %s", c.id))
		}
	}
	c.active.Store(false)
	m.fireHook(ctx, c, opts.Hooks.AfterRollback, "afterRollback")

	return bodyErr
}

// runBegun covers the stretch between a successful begin and the commit
// decision: read-only mode, the post-begin hook, registration, the body.
func (m *Manager) runBegun(ctx context.Context, c *Context, fn Body) error {
	if c.opts.ReadOnly {
		if err := c.session.SetReadOnly(ctx); err != nil {
			return errors.WrapFail(err, "set transaction read only")
		}
	}

	// BeforeCommit fires here, between begin and the body. The name is
	// kept for compatibility with the options surface; treat it as the
	// "transaction has begun" signal.
	if hook := c.opts.Hooks.BeforeCommit; hook != nil {
		if err := hook(bind(ctx, c)); err != nil {
			return errors.WrapFail(err, "run beforeCommit hook")
		}
	}

	m.live.add(c)

	return m.runBody(ctx, c, fn)
}

func (m *Manager) runBody(ctx context.Context, c *Context, fn Body) error {
	bound := bind(ctx, c)

	if c.opts.Timeout <= 0 {
		return fn(bound)
	}

	bodyCtx, cancel := context.WithCancel(bound)
	defer cancel()

	done := make(chan error, 1)
	go func() { done <- fn(bodyCtx) }()

	race := await.FirstOf(await.FromChan(done), await.After(c.opts.Timeout))
	if !race.Await(ctx) {
		return errors.WrapFail(ctx.Err(), "wait for transaction body")
	}

	if race.Chosen() != 0 {
		// Timer won; the body keeps running on its own goroutine until it
		// notices the cancelled context, but this call moves on to
		// rollback now.
		return &TimeoutError{Timeout: c.opts.Timeout, ContextID: c.id}
	}

	v, _ := race.Value()
	if v == nil {
		return nil
	}
	return v.(error)
}

// runNested opens a savepoint scope on the ambient root context.
func (m *Manager) runNested(ctx context.Context, c *Context, fn Body) error {
	if c.Depth() >= m.Config().MaxNestedDepth {
		return errors.Wrapf(ErrNestingLimitExceeded, "transaction %s is %d scopes deep", c.id, c.Depth())
	}

	name := c.nextSavepoint()
	if err := c.session.Savepoint(ctx, name); err != nil {
		return errors.WrapFail(err, "create savepoint")
	}
	c.pushSavepoint(name)

	if err := fn(bind(ctx, c)); err != nil {
		if rbErr := c.session.RollbackTo(ctx, name); rbErr != nil {
			m.logger().Warn(errors.WrapFailf(rbErr, "rollback to savepoint %s", name))
		}
		c.truncateSavepoints(name)
		return err
	}

	if err := c.session.ReleaseSavepoint(ctx, name); err != nil {
		c.popSavepoint(name)
		return errors.WrapFail(err, "release savepoint")
	}
	c.popSavepoint(name)

	return nil
}

// fireHook runs a best-effort hook: failures are logged, never surfaced.
func (m *Manager) fireHook(ctx context.Context, c *Context, hook func(context.Context) error, name string) {
	if hook == nil {
		return
	}
	if err := hook(bind(ctx, c)); err != nil {
		m.logger().Warn(errors.WrapFailf(err, "run %s hook of %s", name, c.id))
	}
}

func (m *Manager) observe(start time.Time, succeeded bool) {
	m.mu.Lock()
	enabled := m.cfg.EnableStats
	m.mu.Unlock()

	if !enabled {
		return
	}
	m.stats.Update(time.Since(start), succeeded)
}

func (m *Manager) logger() logger.Logger {
	m.mu.Lock()
	enabled := m.cfg.EnableLogging
	m.mu.Unlock()

	if !enabled {
		return m.nop
	}
	return m.log
}
