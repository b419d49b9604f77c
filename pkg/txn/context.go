package txn

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
)

// Context binds one logical transaction to one database session plus
// metadata. It is created by the manager and travels down the call chain
// on context.Context; business code reaches it through Current and the
// ambient helpers.
type Context struct {
	id      string
	session Session
	source  Datasource
	opts    Options
	started time.Time

	// parent is a relation only (RequiresNew keeps the link for
	// diagnostics); it never implies ownership.
	parent *Context

	// mu guards the savepoint stack: the owning call chain mutates it,
	// diagnostics read it from other goroutines.
	mu         sync.Mutex
	savepoints []string
	spSeq      int

	active atomic.Bool
}

func newContext(s Session, ds Datasource, opts Options, parent *Context) *Context {
	return &Context{
		id:      newContextID(),
		session: s,
		source:  ds,
		opts:    opts,
		started: time.Now(),
		parent:  parent,
	}
}

// newContextID is time-ordered plus random, unique within a process.
func newContextID() string {
	id, err := uuid.NewV7()
	if err != nil {
		id = uuid.New()
	}
	return id.String()
}

func (c *Context) ID() string            { return c.id }
func (c *Context) Session() Session      { return c.session }
func (c *Context) Datasource() Datasource { return c.source }
func (c *Context) Options() Options      { return c.opts }
func (c *Context) StartTime() time.Time  { return c.started }
func (c *Context) Active() bool          { return c.active.Load() }

// Depth is 0 for a context without a parent, parent depth + 1 for one with
// a parent, and grows by one per live savepoint scope.
func (c *Context) Depth() int {
	base := 0
	if c.parent != nil {
		base = c.parent.Depth() + 1
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	return base + len(c.savepoints)
}

// nextSavepoint derives a fresh deterministic name. The counter is
// monotonic for the context lifetime, so sibling scopes never reuse a name
// even after the previous one was released.
func (c *Context) nextSavepoint() string {
	c.mu.Lock()
	defer c.mu.Unlock()

	name := fmt.Sprintf("sp_%s_%d", c.id, c.spSeq)
	c.spSeq++
	return name
}

func (c *Context) pushSavepoint(name string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.savepoints = append(c.savepoints, name)
}

// popSavepoint removes name only; later savepoints stay outstanding.
func (c *Context) popSavepoint(name string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	for i := len(c.savepoints) - 1; i >= 0; i-- {
		if c.savepoints[i] == name {
			c.savepoints = append(c.savepoints[:i], c.savepoints[i+1:]...)
			return
		}
	}
}

// truncateSavepoints drops name and everything created after it: rolling
// back to a savepoint invalidates all of its successors.
func (c *Context) truncateSavepoints(name string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	for i, sp := range c.savepoints {
		if sp == name {
			c.savepoints = c.savepoints[:i]
			return
		}
	}
}

type ctxKey struct{}

// bind makes c the ambient transaction for everything derived from ctx.
func bind(ctx context.Context, c *Context) context.Context {
	return context.WithValue(ctx, ctxKey{}, c)
}

// Detach hides the ambient transaction for the whole extent of the
// returned context; database calls made under it do not enrol in any
// transaction. The outer binding is untouched.
func Detach(ctx context.Context) context.Context {
	return context.WithValue(ctx, ctxKey{}, (*Context)(nil))
}

// Current reports the ambient transaction context, if any.
func Current(ctx context.Context) (*Context, bool) {
	c, ok := ctx.Value(ctxKey{}).(*Context)
	if !ok || c == nil {
		return nil, false
	}
	return c, true
}
