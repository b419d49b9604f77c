package txn

import (
	"context"
	"time"

	"github.com/nikmy/txnmgr/pkg/errors"
	"github.com/nikmy/txnmgr/pkg/tools/await"
)

// startSweep launches the leak reclaimer: a periodic scan that rolls back
// and releases contexts older than MaxContextAge. Buggy bodies that never
// return would otherwise pin their sessions forever.
func (m *Manager) startSweep() {
	interval := m.Config().CleanupInterval

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})

	m.mu.Lock()
	m.sweepCancel = cancel
	m.sweepDone = done
	m.mu.Unlock()

	go func() {
		defer close(done)

		tick := await.Tick(interval)
		for tick.Await(ctx) {
			m.sweepOnce(ctx)
		}
	}()
}

// StopCleanup cancels the reclaimer and waits for it to exit. Safe to call
// more than once; the manager keeps working without it.
func (m *Manager) StopCleanup() {
	m.mu.Lock()
	cancel, done := m.sweepCancel, m.sweepDone
	m.sweepCancel, m.sweepDone = nil, nil
	m.mu.Unlock()

	if cancel == nil {
		return
	}
	cancel()
	<-done
}

func (m *Manager) sweepOnce(ctx context.Context) {
	maxAge := m.Config().MaxContextAge

	for _, c := range m.live.expired(maxAge, time.Now()) {
		m.logger().Warnf("reclaiming stale transaction context %s (age %s)", c.id, time.Since(c.started))
		m.reclaim(ctx, c)
	}
}

// reclaim force-finishes one stale context. Errors are logged and
// swallowed so a broken session cannot stall the scan.
func (m *Manager) reclaim(ctx context.Context, c *Context) {
	log := m.logger()

	if c.session.Active() {
		if err := c.session.Rollback(ctx); err != nil {
			log.Warn(errors.WrapFailf(err, "rollback stale transaction %s", c.id))
		}
	}
	c.active.Store(false)

	if !c.session.Released() {
		if err := c.session.Release(ctx); err != nil {
			log.Warn(errors.WrapFailf(err, "release stale session of %s", c.id))
		}
	}

	m.live.remove(c.id)
}
