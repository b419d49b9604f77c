package txn

import (
	"sync"
	"time"
)

// registry tracks live contexts by id. It exists for leak reclamation and
// diagnostics only; ownership stays with the calls that created the
// contexts.
type registry struct {
	mu   sync.Mutex
	live map[string]*Context
}

func newRegistry() *registry {
	return &registry{live: make(map[string]*Context)}
}

func (r *registry) add(c *Context) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.live[c.id] = c
}

func (r *registry) remove(id string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	delete(r.live, id)
}

func (r *registry) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()

	return len(r.live)
}

// snapshot copies the current entries so the sweep can iterate without
// holding the lock across driver calls.
func (r *registry) snapshot() []*Context {
	r.mu.Lock()
	defer r.mu.Unlock()

	all := make([]*Context, 0, len(r.live))
	for _, c := range r.live {
		all = append(all, c)
	}
	return all
}

func (r *registry) expired(maxAge time.Duration, now time.Time) []*Context {
	var old []*Context
	for _, c := range r.snapshot() {
		if now.Sub(c.started) > maxAge {
			old = append(old, c)
		}
	}
	return old
}

// ContextInfo is the diagnostics view of one live context.
type ContextInfo struct {
	ID         string        `json:"id"`
	Name       string        `json:"name,omitempty"`
	Datasource string        `json:"datasource"`
	Depth      int           `json:"depth"`
	Age        time.Duration `json:"age"`
	Active     bool          `json:"active"`
}

func (r *registry) describe(now time.Time) []ContextInfo {
	all := r.snapshot()

	infos := make([]ContextInfo, 0, len(all))
	for _, c := range all {
		infos = append(infos, ContextInfo{
			ID:         c.id,
			Name:       c.opts.Name,
			Datasource: c.opts.Datasource,
			Depth:      c.Depth(),
			Age:        now.Sub(c.started),
			Active:     c.Active(),
		})
	}
	return infos
}
