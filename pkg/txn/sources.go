package txn

import (
	"sync"

	"github.com/nikmy/txnmgr/pkg/errors"
)

// sources is the metadata surface mapping datasource names to live
// datasources. The manager consults it on every new root transaction.
type sources struct {
	mu     sync.RWMutex
	byName map[string]Datasource
}

func newSources() *sources {
	return &sources{byName: make(map[string]Datasource)}
}

func (s *sources) register(name string, ds Datasource) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.byName[name] = ds
}

func (s *sources) deregister(name string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.byName, name)
}

// lookup requires the datasource to exist and be initialized.
func (s *sources) lookup(name string) (Datasource, error) {
	s.mu.RLock()
	ds, ok := s.byName[name]
	s.mu.RUnlock()

	if !ok {
		return nil, errors.Wrapf(ErrSourceUnavailable, "datasource %q is not registered", name)
	}
	if !ds.Initialized() {
		return nil, errors.Wrapf(ErrSourceUnavailable, "datasource %q is not initialized", name)
	}
	return ds, nil
}

func (s *sources) get(name string) (Datasource, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ds, ok := s.byName[name]
	return ds, ok
}

func (s *sources) names() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	all := make([]string, 0, len(s.byName))
	for name := range s.byName {
		all = append(all, name)
	}
	return all
}
