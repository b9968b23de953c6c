package state

import (
	"sync"
	"time"

	"github.com/five82/rally/internal/events"
)

// Store coordinates concurrent access to the snapshot. The zero value is an
// empty, not-ready store.
type Store struct {
	mu       sync.RWMutex
	snapshot Snapshot
}

// Update replaces the snapshot with fn's result under the write lock. fn
// receives a private copy and must not retain it.
func (s *Store) Update(fn func(Snapshot) Snapshot) Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	next := fn(s.snapshot.clone())
	s.commit(&next)
	return next.clone()
}

// Apply reduces ev into the snapshot under the write lock. On error the
// snapshot is left as it was.
func (s *Store) Apply(ev events.Event) (Effects, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	next, fx, err := Reduce(s.snapshot, ev)
	if err != nil {
		return Effects{}, err
	}
	s.commit(&next)
	return fx, nil
}

// Snapshot returns a copy of the current snapshot.
func (s *Store) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snapshot.clone()
}

// commit stamps next with the new version and stores it.
func (s *Store) commit(next *Snapshot) {
	next.Version = s.snapshot.Version + 1
	next.UpdatedAt = time.Now()
	s.snapshot = *next
}
