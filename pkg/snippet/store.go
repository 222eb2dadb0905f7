package snippet

import "sync"

// Store owns the current snapshot. Readers receive immutable snapshots, so a
// reload never exposes a partially built set. Concurrent Replace calls are
// last-writer-wins.
type Store struct {
	mu      sync.RWMutex
	current *Snapshot
	version uint64
}

// NewStore returns an empty store.
func NewStore() *Store {
	return &Store{}
}

// Current returns the active snapshot, or nil when nothing is loaded or the
// last load failed.
func (s *Store) Current() *Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.current
}

// Replace installs snap and stamps it with the next version.
func (s *Store) Replace(snap *Snapshot) uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.version++
	if snap != nil {
		snap.version = s.version
	}
	s.current = snap
	return s.version
}

// Invalidate clears the store after a failed load.
func (s *Store) Invalidate() {
	s.Replace(nil)
}

// Lookup finds the snippet owning trigger in the current snapshot.
func (s *Store) Lookup(trigger string) (Snippet, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.current.Lookup(trigger)
}

// Triggers enumerates the triggers of the current snapshot.
func (s *Store) Triggers() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.current.Triggers()
}

// Loaded reports whether a snapshot is installed.
func (s *Store) Loaded() bool {
	return s.Current() != nil
}
