package meter

import (
	"sort"
	"sync"
)

// Store is the registry of live meters, one per connection id.
type Store struct {
	mu     sync.RWMutex
	meters map[string]*Meter
}

// Entry pairs a connection id with its meter in a registry snapshot.
type Entry struct {
	ConnectionID string
	Meter        *Meter
}

// NewStore creates an empty registry.
func NewStore() *Store {
	return &Store{
		meters: make(map[string]*Meter),
	}
}

// GetOrCreate returns the meter for connectionID, creating it if absent.
// The check and insert happen under one lock, so two concurrent callers
// for the same id always see the same meter instance.
func (s *Store) GetOrCreate(connectionID string) *Meter {
	s.mu.Lock()
	defer s.mu.Unlock()

	if m, ok := s.meters[connectionID]; ok {
		return m
	}
	m := NewMeter(connectionID)
	s.meters[connectionID] = m
	return m
}

// Remove deletes the meter for connectionID and reports whether one
// existed. Removing an unknown id is a no-op.
func (s *Store) Remove(connectionID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, ok := s.meters[connectionID]
	delete(s.meters, connectionID)
	return ok
}

// Len returns the number of live meters.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.meters)
}

// Snapshot returns a point-in-time copy of the registry contents,
// ordered by connection id. Later registry mutation does not affect
// a snapshot already taken.
func (s *Store) Snapshot() []Entry {
	s.mu.RLock()
	out := make([]Entry, 0, len(s.meters))
	for id, m := range s.meters {
		out = append(out, Entry{ConnectionID: id, Meter: m})
	}
	s.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool { return out[i].ConnectionID < out[j].ConnectionID })
	return out
}
