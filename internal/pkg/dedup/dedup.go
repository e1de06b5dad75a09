// Package dedup provides a bounded recency set for suppressing duplicate
// action IDs. The gateway can redeliver a message event or replay it on an
// edit; remembering the last N message IDs keeps a single logical action
// from being rewarded twice while holding memory to a fixed bound.
package dedup

import "sync"

// DefaultCapacity bounds the duplicate-suppression horizon when no explicit
// capacity is configured.
const DefaultCapacity = 100

// Set is a fixed-capacity ordered set of string IDs with FIFO eviction.
type Set struct {
	mu       sync.Mutex
	capacity int
	order    []string
	seen     map[string]struct{}
}

// New creates a Set with the given capacity. Non-positive capacities fall
// back to DefaultCapacity.
func New(capacity int) *Set {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	return &Set{
		capacity: capacity,
		order:    make([]string, 0, capacity),
		seen:     make(map[string]struct{}, capacity),
	}
}

// Remember records an ID. It returns false if the ID was already present
// (a duplicate), true if it was newly added. Adding beyond capacity evicts
// the oldest entry.
func (s *Set) Remember(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.seen[id]; ok {
		return false
	}

	if len(s.order) >= s.capacity {
		oldest := s.order[0]
		s.order = s.order[1:]
		delete(s.seen, oldest)
	}

	s.order = append(s.order, id)
	s.seen[id] = struct{}{}
	return true
}

// Contains reports whether an ID is currently in the set.
func (s *Set) Contains(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.seen[id]
	return ok
}

// Len returns the number of IDs currently held.
func (s *Set) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.order)
}

// Capacity returns the configured bound.
func (s *Set) Capacity() int {
	return s.capacity
}
