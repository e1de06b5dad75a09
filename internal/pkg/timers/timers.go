// Package timers provides a registry of cancellable scheduled callbacks
// keyed by user ID. Arming a key replaces any existing timer for that key,
// so at most one timer is ever outstanding per user.
package timers

import (
	"sync"
	"time"
)

// Registry holds at most one pending timer per key.
type Registry struct {
	mu     sync.Mutex
	timers map[string]*time.Timer
}

// NewRegistry creates an empty timer registry.
func NewRegistry() *Registry {
	return &Registry{timers: make(map[string]*time.Timer)}
}

// Arm schedules fn to run after d, cancelling any timer already armed for
// the key. The callback runs on its own goroutine and unregisters itself
// before firing.
func (r *Registry) Arm(key string, d time.Duration, fn func()) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if t, ok := r.timers[key]; ok {
		t.Stop()
	}

	var t *time.Timer
	t = time.AfterFunc(d, func() {
		r.mu.Lock()
		// Only unregister if we are still the armed timer for this key;
		// a re-arm may have replaced us between firing and locking.
		if cur, ok := r.timers[key]; ok && cur == t {
			delete(r.timers, key)
		}
		r.mu.Unlock()
		fn()
	})
	r.timers[key] = t
}

// Cancel stops and removes the timer for a key, if any.
// Returns true if a timer was cancelled.
func (r *Registry) Cancel(key string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	t, ok := r.timers[key]
	if !ok {
		return false
	}
	t.Stop()
	delete(r.timers, key)
	return true
}

// Armed reports whether a timer is currently pending for the key.
func (r *Registry) Armed(key string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, ok := r.timers[key]
	return ok
}

// Len returns the number of pending timers.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.timers)
}

// StopAll cancels every pending timer. Used on shutdown.
func (r *Registry) StopAll() {
	r.mu.Lock()
	defer r.mu.Unlock()
	for k, t := range r.timers {
		t.Stop()
		delete(r.timers, k)
	}
}
