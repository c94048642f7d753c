// Package sessionlock serializes mutating operations against a single
// game session. Every orchestrator that mutates session state acquires
// the session's lock before loading it, so deck and inventory invariants
// are never observed mid-operation.
package sessionlock

import "sync"

// Keyed provides one exclusive lock per session ID. Locks are created
// lazily and never released back; the population of live sessions is
// small enough that this does not matter in practice.
type Keyed struct {
	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

// New creates an empty keyed lock set
func New() *Keyed {
	return &Keyed{
		locks: make(map[string]*sync.Mutex),
	}
}

// Acquire locks the mutex for the given key and returns the unlock func.
// Callers are expected to defer the returned func immediately.
func (k *Keyed) Acquire(key string) func() {
	k.mu.Lock()
	l, ok := k.locks[key]
	if !ok {
		l = &sync.Mutex{}
		k.locks[key] = l
	}
	k.mu.Unlock()

	l.Lock()
	return l.Unlock
}
