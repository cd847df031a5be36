// Package locking serializes operations on a single group. Every mutation
// of a group is a read-modify-write over the whole aggregate (roster, gates,
// assignments, wishlists), so two concurrent joins or a join racing an
// assignment generation must not interleave.
package locking

import "sync"

// GroupLocks hands out one mutex per group key. Locks are never evicted;
// the map grows with the number of distinct groups touched by this process,
// which is bounded by the number of live groups.
type GroupLocks struct {
	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

// New creates an empty lock table.
func New() *GroupLocks {
	return &GroupLocks{locks: make(map[string]*sync.Mutex)}
}

func (g *GroupLocks) get(key string) *sync.Mutex {
	g.mu.Lock()
	defer g.mu.Unlock()

	l, ok := g.locks[key]
	if !ok {
		l = &sync.Mutex{}
		g.locks[key] = l
	}
	return l
}

// Lock acquires the mutex for key, creating it on first use.
func (g *GroupLocks) Lock(key string) {
	g.get(key).Lock()
}

// Unlock releases the mutex for key.
func (g *GroupLocks) Unlock(key string) {
	g.get(key).Unlock()
}
