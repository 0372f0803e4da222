package sync

import "sync"

// lockRegistry provides per-item mutual exclusion inside this process, so a
// user-initiated sync and a webhook-triggered sync can never interleave pages
// for the same item.
type lockRegistry struct {
	mu   sync.Mutex
	held map[int64]struct{}
}

func newLockRegistry() *lockRegistry {
	return &lockRegistry{held: make(map[int64]struct{})}
}

// TryAcquire claims the lock for an item without blocking. Returns false when
// another sync already holds it.
func (l *lockRegistry) TryAcquire(itemID int64) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	if _, held := l.held[itemID]; held {
		return false
	}
	l.held[itemID] = struct{}{}
	return true
}

// Release frees the lock for an item.
func (l *lockRegistry) Release(itemID int64) {
	l.mu.Lock()
	defer l.mu.Unlock()
	delete(l.held, itemID)
}
