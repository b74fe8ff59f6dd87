package poicache

import "sync"

// lockTable hands out one mutex per location key so read-merge-write against
// the provider is serialized per bundle. Entries are reference counted and
// removed as soon as the last holder unlocks, so the table stays bounded by
// the number of in-flight operations.
type lockTable struct {
	mu    sync.Mutex
	locks map[string]*lockEntry
}

type lockEntry struct {
	mu   sync.Mutex
	refs int
}

func newLockTable() *lockTable {
	return &lockTable{locks: make(map[string]*lockEntry)}
}

// lock blocks until the per-key mutex is held and returns the unlock func.
func (t *lockTable) lock(key string) func() {
	t.mu.Lock()
	e, ok := t.locks[key]
	if !ok {
		e = &lockEntry{}
		t.locks[key] = e
	}
	e.refs++
	t.mu.Unlock()

	e.mu.Lock()
	return func() {
		e.mu.Unlock()
		t.mu.Lock()
		e.refs--
		if e.refs == 0 {
			delete(t.locks, key)
		}
		t.mu.Unlock()
	}
}
