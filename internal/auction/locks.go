package auction

import "sync"

// LockTable hands out one mutex per auction ID so bid settlement and
// lifecycle changes for the same auction serialize while different
// auctions proceed in parallel. Entries are never evicted; the table
// grows with the number of distinct auctions touched.
type LockTable struct {
	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

// NewLockTable creates an empty lock table.
func NewLockTable() *LockTable {
	return &LockTable{locks: make(map[string]*sync.Mutex)}
}

// Acquire locks the mutex for key and returns the unlock function.
func (t *LockTable) Acquire(key string) func() {
	t.mu.Lock()
	l, ok := t.locks[key]
	if !ok {
		l = &sync.Mutex{}
		t.locks[key] = l
	}
	t.mu.Unlock()

	l.Lock()
	return l.Unlock
}
