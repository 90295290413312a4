package chain

import "sync"

// Lock is the chain-lock the block driver holds while dispatching a
// transaction against the order book and balance ledger. Query paths
// outside of block processing (RPC status lookups, debug dumps) must
// take the same lock before traversing book or ledger state, matching
// the concurrency model in the specification: the core itself is
// single-threaded and not re-entrant, but readers observe it from
// other goroutines and need a consistent snapshot.
type Lock struct {
	mu sync.Mutex
}

// WithLock runs f while holding the chain-lock.
func (l *Lock) WithLock(f func()) {
	l.mu.Lock()
	defer l.mu.Unlock()
	f()
}

func (l *Lock) Lock()   { l.mu.Lock() }
func (l *Lock) Unlock() { l.mu.Unlock() }
