package txn

import (
	"fmt"

	lru "github.com/hashicorp/golang-lru"
)

// Dedup bounds the recent-transaction-position set the dispatcher
// consults to refuse a (block, idx) it has already applied, replacing
// the teacher's pkg/dex/txn_pool.go TxnPool (an unbounded
// map[consensus.Hash][]byte deduped by content hash before a
// transaction enters the mempool) with an LRU cache sized for a
// bounded number of recently seen block positions, since the dispatch
// layer itself never holds an unconfirmed mempool.
type Dedup struct {
	cache *lru.Cache
}

// NewDedup returns a Dedup holding at most size recent entries.
func NewDedup(size int) (*Dedup, error) {
	c, err := lru.New(size)
	if err != nil {
		return nil, err
	}
	return &Dedup{cache: c}, nil
}

// NotSeen records (block, idx) and reports whether it had not already
// been recorded. A transaction can appear at most once per (block,
// idx): the block driver guarantees idx is assigned once per block,
// so a repeat indicates a replay rather than routine chain activity.
func (d *Dedup) NotSeen(block int64, idx uint32) bool {
	key := dedupKey(block, idx)
	if _, ok := d.cache.Get(key); ok {
		return false
	}
	d.cache.Add(key, struct{}{})
	return true
}

func dedupKey(block int64, idx uint32) string {
	return fmt.Sprintf("%d:%d", block, idx)
}
