package metadex

import (
	lru "github.com/hashicorp/golang-lru"

	"github.com/metadex-go/metadex/pkg/chain"
)

// Status names the five states an order can be reported in, ported
// directly from MetaDEx_getStatus's five-way statusText derivation in
// mdex.cpp.
type Status string

const (
	StatusUnknown              Status = "unknown"
	StatusCancelled            Status = "cancelled"
	StatusCancelledPartFilled  Status = "cancelled part filled"
	StatusFilled               Status = "filled"
	StatusOpen                 Status = "open"
	StatusOpenPartFilled       Status = "open part filled"
)

// DeriveStatus computes an order's display status from whether it is
// still open (resting in the book) and how much of amountForSale has
// sold so far, reproducing MetaDEx_getStatus's boolean table exactly:
// a closed order that sold nothing was cancelled outright, a closed
// order that sold something but not everything was cancelled after a
// partial fill, a closed order that sold everything was filled, and
// an open order is reported open or open-partially-filled depending
// on whether anything has sold yet.
func DeriveStatus(orderOpen bool, amountForSale, totalSold int64) Status {
	partialFilled := totalSold > 0
	filled := totalSold >= amountForSale

	switch {
	case !orderOpen && !partialFilled:
		return StatusCancelled
	case !orderOpen && filled:
		return StatusFilled
	case !orderOpen && partialFilled:
		return StatusCancelledPartFilled
	case orderOpen && !partialFilled:
		return StatusOpen
	case orderOpen && partialFilled:
		return StatusOpenPartFilled
	default:
		return StatusUnknown
	}
}

// IsOpen reports whether an order with txid is still resting anywhere
// in property's bucket, grounded on MetaDEx_isOpen's linear scan of
// every price level for a matching txid.
func (bk *Book) IsOpen(property uint32, txid chain.Hash) bool {
	b, ok := bk.buckets[property]
	if !ok {
		return false
	}
	for _, lv := range b.levels {
		for _, o := range lv.orders {
			if o.TxID == txid {
				return true
			}
		}
	}
	return false
}

// StatusCache bounds the memory an RPC/debug layer spends recomputing
// DeriveStatus for orders that are queried repeatedly (e.g. a wallet
// polling its own open orders). Grounded on the LRU usage pattern the
// teacher applies to its round/consensus object cache, repurposed here
// for order status lookups instead of threshold-relay round state.
type StatusCache struct {
	cache *lru.Cache
}

// NewStatusCache returns a cache holding at most size recent entries.
func NewStatusCache(size int) (*StatusCache, error) {
	c, err := lru.New(size)
	if err != nil {
		return nil, err
	}
	return &StatusCache{cache: c}, nil
}

func (c *StatusCache) Get(txid chain.Hash) (Status, bool) {
	v, ok := c.cache.Get(txid)
	if !ok {
		return StatusUnknown, false
	}
	return v.(Status), true
}

func (c *StatusCache) Put(txid chain.Hash, status Status) {
	c.cache.Add(txid, status)
}
