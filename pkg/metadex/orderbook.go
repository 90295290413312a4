package metadex

import (
	"github.com/metadex-go/metadex/pkg/rational"
)

// level holds every resting order at one exact rational unit price,
// kept sorted by (block, idx) ascending. This replaces the teacher's
// pricePoint/orderBookEntry linked-list pair (order_book.go) with a
// slice-backed level: the specification's typed-composition redesign
// note asks that consumers never rebuild outer entries by value, so
// Book exposes levels only through pointer-returning accessors below.
type level struct {
	price  rational.Rat
	orders []Order
}

// Price returns the exact rational unit price of this level, for
// callers outside the package (e.g. an RPC/debug layer) that received
// a *level from Book.Levels and need to look its orders up again via
// Book.Orders.
func (lv *level) Price() rational.Rat {
	return lv.price
}

func (lv *level) insertSorted(o Order) {
	i := 0
	for i < len(lv.orders) && priorityLess(lv.orders[i], o) {
		i++
	}
	lv.orders = append(lv.orders, Order{})
	copy(lv.orders[i+1:], lv.orders[i:])
	lv.orders[i] = o
}

// bucket is every resting order selling a given property, indexed by
// their unit_price and kept in ascending price order across the
// levels slice: a direct analogue of md_PricesMap in the original
// engine, generalized from its ordered-map to an explicit sorted
// slice since Go has no ordered-map-by-custom-comparator in the
// standard library and rational keys cannot be map keys.
type bucket struct {
	levels []*level
}

func (b *bucket) find(price rational.Rat) (*level, int) {
	for i, lv := range b.levels {
		if lv.price.Equal(price) {
			return lv, i
		}
	}
	return nil, -1
}

func (b *bucket) insert(price rational.Rat, o Order) {
	if lv, _ := b.find(price); lv != nil {
		lv.insertSorted(o)
		return
	}

	lv := &level{price: price, orders: []Order{o}}
	i := 0
	for i < len(b.levels) && b.levels[i].price.Less(price) {
		i++
	}
	b.levels = append(b.levels, nil)
	copy(b.levels[i+1:], b.levels[i:])
	b.levels[i] = lv
}

// removeEmptyLevel drops the level at index i if it has no orders
// left, keeping the bucket free of dead price points the way the
// original engine erases a std::set once it is drained.
func (b *bucket) removeEmptyLevel(i int) {
	if i < 0 || i >= len(b.levels) || len(b.levels[i].orders) > 0 {
		return
	}
	b.levels = append(b.levels[:i], b.levels[i+1:]...)
}

// Book is the whole order book: for every property, the bucket of
// orders selling that property, at every unit price they sell it for.
// The outer index is the property each resting order in the bucket
// sells — which is exactly the desired_property of an incoming order
// looking to buy it, per the specification's lookup convention.
type Book struct {
	buckets map[uint32]*bucket
}

// NewBook returns an empty order book.
func NewBook() *Book {
	return &Book{buckets: make(map[uint32]*bucket)}
}

// bucketFor returns (creating if necessary) the bucket of orders
// selling property.
func (bk *Book) bucketFor(property uint32) *bucket {
	b, ok := bk.buckets[property]
	if !ok {
		b = &bucket{}
		bk.buckets[property] = b
	}
	return b
}

// Insert adds a resting order to the book, under its own Property (so
// that a taker wanting DesiredProperty finds it by looking up
// book[DesiredProperty]).
func (bk *Book) Insert(o Order) {
	price := o.UnitPrice()
	bk.bucketFor(o.Property).insert(price, o)
}

// Levels returns the price levels of orders selling property, in
// ascending unit_price order. The returned slice and its *level
// pointers alias live book state; callers within this package may
// mutate through them, but external callers must treat the result as
// read-only.
func (bk *Book) Levels(property uint32) []*level {
	b, ok := bk.buckets[property]
	if !ok {
		return nil
	}
	return b.levels
}

// Orders returns every order currently resting at property/price, in
// priority order, or nil if there is no such level.
func (bk *Book) Orders(property uint32, price rational.Rat) []Order {
	b, ok := bk.buckets[property]
	if !ok {
		return nil
	}
	lv, _ := b.find(price)
	if lv == nil {
		return nil
	}
	return lv.orders
}

// replaceAt swaps out the order at position orderIdx of level levelIdx
// in property's bucket, either updating its AmountRemaining (if it
// partially filled) or removing it entirely (if it filled completely).
// This mirrors the original engine's "seller_replacement" erase-and-
// reinsert pattern in x_Trade: rather than mutating amount_remaining in
// place inside a std::set (which would violate the set's ordering
// invariants if the key included the amount), it removes the old node
// and, if there is remainder, reinserts a fresh one at the same price.
// Reinserting at orderIdx rather than always at the front lets a match
// walk past orders it rejected earlier in the same level without
// disturbing their position.
func (bk *Book) replaceAt(property uint32, levelIdx, orderIdx int, remaining int64) {
	b := bk.buckets[property]
	lv := b.levels[levelIdx]
	old := lv.orders[orderIdx]
	lv.orders = append(lv.orders[:orderIdx], lv.orders[orderIdx+1:]...)

	if remaining > 0 {
		old.AmountRemaining = remaining
		lv.insertSorted(old)
	}

	b.removeEmptyLevel(levelIdx)
}

// Remove deletes every order for which match returns true from the level at
// property/price, used by the cancellation operations. It returns the
// removed orders as reported for ledger reversal and logging.
func (bk *Book) Remove(property uint32, price rational.Rat, match func(Order) bool) []Order {
	b, ok := bk.buckets[property]
	if !ok {
		return nil
	}
	lv, idx := b.find(price)
	if lv == nil {
		return nil
	}

	var removed []Order
	kept := lv.orders[:0]
	for _, o := range lv.orders {
		if match(o) {
			removed = append(removed, o)
		} else {
			kept = append(kept, o)
		}
	}
	lv.orders = kept
	b.removeEmptyLevel(idx)
	return removed
}

// RemoveAllForProperty deletes every order for which match returns true across
// every price level in property's bucket, used by cancel-all-for-pair
// and cancel-everything.
func (bk *Book) RemoveAllForProperty(property uint32, match func(Order) bool) []Order {
	b, ok := bk.buckets[property]
	if !ok {
		return nil
	}

	var removed []Order
	for i := 0; i < len(b.levels); i++ {
		lv := b.levels[i]
		kept := lv.orders[:0]
		for _, o := range lv.orders {
			if match(o) {
				removed = append(removed, o)
			} else {
				kept = append(kept, o)
			}
		}
		lv.orders = kept
		if len(lv.orders) == 0 {
			b.levels = append(b.levels[:i], b.levels[i+1:]...)
			i--
		}
	}
	return removed
}

// Properties returns every property with at least one resting order,
// used to implement cancel-everything across the whole book.
func (bk *Book) Properties() []uint32 {
	props := make([]uint32, 0, len(bk.buckets))
	for p, b := range bk.buckets {
		if len(b.levels) > 0 {
			props = append(props, p)
		}
	}
	return props
}
