// Package metadex implements the order book and matching engine: the
// core of the specification. Types and structure are generalized from
// the teacher's pkg/dex order book (order_book.go, sort.go), with the
// matching semantics themselves ported from the original engine's
// x_Trade and its surrounding MetaDEx_* helpers in mdex.cpp.
package metadex

import (
	"github.com/metadex-go/metadex/pkg/chain"
	"github.com/metadex-go/metadex/pkg/rational"
)

// Subaction distinguishes why an order entered the book, mirroring the
// original engine's ADD/CANCEL_AT_PRICE/CANCEL_ALL_FOR_PAIR/
// CANCEL_EVERYTHING subactions recorded alongside each offer.
type Subaction uint8

const (
	SubactionNew Subaction = 1 + iota
	SubactionCancelAtPrice
	SubactionCancelAllForPair
	SubactionCancelEverything
)

// Order is a single resting or incoming MetaDEx offer: sell
// amount_forsale units of Property for amount_desired units of
// DesiredProperty (or a fraction proportional to whatever of
// AmountRemaining fills), at the exact rational unit price that ratio
// implies. Field names mirror CMPMetaDEx in the original engine.
type Order struct {
	Addr             chain.Addr
	Block            int64
	Idx              uint32
	TxID             chain.Hash
	Property         uint32
	AmountForSale    int64
	DesiredProperty  uint32
	AmountDesired    int64
	AmountRemaining  int64
	Subaction        Subaction
}

// UnitPrice is amount_desired/amount_forsale: how much of
// DesiredProperty one unit of Property costs. Returns the zero
// rational if AmountForSale is zero, matching the original engine's
// "if (amount_forsale) ... else 0" guard rather than dividing by zero.
func (o Order) UnitPrice() rational.Rat {
	if o.AmountForSale == 0 {
		return rational.Zero
	}
	return rational.New(o.AmountDesired, 1).Mul(rational.New(1, o.AmountForSale))
}

// InversePrice is amount_forsale/amount_desired: how much Property one
// unit of DesiredProperty buys.
func (o Order) InversePrice() rational.Rat {
	if o.AmountDesired == 0 {
		return rational.Zero
	}
	return rational.New(o.AmountForSale, 1).Mul(rational.New(1, o.AmountDesired))
}

// Empty reports whether the order has nothing left to fill.
func (o Order) Empty() bool {
	return o.AmountRemaining <= 0
}

// priorityLess reports whether a should be matched/cancelled before b
// at the same price level: earlier block first, then lower index
// within a block, matching MetaDEx_compare in the original engine
// (which is also the tie-break std::set order within a price level).
func priorityLess(a, b Order) bool {
	if a.Block != b.Block {
		return a.Block < b.Block
	}
	return a.Idx < b.Idx
}
