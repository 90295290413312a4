package metadex

import (
	"math/big"

	"github.com/metadex-go/metadex/pkg/ledger"
	"github.com/metadex-go/metadex/pkg/rational"
)

// TradeLog receives one record per matched fill. Implementations
// persist it however the surrounding node wants (a trade history
// table, an event stream); the engine itself has no opinion beyond
// "this happened." Grounded on the original engine's
// t_tradelistdb->recordMatchedTrade call inside x_Trade.
type TradeLog interface {
	RecordMatchedTrade(seller, buyer Order, propertySold uint32, amountSold int64, propertyBought uint32, amountBought int64, block int64)
}

// Fill is one match produced by AddAndMatch, returned so callers that
// don't need a TradeLog (tests, in-process callers) can still observe
// what happened without wiring a callback.
type Fill struct {
	Seller         Order
	Buyer          Order
	AmountSold     int64
	AmountBought   int64
}

// AddAndMatch attempts to match incoming against the resting orders in
// book that can satisfy it, then inserts whatever remains. It is the
// direct port of x_Trade plus the tail of MetaDEx_ADD in the original
// engine: the price walk, the per-level time-ordered scan, the
// floor/ceil rounding through package rational, the four-way ledger
// update, and the erase-and-reinsert-with-decremented-remaining
// pattern (here Book.replaceAt) all mirror it line for line. As in
// x_Trade, an order rejected within a level (desired-property
// mismatch, nothing affordable, or an effective price outside the
// taker's limit) only skips that one order (mdex.cpp's `++offerIt;
// continue;`) — the scan keeps trying later orders at the same price
// level rather than abandoning it. It returns the fills produced, in
// the order they occurred.
//
// Preconditions (checked by the transaction dispatcher before this is
// called, not here): incoming.Property != incoming.DesiredProperty,
// incoming.AmountForSale and incoming.AmountDesired are both positive
// and in range, and the sender's BALANCE of Property covers
// AmountForSale. AddAndMatch itself moves whatever AmountRemaining ends
// up resting from BALANCE to METADEX_RESERVE.
func AddAndMatch(book *Book, l *ledger.Ledger, log TradeLog, incoming Order) []Fill {
	var fills []Fill

	if incoming.UnitPrice().Sign() <= 0 {
		// A zero or negative unit price can only arise from a
		// zero-amount order, which the dispatcher must reject before
		// this is ever reached; treat it as a no-op rather than divide
		// by anything downstream.
		return fills
	}

	propertyForSale := incoming.Property
	propertyDesired := incoming.DesiredProperty
	buyerSatisfied := false

	levels := book.Levels(propertyDesired)
	for li := 0; li < len(levels) && !buyerSatisfied; li++ {
		lv := levels[li]
		sellersPrice := lv.price

		// The taker's inverse price is the most of propertyForSale it
		// will pay per unit of propertyDesired; it must be at least
		// the seller's asking unit price to cross.
		if incoming.InversePrice().Less(sellersPrice) {
			continue
		}

		oi := 0
		for oi < len(lv.orders) {
			old := lv.orders[oi]
			if old.DesiredProperty != propertyForSale {
				// Structurally should not happen (the outer index
				// guarantees the pair), but two distinct pairs could in
				// principle land on an identical unit_price; the
				// specification requires this check regardless. Only
				// this one order is rejected — try the next order still
				// resting at this price level.
				oi++
				continue
			}

			sellerAmountForSale := old.AmountRemaining
			buyerAmountOffered := incoming.AmountRemaining

			// How many indivisible units of propertyDesired can the
			// buyer afford at the seller's price? Rounding down is the
			// only safe direction: rounding up would require tokens the
			// buyer doesn't have.
			rCouldBuy := rational.FromInt64(buyerAmountOffered).Mul(old.InversePrice())
			iCouldBuy, err := rCouldBuy.ToInt128(false)
			if err != nil {
				oi++
				continue
			}

			var nCouldBuy int64
			if iCouldBuy.Cmp(big.NewInt(sellerAmountForSale)) < 0 {
				nCouldBuy = iCouldBuy.Int64()
			} else {
				nCouldBuy = sellerAmountForSale
			}

			if nCouldBuy == 0 {
				oi++
				continue
			}

			// What the buyer must pay the seller for nCouldBuy units,
			// rounded up: rounding down would shortchange the seller
			// relative to the price they accepted.
			rWouldPay := rational.FromInt64(nCouldBuy).Mul(old.UnitPrice())
			nWouldPay, err := rWouldPay.ToInt64(true)
			if err != nil {
				oi++
				continue
			}

			effectivePrice := rational.New(nWouldPay, 1).Mul(rational.New(1, nCouldBuy))
			if effectivePrice.Less(old.UnitPrice()) {
				// cannot happen given the rounding above, but mirrors
				// the postcondition assert in the reference engine.
				oi++
				continue
			}
			if incoming.InversePrice().Less(effectivePrice) {
				// The adjusted price is more than the taker's limit
				// allows against this particular order; a later order at
				// the same nominal price can still round to an effective
				// price the taker accepts, so try it rather than giving
				// up on the level.
				oi++
				continue
			}

			buyerAmountGot := nCouldBuy
			sellerAmountGot := nWouldPay
			buyerAmountLeft := incoming.AmountRemaining - sellerAmountGot
			sellerAmountLeft := old.AmountRemaining - buyerAmountGot

			// Transfer the payment property (propertyForSale, from the
			// buyer's perspective the thing it pays with) from buyer to
			// seller.
			l.MustUpdate(incoming.Addr, incoming.Property, -sellerAmountGot, ledger.Balance)
			l.MustUpdate(old.Addr, old.DesiredProperty, sellerAmountGot, ledger.Balance)

			// Transfer the market property (what the seller listed for
			// sale) out of the seller's reserve into the buyer's balance.
			l.MustUpdate(old.Addr, old.Property, -buyerAmountGot, ledger.MetaDExReserve)
			l.MustUpdate(incoming.Addr, incoming.DesiredProperty, buyerAmountGot, ledger.Balance)

			if log != nil {
				log.RecordMatchedTrade(old, incoming, old.Property, buyerAmountGot, old.DesiredProperty, sellerAmountGot, incoming.Block)
			}
			fills = append(fills, Fill{
				Seller:       old,
				Buyer:        incoming,
				AmountSold:   buyerAmountGot,
				AmountBought: sellerAmountGot,
			})

			incoming.AmountRemaining = buyerAmountLeft
			book.replaceAt(propertyDesired, li, oi, sellerAmountLeft)
			// replaceAt may have removed the level (or the matched
			// order) entirely; refresh our local view before continuing.
			levels = book.Levels(propertyDesired)
			if li >= len(levels) {
				break
			}
			lv = levels[li]

			if buyerAmountLeft == 0 {
				buyerSatisfied = true
				break
			}
			// oi is left as-is: a fully consumed order was removed, so
			// the next order has shifted down into index oi; a partially
			// filled order was reinserted and may still sit at oi (its
			// sort key never depends on AmountRemaining), so retrying the
			// same index is correct either way.
		}
	}

	if incoming.AmountRemaining > 0 {
		book.Insert(incoming)
		l.MustUpdate(incoming.Addr, incoming.Property, -incoming.AmountRemaining, ledger.Balance)
		l.MustUpdate(incoming.Addr, incoming.Property, incoming.AmountRemaining, ledger.MetaDExReserve)
	}

	return fills
}
