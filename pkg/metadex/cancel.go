package metadex

import (
	"github.com/metadex-go/metadex/pkg/chain"
	"github.com/metadex-go/metadex/pkg/ledger"
	"github.com/metadex-go/metadex/pkg/rational"
)

// CancelLog receives one record per cancelled order, mirroring
// TradeLog's role for fills. Grounded on the original engine's call
// sites recording a cancel transaction around
// MetaDEx_CANCEL_AT_PRICE/_ALL_FOR_PAIR/_EVERYTHING in mdex.cpp.
type CancelLog interface {
	RecordCancel(cancelled Order, block int64)
}

func reverseReservation(l *ledger.Ledger, o Order) {
	l.MustUpdate(o.Addr, o.Property, -o.AmountRemaining, ledger.MetaDExReserve)
	l.MustUpdate(o.Addr, o.Property, o.AmountRemaining, ledger.Balance)
}

func recordAll(log CancelLog, orders []Order, block int64) {
	if log == nil {
		return
	}
	for _, o := range orders {
		log.RecordCancel(o, block)
	}
}

// CancelAtPrice removes every resting order belonging to sender at the
// exact rational price amount_desired/amount_forsale within
// book[property], whose desired_property matches desiredProperty. For
// each removed order, AmountRemaining of property moves from
// METADEX_RESERVE back to BALANCE, and the cancellation is logged.
//
// This is grounded on MetaDEx_CANCEL_AT_PRICE, and resolves the
// specification's open question about the reference engine's cancel
// loop continuing to iterate price levels after finding the matching
// one: since the book keys price levels uniquely, a second occurrence
// of the same exact rational price cannot exist, so this
// implementation stops at the first (and only) match.
func CancelAtPrice(book *Book, l *ledger.Ledger, log CancelLog, sender chain.Addr, property uint32, amountForSale int64, desiredProperty uint32, amountDesired int64, block int64) []Order {
	if amountForSale <= 0 {
		return nil
	}
	cancelPrice := rational.New(amountDesired, 1).Mul(rational.New(1, amountForSale))

	removed := book.Remove(property, cancelPrice, func(o Order) bool {
		return o.Addr == sender && o.DesiredProperty == desiredProperty
	})

	for i := range removed {
		removed[i].Subaction = SubactionCancelAtPrice
		reverseReservation(l, removed[i])
	}
	recordAll(log, removed, block)
	return removed
}

// CancelAllForPair removes every resting order belonging to sender
// across all price levels of book[property] whose desired_property
// matches desiredProperty. Grounded on MetaDEx_CANCEL_ALL_FOR_PAIR.
func CancelAllForPair(book *Book, l *ledger.Ledger, log CancelLog, sender chain.Addr, property, desiredProperty uint32, block int64) []Order {
	removed := book.RemoveAllForProperty(property, func(o Order) bool {
		return o.Addr == sender && o.DesiredProperty == desiredProperty
	})

	for i := range removed {
		removed[i].Subaction = SubactionCancelAllForPair
		reverseReservation(l, removed[i])
	}
	recordAll(log, removed, block)
	return removed
}

// CancelEverything removes every resting order belonging to sender
// anywhere in the book whose property belongs to ecosystem (as
// reported by inEcosystem). Grounded on MetaDEx_CANCEL_EVERYTHING.
func CancelEverything(book *Book, l *ledger.Ledger, log CancelLog, sender chain.Addr, inEcosystem func(property uint32) bool, block int64) []Order {
	var removed []Order
	for _, property := range book.Properties() {
		if !inEcosystem(property) {
			continue
		}
		r := book.RemoveAllForProperty(property, func(o Order) bool {
			return o.Addr == sender
		})
		removed = append(removed, r...)
	}

	for i := range removed {
		removed[i].Subaction = SubactionCancelEverything
		reverseReservation(l, removed[i])
	}
	recordAll(log, removed, block)
	return removed
}
