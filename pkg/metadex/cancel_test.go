package metadex

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/metadex-go/metadex/pkg/ledger"
)

func TestCancelAtPriceReversesReservationAndLogs(t *testing.T) {
	book := NewBook()
	l := ledger.New()

	o := Order{Addr: alice, Block: 1, Idx: 0, Property: 1, AmountForSale: 10, DesiredProperty: 2, AmountDesired: 20, AmountRemaining: 10}
	l.MustUpdate(alice, 1, 10, ledger.MetaDExReserve)
	book.Insert(o)

	rec := &recordingCancelLog{}
	removed := CancelAtPrice(book, l, rec, alice, 1, 10, 2, 20, 5)
	require.Len(t, removed, 1)
	assert.Equal(t, int64(10), l.Get(alice, 1, ledger.Balance))
	assert.Equal(t, int64(0), l.Get(alice, 1, ledger.MetaDExReserve))
	assert.Equal(t, 1, rec.calls)
	assert.Empty(t, book.Orders(1, o.UnitPrice()))
}

func TestCancelAtPriceOnlyMatchesSenderAndPair(t *testing.T) {
	book := NewBook()
	l := ledger.New()

	mine := Order{Addr: alice, Block: 1, Property: 1, AmountForSale: 10, DesiredProperty: 2, AmountDesired: 20, AmountRemaining: 10}
	others := Order{Addr: bob, Block: 1, Idx: 1, Property: 1, AmountForSale: 10, DesiredProperty: 2, AmountDesired: 20, AmountRemaining: 10}
	l.MustUpdate(alice, 1, 10, ledger.MetaDExReserve)
	l.MustUpdate(bob, 1, 10, ledger.MetaDExReserve)
	book.Insert(mine)
	book.Insert(others)

	removed := CancelAtPrice(book, l, nil, alice, 1, 10, 2, 20, 5)
	require.Len(t, removed, 1)
	assert.Equal(t, alice, removed[0].Addr)

	remaining := book.Orders(1, mine.UnitPrice())
	require.Len(t, remaining, 1)
	assert.Equal(t, bob, remaining[0].Addr)
}

func TestCancelAllForPairAcrossLevels(t *testing.T) {
	book := NewBook()
	l := ledger.New()

	a := Order{Addr: alice, Block: 1, Property: 1, AmountForSale: 10, DesiredProperty: 2, AmountDesired: 20, AmountRemaining: 10}
	b := Order{Addr: alice, Block: 1, Idx: 1, Property: 1, AmountForSale: 5, DesiredProperty: 2, AmountDesired: 30, AmountRemaining: 5}
	l.MustUpdate(alice, 1, 15, ledger.MetaDExReserve)
	book.Insert(a)
	book.Insert(b)

	removed := CancelAllForPair(book, l, nil, alice, 1, 2, 5)
	assert.Len(t, removed, 2)
	assert.Equal(t, int64(15), l.Get(alice, 1, ledger.Balance))
	assert.Equal(t, int64(0), l.Get(alice, 1, ledger.MetaDExReserve))
}

func TestCancelEverythingFiltersByEcosystem(t *testing.T) {
	book := NewBook()
	l := ledger.New()

	mainOrder := Order{Addr: alice, Block: 1, Property: 1, AmountForSale: 10, DesiredProperty: 2, AmountDesired: 20, AmountRemaining: 10}
	testOrder := Order{Addr: alice, Block: 1, Property: 3, AmountForSale: 10, DesiredProperty: 4, AmountDesired: 20, AmountRemaining: 10}
	l.MustUpdate(alice, 1, 10, ledger.MetaDExReserve)
	l.MustUpdate(alice, 3, 10, ledger.MetaDExReserve)
	book.Insert(mainOrder)
	book.Insert(testOrder)

	removed := CancelEverything(book, l, nil, alice, func(property uint32) bool { return property == 1 }, 5)
	require.Len(t, removed, 1)
	assert.Equal(t, uint32(1), removed[0].Property)
	assert.NotEmpty(t, book.Orders(3, testOrder.UnitPrice()))
}

type recordingCancelLog struct {
	calls int
}

func (r *recordingCancelLog) RecordCancel(o Order, block int64) {
	r.calls++
}
