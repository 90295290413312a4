package txn

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/metadex-go/metadex/pkg/chain"
	"github.com/metadex-go/metadex/pkg/ledger"
	"github.com/metadex-go/metadex/pkg/metadex"
	"github.com/metadex-go/metadex/pkg/property"
)

func newDispatcher(t *testing.T) *Dispatcher {
	dedup, err := NewDedup(16)
	require.NoError(t, err)
	return &Dispatcher{
		Book:   metadex.NewBook(),
		Ledger: ledger.New(),
		Props:  property.New(),
		Dedup:  dedup,
	}
}

var sender = chain.AddrFromBytes([]byte("sender"))

func TestDispatchTradeRejectsSameProperty(t *testing.T) {
	d := newDispatcher(t)
	p := Packet{Type: TypeMetaDExTrade, Property: property.MSC, DesiredProperty: property.MSC, AmountForSale: 1, AmountDesired: 1}

	_, err := d.Dispatch(Envelope{Sender: sender, Block: 1, Idx: 0}, p)
	require.Error(t, err)
	assert.Equal(t, ErrSameProperty, err.(*Error).Code)
}

func TestDispatchTradeRejectsUnknownProperty(t *testing.T) {
	d := newDispatcher(t)
	p := Packet{Type: TypeMetaDExTrade, Property: property.MSC, DesiredProperty: 999, AmountForSale: 1, AmountDesired: 1}

	_, err := d.Dispatch(Envelope{Sender: sender, Block: 1, Idx: 0}, p)
	require.Error(t, err)
	assert.Equal(t, ErrEcosystemMismatch, err.(*Error).Code)
}

func TestDispatchTradeRejectsZeroAmount(t *testing.T) {
	d := newDispatcher(t)
	require.NoError(t, d.Props.Register(property.Info{ID: 3, Ecosystem: property.Main}))
	p := Packet{Type: TypeMetaDExTrade, Property: property.MSC, DesiredProperty: 3, AmountForSale: 0, AmountDesired: 1}

	_, err := d.Dispatch(Envelope{Sender: sender, Block: 1, Idx: 0}, p)
	require.Error(t, err)
	assert.Equal(t, ErrAmountForSaleRange, err.(*Error).Code)
}

func TestDispatchTradeRejectsNeitherSideBase(t *testing.T) {
	d := newDispatcher(t)
	require.NoError(t, d.Props.Register(property.Info{ID: 3, Ecosystem: property.Main}))
	require.NoError(t, d.Props.Register(property.Info{ID: 4, Ecosystem: property.Main}))
	p := Packet{Type: TypeMetaDExTrade, Property: 3, DesiredProperty: 4, AmountForSale: 1, AmountDesired: 1}

	_, err := d.Dispatch(Envelope{Sender: sender, Block: 1, Idx: 0}, p)
	require.Error(t, err)
	assert.Equal(t, ErrNeitherSideIsBase, err.(*Error).Code)
}

func TestDispatchTradeRejectsInsufficientBalance(t *testing.T) {
	d := newDispatcher(t)
	require.NoError(t, d.Props.Register(property.Info{ID: 3, Ecosystem: property.Main}))
	p := Packet{Type: TypeMetaDExTrade, Property: property.MSC, DesiredProperty: 3, AmountForSale: 100, AmountDesired: 1}

	_, err := d.Dispatch(Envelope{Sender: sender, Block: 1, Idx: 0}, p)
	require.Error(t, err)
	assert.Equal(t, ErrInsufficientBalance, err.(*Error).Code)
}

func TestDispatchTradeAppliesWhenValid(t *testing.T) {
	d := newDispatcher(t)
	require.NoError(t, d.Props.Register(property.Info{ID: 3, Ecosystem: property.Main}))
	d.Ledger.MustUpdate(sender, property.MSC, 100, ledger.Balance)

	p := Packet{Type: TypeMetaDExTrade, Property: property.MSC, DesiredProperty: 3, AmountForSale: 100, AmountDesired: 50}
	result, err := d.Dispatch(Envelope{Sender: sender, Block: 1, Idx: 0}, p)
	require.NoError(t, err)
	assert.IsType(t, []metadex.Fill(nil), result)

	assert.Equal(t, int64(0), d.Ledger.Get(sender, property.MSC, ledger.Balance))
	assert.Equal(t, int64(100), d.Ledger.Get(sender, property.MSC, ledger.MetaDExReserve))
}

func TestDispatchRejectsDuplicateBlockIdx(t *testing.T) {
	d := newDispatcher(t)
	require.NoError(t, d.Props.Register(property.Info{ID: 3, Ecosystem: property.Main}))
	d.Ledger.MustUpdate(sender, property.MSC, 100, ledger.Balance)

	p := Packet{Type: TypeMetaDExTrade, Property: property.MSC, DesiredProperty: 3, AmountForSale: 100, AmountDesired: 50}
	_, err := d.Dispatch(Envelope{Sender: sender, Block: 1, Idx: 0}, p)
	require.NoError(t, err)

	_, err = d.Dispatch(Envelope{Sender: sender, Block: 1, Idx: 0}, p)
	require.Error(t, err)
}

func TestDispatchOneRecoversConsensusFailureAsError(t *testing.T) {
	d := newDispatcher(t)
	require.NoError(t, d.Props.Register(property.Info{ID: 3, Ecosystem: property.Main}))

	resting := chain.AddrFromBytes([]byte("resting"))
	d.Ledger.MustUpdate(resting, 3, 50, ledger.Balance)
	d.Ledger.MustUpdate(resting, 3, 50, ledger.MetaDExReserve)
	d.Book.Insert(metadex.Order{
		Addr: resting, Block: 1, Idx: 0, Property: 3, AmountForSale: 50,
		DesiredProperty: property.MSC, AmountDesired: 100, AmountRemaining: 50,
	})

	// Panic through the trade log to simulate an invariant violation
	// surfacing from deep inside the matching engine, the way a
	// MustUpdate call would if AddAndMatch's own preconditions were
	// ever violated.
	d.Trades = panickingTradeLog{}
	d.Ledger.MustUpdate(sender, property.MSC, 100, ledger.Balance)

	p := Packet{Type: TypeMetaDExTrade, Property: property.MSC, DesiredProperty: 3, AmountForSale: 100, AmountDesired: 50}
	_, err := d.DispatchOne(Envelope{Sender: sender, Block: 2, Idx: 0}, p)
	require.Error(t, err)
	var cf *ConsensusFailure
	require.ErrorAs(t, err, &cf)
}

type panickingTradeLog struct{}

func (panickingTradeLog) RecordMatchedTrade(seller, buyer metadex.Order, propertySold uint32, amountSold int64, propertyBought uint32, amountBought int64, block int64) {
	panic("simulated consensus invariant failure")
}

func TestDispatchCreatePropertyRegistersInRegistry(t *testing.T) {
	d := newDispatcher(t)
	p := Packet{Type: TypeCreatePropertyFixed, Ecosystem: 1, PropertyType: 2, Name: "Test Token"}

	result, err := d.Dispatch(Envelope{Sender: sender, Block: 1, Idx: 0}, p)
	require.NoError(t, err)
	info := result.(property.Info)
	assert.True(t, d.Props.Exists(info.ID))
	assert.Equal(t, "Test Token", info.Name)
	assert.True(t, d.Props.IsDivisible(info.ID))
}

func TestDispatchCreatePropertyRejectsUnknownType(t *testing.T) {
	d := newDispatcher(t)
	p := Packet{Type: TypeCreatePropertyVariable, Ecosystem: 1, PropertyType: 9}

	_, err := d.Dispatch(Envelope{Sender: sender, Block: 1, Idx: 0}, p)
	require.Error(t, err)
	assert.Equal(t, ErrInvalidPropertyType, err.(*Error).Code)
}

func TestDispatchCancelPair(t *testing.T) {
	d := newDispatcher(t)
	require.NoError(t, d.Props.Register(property.Info{ID: 3, Ecosystem: property.Main}))
	d.Ledger.MustUpdate(sender, property.MSC, 100, ledger.Balance)

	trade := Packet{Type: TypeMetaDExTrade, Property: property.MSC, DesiredProperty: 3, AmountForSale: 100, AmountDesired: 500}
	_, err := d.Dispatch(Envelope{Sender: sender, Block: 1, Idx: 0}, trade)
	require.NoError(t, err)

	cancel := Packet{Type: TypeMetaDExCancelPair, Property: property.MSC, DesiredProperty: 3}
	result, err := d.Dispatch(Envelope{Sender: sender, Block: 2, Idx: 0}, cancel)
	require.NoError(t, err)
	removed := result.([]metadex.Order)
	require.Len(t, removed, 1)

	assert.Equal(t, int64(100), d.Ledger.Get(sender, property.MSC, ledger.Balance))
	assert.Equal(t, int64(0), d.Ledger.Get(sender, property.MSC, ledger.MetaDExReserve))
}
