package txn

import (
	"fmt"

	"github.com/metadex-go/metadex/pkg/chain"
	"github.com/metadex-go/metadex/pkg/ledger"
	"github.com/metadex-go/metadex/pkg/metadex"
	"github.com/metadex-go/metadex/pkg/property"
)

const maxAmount = int64(1<<63 - 1) // MAX_INT_8_BYTES

// TypeAllowed answers whether type/version is currently permitted for
// property at block, generalizing IsTransactionTypeAllowed's
// activation-height gate in the reference engine. The dispatcher
// consults this for every MetaDEx packet type before anything else,
// exactly as each logicMath_MetaDEx* method does first.
type TypeAllowed func(block int64, property uint32, t Type, version uint16) bool

// Dispatcher routes decoded packets into package metadex, enforcing
// the validation order and error codes of logicMath_MetaDExTrade /
// _CancelPrice / _CancelPair / _CancelEcosystem.
type Dispatcher struct {
	Book     *metadex.Book
	Ledger   *ledger.Ledger
	Props    *property.Registry
	Allowed  TypeAllowed
	Trades   metadex.TradeLog
	Cancels  metadex.CancelLog
	Dedup    *Dedup
}

// Envelope carries the chain context the reference engine threads
// through every transaction: sender, containing block, and the
// position within the block used for (block, idx) priority and as a
// dedup key.
type Envelope struct {
	Sender chain.Addr
	TxID   chain.Hash
	Block  int64
	Idx    uint32
}

// ConsensusFailure wraps an invariant violation surfaced as a panic
// from deep inside the matching engine (via ledger.Ledger.MustUpdate).
// Per the specification's error-handling design, this is not a
// rejected transaction: the block that produced it must not be
// considered applied, and the caller is expected to halt rather than
// continue processing further transactions in the same or any later
// block.
type ConsensusFailure struct {
	Envelope Envelope
	Err      error
}

func (e *ConsensusFailure) Error() string {
	return fmt.Sprintf("txn: consensus failure processing (block=%d, idx=%d): %v", e.Envelope.Block, e.Envelope.Idx, e.Err)
}

func (e *ConsensusFailure) Unwrap() error { return e.Err }

// DispatchOne recovers a ledger.ErrNegativeBalance (or any other
// panic) raised deep inside AddAndMatch/Cancel* and turns it into a
// *ConsensusFailure instead of letting it unwind past the dispatcher,
// so a caller processing a whole block can log the exact transaction
// that violated an invariant before halting, matching "the node must
// halt and refuse to progress" rather than crash with a bare panic.
func (d *Dispatcher) DispatchOne(env Envelope, p Packet) (result interface{}, err error) {
	defer func() {
		if r := recover(); r != nil {
			rerr, ok := r.(error)
			if !ok {
				rerr = fmt.Errorf("%v", r)
			}
			err = &ConsensusFailure{Envelope: env, Err: rerr}
		}
	}()
	return d.Dispatch(env, p)
}

// Dispatch validates and applies a decoded packet, returning the
// fills/cancellations it produced, or an *Error for a cleanly
// rejected transaction. Any other error is a decode-layer failure the
// caller should treat as the transaction never having been well
// formed. Dispatch itself does not recover from invariant-violation
// panics; use DispatchOne for that.
func (d *Dispatcher) Dispatch(env Envelope, p Packet) (interface{}, error) {
	if d.Dedup != nil && !d.Dedup.NotSeen(env.Block, env.Idx) {
		return nil, newError(ErrBookInsertConflict, "duplicate (block=%d, idx=%d)", env.Block, env.Idx)
	}

	switch p.Type {
	case TypeMetaDExTrade:
		return d.dispatchTrade(env, p)
	case TypeMetaDExCancelPrice:
		return d.dispatchCancelPrice(env, p)
	case TypeMetaDExCancelPair:
		return d.dispatchCancelPair(env, p)
	case TypeMetaDExCancelEcosystem:
		return d.dispatchCancelEcosystem(env, p)
	case TypeCreatePropertyFixed, TypeCreatePropertyVariable:
		return d.dispatchCreateProperty(env, p)
	default:
		// Other transaction families (simple send, alerts) are
		// recognized by Decode but their own logic is out of scope for
		// this dispatcher; see DESIGN.md.
		return nil, nil
	}
}

func (d *Dispatcher) checkCommon(env Envelope, p Packet, version uint16) *Error {
	if d.Allowed != nil && !d.Allowed(env.Block, p.Property, p.Type, version) {
		return newError(ErrTypeNotPermitted, "type %d/version %d not permitted for property %d at block %d", p.Type, version, p.Property, env.Block)
	}
	if p.Property == p.DesiredProperty {
		return newError(ErrSameProperty, "property %d and desired property %d must differ", p.Property, p.DesiredProperty)
	}
	if !d.Props.SameEcosystem(p.Property, p.DesiredProperty) {
		return newError(ErrEcosystemMismatch, "property %d and desired property %d not in same ecosystem", p.Property, p.DesiredProperty)
	}
	if !d.Props.Exists(p.Property) {
		return newError(ErrPropertyNotFound, "property %d does not exist", p.Property)
	}
	if !d.Props.Exists(p.DesiredProperty) {
		return newError(ErrDesiredPropertyNotFound, "desired property %d does not exist", p.DesiredProperty)
	}
	return nil
}

func (d *Dispatcher) dispatchTrade(env Envelope, p Packet) (interface{}, error) {
	if err := d.checkCommon(env, p, 0); err != nil {
		return nil, err
	}
	if p.AmountForSale <= 0 || p.AmountForSale > maxAmount {
		return nil, newError(ErrAmountForSaleRange, "amount for sale out of range or zero: %d", p.AmountForSale)
	}
	if p.AmountDesired <= 0 || p.AmountDesired > maxAmount {
		return nil, newError(ErrAmountDesiredRange, "desired amount out of range or zero: %d", p.AmountDesired)
	}
	if !property.IsBaseProperty(p.Property) && !property.IsBaseProperty(p.DesiredProperty) {
		return nil, newError(ErrNeitherSideIsBase, "one side of a trade [%d, %d] must be MSC or TMSC", p.Property, p.DesiredProperty)
	}

	balance := d.Ledger.Get(env.Sender, p.Property, ledger.Balance)
	if balance < p.AmountForSale {
		return nil, newError(ErrInsufficientBalance, "sender has insufficient balance of property %d: %d < %d", p.Property, balance, p.AmountForSale)
	}

	order := metadex.Order{
		Addr: env.Sender, Block: env.Block, Idx: env.Idx, TxID: env.TxID,
		Property: p.Property, AmountForSale: p.AmountForSale,
		DesiredProperty: p.DesiredProperty, AmountDesired: p.AmountDesired,
		AmountRemaining: p.AmountForSale, Subaction: metadex.SubactionNew,
	}

	fills := metadex.AddAndMatch(d.Book, d.Ledger, d.Trades, order)
	return fills, nil
}

func (d *Dispatcher) dispatchCancelPrice(env Envelope, p Packet) (interface{}, error) {
	if err := d.checkCommon(env, p, 0); err != nil {
		return nil, err
	}
	if p.AmountForSale <= 0 || p.AmountForSale > maxAmount {
		return nil, newError(ErrAmountForSaleRange, "amount for sale out of range or zero: %d", p.AmountForSale)
	}
	if p.AmountDesired <= 0 || p.AmountDesired > maxAmount {
		return nil, newError(ErrAmountDesiredRange, "desired amount out of range or zero: %d", p.AmountDesired)
	}

	removed := metadex.CancelAtPrice(d.Book, d.Ledger, d.Cancels, env.Sender, p.Property, p.AmountForSale, p.DesiredProperty, p.AmountDesired, env.Block)
	return removed, nil
}

func (d *Dispatcher) dispatchCancelPair(env Envelope, p Packet) (interface{}, error) {
	if err := d.checkCommon(env, p, 0); err != nil {
		return nil, err
	}
	removed := metadex.CancelAllForPair(d.Book, d.Ledger, d.Cancels, env.Sender, p.Property, p.DesiredProperty, env.Block)
	return removed, nil
}

// dispatchCreateProperty registers a new property from a validated
// CreatePropertyFixed/CreatePropertyVariable packet. Balance/curve
// issuance mechanics are out of scope (see DESIGN.md); only the
// registry side effect that the trade dispatcher's own validation
// depends on is applied.
func (d *Dispatcher) dispatchCreateProperty(env Envelope, p Packet) (interface{}, error) {
	eco := property.Ecosystem(p.Ecosystem)
	if eco != property.Main && eco != property.Test {
		return nil, newError(ErrEcosystemMismatch, "create property: unrecognized ecosystem %d", p.Ecosystem)
	}
	if p.PropertyType != 1 && p.PropertyType != 2 {
		return nil, newError(ErrInvalidPropertyType, "create property: unrecognized property type %d", p.PropertyType)
	}

	info := d.Props.Create(eco, p.PropertyType == 2, p.Name)
	return info, nil
}

func (d *Dispatcher) dispatchCancelEcosystem(env Envelope, p Packet) (interface{}, error) {
	if d.Allowed != nil && !d.Allowed(env.Block, uint32(p.Ecosystem), p.Type, 0) {
		return nil, newError(ErrTypeNotPermitted, "type %d not permitted for ecosystem %d at block %d", p.Type, p.Ecosystem, env.Block)
	}

	eco := property.Ecosystem(p.Ecosystem)
	removed := metadex.CancelEverything(d.Book, d.Ledger, d.Cancels, env.Sender, func(prop uint32) bool {
		return d.Props.EcosystemOf(prop) == eco
	}, env.Block)
	return removed, nil
}
