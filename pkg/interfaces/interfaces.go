// Package interfaces collects the small set of callback interfaces
// the matching core consumes from, rather than owns, the surrounding
// node: property lookups, balance ledger access, trade/cancel
// logging, and block timing. Concrete implementations normally live
// alongside the node's own state (property registry, balance store,
// trade history database). *ledger.Ledger and *property.Registry
// satisfy them; package metadex and package txn take those concrete
// types directly and do not depend on this package.
package interfaces

import (
	"github.com/metadex-go/metadex/pkg/chain"
	"github.com/metadex-go/metadex/pkg/ledger"
	"github.com/metadex-go/metadex/pkg/metadex"
	"github.com/metadex-go/metadex/pkg/property"
)

// PropertyRegistry answers property existence, divisibility, and
// ecosystem membership queries. package property.Registry implements
// this directly; it is named here so callers depend on the interface
// rather than the concrete type.
type PropertyRegistry interface {
	Exists(id uint32) bool
	IsDivisible(id uint32) bool
	EcosystemOf(id uint32) property.Ecosystem
	SameEcosystem(a, b uint32) bool
}

// BalanceLedger is the subset of *ledger.Ledger the dispatcher and
// matching engine need.
type BalanceLedger interface {
	Get(addr chain.Addr, prop uint32, kind ledger.Kind) int64
	Update(addr chain.Addr, prop uint32, delta int64, kind ledger.Kind) error
}

// TradeLog and CancelLog re-export package metadex's callback
// interfaces so callers that only need to depend on package
// interfaces (not metadex directly) can still implement them.
type TradeLog = metadex.TradeLog
type CancelLog = metadex.CancelLog

// ChainClock answers the current block's wall-clock time, used by
// components (e.g. a crowdsale deadline check in the properties the
// non-MetaDEx transaction families issue) that need a notion of time
// without owning the chain's block index themselves.
type ChainClock interface {
	BlockTime(block int64) int64
}
