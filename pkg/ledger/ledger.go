// Package ledger implements the per-(address, property, tally-kind)
// balance ledger described in the specification: signed 64-bit tallies
// that must never go negative, mutated only through Update. It is
// generalized from the teacher's pkg/dex/account.go Balance/
// UpdateBalance shape, which tracked a single Available/Pending pair
// per token, to the spec's two named tally kinds (BALANCE and
// METADEX_RESERVE) plus room for the other tally kinds a full overlay
// protocol tracks (PENDING, frozen, and so on), even though only
// BALANCE and METADEX_RESERVE participate in matching.
package ledger

import (
	"fmt"

	"github.com/metadex-go/metadex/pkg/chain"
)

// Kind names a tally bucket within an account's holdings of a
// property. Only Balance and MetaDExReserve participate in matching;
// the rest are carried so the ledger has a home for the balance
// mutations the overlay protocol's non-MetaDEx transaction families
// perform against the same accounts.
type Kind int

const (
	Balance Kind = iota
	MetaDExReserve
	Pending
	Frozen
)

func (k Kind) String() string {
	switch k {
	case Balance:
		return "BALANCE"
	case MetaDExReserve:
		return "METADEX_RESERVE"
	case Pending:
		return "PENDING"
	case Frozen:
		return "FROZEN"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

type key struct {
	addr chain.Addr
	prop uint32
	kind Kind
}

// ErrNegativeBalance is the consensus-level invariant failure raised
// when an Update would drive a tally below zero. Per the
// specification, this terminates the enclosing transaction (the
// transaction is never applied) and, if it happens outside validated
// input, is a halting consensus bug in the caller.
type ErrNegativeBalance struct {
	Addr     chain.Addr
	Property uint32
	Kind     Kind
	Current  int64
	Delta    int64
}

func (e *ErrNegativeBalance) Error() string {
	return fmt.Sprintf("ledger: update(%s, prop=%d, %s) would go negative: %d + (%d) < 0",
		e.Addr, e.Property, e.Kind, e.Current, e.Delta)
}

// Ledger is the balance ledger. The zero value is ready to use.
type Ledger struct {
	tallies map[key]int64
}

// New returns an empty ledger.
func New() *Ledger {
	return &Ledger{tallies: make(map[key]int64)}
}

// Get returns the current value of (addr, prop, kind), 0 if unset.
func (l *Ledger) Get(addr chain.Addr, prop uint32, kind Kind) int64 {
	if l.tallies == nil {
		return 0
	}
	return l.tallies[key{addr, prop, kind}]
}

// Update adds delta to (addr, prop, kind). It fails (and leaves the
// ledger unmodified) if the result would be negative.
func (l *Ledger) Update(addr chain.Addr, prop uint32, delta int64, kind Kind) error {
	if l.tallies == nil {
		l.tallies = make(map[key]int64)
	}

	k := key{addr, prop, kind}
	cur := l.tallies[k]
	next := cur + delta
	if next < 0 {
		return &ErrNegativeBalance{Addr: addr, Property: prop, Kind: kind, Current: cur, Delta: delta}
	}

	l.tallies[k] = next
	return nil
}

// MustUpdate calls Update and panics on failure. Used on paths the
// matching engine has already validated as safe (the four ledger
// updates of a single fill, which are unconditional given the
// preconditions checked before they run); a panic here indicates a
// consensus bug, not routine invalid input.
func (l *Ledger) MustUpdate(addr chain.Addr, prop uint32, delta int64, kind Kind) {
	if err := l.Update(addr, prop, delta, kind); err != nil {
		panic(err)
	}
}

// Move transfers amount of prop from (addr, fromKind) to (addr,
// toKind), e.g. BALANCE -> METADEX_RESERVE when an order rests, or the
// reverse when it is cancelled. Both legs are applied atomically: if
// the debit fails, the credit is never attempted.
func (l *Ledger) Move(addr chain.Addr, prop uint32, amount int64, fromKind, toKind Kind) error {
	if err := l.Update(addr, prop, -amount, fromKind); err != nil {
		return err
	}
	// The credit leg cannot fail (it only ever increases a tally), but
	// Update's signature is uniform so we still check it.
	return l.Update(addr, prop, amount, toKind)
}

// Snapshot returns a deterministic, sorted copy of every non-zero
// tally, for use by the engine-level checkpoint/restore path.
func (l *Ledger) Snapshot() []Entry {
	entries := make([]Entry, 0, len(l.tallies))
	for k, v := range l.tallies {
		if v == 0 {
			continue
		}
		entries = append(entries, Entry{Addr: k.addr, Property: k.prop, Kind: k.kind, Value: v})
	}
	sortEntries(entries)
	return entries
}

// Entry is one non-zero tally, as produced by Snapshot and consumed by
// Restore.
type Entry struct {
	Addr     chain.Addr
	Property uint32
	Kind     Kind
	Value    int64
}

// Restore replaces the ledger's contents with entries, used when the
// surrounding node rolls the core back to a checkpoint after a reorg.
func Restore(entries []Entry) *Ledger {
	l := New()
	for _, e := range entries {
		l.tallies[key{e.Addr, e.Property, e.Kind}] = e.Value
	}
	return l
}

func sortEntries(entries []Entry) {
	// Insertion sort is adequate here: Snapshot is a diagnostic/reorg
	// path, not a consensus hot path, and the entry counts involved
	// are bounded by the number of distinct (addr, prop, kind) tuples
	// ever touched, not by per-transaction volume.
	for i := 1; i < len(entries); i++ {
		for j := i; j > 0 && entryLess(entries[j], entries[j-1]); j-- {
			entries[j], entries[j-1] = entries[j-1], entries[j]
		}
	}
}

func entryLess(a, b Entry) bool {
	if a.Addr != b.Addr {
		return a.Addr.String() < b.Addr.String()
	}
	if a.Property != b.Property {
		return a.Property < b.Property
	}
	return a.Kind < b.Kind
}
