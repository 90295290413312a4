// Package property implements the in-memory property (token) registry
// the matching engine consults to validate property IDs, ecosystem
// membership, and divisibility. It is grounded in the teacher's
// pkg/dex/token.go TokenInfo/Token pair and the CreateGenesisState
// seeding pattern in pkg/dex/state.go, generalized from a single
// BNB-style native token to Omni Layer's dual-ecosystem model: every
// property belongs to either the main ecosystem or the test
// ecosystem, and each ecosystem has a distinguished base property
// (MSC in main, TMSC in test) that never needs an explicit create.
package property

import "fmt"

// Ecosystem distinguishes the main token economy from the isolated
// test economy used for dry-run trading.
type Ecosystem int

const (
	Main Ecosystem = 1
	Test Ecosystem = 2
)

func (e Ecosystem) String() string {
	switch e {
	case Main:
		return "main"
	case Test:
		return "test"
	default:
		return fmt.Sprintf("Ecosystem(%d)", int(e))
	}
}

// Property IDs of the two base currencies every ecosystem is seeded
// with, matching the original protocol's fixed MSC(1)/TMSC(2) IDs.
const (
	MSC  uint32 = 1
	TMSC uint32 = 2
)

// Info describes a single registered property.
type Info struct {
	ID         uint32
	Ecosystem  Ecosystem
	Divisible  bool
	Name       string
}

// Registry is the set of properties known to the running node. The
// zero value is not usable; construct with New.
type Registry struct {
	props  map[uint32]Info
	nextID uint32
}

// New returns a registry pre-seeded with the two base currencies,
// matching how the original chain begins with MSC and TMSC already
// defined at genesis rather than created by a transaction.
func New() *Registry {
	r := &Registry{props: make(map[uint32]Info), nextID: 3}
	r.props[MSC] = Info{ID: MSC, Ecosystem: Main, Divisible: true, Name: "MSC"}
	r.props[TMSC] = Info{ID: TMSC, Ecosystem: Test, Divisible: true, Name: "TMSC"}
	return r
}

// Create assigns the next available property ID and registers a newly
// issued property, the effect of a validated CreatePropertyFixed/
// CreatePropertyVariable transaction. The real protocol partitions IDs
// so every test-ecosystem property ID is disjoint from every
// main-ecosystem one; sp.cpp's exact partitioning constants are outside
// the retrieved original source, so a single monotonic counter is used
// for both ecosystems here instead.
func (r *Registry) Create(eco Ecosystem, divisible bool, name string) Info {
	info := Info{ID: r.nextID, Ecosystem: eco, Divisible: divisible, Name: name}
	r.props[info.ID] = info
	r.nextID++
	return info
}

// Register adds a newly created property. It returns an error if the
// ID is already taken, which would indicate a consensus bug in the
// caller (property IDs are assigned monotonically by the issuance
// transaction family, never chosen by the issuer).
func (r *Registry) Register(info Info) error {
	if _, exists := r.props[info.ID]; exists {
		return fmt.Errorf("property: id %d already registered", info.ID)
	}
	r.props[info.ID] = info
	return nil
}

// Exists reports whether id names a known property.
func (r *Registry) Exists(id uint32) bool {
	_, ok := r.props[id]
	return ok
}

// Get returns the Info for id and whether it was found.
func (r *Registry) Get(id uint32) (Info, bool) {
	info, ok := r.props[id]
	return info, ok
}

// IsDivisible reports whether id trades in fractional willets. Callers
// must check Exists first; an unknown property reports false.
func (r *Registry) IsDivisible(id uint32) bool {
	return r.props[id].Divisible
}

// EcosystemOf returns the ecosystem id belongs to, or 0 if unknown.
func (r *Registry) EcosystemOf(id uint32) Ecosystem {
	info, ok := r.props[id]
	if !ok {
		return 0
	}
	return info.Ecosystem
}

// SameEcosystem reports whether a and b are both known and belong to
// the same ecosystem, the check tx.cpp performs before allowing a
// trade or cancel-pair to proceed (error -30 in the dispatcher when it
// fails).
func (r *Registry) SameEcosystem(a, b uint32) bool {
	ia, ok := r.props[a]
	if !ok {
		return false
	}
	ib, ok := r.props[b]
	if !ok {
		return false
	}
	return ia.Ecosystem == ib.Ecosystem
}

// IsBaseProperty reports whether id is the distinguished base currency
// of its ecosystem (MSC or TMSC). At least one side of every MetaDEx
// pair must be a base property (error -35 in the dispatcher when
// neither is).
func IsBaseProperty(id uint32) bool {
	return id == MSC || id == TMSC
}
