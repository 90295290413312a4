// Package chain carries the small set of chain-level value types the
// MetaDEx core needs from its surrounding blockchain node: addresses,
// transaction hashes, and the lock the block driver holds during
// dispatch. Everything else about the chain (consensus, networking,
// signature verification) lives outside the core; see DESIGN.md.
package chain

import "encoding/hex"

const addrBytes = 20

// ZeroAddr is the zero value of Addr, useful as a sentinel.
var ZeroAddr = Addr{}

// Addr is an opaque, byte-exact address identifier. Two addresses are
// equal iff their underlying bytes are equal, which makes Addr usable
// directly as a map key.
type Addr [addrBytes]byte

// AddrFromBytes builds an Addr from a decoded address (e.g. the output
// of base58-decoding a wire address). Bytes beyond addrBytes are
// truncated from the left, matching how the surrounding node derives
// short addresses from longer hashes.
func AddrFromBytes(b []byte) Addr {
	var a Addr
	if len(b) >= addrBytes {
		copy(a[:], b[len(b)-addrBytes:])
	} else {
		copy(a[addrBytes-len(b):], b)
	}
	return a
}

func (a Addr) String() string {
	return hex.EncodeToString(a[:])
}

func (a Addr) Hex() string {
	return a.String()
}
