package chain

import (
	"encoding/hex"
)

const hashBytes = 32

// Hash is an opaque 256-bit transaction hash (txid).
type Hash [hashBytes]byte

// HashFromBytes truncates/pads b into a Hash. Used to adapt txids that
// arrive from the surrounding node as raw byte slices.
func HashFromBytes(b []byte) Hash {
	var h Hash
	if len(b) >= hashBytes {
		copy(h[:], b[:hashBytes])
	} else {
		copy(h[hashBytes-len(b):], b)
	}
	return h
}

func (h Hash) String() string {
	return hex.EncodeToString(h[:])
}

func (h Hash) Hex() string {
	return h.String()
}
