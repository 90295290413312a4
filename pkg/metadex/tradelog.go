package metadex

import (
	"bytes"

	"github.com/dave/stablegob"
)

// stableEncode gob-encodes v using stablegob, which sorts map keys
// before writing so that two equal values always produce identical
// bytes, regardless of Go's randomized map iteration order. Grounded
// on the teacher's pkg/dex/gob.go stableGobEncode, used there to make
// transaction hashing reproducible; used here to make a trade log's
// serialized form reproducible across nodes for auditing.
func stableEncode(v interface{}) ([]byte, error) {
	var buf bytes.Buffer
	enc := stablegob.NewEncoder(&buf)
	if err := enc.Encode(v); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// InMemoryTradeLog is a TradeLog that keeps every fill in order,
// useful for tests and for a node that wants to replay/audit its
// trade history without a full database. Each record's stable-encoded
// form is cached alongside it so two logs with identical trade
// histories always compare byte-for-byte equal.
type InMemoryTradeLog struct {
	Records []TradeRecord
}

// TradeRecord is one logged fill, with the fields RecordMatchedTrade
// receives plus its deterministic encoding.
type TradeRecord struct {
	SellerAddr, BuyerAddr       string
	PropertySold, PropertyBought uint32
	AmountSold, AmountBought    int64
	Block                       int64
	Encoded                     []byte
}

func (l *InMemoryTradeLog) RecordMatchedTrade(seller, buyer Order, propertySold uint32, amountSold int64, propertyBought uint32, amountBought int64, block int64) {
	rec := TradeRecord{
		SellerAddr:     seller.Addr.String(),
		BuyerAddr:      buyer.Addr.String(),
		PropertySold:   propertySold,
		AmountSold:     amountSold,
		PropertyBought: propertyBought,
		AmountBought:   amountBought,
		Block:          block,
	}
	// A stable-encoding failure here would mean TradeRecord stopped
	// being gob-encodable, a programming error rather than routine
	// input; encoded is simply left nil so callers relying on it can
	// detect the problem instead of panicking on the matching path.
	if b, err := stableEncode(rec); err == nil {
		rec.Encoded = b
	}
	l.Records = append(l.Records, rec)
}
