package metadex

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/metadex-go/metadex/pkg/chain"
)

func TestInMemoryTradeLogRecordsAndEncodesDeterministically(t *testing.T) {
	var log InMemoryTradeLog

	seller := Order{Addr: chain.AddrFromBytes([]byte("seller")), Property: 3}
	buyer := Order{Addr: chain.AddrFromBytes([]byte("buyer")), Property: 4}

	log.RecordMatchedTrade(seller, buyer, 3, 10, 4, 20, 100)

	require.Len(t, log.Records, 1)
	rec := log.Records[0]
	assert.Equal(t, uint32(3), rec.PropertySold)
	assert.Equal(t, int64(10), rec.AmountSold)
	assert.Equal(t, uint32(4), rec.PropertyBought)
	assert.Equal(t, int64(20), rec.AmountBought)
	assert.NotEmpty(t, rec.Encoded)

	// Re-encoding an identical record must produce byte-identical
	// output: this is the whole point of stablegob over plain gob.
	again, err := stableEncode(TradeRecord{
		SellerAddr: rec.SellerAddr, BuyerAddr: rec.BuyerAddr,
		PropertySold: rec.PropertySold, AmountSold: rec.AmountSold,
		PropertyBought: rec.PropertyBought, AmountBought: rec.AmountBought,
		Block: rec.Block,
	})
	require.NoError(t, err)
	assert.Equal(t, rec.Encoded, again)
}

func TestInMemoryTradeLogAppendsInOrder(t *testing.T) {
	var log InMemoryTradeLog
	a := Order{Addr: chain.AddrFromBytes([]byte("a"))}
	b := Order{Addr: chain.AddrFromBytes([]byte("b"))}

	log.RecordMatchedTrade(a, b, 1, 1, 2, 1, 1)
	log.RecordMatchedTrade(a, b, 1, 1, 2, 1, 2)

	require.Len(t, log.Records, 2)
	assert.Equal(t, int64(1), log.Records[0].Block)
	assert.Equal(t, int64(2), log.Records[1].Block)
}
