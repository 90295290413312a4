package metadex

import (
	"bytes"
	"strings"
	"testing"

	"github.com/ethereum/go-ethereum/rlp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/metadex-go/metadex/pkg/chain"
)

func TestWriteCSVSnapshotFormatAndChecksum(t *testing.T) {
	book := NewBook()
	txid := chain.HashFromBytes([]byte("tx"))
	o := Order{Addr: alice, Block: 7, Idx: 2, TxID: txid, Property: 1, AmountForSale: 10, DesiredProperty: 2, AmountDesired: 20, AmountRemaining: 10, Subaction: SubactionNew}
	book.Insert(o)

	var buf bytes.Buffer
	sum, err := WriteCSVSnapshot(&buf, book)
	require.NoError(t, err)

	line := strings.TrimSpace(buf.String())
	fields := strings.Split(line, ",")
	require.Len(t, fields, 10)
	assert.Equal(t, alice.String(), fields[0])
	assert.Equal(t, "7", fields[1])
	assert.Equal(t, "10", fields[2])
	assert.Equal(t, "1", fields[3])
	assert.Equal(t, "20", fields[4])
	assert.Equal(t, "2", fields[5])
	assert.Equal(t, "1", fields[6])
	assert.Equal(t, "2", fields[7])
	assert.Equal(t, txid.String(), fields[8])
	assert.Equal(t, "10", fields[9])

	assert.NotEqual(t, [32]byte{}, sum)
}

func TestBookRLPRoundTrip(t *testing.T) {
	book := NewBook()
	o1 := Order{Addr: alice, Block: 1, Idx: 0, Property: 1, DesiredProperty: 2, AmountForSale: 10, AmountDesired: 20, AmountRemaining: 10}
	o2 := Order{Addr: bob, Block: 1, Idx: 1, Property: 1, DesiredProperty: 2, AmountForSale: 5, AmountDesired: 10, AmountRemaining: 5}
	book.Insert(o1)
	book.Insert(o2)

	var buf bytes.Buffer
	require.NoError(t, book.EncodeRLP(&buf))

	restored := NewBook()
	s := rlp.NewStream(bytes.NewReader(buf.Bytes()), 0)
	require.NoError(t, restored.DecodeRLP(s))

	got := restored.Orders(1, o1.UnitPrice())
	require.Len(t, got, 2)
	assert.Equal(t, alice, got[0].Addr)
	assert.Equal(t, bob, got[1].Addr)
}
