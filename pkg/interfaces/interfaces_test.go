package interfaces

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/metadex-go/metadex/pkg/chain"
	"github.com/metadex-go/metadex/pkg/ledger"
	"github.com/metadex-go/metadex/pkg/property"
)

func TestRegistrySatisfiesPropertyRegistry(t *testing.T) {
	var r PropertyRegistry = property.New()
	assert.True(t, r.Exists(property.MSC))
}

func TestLedgerSatisfiesBalanceLedger(t *testing.T) {
	var l BalanceLedger = ledger.New()
	assert.Equal(t, int64(0), l.Get(chain.ZeroAddr, property.MSC, ledger.Balance))
}
