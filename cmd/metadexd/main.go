// Command metadexd runs the MetaDEx matching core as a standalone
// process: an order book, a balance ledger, the transaction
// dispatcher, and the status RPC server. It runs no block loop and
// dispatches no transactions itself; the block feed belongs to the
// surrounding Omni Layer node (see DESIGN.md).
package main

import (
	"flag"
	"fmt"
	"os"

	log "github.com/helinwang/log15"

	"github.com/metadex-go/metadex/pkg/chain"
	"github.com/metadex-go/metadex/pkg/ledger"
	"github.com/metadex-go/metadex/pkg/metadex"
	"github.com/metadex-go/metadex/pkg/property"
	"github.com/metadex-go/metadex/pkg/rpcserver"
	"github.com/metadex-go/metadex/pkg/txn"
)

func main() {
	rpcAddr := flag.String("rpc", ":7667", "address the status RPC server listens on")
	verbose := flag.Int("verbose", 3, "log verbosity, 0 (silent) to 5 (debug)")
	flag.Parse()

	log.Root().SetHandler(log.LvlFilterHandler(log.Lvl(*verbose), log.StdoutHandler))

	lock := &chain.Lock{}
	book := metadex.NewBook()
	l := ledger.New()
	props := property.New()

	dedup, err := txn.NewDedup(4096)
	if err != nil {
		fmt.Fprintln(os.Stderr, "metadexd:", err)
		os.Exit(1)
	}

	dispatcher := &txn.Dispatcher{
		Book:   book,
		Ledger: l,
		Props:  props,
		Dedup:  dedup,
		Allowed: func(block int64, property uint32, t txn.Type, version uint16) bool {
			return true
		},
	}

	// The surrounding node calls dispatcher.DispatchOne per decoded
	// transaction as it applies each block; a *txn.ConsensusFailure
	// coming back means an invariant was violated deep inside the
	// matching engine and processing must stop rather than continue
	// into an inconsistent state.
	_ = dispatcher

	server := rpcserver.New(lock)
	server.Update(rpcserver.Snapshot{Book: book, L: l, Props: props})

	log.Info("starting metadex status server", "addr", *rpcAddr)
	if err := server.Start(*rpcAddr); err != nil {
		log.Error("failed to start status server", "err", err)
		os.Exit(1)
	}

	log.Info("metadexd running; block ingestion is driven by the surrounding node process")
	select {}
}
