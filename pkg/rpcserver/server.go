// Package rpcserver exposes the running core's order book and ledger
// state over net/rpc, the way the teacher's pkg/dex/rpc_server.go
// exposes wallet/account state: a thin, mutex-guarded read layer in
// front of state the block driver otherwise owns exclusively. Here it
// serves status and debug-dump queries instead of wallet balances.
package rpcserver

import (
	"errors"
	"net"
	"net/http"
	"net/rpc"
	"sync"

	log "github.com/helinwang/log15"
	"github.com/shopspring/decimal"

	"github.com/metadex-go/metadex/pkg/chain"
	"github.com/metadex-go/metadex/pkg/ledger"
	"github.com/metadex-go/metadex/pkg/metadex"
	"github.com/metadex-go/metadex/pkg/property"
)

// Snapshot is the state the server reads from. The block driver calls
// Update after every applied block; RPC handlers take the chain-lock
// before reading so a query never observes a partially-applied block.
type Snapshot struct {
	Book  *metadex.Book
	L     *ledger.Ledger
	Props *property.Registry
}

// Server is the RPC front end. The zero value is not usable; build
// with New.
type Server struct {
	lock *chain.Lock

	mu   sync.Mutex
	snap Snapshot
}

func New(lock *chain.Lock) *Server {
	return &Server{lock: lock}
}

// Update installs the latest state snapshot, called by the block
// driver immediately after applying a block.
func (s *Server) Update(snap Snapshot) {
	s.mu.Lock()
	s.snap = snap
	s.mu.Unlock()
}

// Start registers the RPC service and serves it over HTTP at addr,
// mirroring the teacher's RPCServer.Start.
func (s *Server) Start(addr string) error {
	service := &StatusService{s: s}
	if err := rpc.Register(service); err != nil {
		return err
	}

	rpc.HandleHTTP()
	l, err := net.Listen("tcp", addr)
	if err != nil {
		return err
	}
	go func() {
		if err := http.Serve(l, nil); err != nil {
			log.Error("error serving metadex RPC server", "err", err)
		}
	}()
	return nil
}

// OrderBalanceArgs names an account/property pair for a balance query.
type OrderBalanceArgs struct {
	Addr     chain.Addr
	Property uint32
}

// BalanceReply reports both tally kinds for an (addr, property) pair.
type BalanceReply struct {
	Balance        int64
	MetaDExReserve int64
}

// BookLevelsArgs names a property whose resting orders (indexed by
// what each one sells) should be listed.
type BookLevelsArgs struct {
	Property uint32
}

// OrderReply is the wire-safe projection of metadex.Order returned to
// RPC clients.
type OrderReply struct {
	Addr            chain.Addr
	Block           int64
	Idx             uint32
	TxID            chain.Hash
	Property        uint32
	AmountForSale   int64
	DesiredProperty uint32
	AmountDesired   int64
	AmountRemaining int64
	UnitPrice       string
}

// StatusService is the net/rpc receiver registered by Start.
type StatusService struct {
	s *Server
}

// Balance reports an account's BALANCE and METADEX_RESERVE tallies of
// a property.
func (svc *StatusService) Balance(args OrderBalanceArgs, reply *BalanceReply) error {
	svc.s.mu.Lock()
	snap := svc.s.snap
	svc.s.mu.Unlock()

	if snap.L == nil {
		return errors.New("metadex rpc: waiting for first block")
	}

	svc.s.lock.Lock()
	defer svc.s.lock.Unlock()

	reply.Balance = snap.L.Get(args.Addr, args.Property, ledger.Balance)
	reply.MetaDExReserve = snap.L.Get(args.Addr, args.Property, ledger.MetaDExReserve)
	return nil
}

// BookLevels lists every order currently resting that sells
// args.Property, across all price levels, in priority order.
func (svc *StatusService) BookLevels(args BookLevelsArgs, reply *[]OrderReply) error {
	svc.s.mu.Lock()
	snap := svc.s.snap
	svc.s.mu.Unlock()

	if snap.Book == nil {
		return errors.New("metadex rpc: waiting for first block")
	}

	svc.s.lock.Lock()
	defer svc.s.lock.Unlock()

	var out []OrderReply
	for _, o := range allOrders(snap.Book, args.Property) {
		out = append(out, OrderReply{
			Addr: o.Addr, Block: o.Block, Idx: o.Idx, TxID: o.TxID,
			Property: o.Property, AmountForSale: o.AmountForSale,
			DesiredProperty: o.DesiredProperty, AmountDesired: o.AmountDesired,
			AmountRemaining: o.AmountRemaining,
			UnitPrice:       formatUnitPrice(o),
		})
	}
	*reply = out
	return nil
}

// formatUnitPrice renders an order's exact rational unit price as a
// decimal string for human-facing display. decimal.Decimal, not
// float64, does the division, rounded to 8 decimal places, so a price
// that does not terminate in base 10 is shown rounded; the rational
// itself stays the source of truth everywhere matching and
// cancellation read it.
func formatUnitPrice(o metadex.Order) string {
	p := o.UnitPrice()
	num := decimal.NewFromBigInt(p.Num(), 0)
	den := decimal.NewFromBigInt(p.Denom(), 0)
	return num.DivRound(den, 8).String()
}

func allOrders(book *metadex.Book, prop uint32) []metadex.Order {
	var out []metadex.Order
	for _, lv := range book.Levels(prop) {
		out = append(out, book.Orders(prop, lv.Price())...)
	}
	return out
}
