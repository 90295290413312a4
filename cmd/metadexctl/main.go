// Command metadexctl is a urfave/cli front end for querying a running
// metadexd's status RPC server: account balances and resting orders,
// adapted from cmd/wallet/wallet.go's status/account subcommands to
// query the MetaDEx-specific StatusService instead of wallet state.
package main

import (
	"encoding/hex"
	"fmt"
	"net/rpc"
	"os"
	"text/tabwriter"

	"github.com/urfave/cli"

	"github.com/metadex-go/metadex/pkg/chain"
	"github.com/metadex-go/metadex/pkg/rpcserver"
)

var rpcAddr string

func parseAddr(s string) (chain.Addr, error) {
	b, err := hex.DecodeString(s)
	if err != nil {
		return chain.Addr{}, err
	}
	return chain.AddrFromBytes(b), nil
}

func printBalance(c *cli.Context) error {
	addrStr := c.Args().Get(0)
	propertyStr := c.Args().Get(1)
	if addrStr == "" || propertyStr == "" {
		return fmt.Errorf("usage: metadexctl balance <addr> <property>")
	}

	addr, err := parseAddr(addrStr)
	if err != nil {
		return err
	}

	var property uint32
	if _, err := fmt.Sscanf(propertyStr, "%d", &property); err != nil {
		return err
	}

	client, err := rpc.DialHTTP("tcp", rpcAddr)
	if err != nil {
		return err
	}
	defer client.Close()

	var reply rpcserver.BalanceReply
	args := rpcserver.OrderBalanceArgs{Addr: addr, Property: property}
	if err := client.Call("StatusService.Balance", args, &reply); err != nil {
		return err
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintf(w, "BALANCE\tMETADEX_RESERVE\n")
	fmt.Fprintf(w, "%d\t%d\n", reply.Balance, reply.MetaDExReserve)
	return w.Flush()
}

func printBookLevels(c *cli.Context) error {
	propertyStr := c.Args().First()
	if propertyStr == "" {
		return fmt.Errorf("usage: metadexctl book <property>")
	}

	var property uint32
	if _, err := fmt.Sscanf(propertyStr, "%d", &property); err != nil {
		return err
	}

	client, err := rpc.DialHTTP("tcp", rpcAddr)
	if err != nil {
		return err
	}
	defer client.Close()

	var orders []rpcserver.OrderReply
	args := rpcserver.BookLevelsArgs{Property: property}
	if err := client.Call("StatusService.BookLevels", args, &orders); err != nil {
		return err
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintf(w, "ADDR\tBLOCK\tIDX\tFORSALE\tDESIRED PROPERTY\tDESIRED\tREMAINING\tUNIT PRICE\n")
	for _, o := range orders {
		fmt.Fprintf(w, "%s\t%d\t%d\t%d\t%d\t%d\t%d\t%s\n",
			o.Addr, o.Block, o.Idx, o.AmountForSale, o.DesiredProperty, o.AmountDesired, o.AmountRemaining, o.UnitPrice)
	}
	return w.Flush()
}

func main() {
	app := cli.NewApp()
	app.Name = "metadexctl"
	app.Usage = "query a running metadexd's order book and balances"
	app.Flags = []cli.Flag{
		cli.StringFlag{
			Name:        "rpc",
			Value:       "localhost:7667",
			Usage:       "metadexd status RPC address",
			Destination: &rpcAddr,
		},
	}
	app.Commands = []cli.Command{
		{
			Name:   "balance",
			Usage:  "print an account's BALANCE and METADEX_RESERVE tallies of a property",
			Action: printBalance,
		},
		{
			Name:   "book",
			Usage:  "list resting orders selling a property",
			Action: printBookLevels,
		},
	}

	if err := app.Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, "metadexctl:", err)
		os.Exit(1)
	}
}
