// check-balances: queries the SOL balance of a set of accounts on every
// public cluster in parallel and prints a summary table.
//
// Run from the module root:
//
//	go run ./scripts/check-balances <address>...
package main

import (
	"context"
	"fmt"
	"os"
	"sort"
	"strings"
	"sync"
	"text/tabwriter"
	"time"

	"github.com/Mohsinsiddi/solsend/internal/chain"
	"github.com/gagliardetto/solana-go"
	"golang.org/x/sync/errgroup"
)

const (
	rpcTimeout  = 12 * time.Second
	maxInFlight = 6
)

type result struct {
	network chain.Network
	account string // short form
	balance string
	err     string
}

func main() {
	if len(os.Args) < 2 {
		fmt.Fprintln(os.Stderr, "usage: check-balances <address>...")
		os.Exit(2)
	}

	var accounts []solana.PublicKey
	for _, arg := range os.Args[1:] {
		pk, err := solana.PublicKeyFromBase58(arg)
		if err != nil {
			fmt.Fprintf(os.Stderr, "skipping %q: %v\n", arg, err)
			continue
		}
		accounts = append(accounts, pk)
	}

	var (
		mu      sync.Mutex
		results []result
		g       errgroup.Group
	)
	g.SetLimit(maxInFlight)

	for _, c := range chain.NewRegistry().All() {
		if c.Network == chain.Localnet {
			continue
		}
		client := chain.NewSolanaClient(c.RPC)

		for _, pk := range accounts {
			g.Go(func() error {
				ctx, cancel := context.WithTimeout(context.Background(), rpcTimeout)
				defer cancel()

				r := result{network: c.Network, account: shortAddr(pk.String()), balance: "—"}
				bal, err := client.GetBalance(ctx, pk)
				if err != nil {
					r.err = shortErr(err)
				} else {
					r.balance = trimZeros(bal.SOL)
				}

				mu.Lock()
				results = append(results, r)
				mu.Unlock()
				return nil
			})
		}
	}

	g.Wait() //nolint:errcheck
	printTable(results)
}

func printTable(results []result) {
	sort.Slice(results, func(i, j int) bool {
		a, b := results[i], results[j]
		if a.network != b.network {
			return a.network < b.network
		}
		return a.account < b.account
	})

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "NETWORK\tACCOUNT\tBALANCE (SOL)\tNOTE")
	fmt.Fprintln(w, strings.Repeat("-", 12)+"\t"+
		strings.Repeat("-", 14)+"\t"+
		strings.Repeat("-", 16)+"\t"+
		strings.Repeat("-", 12))

	last := chain.Network("")
	for _, r := range results {
		if r.network != last && last != "" {
			fmt.Fprintln(w, "\t\t\t")
		}
		last = r.network
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", r.network, r.account, r.balance, r.err)
	}
	w.Flush()
}

func shortAddr(addr string) string {
	if len(addr) < 10 {
		return addr
	}
	return addr[:6] + "…" + addr[len(addr)-4:]
}

func shortErr(err error) string {
	s := err.Error()
	if len(s) > 30 {
		return s[:30] + "…"
	}
	return s
}

// trimZeros removes trailing zeros after the decimal point: "0.050000000" → "0.05"
func trimZeros(s string) string {
	if !strings.Contains(s, ".") {
		return s
	}
	s = strings.TrimRight(s, "0")
	s = strings.TrimRight(s, ".")
	if s == "" {
		return "0"
	}
	return s
}
