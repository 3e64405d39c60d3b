// check-balances: queries the native balance of the configured sender and
// every allow-listed recipient on each configured RPC endpoint in parallel
// and prints a summary table. Reads the same .env as autosend.
//
// Run from the module root:
//
//	go run ./scripts/check-balances
package main

import (
	"context"
	"fmt"
	"net/url"
	"os"
	"sort"
	"strings"
	"sync"
	"text/tabwriter"
	"time"

	"github.com/Mohsinsiddi/autosend/internal/chain"
	"github.com/Mohsinsiddi/autosend/internal/config"
	"github.com/Mohsinsiddi/autosend/internal/transfer"
)

const rpcTimeout = 12 * time.Second

type result struct {
	endpoint string
	network  string
	role     string
	account  string
	balance  string
	err      string
}

func main() {
	cfg, err := config.Load("")
	if err != nil {
		fmt.Fprintln(os.Stderr, "check-balances:", err)
		os.Exit(1)
	}

	accounts := map[string]string{cfg.SenderAddress: "sender"}
	for _, r := range cfg.Recipients {
		if _, ok := accounts[r]; !ok {
			accounts[r] = "recipient"
		}
	}

	var (
		mu      sync.Mutex
		wg      sync.WaitGroup
		results []result
	)
	for _, rpcURL := range cfg.RPCEndpoints {
		for account, role := range accounts {
			wg.Add(1)
			go func(rpcURL, account, role string) {
				defer wg.Done()
				r := check(rpcURL, account, role)
				mu.Lock()
				results = append(results, r)
				mu.Unlock()
			}(rpcURL, account, role)
		}
	}
	wg.Wait()

	printTable(results)
}

func check(rpcURL, account, role string) result {
	ctx, cancel := context.WithTimeout(context.Background(), rpcTimeout)
	defer cancel()

	client := chain.NewEVMClient(rpcURL)
	defer client.Close()

	r := result{endpoint: hostOf(rpcURL), role: role, account: shortAddr(account), balance: "-"}
	addr, err := transfer.ParseAddress(account)
	if err != nil {
		r.err = "bad address"
		return r
	}
	id, err := client.ChainID(ctx)
	if err != nil {
		r.err = "unreachable"
		return r
	}
	r.network = chain.NetworkName(id)

	bal, err := client.GetBalance(ctx, addr)
	if err != nil {
		r.err = shortErr(err)
		return r
	}
	r.balance = chain.FormatEther(bal)
	return r
}

func printTable(results []result) {
	sort.Slice(results, func(i, j int) bool {
		a, b := results[i], results[j]
		if a.endpoint != b.endpoint {
			return a.endpoint < b.endpoint
		}
		if a.role != b.role {
			return a.role > b.role // sender first
		}
		return a.account < b.account
	})

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ENDPOINT\tNETWORK\tROLE\tACCOUNT\tBALANCE (ETH)\tNOTE")
	fmt.Fprintln(w, strings.Repeat("-", 24)+"\t"+
		strings.Repeat("-", 10)+"\t"+
		strings.Repeat("-", 9)+"\t"+
		strings.Repeat("-", 14)+"\t"+
		strings.Repeat("-", 14)+"\t"+
		strings.Repeat("-", 12))

	last := ""
	for _, r := range results {
		if r.endpoint != last {
			if last != "" {
				fmt.Fprintln(w, "\t\t\t\t\t")
			}
			last = r.endpoint
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\n",
			r.endpoint, r.network, r.role, r.account, r.balance, r.err)
	}
	w.Flush()
}

// hostOf drops path and query, which often hold provider API keys.
func hostOf(raw string) string {
	u, err := url.Parse(raw)
	if err != nil || u.Host == "" {
		return "?"
	}
	return u.Host
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
