package rpc

import (
	"context"
	"sync"
	"time"

	"github.com/Mohsinsiddi/autosend/internal/chain"
)

// ProbeTimeout bounds each endpoint probe.
const ProbeTimeout = 5 * time.Second

// Probe pings every URL concurrently with eth_blockNumber. Results keep the
// order of urls.
func Probe(ctx context.Context, urls []string) []Endpoint {
	results := make([]Endpoint, len(urls))
	var wg sync.WaitGroup

	for i, url := range urls {
		wg.Add(1)
		go func(idx int, u string) {
			defer wg.Done()
			pctx, cancel := context.WithTimeout(ctx, ProbeTimeout)
			defer cancel()

			c := chain.NewEVMClient(u)
			defer c.Close()
			latency, block, err := c.Ping(pctx)
			results[idx] = Endpoint{URL: u, Latency: latency, BlockNumber: block, Err: err}
		}(i, url)
	}

	wg.Wait()
	return results
}

// SelectBest returns the URL a run should use. A single URL is returned
// without probing. The probe results are returned for reporting; they are
// nil when no probe ran.
func SelectBest(ctx context.Context, urls []string, algo Algorithm) (string, []Endpoint, error) {
	switch len(urls) {
	case 0:
		return "", nil, ErrNoHealthyRPC
	case 1:
		return urls[0], nil, nil
	}
	endpoints := Probe(ctx, urls)
	winner, err := Pick(endpoints, algo)
	if err != nil {
		return "", endpoints, err
	}
	return winner.URL, endpoints, nil
}
