package rpc

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// ErrNoHealthyRPC is returned when no configured endpoint answered.
var ErrNoHealthyRPC = errors.New("no healthy RPC endpoint available")

// Algorithm decides which probed endpoint a run uses.
type Algorithm string

const (
	// AlgorithmFastest takes the lowest-latency endpoint among those close
	// to the highest block seen.
	AlgorithmFastest Algorithm = "fastest"
	// AlgorithmFailover takes the first endpoint, in configured order, that
	// answered.
	AlgorithmFailover Algorithm = "failover"

	// Nodes more than this many blocks behind the best are skipped.
	staleBlockThreshold = 3
)

// ParseAlgorithm accepts "fastest", "failover" or "" (fastest).
func ParseAlgorithm(s string) (Algorithm, error) {
	switch a := Algorithm(strings.ToLower(strings.TrimSpace(s))); a {
	case "":
		return AlgorithmFastest, nil
	case AlgorithmFastest, AlgorithmFailover:
		return a, nil
	default:
		return "", fmt.Errorf("unknown RPC algorithm %q", s)
	}
}

// Endpoint is one probed RPC URL.
type Endpoint struct {
	URL         string
	Latency     time.Duration
	BlockNumber uint64
	Err         error
}

// Healthy reports whether the probe succeeded.
func (e Endpoint) Healthy() bool { return e.Err == nil }

// Pick chooses an endpoint from probe results.
func Pick(endpoints []Endpoint, algo Algorithm) (Endpoint, error) {
	if algo == AlgorithmFailover {
		return pickFailover(endpoints)
	}
	return pickFastest(endpoints)
}

func pickFastest(endpoints []Endpoint) (Endpoint, error) {
	var bestBlock uint64
	for _, e := range endpoints {
		if e.Healthy() && e.BlockNumber > bestBlock {
			bestBlock = e.BlockNumber
		}
	}

	var winner *Endpoint
	for i := range endpoints {
		e := &endpoints[i]
		if !e.Healthy() || bestBlock-e.BlockNumber > staleBlockThreshold {
			continue
		}
		if winner == nil || faster(e, winner) {
			winner = e
		}
	}
	if winner == nil {
		return Endpoint{}, ErrNoHealthyRPC
	}
	return *winner, nil
}

// faster orders by latency, then by higher block. Equal endpoints keep
// configured order.
func faster(a, b *Endpoint) bool {
	if a.Latency != b.Latency {
		return a.Latency < b.Latency
	}
	return a.BlockNumber > b.BlockNumber
}

func pickFailover(endpoints []Endpoint) (Endpoint, error) {
	for _, e := range endpoints {
		if e.Healthy() {
			return e, nil
		}
	}
	return Endpoint{}, ErrNoHealthyRPC
}
