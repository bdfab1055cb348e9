package rpc

import (
	"context"
	"time"

	"github.com/Mohsinsiddi/solsend/internal/chain"
	"golang.org/x/sync/errgroup"
)

// maxParallelPings bounds concurrent benchmark requests.
const maxParallelPings = 8

// BenchmarkResult holds the result of a single endpoint benchmark.
type BenchmarkResult struct {
	URL     string
	Latency time.Duration
	Slot    uint64
	Err     error
}

// Benchmark pings all Solana RPC URLs in parallel and returns results in
// input order. A failing endpoint does not cancel the others.
func Benchmark(ctx context.Context, urls []string) []BenchmarkResult {
	results := make([]BenchmarkResult, len(urls))

	var g errgroup.Group
	g.SetLimit(maxParallelPings)
	for i, url := range urls {
		g.Go(func() error {
			c := chain.NewSolanaClient(url)
			latency, slot, err := c.Ping(ctx)
			results[i] = BenchmarkResult{
				URL:     url,
				Latency: latency,
				Slot:    slot,
				Err:     err,
			}
			return nil
		})
	}

	g.Wait() //nolint:errcheck
	return results
}

// ResultsToEndpoints converts benchmark results to picker Endpoints.
// All returned endpoints have Checked: true since they have been actively tested.
// Endpoints lagging the best slot are marked unhealthy.
func ResultsToEndpoints(results []BenchmarkResult) []Endpoint {
	var bestSlot uint64
	for _, r := range results {
		if r.Err == nil && r.Slot > bestSlot {
			bestSlot = r.Slot
		}
	}

	endpoints := make([]Endpoint, 0, len(results))
	for _, r := range results {
		endpoints = append(endpoints, Endpoint{
			URL:     r.URL,
			Latency: r.Latency,
			Slot:    r.Slot,
			Healthy: r.Err == nil && !isStale(r.Slot, bestSlot),
			Checked: true,
		})
	}
	return endpoints
}

// Best runs a benchmark and returns the best endpoint URL using the given algorithm.
func Best(ctx context.Context, urls []string, algo Algorithm) (string, error) {
	if len(urls) == 1 {
		return urls[0], nil
	}

	results := Benchmark(ctx, urls)
	endpoints := ResultsToEndpoints(results)

	picker := NewPicker(algo)
	winner, err := picker.Pick(endpoints)
	if err != nil {
		return "", err
	}
	return winner.URL, nil
}
