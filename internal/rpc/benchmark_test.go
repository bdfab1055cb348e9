package rpc

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/Mohsinsiddi/solsend/internal/chain/chaintest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ---------------------------------------------------------------------------
// ResultsToEndpoints: pure function
// ---------------------------------------------------------------------------

func TestResultsToEndpointsEmpty(t *testing.T) {
	out := ResultsToEndpoints(nil)
	assert.Empty(t, out)

	out2 := ResultsToEndpoints([]BenchmarkResult{})
	assert.Empty(t, out2)
}

func TestResultsToEndpointsHealthy(t *testing.T) {
	results := []BenchmarkResult{
		{URL: "https://rpc1.example.com", Latency: 50 * time.Millisecond, Slot: 100, Err: nil},
	}
	endpoints := ResultsToEndpoints(results)
	require.Len(t, endpoints, 1)

	ep := endpoints[0]
	assert.Equal(t, "https://rpc1.example.com", ep.URL)
	assert.Equal(t, 50*time.Millisecond, ep.Latency)
	assert.Equal(t, uint64(100), ep.Slot)
	assert.True(t, ep.Healthy)
	assert.True(t, ep.Checked)
}

func TestResultsToEndpointsUnhealthy(t *testing.T) {
	results := []BenchmarkResult{
		{URL: "https://dead.rpc.example.com", Err: errors.New("connection refused")},
	}
	endpoints := ResultsToEndpoints(results)
	require.Len(t, endpoints, 1)

	ep := endpoints[0]
	assert.False(t, ep.Healthy)
	assert.True(t, ep.Checked, "Checked must always be true after ResultsToEndpoints")
}

func TestResultsToEndpointsMixed(t *testing.T) {
	results := []BenchmarkResult{
		{URL: "https://rpc1.example.com", Err: nil},
		{URL: "https://rpc2.example.com", Err: errors.New("timeout")},
		{URL: "https://rpc3.example.com", Err: nil},
	}
	endpoints := ResultsToEndpoints(results)
	require.Len(t, endpoints, 3)

	assert.True(t, endpoints[0].Healthy)
	assert.False(t, endpoints[1].Healthy)
	assert.True(t, endpoints[2].Healthy)

	// All must have Checked=true.
	for _, ep := range endpoints {
		assert.True(t, ep.Checked)
	}
}

func TestResultsToEndpointsPreservesOrder(t *testing.T) {
	urls := []string{"https://a.com", "https://b.com", "https://c.com"}
	results := make([]BenchmarkResult, len(urls))
	for i, u := range urls {
		results[i] = BenchmarkResult{URL: u}
	}

	endpoints := ResultsToEndpoints(results)
	require.Len(t, endpoints, len(urls))
	for i, u := range urls {
		assert.Equal(t, u, endpoints[i].URL, "order must be preserved at index %d", i)
	}
}

func TestResultsToEndpointsPreservesLatency(t *testing.T) {
	results := []BenchmarkResult{
		{URL: "https://fast.rpc", Latency: 10 * time.Millisecond},
		{URL: "https://slow.rpc", Latency: 500 * time.Millisecond},
	}
	endpoints := ResultsToEndpoints(results)
	require.Len(t, endpoints, 2)

	assert.Equal(t, 10*time.Millisecond, endpoints[0].Latency)
	assert.Equal(t, 500*time.Millisecond, endpoints[1].Latency)
}

func TestResultsToEndpointsCheckedAlwaysTrue(t *testing.T) {
	// Even for zero-value results, Checked must be true.
	results := []BenchmarkResult{{}, {}, {}}
	endpoints := ResultsToEndpoints(results)
	for _, ep := range endpoints {
		assert.True(t, ep.Checked)
	}
}

func TestResultsToEndpointsMarksLaggingUnhealthy(t *testing.T) {
	results := []BenchmarkResult{
		{URL: "https://tip.rpc", Slot: 1000},
		{URL: "https://lagging.rpc", Slot: 900},
		{URL: "https://dead.rpc", Slot: 5000, Err: errors.New("timeout")},
	}
	endpoints := ResultsToEndpoints(results)
	require.Len(t, endpoints, 3)
	assert.True(t, endpoints[0].Healthy)
	assert.False(t, endpoints[1].Healthy, "100 slots behind the best healthy node")
	assert.False(t, endpoints[2].Healthy, "failed nodes do not set the best slot")
}

// ---------------------------------------------------------------------------
// Benchmark / Best
// ---------------------------------------------------------------------------

func TestBenchmarkPreservesOrder(t *testing.T) {
	a := chaintest.NewServer(t)
	a.SetSlot(500)
	b := chaintest.NewServer(t)
	b.SetSlot(501)

	results := Benchmark(context.Background(), []string{a.URL, "http://127.0.0.1:1", b.URL})
	require.Len(t, results, 3)

	assert.Equal(t, a.URL, results[0].URL)
	assert.NoError(t, results[0].Err)
	assert.Equal(t, uint64(500), results[0].Slot)

	assert.Error(t, results[1].Err)

	assert.Equal(t, b.URL, results[2].URL)
	assert.Equal(t, uint64(501), results[2].Slot)
}

func TestBestSkipsDeadEndpoint(t *testing.T) {
	live := chaintest.NewServer(t)
	url, err := Best(context.Background(), []string{"http://127.0.0.1:1", live.URL}, AlgorithmFailover)
	require.NoError(t, err)
	assert.Equal(t, live.URL, url)
}

func TestBestSingleURL(t *testing.T) {
	// When only one URL is given, Best returns it immediately without
	// running any benchmark (so no real network call is needed).
	ctx := context.Background()
	url, err := Best(ctx, []string{"https://only.rpc.example.com"}, AlgorithmFastest)
	require.NoError(t, err)
	assert.Equal(t, "https://only.rpc.example.com", url)
}

func TestBestNoURLs(t *testing.T) {
	// Zero URLs: Pick returns ErrNoHealthyRPC.
	ctx := context.Background()
	_, err := Best(ctx, []string{}, AlgorithmFastest)
	assert.ErrorIs(t, err, ErrNoHealthyRPC)
}

func TestSelectBest(t *testing.T) {
	_, err := SelectBest(context.Background(), nil, "")
	assert.ErrorIs(t, err, ErrNoHealthyRPC)

	url, err := SelectBest(context.Background(), []string{"https://one.rpc"}, "bogus")
	require.NoError(t, err, "a single URL skips algorithm parsing")
	assert.Equal(t, "https://one.rpc", url)

	_, err = SelectBest(context.Background(), []string{"https://a.rpc", "https://b.rpc"}, "bogus")
	assert.Error(t, err)
}
