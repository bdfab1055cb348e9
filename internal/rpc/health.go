package rpc

import (
	"context"
	"time"

	"github.com/Mohsinsiddi/solsend/internal/chain"
)

const healthTimeout = 5 * time.Second

// HealthCheck pings a single Solana RPC and returns whether it's healthy.
// A node is considered healthy if it responds within healthTimeout and its
// slot is within staleSlotThreshold of bestSlot (pass 0 to skip the check).
func HealthCheck(ctx context.Context, url string, bestSlot uint64) (Endpoint, error) {
	timeoutCtx, cancel := context.WithTimeout(ctx, healthTimeout)
	defer cancel()

	c := chain.NewSolanaClient(url)
	latency, slot, err := c.Ping(timeoutCtx)

	ep := Endpoint{
		URL:     url,
		Latency: latency,
		Slot:    slot,
		Healthy: err == nil,
		Checked: true,
	}

	if err == nil && isStale(slot, bestSlot) {
		ep.Healthy = false
	}

	return ep, err
}
