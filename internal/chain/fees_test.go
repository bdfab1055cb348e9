package chain_test

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/Mohsinsiddi/solsend/internal/chain"
	"github.com/Mohsinsiddi/solsend/internal/chain/chaintest"
	"github.com/gagliardetto/solana-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEstimateTransferFee(t *testing.T) {
	srv := chaintest.NewServer(t)
	from := solana.NewWallet().PublicKey()
	to := solana.SystemProgramID

	var probe solana.Message
	srv.Handle("getFeeForMessage", func(params json.RawMessage) (any, *chaintest.RPCError) {
		var args []json.RawMessage
		require.NoError(t, json.Unmarshal(params, &args))
		var b64 string
		require.NoError(t, json.Unmarshal(args[0], &b64))
		require.NoError(t, probe.UnmarshalBase64(b64))
		return map[string]any{"context": map[string]any{"slot": 1}, "value": 5000}, nil
	})

	fee, err := newClient(srv).EstimateTransferFee(context.Background(), from, to)
	require.NoError(t, err)
	assert.Equal(t, uint64(5000), fee.BaseLamports)
	assert.Equal(t, "0.000005000", fee.BaseSOL())
	assert.Equal(t, chain.PriorityFees{Min: 0, Median: 1000, Max: 50000, Samples: 3}, fee.Priority)

	assert.Equal(t, from, probe.AccountKeys[0])
	assert.Equal(t, srv.Blockhash, probe.RecentBlockhash)
}

func TestEstimateTransferFeeExpiredBlockhash(t *testing.T) {
	srv := chaintest.NewServer(t)
	srv.Handle("getFeeForMessage", func(json.RawMessage) (any, *chaintest.RPCError) {
		return map[string]any{"context": map[string]any{"slot": 1}, "value": nil}, nil
	})

	_, err := newClient(srv).EstimateTransferFee(context.Background(), solana.NewWallet().PublicKey(), solana.SystemProgramID)
	assert.ErrorIs(t, err, chain.ErrFeeUnavailable)
}

func TestEstimateTransferFeeWithoutPriorityMethod(t *testing.T) {
	srv := chaintest.NewServer(t)
	srv.Handle("getRecentPrioritizationFees", func(json.RawMessage) (any, *chaintest.RPCError) {
		return nil, &chaintest.RPCError{Code: -32601, Message: "Method not found"}
	})

	fee, err := newClient(srv).EstimateTransferFee(context.Background(), solana.NewWallet().PublicKey(), solana.SystemProgramID)
	require.NoError(t, err)
	assert.Equal(t, uint64(chaintest.DefaultFee), fee.BaseLamports)
	assert.Zero(t, fee.Priority.Samples)
}
