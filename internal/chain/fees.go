package chain

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"slices"

	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/programs/system"
	"github.com/gagliardetto/solana-go/rpc"
	"go.uber.org/zap"
)

// ErrFeeUnavailable is returned when the node cannot price a message, usually
// because its blockhash has already expired.
var ErrFeeUnavailable = errors.New("fee unavailable")

// PriorityFees summarises recent prioritization fees in micro-lamports per
// compute unit. Samples is the number of slots observed.
type PriorityFees struct {
	Min     uint64
	Median  uint64
	Max     uint64
	Samples int
}

// FeeInfo holds the current cost of a one-signer SOL transfer.
type FeeInfo struct {
	BaseLamports uint64 // signature fee charged for the message
	Priority     PriorityFees
}

// BaseSOL returns the base fee formatted as SOL.
func (f *FeeInfo) BaseSOL() string { return LamportsToSOL(f.BaseLamports) }

// EstimateTransferFee prices a transfer from -> to at the latest blockhash
// and reads the recent prioritization fees paid on both accounts.
func (c *SolanaClient) EstimateTransferFee(ctx context.Context, from, to solana.PublicKey) (*FeeInfo, error) {
	blockhash, err := c.LatestBlockhash(ctx)
	if err != nil {
		return nil, err
	}
	tx, err := solana.NewTransaction(
		[]solana.Instruction{system.NewTransferInstruction(1, from, to).Build()},
		blockhash,
		solana.TransactionPayer(from),
	)
	if err != nil {
		return nil, fmt.Errorf("building fee probe: %w", err)
	}
	msg, err := tx.Message.MarshalBinary()
	if err != nil {
		return nil, fmt.Errorf("encoding fee probe: %w", err)
	}

	out, err := c.rpc.GetFeeForMessage(ctx, base64.StdEncoding.EncodeToString(msg), rpc.CommitmentConfirmed)
	if err != nil {
		return nil, fmt.Errorf("solana RPC getFeeForMessage: %w", err)
	}
	if out == nil || out.Value == nil {
		return nil, ErrFeeUnavailable
	}
	info := &FeeInfo{BaseLamports: *out.Value}

	recent, err := c.rpc.GetRecentPrioritizationFees(ctx, solana.PublicKeySlice{from, to})
	if err != nil {
		// Older nodes do not serve this method; the base fee is still useful.
		c.log.Debug("getRecentPrioritizationFees failed", zap.String("url", c.url), zap.Error(err))
		return info, nil
	}
	info.Priority = summarisePriority(recent)
	return info, nil
}

func summarisePriority(recent []rpc.PriorizationFeeResult) PriorityFees {
	if len(recent) == 0 {
		return PriorityFees{}
	}
	fees := make([]uint64, len(recent))
	for i, r := range recent {
		fees[i] = r.PrioritizationFee
	}
	slices.Sort(fees)
	return PriorityFees{
		Min:     fees[0],
		Median:  fees[len(fees)/2],
		Max:     fees[len(fees)-1],
		Samples: len(fees),
	}
}
