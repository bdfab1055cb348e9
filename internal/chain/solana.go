package chain

import (
	"context"
	"errors"
	"fmt"
	"math/big"
	"time"

	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/rpc"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

// ErrTransactionFailed is returned when a confirmed transaction carries an
// on-chain error.
var ErrTransactionFailed = errors.New("transaction failed")

const (
	defaultConfirmTimeout = 60 * time.Second
	defaultPollInterval   = 500 * time.Millisecond
)

// Connection is the RPC surface a wallet connector and the transfer form need.
type Connection interface {
	LatestBlockhash(ctx context.Context) (solana.Hash, error)
	SendTransaction(ctx context.Context, tx *solana.Transaction) (solana.Signature, error)
	ConfirmTransaction(ctx context.Context, sig solana.Signature, commitment rpc.CommitmentType) error
}

// Balance is an account balance in lamports and in SOL.
type Balance struct {
	Lamports uint64
	SOL      string
}

// SolanaClient is a Solana JSON-RPC client.
type SolanaClient struct {
	url            string
	rpc            *rpc.Client
	confirmTimeout time.Duration
	pollInterval   time.Duration
	log            *zap.Logger
}

// ClientOption configures a SolanaClient.
type ClientOption func(*SolanaClient)

// WithConfirmTimeout bounds ConfirmTransaction. Zero disables the bound.
func WithConfirmTimeout(d time.Duration) ClientOption {
	return func(c *SolanaClient) { c.confirmTimeout = d }
}

// WithPollInterval sets how often signature status is polled.
func WithPollInterval(d time.Duration) ClientOption {
	return func(c *SolanaClient) {
		if d > 0 {
			c.pollInterval = d
		}
	}
}

// WithLogger sets the debug logger.
func WithLogger(l *zap.Logger) ClientOption {
	return func(c *SolanaClient) {
		if l != nil {
			c.log = l
		}
	}
}

// NewSolanaClient creates a new Solana RPC client.
func NewSolanaClient(url string, opts ...ClientOption) *SolanaClient {
	c := &SolanaClient{
		url:            url,
		rpc:            rpc.New(url),
		confirmTimeout: defaultConfirmTimeout,
		pollInterval:   defaultPollInterval,
		log:            zap.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// URL returns the endpoint the client talks to.
func (c *SolanaClient) URL() string { return c.url }

// GetBalance returns the balance of an account at confirmed commitment.
func (c *SolanaClient) GetBalance(ctx context.Context, account solana.PublicKey) (*Balance, error) {
	out, err := c.rpc.GetBalance(ctx, account, rpc.CommitmentConfirmed)
	if err != nil {
		return nil, fmt.Errorf("solana RPC getBalance: %w", err)
	}
	return &Balance{
		Lamports: out.Value,
		SOL:      LamportsToSOL(out.Value),
	}, nil
}

// GetSlot returns the current slot.
func (c *SolanaClient) GetSlot(ctx context.Context) (uint64, error) {
	slot, err := c.rpc.GetSlot(ctx, rpc.CommitmentProcessed)
	if err != nil {
		return 0, fmt.Errorf("solana RPC getSlot: %w", err)
	}
	return slot, nil
}

// Ping tests the endpoint and returns latency + slot.
func (c *SolanaClient) Ping(ctx context.Context) (time.Duration, uint64, error) {
	start := time.Now()
	slot, err := c.GetSlot(ctx)
	latency := time.Since(start)
	return latency, slot, err
}

// LatestBlockhash returns a recent blockhash to stamp a transaction with.
func (c *SolanaClient) LatestBlockhash(ctx context.Context) (solana.Hash, error) {
	out, err := c.rpc.GetLatestBlockhash(ctx, rpc.CommitmentConfirmed)
	if err != nil {
		return solana.Hash{}, fmt.Errorf("solana RPC getLatestBlockhash: %w", err)
	}
	if out == nil || out.Value == nil {
		return solana.Hash{}, fmt.Errorf("solana RPC getLatestBlockhash: empty result")
	}
	c.log.Debug("latest blockhash",
		zap.String("blockhash", out.Value.Blockhash.String()),
		zap.Uint64("lastValidBlockHeight", out.Value.LastValidBlockHeight))
	return out.Value.Blockhash, nil
}

// SendTransaction broadcasts a signed transaction.
func (c *SolanaClient) SendTransaction(ctx context.Context, tx *solana.Transaction) (solana.Signature, error) {
	sig, err := c.rpc.SendTransactionWithOpts(ctx, tx, rpc.TransactionOpts{
		PreflightCommitment: rpc.CommitmentConfirmed,
	})
	if err != nil {
		return solana.Signature{}, fmt.Errorf("solana RPC sendTransaction: %w", err)
	}
	c.log.Debug("transaction sent", zap.String("signature", sig.String()))
	return sig, nil
}

// ConfirmTransaction waits until sig reaches commitment. The wait is bounded
// by the client's confirm timeout and by ctx.
func (c *SolanaClient) ConfirmTransaction(ctx context.Context, sig solana.Signature, commitment rpc.CommitmentType) error {
	if c.confirmTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.confirmTimeout)
		defer cancel()
	}

	want := commitmentRank(string(commitment))
	limiter := rate.NewLimiter(rate.Every(c.pollInterval), 1)
	for {
		if err := limiter.Wait(ctx); err != nil {
			return fmt.Errorf("confirming %s: %w", sig, err)
		}
		out, err := c.rpc.GetSignatureStatuses(ctx, false, sig)
		if err != nil {
			return fmt.Errorf("solana RPC getSignatureStatuses: %w", err)
		}
		if out == nil || len(out.Value) == 0 || out.Value[0] == nil {
			c.log.Debug("signature not yet visible", zap.String("signature", sig.String()))
			continue
		}
		st := out.Value[0]
		if st.Err != nil {
			return fmt.Errorf("%w: %v", ErrTransactionFailed, st.Err)
		}
		got := string(st.ConfirmationStatus)
		if got == "" && st.Confirmations == nil {
			// Rooted transactions report no confirmation count.
			got = string(rpc.CommitmentFinalized)
		}
		c.log.Debug("signature status",
			zap.String("signature", sig.String()),
			zap.String("status", got),
			zap.Uint64("slot", st.Slot))
		if commitmentRank(got) >= want {
			return nil
		}
	}
}

// SignatureInfo is one entry of an account's transaction history.
type SignatureInfo struct {
	Signature solana.Signature
	Slot      uint64
	BlockTime time.Time // zero when the node does not report it
	Status    string
	Failed    bool
}

// RecentSignatures returns up to limit of the account's latest transaction
// signatures, newest first.
func (c *SolanaClient) RecentSignatures(ctx context.Context, account solana.PublicKey, limit int) ([]SignatureInfo, error) {
	out, err := c.rpc.GetSignaturesForAddressWithOpts(ctx, account, &rpc.GetSignaturesForAddressOpts{
		Limit:      &limit,
		Commitment: rpc.CommitmentConfirmed,
	})
	if err != nil {
		return nil, fmt.Errorf("solana RPC getSignaturesForAddress: %w", err)
	}
	infos := make([]SignatureInfo, 0, len(out))
	for _, s := range out {
		info := SignatureInfo{
			Signature: s.Signature,
			Slot:      s.Slot,
			Status:    string(s.ConfirmationStatus),
			Failed:    s.Err != nil,
		}
		if s.BlockTime != nil {
			info.BlockTime = s.BlockTime.Time()
		}
		infos = append(infos, info)
	}
	return infos, nil
}

// RequestAirdrop asks the cluster faucet for lamports. Not served on mainnet.
func (c *SolanaClient) RequestAirdrop(ctx context.Context, account solana.PublicKey, lamports uint64) (solana.Signature, error) {
	sig, err := c.rpc.RequestAirdrop(ctx, account, lamports, rpc.CommitmentConfirmed)
	if err != nil {
		return solana.Signature{}, fmt.Errorf("solana RPC requestAirdrop: %w", err)
	}
	return sig, nil
}

// LamportsToSOL formats lamports as a SOL amount with 9 decimals.
func LamportsToSOL(lamports uint64) string {
	f := new(big.Float).SetUint64(lamports)
	f.Quo(f, new(big.Float).SetUint64(LamportsPerSOL))
	return f.Text('f', 9)
}

// commitmentRank orders commitment levels; unknown levels rank lowest.
func commitmentRank(level string) int {
	switch level {
	case string(rpc.CommitmentProcessed):
		return 1
	case string(rpc.CommitmentConfirmed):
		return 2
	case string(rpc.CommitmentFinalized):
		return 3
	}
	return 0
}
