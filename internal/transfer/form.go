package transfer

import (
	"context"
	"fmt"
	"math"
	"strconv"
	"strings"
	"sync"

	"github.com/Mohsinsiddi/solsend/internal/chain"
	"github.com/Mohsinsiddi/solsend/internal/wallet"
	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/rpc"
	"go.uber.org/zap"
)

// Wallet is the read-only view of the connected wallet the form needs.
type Wallet interface {
	PublicKey() (solana.PublicKey, bool)
	SendTransaction(ctx context.Context, tx *solana.Transaction, conn chain.Connection) (solana.Signature, error)
}

// Result describes a submitted transfer. Signature is set once the
// transaction has been sent, even if confirmation later fails.
type Result struct {
	Request   Request
	Signature solana.Signature
}

// Form holds the amount and recipient fields and submits them.
type Form struct {
	wallet Wallet
	conn   chain.Connection
	log    *zap.Logger

	mu        sync.Mutex
	amount    float64
	recipient string
}

// FormOption configures a Form.
type FormOption func(*Form)

// WithLogger sets the debug logger.
func WithLogger(l *zap.Logger) FormOption {
	return func(f *Form) {
		if l != nil {
			f.log = l
		}
	}
}

// WithAmount overrides DefaultAmount.
func WithAmount(sol float64) FormOption {
	return func(f *Form) { f.amount = sol }
}

// WithRecipient prefills the recipient field.
func WithRecipient(addr string) FormOption {
	return func(f *Form) { f.recipient = addr }
}

// NewForm returns a form with DefaultAmount and an empty recipient.
func NewForm(w Wallet, conn chain.Connection, opts ...FormOption) *Form {
	f := &Form{
		wallet: w,
		conn:   conn,
		log:    zap.NewNop(),
		amount: DefaultAmount,
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// ParseAmount reads an amount the way a numeric input field does: blank is
// zero and anything unparseable is NaN. No range check is applied.
func ParseAmount(raw string) float64 {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 0
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil && !isRangeErr(err) {
		return math.NaN()
	}
	return v
}

func isRangeErr(err error) bool {
	ne, ok := err.(*strconv.NumError)
	return ok && ne.Err == strconv.ErrRange
}

// OnAmountChange stores the parsed amount.
func (f *Form) OnAmountChange(raw string) {
	v := ParseAmount(raw)
	f.mu.Lock()
	f.amount = v
	f.mu.Unlock()
}

// OnRecipientChange stores raw verbatim.
func (f *Form) OnRecipientChange(raw string) {
	f.mu.Lock()
	f.recipient = raw
	f.mu.Unlock()
}

// Amount returns the amount field in SOL.
func (f *Form) Amount() float64 {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.amount
}

// Recipient returns the recipient field.
func (f *Form) Recipient() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.recipient
}

// Submit sends one transfer of the current amount to the current recipient
// and waits for it to be processed. It does not guard against concurrent
// calls; each call sends its own transaction. Fields are left as they are.
func (f *Form) Submit(ctx context.Context) (*Result, error) {
	source, ok := f.wallet.PublicKey()
	if !ok {
		return nil, wallet.ErrNotConnected
	}

	f.mu.Lock()
	amount, recipient := f.amount, f.recipient
	f.mu.Unlock()

	req, err := NewRequest(source, recipient, ToLamports(amount))
	if err != nil {
		return nil, err
	}
	tx, err := req.Transaction()
	if err != nil {
		return nil, err
	}

	f.log.Debug("sending transfer",
		zap.String("from", req.Source.String()),
		zap.String("to", req.Destination.String()),
		zap.Uint64("lamports", req.Lamports))

	sig, err := f.wallet.SendTransaction(ctx, tx, f.conn)
	if err != nil {
		return nil, fmt.Errorf("sending transfer: %w", err)
	}
	res := &Result{Request: *req, Signature: sig}

	if err := f.conn.ConfirmTransaction(ctx, sig, rpc.CommitmentProcessed); err != nil {
		return res, fmt.Errorf("confirming %s: %w", sig, err)
	}
	f.log.Debug("transfer processed", zap.String("signature", sig.String()))
	return res, nil
}
