// Package transfer turns form input into a single System Program transfer.
package transfer

import (
	"errors"
	"fmt"
	"math"

	"github.com/Mohsinsiddi/solsend/internal/chain"
	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/programs/system"
)

// DefaultAmount is the SOL amount a new form starts with.
const DefaultAmount = 0.1

// ErrInvalidRecipient is returned when the recipient is not a base58 public key.
var ErrInvalidRecipient = errors.New("invalid recipient address")

// Request is one outbound transfer.
type Request struct {
	Source      solana.PublicKey
	Destination solana.PublicKey
	Lamports    uint64
}

// ToLamports converts SOL to lamports, truncating fractional lamports.
// NaN and negative amounts give 0; amounts past the uint64 range saturate.
func ToLamports(sol float64) uint64 {
	if math.IsNaN(sol) || sol <= 0 {
		return 0
	}
	v := math.Floor(sol * float64(chain.LamportsPerSOL))
	if v >= math.MaxUint64 {
		return math.MaxUint64
	}
	return uint64(v)
}

// NewRequest parses recipient as given, without trimming.
func NewRequest(source solana.PublicKey, recipient string, lamports uint64) (*Request, error) {
	dest, err := solana.PublicKeyFromBase58(recipient)
	if err != nil {
		return nil, fmt.Errorf("%w %q: %w", ErrInvalidRecipient, recipient, err)
	}
	return &Request{Source: source, Destination: dest, Lamports: lamports}, nil
}

// Instruction builds the System Program transfer.
func (r *Request) Instruction() solana.Instruction {
	return system.NewTransferInstruction(r.Lamports, r.Source, r.Destination).Build()
}

// Transaction wraps the transfer with the source as fee payer. The recent
// blockhash is left empty for the connector to fill in.
func (r *Request) Transaction() (*solana.Transaction, error) {
	tx, err := solana.NewTransaction(
		[]solana.Instruction{r.Instruction()},
		solana.Hash{},
		solana.TransactionPayer(r.Source),
	)
	if err != nil {
		return nil, fmt.Errorf("building transaction: %w", err)
	}
	return tx, nil
}

// SOL returns the transfer amount formatted in SOL.
func (r *Request) SOL() string {
	return chain.LamportsToSOL(r.Lamports)
}
