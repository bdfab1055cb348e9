package wallet

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/Mohsinsiddi/solsend/internal/chain"
	"github.com/gagliardetto/solana-go"
)

// Connector errors.
var (
	ErrNotConnected         = errors.New("wallet not connected")
	ErrUnknownConnector     = errors.New("unknown connector")
	ErrConnectorUnavailable = errors.New("connector not available")
)

// Connector names, in the order they are offered to the user.
const (
	ConnectorKeychain = "keychain"
	ConnectorKeyfile  = "keyfile"
	ConnectorEnv      = "env"
	ConnectorBurner   = "burner"
)

// Connector is one way of obtaining a signing identity. Each variant holds
// its key only between Connect and Disconnect.
type Connector interface {
	Name() string
	// Available reports whether Connect can be expected to succeed without
	// user setup (key present, network supported).
	Available() bool
	Connect(ctx context.Context) (solana.PublicKey, error)
	// SendTransaction stamps tx with a recent blockhash when it has none,
	// signs it with the connected key and broadcasts it over conn.
	SendTransaction(ctx context.Context, tx *solana.Transaction, conn chain.Connection) (solana.Signature, error)
	Disconnect(ctx context.Context) error
}

// heldKey is the connected key shared by every connector variant.
type heldKey struct {
	mu  sync.RWMutex
	key solana.PrivateKey
}

func (h *heldKey) hold(key solana.PrivateKey) solana.PublicKey {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.key = key
	return key.PublicKey()
}

func (h *heldKey) current() (solana.PrivateKey, bool) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.key, len(h.key) > 0
}

// SendTransaction signs tx with the held key and sends it.
func (h *heldKey) SendTransaction(ctx context.Context, tx *solana.Transaction, conn chain.Connection) (solana.Signature, error) {
	key, ok := h.current()
	if !ok {
		return solana.Signature{}, ErrNotConnected
	}
	return signAndSend(ctx, key, tx, conn)
}

// Disconnect wipes the held key.
func (h *heldKey) Disconnect(ctx context.Context) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	for i := range h.key {
		h.key[i] = 0
	}
	h.key = nil
	return nil
}

func signAndSend(ctx context.Context, key solana.PrivateKey, tx *solana.Transaction, conn chain.Connection) (solana.Signature, error) {
	if tx.Message.RecentBlockhash == (solana.Hash{}) {
		hash, err := conn.LatestBlockhash(ctx)
		if err != nil {
			return solana.Signature{}, err
		}
		tx.Message.RecentBlockhash = hash
	}

	signer := key.PublicKey()
	_, err := tx.Sign(func(pk solana.PublicKey) *solana.PrivateKey {
		if pk.Equals(signer) {
			return &key
		}
		return nil
	})
	if err != nil {
		return solana.Signature{}, fmt.Errorf("signing transaction: %w", err)
	}

	return conn.SendTransaction(ctx, tx)
}
