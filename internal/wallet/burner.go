package wallet

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/Mohsinsiddi/solsend/internal/chain"
	"github.com/gagliardetto/solana-go"
)

// BurnerConnector signs with a throwaway keypair kept per network. It is the
// only connector bound to a network and it refuses mainnet.
type BurnerConnector struct {
	heldKey
	network chain.Network
	store   *SessionStore
}

// NewBurnerConnector returns a burner for network persisted in store.
func NewBurnerConnector(network chain.Network, store *SessionStore) *BurnerConnector {
	return &BurnerConnector{network: network, store: store}
}

func (c *BurnerConnector) Name() string { return ConnectorBurner }

// Network returns the network the burner is bound to.
func (c *BurnerConnector) Network() chain.Network { return c.network }

func (c *BurnerConnector) Available() bool {
	return c.network != chain.MainnetBeta
}

// Connect loads the burner for the network, creating it on first use.
func (c *BurnerConnector) Connect(ctx context.Context) (solana.PublicKey, error) {
	if !c.Available() {
		return solana.PublicKey{}, fmt.Errorf("%w: burner wallets are disabled on %s", ErrConnectorUnavailable, c.network)
	}

	key, err := c.store.BurnerKey(c.network)
	if errors.Is(err, os.ErrNotExist) {
		key, err = solana.NewRandomPrivateKey()
		if err != nil {
			return solana.PublicKey{}, fmt.Errorf("generating burner key: %w", err)
		}
		if err := c.store.SaveBurnerKey(c.network, key); err != nil {
			return solana.PublicKey{}, fmt.Errorf("saving burner key: %w", err)
		}
	} else if err != nil {
		return solana.PublicKey{}, err
	}
	return c.hold(key), nil
}
