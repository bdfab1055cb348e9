package wallet

import (
	"context"
	"fmt"

	"github.com/gagliardetto/solana-go"
)

// KeychainConnector signs with a named wallet whose secret lives in the OS
// keychain. An empty name selects the manager's default wallet.
type KeychainConnector struct {
	heldKey
	mgr  *Manager
	name string
}

// NewKeychainConnector returns a connector over mgr.
func NewKeychainConnector(mgr *Manager, name string) *KeychainConnector {
	return &KeychainConnector{mgr: mgr, name: name}
}

func (c *KeychainConnector) Name() string { return ConnectorKeychain }

// Wallet returns the wallet the connector would use, or nil.
func (c *KeychainConnector) Wallet() *Wallet {
	if c.name != "" {
		w, err := c.mgr.Get(c.name)
		if err != nil {
			return nil
		}
		return w
	}
	return c.mgr.Default()
}

func (c *KeychainConnector) Available() bool {
	w := c.Wallet()
	return w != nil && w.Type == TypeSigning
}

func (c *KeychainConnector) Connect(ctx context.Context) (solana.PublicKey, error) {
	w := c.Wallet()
	if w == nil {
		return solana.PublicKey{}, fmt.Errorf("%w: no wallet selected, run 'solsend wallet add' first", ErrConnectorUnavailable)
	}
	key, err := c.mgr.Key(w.Name)
	if err != nil {
		return solana.PublicKey{}, fmt.Errorf("keychain wallet %q: %w", w.Name, err)
	}
	return c.hold(key), nil
}
