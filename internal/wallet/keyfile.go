package wallet

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/gagliardetto/solana-go"
)

// DefaultKeyfilePath is where solana-keygen writes its default keypair.
func DefaultKeyfilePath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".config", "solana", "id.json")
	}
	return filepath.Join(home, ".config", "solana", "id.json")
}

// KeyfileConnector signs with a solana-keygen JSON keypair file.
type KeyfileConnector struct {
	heldKey
	path string
}

// NewKeyfileConnector returns a connector reading path. An empty path means
// DefaultKeyfilePath.
func NewKeyfileConnector(path string) *KeyfileConnector {
	if path == "" {
		path = DefaultKeyfilePath()
	}
	return &KeyfileConnector{path: path}
}

func (c *KeyfileConnector) Name() string { return ConnectorKeyfile }

// Path returns the keypair file location.
func (c *KeyfileConnector) Path() string { return c.path }

func (c *KeyfileConnector) Available() bool {
	info, err := os.Stat(c.path)
	return err == nil && !info.IsDir()
}

func (c *KeyfileConnector) Connect(ctx context.Context) (solana.PublicKey, error) {
	if !c.Available() {
		return solana.PublicKey{}, fmt.Errorf("%w: keypair file %s not found", ErrConnectorUnavailable, c.path)
	}
	key, err := solana.PrivateKeyFromSolanaKeygenFile(c.path)
	if err != nil {
		return solana.PublicKey{}, fmt.Errorf("%w: %v", ErrInvalidKey, err)
	}
	// Normalise and check the public half.
	key, err = ParseSecretKey(key.String())
	if err != nil {
		return solana.PublicKey{}, err
	}
	return c.hold(key), nil
}
