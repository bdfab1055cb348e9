package wallet

import (
	"context"
	"fmt"
	"os"

	"github.com/gagliardetto/solana-go"
)

// EnvPrivateKey is the variable the env connector reads.
const EnvPrivateKey = "SOLSEND_PRIVATE_KEY"

// EnvConnector signs with a secret taken from the environment (or .env).
type EnvConnector struct {
	heldKey
	getenv func(string) string
}

// NewEnvConnector returns a connector reading EnvPrivateKey through getenv.
// A nil getenv means os.Getenv.
func NewEnvConnector(getenv func(string) string) *EnvConnector {
	if getenv == nil {
		getenv = os.Getenv
	}
	return &EnvConnector{getenv: getenv}
}

func (c *EnvConnector) Name() string { return ConnectorEnv }

func (c *EnvConnector) Available() bool {
	return c.getenv(EnvPrivateKey) != ""
}

func (c *EnvConnector) Connect(ctx context.Context) (solana.PublicKey, error) {
	secret := c.getenv(EnvPrivateKey)
	if secret == "" {
		return solana.PublicKey{}, fmt.Errorf("%w: %s is not set", ErrConnectorUnavailable, EnvPrivateKey)
	}
	key, err := ParseSecretKey(secret)
	if err != nil {
		return solana.PublicKey{}, fmt.Errorf("%s: %w", EnvPrivateKey, err)
	}
	return c.hold(key), nil
}
