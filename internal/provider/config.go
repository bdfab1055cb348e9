package provider

import (
	"context"
	"fmt"

	"github.com/Mohsinsiddi/solsend/internal/chain"
	"github.com/Mohsinsiddi/solsend/internal/config"
	"github.com/Mohsinsiddi/solsend/internal/rpc"
	"github.com/Mohsinsiddi/solsend/internal/wallet"
	"go.uber.org/zap"
)

// DefaultConnectors returns the factory for the built-in connectors in the
// order they are offered: keychain, keyfile, env, burner. Only burner takes
// the network.
func DefaultConnectors(mgr *wallet.Manager, walletName, keyfile string) ConnectorFactory {
	return func(n chain.Network, store *wallet.SessionStore) []wallet.Connector {
		if store == nil {
			store = wallet.DefaultSessionStore()
		}
		return []wallet.Connector{
			wallet.NewKeychainConnector(mgr, walletName),
			wallet.NewKeyfileConnector(keyfile),
			wallet.NewEnvConnector(nil),
			wallet.NewBurnerConnector(n, store),
		}
	}
}

// ResolveEndpoint picks the RPC URL for network: the cluster URL when no
// custom RPC is configured, otherwise the best configured one.
func ResolveEndpoint(ctx context.Context, cfg *config.Config, n chain.Network, log *zap.Logger) (string, error) {
	urls := cfg.GetRPCs(string(n))
	if len(urls) == 0 {
		return chain.ClusterURL(n), nil
	}

	ctx, cancel := context.WithTimeout(ctx, config.RPCSelectTimeout)
	defer cancel()
	url, err := rpc.SelectBest(ctx, urls, cfg.RPCAlgorithm)
	if err != nil {
		return "", fmt.Errorf("selecting %s RPC: %w", n, err)
	}
	if log != nil {
		log.Debug("rpc selected", zap.String("network", string(n)), zap.String("url", url),
			zap.Int("candidates", len(urls)), zap.String("algorithm", cfg.RPCAlgorithm))
	}
	return url, nil
}

// FromConfig builds a provider from the user's configuration: custom RPC
// selection, the wallet store in the config dir, the configured confirm
// timeout and authorization memory in the user cache dir. opts are applied
// last and may override any of these.
func FromConfig(ctx context.Context, cfg *config.Config, n chain.Network, log *zap.Logger, opts ...Option) (*Provider, error) {
	if log == nil {
		log = zap.NewNop()
	}
	endpoint, err := ResolveEndpoint(ctx, cfg, n, log)
	if err != nil {
		return nil, err
	}

	mgr := wallet.NewManager(wallet.WithStore(wallet.NewJSONStore(cfg.WalletsPath())))
	base := []Option{
		WithEndpoint(endpoint),
		WithConnectors(DefaultConnectors(mgr, cfg.DefaultWallet, cfg.Keyfile)),
		WithSessionStore(wallet.DefaultSessionStore()),
		WithClientOptions(chain.WithConfirmTimeout(cfg.ConfirmTimeoutDuration())),
		WithLogger(log),
	}
	return New(n, append(base, opts...)...), nil
}
