package cmd

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/Mohsinsiddi/solsend/internal/chain"
	"github.com/Mohsinsiddi/solsend/internal/config"
	"github.com/Mohsinsiddi/solsend/internal/provider"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// Version is the current release. Overridable via build ldflags:
//
//	go build -ldflags "-X github.com/Mohsinsiddi/solsend/cmd.Version=1.2.3" .
var Version = "0.1.0"

var (
	cfgDir        string
	cfg           *config.Config
	logger        = zap.NewNop()
	verbose       bool
	networkFlag   string
	connectorFlag string
)

// rootCmd is the top-level command.
var rootCmd = &cobra.Command{
	Use:   "solsend",
	Short: "Send SOL from your terminal",
	Long: `solsend — a minimal Solana transfer tool.

  Connect a wallet (OS keychain, solana-keygen file, environment variable
  or a throwaway burner), then send SOL with one System Program transfer.

Global flag --network overrides the configured cluster for a single
invocation. Persist it with: solsend config set-network <network>`,
	Version:       Version,
	SilenceUsage:  true,
	SilenceErrors: false,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if cmd.Name() == "help" || cmd.Name() == "completion" {
			return nil
		}
		// .env is optional; a malformed one is not.
		if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("loading .env: %w", err)
		}

		var err error
		logger, err = newLogger(verbose)
		if err != nil {
			return err
		}

		cfg, err = config.Load(cfgDir)
		if err != nil {
			return fmt.Errorf("loading config: %w", err)
		}
		logger.Debug("config loaded", zap.String("dir", cfg.Dir()), zap.String("network", cfg.Network))
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		_ = logger.Sync()
	},
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	// SOLSEND_CONFIG_DIR env var overrides --config flag.
	if envDir := os.Getenv(config.EnvConfigDir); envDir != "" {
		cfgDir = envDir
	}

	rootCmd.PersistentFlags().StringVar(&cfgDir, "config", cfgDir, "config directory (default: ~/.solsend)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "debug logging to stderr")
	rootCmd.PersistentFlags().StringVarP(&networkFlag, "network", "n", "", "cluster: mainnet-beta|testnet|devnet|localnet (default: config)")
	rootCmd.PersistentFlags().StringVarP(&connectorFlag, "connector", "c", "", "wallet connector: keychain|keyfile|env|burner (default: config)")

	rootCmd.AddCommand(
		initCmd,
		sendCmd,
		formCmd,
		connectCmd,
		disconnectCmd,
		statusCmd,
		connectorsCmd,
		walletCmd,
		balanceCmd,
		historyCmd,
		airdropCmd,
		feesCmd,
		faucetCmd,
		rpcCmd,
		networkCmd,
		configCmd,
	)
}

func newLogger(debug bool) (*zap.Logger, error) {
	if !debug {
		return zap.NewNop(), nil
	}
	l, err := zap.NewDevelopment()
	if err != nil {
		return nil, fmt.Errorf("building logger: %w", err)
	}
	return l, nil
}

// activeNetwork returns --network, else the configured network.
func activeNetwork() (chain.Network, error) {
	name := networkFlag
	if name == "" {
		name = cfg.Network
	}
	n, err := chain.ParseNetwork(name)
	if err != nil {
		return "", fmt.Errorf("%w — choose: mainnet-beta, testnet, devnet, localnet", err)
	}
	return n, nil
}

// newProvider builds the provider for the active network from config.
func newProvider(ctx context.Context) (*provider.Provider, error) {
	n, err := activeNetwork()
	if err != nil {
		return nil, err
	}
	return provider.FromConfig(ctx, cfg, n, logger)
}

// ensureConnected connects the provider before a command that signs:
// --connector first, then the authorization remembered for the network,
// then the configured connector. With none of these it leaves the provider
// disconnected.
func ensureConnected(ctx context.Context, p *provider.Provider) error {
	ctx, cancel := context.WithTimeout(ctx, config.ConnectTimeout)
	defer cancel()

	if connectorFlag != "" {
		_, err := p.Connect(ctx, connectorFlag)
		return err
	}
	tried, err := p.AutoConnect(ctx)
	if tried {
		return err
	}
	if cfg.Connector != "" {
		_, err := p.Connect(ctx, cfg.Connector)
		return err
	}
	return nil
}
