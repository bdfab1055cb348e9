package config

import (
	"encoding/json"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"slices"
	"time"

	"github.com/Mohsinsiddi/solsend/internal/chain"
	"github.com/Mohsinsiddi/solsend/internal/rpc"
	"github.com/Mohsinsiddi/solsend/internal/wallet"
)

const (
	defaultNetwork   = string(chain.MainnetBeta)
	defaultAlgorithm = string(rpc.AlgorithmFastest)

	configFile  = "config.json"
	walletsFile = "wallets.json"
)

// Load reads config from dir (or creates defaults). dir defaults to ~/.solsend.
func Load(dir string) (*Config, error) {
	if dir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("could not determine home dir: %w", err)
		}
		dir = filepath.Join(home, ".solsend")
	}

	if err := os.MkdirAll(dir, 0o700); err != nil {
		return nil, fmt.Errorf("could not create config dir: %w", err)
	}

	cfg := defaults(dir)

	path := filepath.Join(dir, configFile)
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return cfg, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}

	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}

	cfg.configDir = dir
	if cfg.CustomRPCs == nil {
		cfg.CustomRPCs = make(map[string][]string)
	}
	if cfg.Network == "" {
		cfg.Network = defaultNetwork
	}

	return cfg, nil
}

// Save writes the config to disk.
func (c *Config) Save() error {
	if err := os.MkdirAll(c.configDir, 0o700); err != nil {
		return err
	}
	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(filepath.Join(c.configDir, configFile), data, 0o600)
}

// SetNetwork validates and stores the default network under its canonical name.
func (c *Config) SetNetwork(name string) error {
	n, err := chain.ParseNetwork(name)
	if err != nil {
		return err
	}
	c.Network = string(n)
	return nil
}

// SetConnector validates and stores the preferred connector. Empty clears it.
func (c *Config) SetConnector(name string) error {
	switch name {
	case "", wallet.ConnectorKeychain, wallet.ConnectorKeyfile, wallet.ConnectorEnv, wallet.ConnectorBurner:
		c.Connector = name
		return nil
	}
	return fmt.Errorf("%w: %q", wallet.ErrUnknownConnector, name)
}

// SetAlgorithm validates and stores the RPC selection algorithm.
func (c *Config) SetAlgorithm(name string) error {
	algo, err := rpc.ParseAlgorithm(name)
	if err != nil {
		return err
	}
	c.RPCAlgorithm = string(algo)
	return nil
}

// SetConfirmTimeout stores the confirmation wait, rounded down to seconds.
func (c *Config) SetConfirmTimeout(d time.Duration) error {
	if d < time.Second || d > MaxConfirmTimeout {
		return fmt.Errorf("confirm timeout must be between 1s and %s", MaxConfirmTimeout)
	}
	c.ConfirmTimeout = int(d / time.Second)
	return nil
}

// ConfirmTimeoutDuration returns the confirmation wait, falling back to
// TxConfirmTimeout when unset.
func (c *Config) ConfirmTimeoutDuration() time.Duration {
	if c.ConfirmTimeout <= 0 {
		return TxConfirmTimeout
	}
	return time.Duration(c.ConfirmTimeout) * time.Second
}

// AddRPC adds a custom RPC URL for a network.
func (c *Config) AddRPC(network, rawURL string) error {
	u, err := url.Parse(rawURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("invalid RPC URL %q: want http(s)://host", rawURL)
	}
	if c.CustomRPCs == nil {
		c.CustomRPCs = make(map[string][]string)
	}
	if slices.Contains(c.CustomRPCs[network], rawURL) {
		return fmt.Errorf("RPC %s already exists for network %s", rawURL, network)
	}
	c.CustomRPCs[network] = append(c.CustomRPCs[network], rawURL)
	return nil
}

// RemoveRPC removes a custom RPC URL for a network.
func (c *Config) RemoveRPC(network, rawURL string) error {
	rpcs := c.CustomRPCs[network]
	idx := slices.Index(rpcs, rawURL)
	if idx == -1 {
		return fmt.Errorf("RPC %s not found for network %s", rawURL, network)
	}
	c.CustomRPCs[network] = slices.Delete(rpcs, idx, idx+1)
	if len(c.CustomRPCs[network]) == 0 {
		delete(c.CustomRPCs, network)
	}
	return nil
}

// GetRPCs returns custom RPCs for a network.
func (c *Config) GetRPCs(network string) []string {
	return c.CustomRPCs[network]
}

// Dir returns the config directory.
func (c *Config) Dir() string {
	return c.configDir
}

// WalletsPath returns the wallets.json location.
func (c *Config) WalletsPath() string {
	return filepath.Join(c.configDir, walletsFile)
}

// --- helpers ---

func defaults(dir string) *Config {
	return &Config{
		Network:        defaultNetwork,
		RPCAlgorithm:   defaultAlgorithm,
		ConfirmTimeout: int(TxConfirmTimeout / time.Second),
		CustomRPCs:     make(map[string][]string),
		configDir:      dir,
	}
}
