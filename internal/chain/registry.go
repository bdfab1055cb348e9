package chain

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
)

// ErrUnknownNetwork is returned when a network name does not match a cluster.
var ErrUnknownNetwork = errors.New("unknown network")

// LamportsPerSOL is the number of lamports in one SOL.
const LamportsPerSOL uint64 = 1_000_000_000

// Network identifies a Solana cluster.
type Network string

const (
	MainnetBeta Network = "mainnet-beta"
	Testnet     Network = "testnet"
	Devnet      Network = "devnet"
	Localnet    Network = "localnet"
)

// Cluster holds the public endpoints of a single Solana cluster.
type Cluster struct {
	Network     Network `json:"network"`
	DisplayName string  `json:"display_name"`
	RPC         string  `json:"rpc"`
	WS          string  `json:"ws"`
	// Airdrop reports whether requestAirdrop is served by the public RPC.
	Airdrop   bool   `json:"airdrop"`
	FaucetURL string `json:"faucet_url,omitempty"`
}

// Registry is the cluster registry.
type Registry struct {
	clusters []Cluster
	byName   map[Network]*Cluster
}

// NewRegistry returns the registry of every known cluster, mainnet first.
func NewRegistry() *Registry {
	clusters := allClusters()
	r := &Registry{
		clusters: clusters,
		byName:   make(map[Network]*Cluster, len(clusters)),
	}
	for i := range r.clusters {
		c := &r.clusters[i]
		r.byName[c.Network] = c
	}
	return r
}

// All returns every cluster in the registry.
func (r *Registry) All() []Cluster {
	return r.clusters
}

// Get finds a cluster by network.
func (r *Registry) Get(n Network) (*Cluster, error) {
	c, ok := r.byName[n]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownNetwork, string(n))
	}
	return c, nil
}

// ParseNetwork maps a user-supplied name onto a Network. "mainnet" and
// "localhost" are accepted as aliases.
func ParseNetwork(s string) (Network, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "mainnet-beta", "mainnet", "":
		return MainnetBeta, nil
	case "testnet":
		return Testnet, nil
	case "devnet":
		return Devnet, nil
	case "localnet", "localhost":
		return Localnet, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownNetwork, s)
}

// ClusterURL returns the public RPC URL of a network. Unknown networks
// resolve to mainnet-beta.
func ClusterURL(n Network) string {
	c, err := NewRegistry().Get(n)
	if err != nil {
		return mainnetRPC
	}
	return c.RPC
}

// ExplorerTx returns the Solana Explorer link for a transaction signature.
func (c *Cluster) ExplorerTx(sig string) string {
	return "https://explorer.solana.com/tx/" + sig + c.explorerQuery()
}

// ExplorerAddress returns the Solana Explorer link for an account.
func (c *Cluster) ExplorerAddress(addr string) string {
	return "https://explorer.solana.com/address/" + addr + c.explorerQuery()
}

func (c *Cluster) explorerQuery() string {
	switch c.Network {
	case MainnetBeta:
		return ""
	case Localnet:
		return "?cluster=custom&customUrl=" + url.QueryEscape(c.RPC)
	default:
		return "?cluster=" + string(c.Network)
	}
}

const mainnetRPC = "https://api.mainnet-beta.solana.com"

func allClusters() []Cluster {
	return []Cluster{
		{
			Network: MainnetBeta, DisplayName: "Solana Mainnet Beta",
			RPC: mainnetRPC,
			WS:  "wss://api.mainnet-beta.solana.com",
		},
		{
			Network: Testnet, DisplayName: "Solana Testnet",
			RPC:     "https://api.testnet.solana.com",
			WS:      "wss://api.testnet.solana.com",
			Airdrop: true, FaucetURL: "https://faucet.solana.com",
		},
		{
			Network: Devnet, DisplayName: "Solana Devnet",
			RPC:     "https://api.devnet.solana.com",
			WS:      "wss://api.devnet.solana.com",
			Airdrop: true, FaucetURL: "https://faucet.solana.com",
		},
		{
			Network: Localnet, DisplayName: "Local Test Validator",
			RPC:     "http://127.0.0.1:8899",
			WS:      "ws://127.0.0.1:8900",
			Airdrop: true,
		},
	}
}
