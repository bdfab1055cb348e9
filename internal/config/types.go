package config

// Config holds all solsend configuration.
type Config struct {
	Network        string              `json:"network"`                  // "mainnet-beta" | "testnet" | "devnet" | "localnet"
	Connector      string              `json:"connector,omitempty"`      // "keychain" | "keyfile" | "env" | "burner"
	DefaultWallet  string              `json:"default_wallet,omitempty"` // wallet used by the keychain connector
	Keyfile        string              `json:"keyfile,omitempty"`        // solana-keygen file for the keyfile connector
	RPCAlgorithm   string              `json:"rpc_algorithm"`            // "fastest" | "round-robin" | "failover"
	ConfirmTimeout int                 `json:"confirm_timeout"`          // seconds
	CustomRPCs     map[string][]string `json:"custom_rpcs"`              // network -> URLs

	// internal: config dir path used for Save()
	configDir string
}
