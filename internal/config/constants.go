package config

import "time"

// Timeout constants used across cmd.
const (
	RPCSelectTimeout  = 10 * time.Second // benchmark / RPC selection
	TxConfirmTimeout  = 60 * time.Second // default transaction confirmation wait
	AirdropTimeout    = 30 * time.Second // faucet request + confirmation
	ConnectTimeout    = 15 * time.Second // connector Connect, including keychain prompts
	MaxConfirmTimeout = 10 * time.Minute
)

// EnvConfigDir overrides --config.
const EnvConfigDir = "SOLSEND_CONFIG_DIR"
