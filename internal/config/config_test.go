package config_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/Mohsinsiddi/solsend/internal/config"
	"github.com/Mohsinsiddi/solsend/internal/wallet"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaultConfig(t *testing.T) {
	dir := t.TempDir()
	cfg, err := config.Load(dir)
	require.NoError(t, err)

	assert.Equal(t, "mainnet-beta", cfg.Network)
	assert.Equal(t, "", cfg.Connector)
	assert.Equal(t, "fastest", cfg.RPCAlgorithm)
	assert.Equal(t, 60, cfg.ConfirmTimeout)
	assert.Equal(t, 60*time.Second, cfg.ConfirmTimeoutDuration())
	assert.NotNil(t, cfg.CustomRPCs)
}

func TestSaveAndReloadConfig(t *testing.T) {
	dir := t.TempDir()
	cfg, err := config.Load(dir)
	require.NoError(t, err)

	require.NoError(t, cfg.SetNetwork("devnet"))
	require.NoError(t, cfg.SetConnector(wallet.ConnectorBurner))
	require.NoError(t, cfg.SetAlgorithm("round-robin"))
	cfg.DefaultWallet = "mywallet"
	cfg.Keyfile = "/tmp/id.json"

	require.NoError(t, cfg.Save())

	reloaded, err := config.Load(dir)
	require.NoError(t, err)

	assert.Equal(t, "devnet", reloaded.Network)
	assert.Equal(t, "burner", reloaded.Connector)
	assert.Equal(t, "round-robin", reloaded.RPCAlgorithm)
	assert.Equal(t, "mywallet", reloaded.DefaultWallet)
	assert.Equal(t, "/tmp/id.json", reloaded.Keyfile)
}

func TestLoadCorruptConfig(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.json"), []byte("{oops"), 0o600))

	_, err := config.Load(dir)
	assert.Error(t, err)
}

func TestLoadPartialConfigKeepsDefaults(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.json"), []byte(`{"connector":"env"}`), 0o600))

	cfg, err := config.Load(dir)
	require.NoError(t, err)
	assert.Equal(t, "env", cfg.Connector)
	assert.Equal(t, "mainnet-beta", cfg.Network)
	assert.Equal(t, "fastest", cfg.RPCAlgorithm)
	assert.NotNil(t, cfg.CustomRPCs)
}

// ---------------------------------------------------------------------------
// Setters
// ---------------------------------------------------------------------------

func TestSetNetworkCanonicalises(t *testing.T) {
	cfg, _ := config.Load(t.TempDir())

	require.NoError(t, cfg.SetNetwork("mainnet"))
	assert.Equal(t, "mainnet-beta", cfg.Network)

	require.NoError(t, cfg.SetNetwork("localhost"))
	assert.Equal(t, "localnet", cfg.Network)

	assert.Error(t, cfg.SetNetwork("ethereum"))
	assert.Equal(t, "localnet", cfg.Network, "a rejected value leaves the old one")
}

func TestSetConnector(t *testing.T) {
	cfg, _ := config.Load(t.TempDir())

	for _, name := range []string{wallet.ConnectorKeychain, wallet.ConnectorKeyfile, wallet.ConnectorEnv, wallet.ConnectorBurner, ""} {
		require.NoError(t, cfg.SetConnector(name))
		assert.Equal(t, name, cfg.Connector)
	}

	assert.ErrorIs(t, cfg.SetConnector("phantom"), wallet.ErrUnknownConnector)
}

func TestSetAlgorithm(t *testing.T) {
	cfg, _ := config.Load(t.TempDir())
	require.NoError(t, cfg.SetAlgorithm("failover"))
	assert.Equal(t, "failover", cfg.RPCAlgorithm)
	assert.Error(t, cfg.SetAlgorithm("random"))
}

func TestSetConfirmTimeout(t *testing.T) {
	cfg, _ := config.Load(t.TempDir())

	require.NoError(t, cfg.SetConfirmTimeout(90*time.Second))
	assert.Equal(t, 90, cfg.ConfirmTimeout)
	assert.Equal(t, 90*time.Second, cfg.ConfirmTimeoutDuration())

	assert.Error(t, cfg.SetConfirmTimeout(500*time.Millisecond))
	assert.Error(t, cfg.SetConfirmTimeout(time.Hour))

	cfg.ConfirmTimeout = 0
	assert.Equal(t, config.TxConfirmTimeout, cfg.ConfirmTimeoutDuration())
}

// ---------------------------------------------------------------------------
// Custom RPCs
// ---------------------------------------------------------------------------

func TestAddCustomRPC(t *testing.T) {
	cfg, err := config.Load(t.TempDir())
	require.NoError(t, err)

	require.NoError(t, cfg.AddRPC("devnet", "https://custom.devnet.rpc"))

	rpcs := cfg.GetRPCs("devnet")
	assert.Contains(t, rpcs, "https://custom.devnet.rpc")
	assert.Empty(t, cfg.GetRPCs("testnet"))
}

func TestAddInvalidRPC(t *testing.T) {
	cfg, _ := config.Load(t.TempDir())
	for _, u := range []string{"", "ftp://x.example", "not a url", "https://"} {
		assert.Error(t, cfg.AddRPC("devnet", u), u)
	}
}

func TestAddDuplicateRPCErrors(t *testing.T) {
	cfg, _ := config.Load(t.TempDir())

	cfg.AddRPC("devnet", "https://custom.devnet.rpc") //nolint:errcheck
	err := cfg.AddRPC("devnet", "https://custom.devnet.rpc")
	assert.Error(t, err)
}

func TestRemoveCustomRPC(t *testing.T) {
	cfg, err := config.Load(t.TempDir())
	require.NoError(t, err)

	cfg.AddRPC("devnet", "https://rpc1.devnet") //nolint:errcheck
	cfg.AddRPC("devnet", "https://rpc2.devnet") //nolint:errcheck

	require.NoError(t, cfg.RemoveRPC("devnet", "https://rpc1.devnet"))

	rpcs := cfg.GetRPCs("devnet")
	assert.NotContains(t, rpcs, "https://rpc1.devnet")
	assert.Contains(t, rpcs, "https://rpc2.devnet")

	require.NoError(t, cfg.RemoveRPC("devnet", "https://rpc2.devnet"))
	_, ok := cfg.CustomRPCs["devnet"]
	assert.False(t, ok, "empty lists are dropped")
}

func TestRemoveNonExistentRPCErrors(t *testing.T) {
	cfg, _ := config.Load(t.TempDir())

	err := cfg.RemoveRPC("devnet", "https://nonexistent.rpc")
	assert.Error(t, err)
}

func TestMultipleCustomRPCs(t *testing.T) {
	cfg, _ := config.Load(t.TempDir())

	for _, url := range []string{"https://rpc1", "https://rpc2", "https://rpc3"} {
		cfg.AddRPC("mainnet-beta", url) //nolint:errcheck
	}

	rpcs := cfg.GetRPCs("mainnet-beta")
	assert.Len(t, rpcs, 3)
}

// ---------------------------------------------------------------------------
// Files
// ---------------------------------------------------------------------------

func TestConfigFileCreatedOnSave(t *testing.T) {
	dir := t.TempDir()
	cfg, _ := config.Load(dir)
	require.NoError(t, cfg.Save())

	info, err := os.Stat(filepath.Join(dir, "config.json"))
	require.NoError(t, err, "config.json should be created on save")
	if info.Mode().Perm() != 0 { // Unix only
		assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())
	}
}

func TestConfigDir(t *testing.T) {
	dir := t.TempDir()
	cfg, _ := config.Load(dir)
	assert.Equal(t, dir, cfg.Dir())
	assert.Equal(t, filepath.Join(dir, "wallets.json"), cfg.WalletsPath())
}

func TestLoadFromNonExistentDir(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "subdir")
	cfg, err := config.Load(dir)
	require.NoError(t, err)
	// Should create dir and return defaults.
	assert.Equal(t, "mainnet-beta", cfg.Network)
	_, err = os.Stat(dir)
	assert.NoError(t, err)
}
