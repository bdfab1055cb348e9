package cmd

import (
	"encoding/binary"
	"encoding/json"
	"path/filepath"
	"strings"
	"testing"

	"github.com/Mohsinsiddi/solsend/internal/chain"
	"github.com/Mohsinsiddi/solsend/internal/chain/chaintest"
	"github.com/Mohsinsiddi/solsend/internal/config"
	"github.com/Mohsinsiddi/solsend/internal/wallet"
	"github.com/gagliardetto/solana-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testAddr = "7Np41oeYqPefeNQEHSv1UDhYrehxin3NStELsSKCT4K2"

// localnetNode starts a fake node and registers it as the only localnet RPC.
func localnetNode(t *testing.T, dir string) *chaintest.Server {
	t.Helper()
	srv := chaintest.NewServer(t)
	_, err := execute(t, dir, "rpc", "add", "localnet", srv.URL)
	require.NoError(t, err)
	return srv
}

func loadConfig(t *testing.T, dir string) *config.Config {
	t.Helper()
	c, err := config.Load(dir)
	require.NoError(t, err)
	return c
}

func transferLamports(t *testing.T, tx *solana.Transaction) uint64 {
	t.Helper()
	require.Len(t, tx.Message.Instructions, 1)
	data := tx.Message.Instructions[0].Data
	require.Len(t, data, 12)
	assert.Equal(t, uint32(2), binary.LittleEndian.Uint32(data[:4]), "system transfer")
	return binary.LittleEndian.Uint64(data[4:])
}

func TestNetworkList(t *testing.T) {
	dir := isolate(t)
	out, err := execute(t, dir, "network", "list")
	require.NoError(t, err)
	for _, n := range []string{"mainnet-beta", "testnet", "devnet", "localnet"} {
		assert.Contains(t, out, n)
	}
	assert.Contains(t, out, "4 clusters total")
}

func TestNetworkUse(t *testing.T) {
	dir := isolate(t)

	out, err := execute(t, dir, "network", "use", "mainnet")
	require.NoError(t, err)
	assert.Contains(t, out, "mainnet-beta")
	assert.Equal(t, "mainnet-beta", loadConfig(t, dir).Network)

	_, err = execute(t, dir, "network", "use", "ropsten")
	assert.ErrorIs(t, err, chain.ErrUnknownNetwork)
}

func TestConfigCommands(t *testing.T) {
	dir := isolate(t)

	_, err := execute(t, dir, "config", "set-network", "devnet")
	require.NoError(t, err)
	_, err = execute(t, dir, "config", "set-connector", "burner")
	require.NoError(t, err)
	_, err = execute(t, dir, "config", "set-confirm-timeout", "90s")
	require.NoError(t, err)
	_, err = execute(t, dir, "config", "set-keyfile", "/keys/id.json")
	require.NoError(t, err)

	c := loadConfig(t, dir)
	assert.Equal(t, "devnet", c.Network)
	assert.Equal(t, "burner", c.Connector)
	assert.Equal(t, 90, c.ConfirmTimeout)
	assert.Equal(t, "/keys/id.json", c.Keyfile)

	out, err := execute(t, dir, "config", "list")
	require.NoError(t, err)
	assert.Contains(t, out, `"network": "devnet"`)
	assert.Contains(t, out, "rpc_algorithm")

	_, err = execute(t, dir, "config", "set-connector", "none")
	require.NoError(t, err)
	assert.Empty(t, loadConfig(t, dir).Connector)
}

func TestConfigRejectsBadValues(t *testing.T) {
	dir := isolate(t)

	_, err := execute(t, dir, "config", "set-connector", "phantom")
	assert.ErrorIs(t, err, wallet.ErrUnknownConnector)

	_, err = execute(t, dir, "config", "set-confirm-timeout", "soon")
	assert.Error(t, err)

	_, err = execute(t, dir, "config", "set-confirm-timeout", "1h")
	assert.Error(t, err)
}

func TestRPCCommands(t *testing.T) {
	dir := isolate(t)

	_, err := execute(t, dir, "rpc", "add", "devnet", "https://devnet.example.com")
	require.NoError(t, err)
	_, err = execute(t, dir, "rpc", "add", "devnet", "ftp://nope")
	assert.Error(t, err)

	out, err := execute(t, dir, "rpc", "list", "devnet")
	require.NoError(t, err)
	assert.Contains(t, out, "https://api.devnet.solana.com")
	assert.Contains(t, out, "devnet.example.com")

	_, err = execute(t, dir, "rpc", "remove", "devnet", "https://devnet.example.com")
	require.NoError(t, err)
	assert.Empty(t, loadConfig(t, dir).GetRPCs("devnet"))

	_, err = execute(t, dir, "rpc", "algorithm", "set", "round-robin")
	require.NoError(t, err)
	assert.Equal(t, "round-robin", loadConfig(t, dir).RPCAlgorithm)

	_, err = execute(t, dir, "rpc", "algorithm", "set", "random")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "fastest, round-robin, failover")
}

func TestWalletLifecycle(t *testing.T) {
	dir := isolate(t)

	out, err := execute(t, dir, "wallet", "list")
	require.NoError(t, err)
	assert.Contains(t, out, "No wallets configured yet")

	_, err = execute(t, dir, "wallet", "add", "savings")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "address required")

	_, err = execute(t, dir, "wallet", "add", "savings", "0x1234")
	assert.ErrorIs(t, err, wallet.ErrInvalidAddress)

	out, err = execute(t, dir, "wallet", "add", "savings", testAddr)
	require.NoError(t, err)
	assert.Contains(t, out, "savings")

	_, err = execute(t, dir, "wallet", "use", "savings")
	require.NoError(t, err)
	assert.Equal(t, "savings", loadConfig(t, dir).DefaultWallet)

	out, err = execute(t, dir, "wallet", "list")
	require.NoError(t, err)
	assert.Contains(t, out, "savings")
	assert.Contains(t, out, testAddr)
	assert.Contains(t, out, "1 wallet(s) configured")

	_, err = execute(t, dir, "wallet", "use", "ghost")
	assert.ErrorIs(t, err, wallet.ErrWalletNotFound)

	_, err = execute(t, dir, "wallet", "remove", "savings", "--yes")
	require.NoError(t, err)
	assert.Empty(t, loadConfig(t, dir).DefaultWallet)

	out, err = execute(t, dir, "wallet", "list")
	require.NoError(t, err)
	assert.NotContains(t, out, "savings")
}

func TestConnectors(t *testing.T) {
	dir := isolate(t)
	out, err := execute(t, dir, "connectors", "--network", "devnet")
	require.NoError(t, err)
	for _, name := range []string{"keychain", "keyfile", "env", "burner"} {
		assert.Contains(t, out, name)
	}
	assert.Contains(t, out, "throwaway key for devnet")
	assert.Contains(t, out, "4 connectors on devnet")
}

func TestConnectStatusDisconnect(t *testing.T) {
	dir := isolate(t)

	out, err := execute(t, dir, "status", "--network", "devnet")
	require.NoError(t, err)
	assert.Contains(t, out, "disconnected")
	assert.Contains(t, out, "(not connected)")

	out, err = execute(t, dir, "connect", "burner", "--network", "devnet")
	require.NoError(t, err)
	assert.Contains(t, out, "Connected burner on")
	assert.Contains(t, out, "solsend airdrop")

	// A later invocation reconnects the remembered connector.
	out, err = execute(t, dir, "status", "--network", "devnet")
	require.NoError(t, err)
	assert.Contains(t, out, "burner")
	assert.NotContains(t, out, "(not connected)")

	// Remembering is per network.
	out, err = execute(t, dir, "status", "--network", "testnet")
	require.NoError(t, err)
	assert.Contains(t, out, "(not connected)")

	_, err = execute(t, dir, "disconnect", "--network", "devnet")
	require.NoError(t, err)
	out, err = execute(t, dir, "status", "--network", "devnet")
	require.NoError(t, err)
	assert.Contains(t, out, "disconnected")
}

func TestConnectRejectsBurnerOnMainnet(t *testing.T) {
	dir := isolate(t)
	_, err := execute(t, dir, "connect", "burner", "--network", "mainnet-beta")
	assert.ErrorIs(t, err, wallet.ErrConnectorUnavailable)

	_, err = execute(t, dir, "connect", "phantom", "--network", "devnet")
	assert.ErrorIs(t, err, wallet.ErrUnknownConnector)
}

func TestSendNotConnected(t *testing.T) {
	dir := isolate(t)
	out, err := execute(t, dir, "send", "--network", "localnet", "--to", testAddr)
	assert.ErrorIs(t, err, wallet.ErrNotConnected)
	assert.Contains(t, out, "Transfer Preview")
	assert.Contains(t, out, "(not connected)")
	assert.Contains(t, out, "Connect first")
}

func TestSendWithEnvConnector(t *testing.T) {
	dir := isolate(t)
	srv := localnetNode(t, dir)

	key, err := solana.NewRandomPrivateKey()
	require.NoError(t, err)
	t.Setenv(wallet.EnvPrivateKey, key.String())

	out, err := execute(t, dir, "send", "--network", "localnet", "--connector", "env",
		"--to", testAddr, "--amount", "0.25")
	require.NoError(t, err)
	assert.Contains(t, out, "Signature: ")
	assert.Contains(t, out, "explorer.solana.com/tx/")
	assert.Contains(t, out, "Sent 0.250000000 SOL")

	sent := srv.Sent()
	require.Len(t, sent, 1)
	assert.Equal(t, uint64(250_000_000), transferLamports(t, sent[0]))
	assert.True(t, sent[0].Message.AccountKeys[0].Equals(key.PublicKey()), "fee payer is the connected wallet")
}

func TestSendDefaultsToPointOneSOL(t *testing.T) {
	dir := isolate(t)
	srv := localnetNode(t, dir)

	key, err := solana.NewRandomPrivateKey()
	require.NoError(t, err)
	keyfile := filepath.Join(t.TempDir(), "id.json")
	require.NoError(t, wallet.WriteKeygenFile(keyfile, key))
	_, err = execute(t, dir, "config", "set-keyfile", keyfile)
	require.NoError(t, err)
	_, err = execute(t, dir, "config", "set-connector", "keyfile")
	require.NoError(t, err)

	_, err = execute(t, dir, "send", "--network", "localnet", "--to", testAddr)
	require.NoError(t, err)

	sent := srv.Sent()
	require.Len(t, sent, 1)
	assert.Equal(t, uint64(100_000_000), transferLamports(t, sent[0]))
}

func TestSendUnparseableAmountSendsZero(t *testing.T) {
	dir := isolate(t)
	srv := localnetNode(t, dir)
	key, err := solana.NewRandomPrivateKey()
	require.NoError(t, err)
	t.Setenv(wallet.EnvPrivateKey, key.String())

	_, err = execute(t, dir, "send", "-n", "localnet", "-c", "env", "--to", testAddr, "--amount", "lots")
	require.NoError(t, err)
	require.Len(t, srv.Sent(), 1)
	assert.Zero(t, transferLamports(t, srv.Sent()[0]))
}

func TestSendInvalidRecipient(t *testing.T) {
	dir := isolate(t)
	srv := localnetNode(t, dir)
	key, err := solana.NewRandomPrivateKey()
	require.NoError(t, err)
	t.Setenv(wallet.EnvPrivateKey, key.String())

	_, err = execute(t, dir, "send", "-n", "localnet", "-c", "env", "--to", "not-an-address")
	assert.Error(t, err)
	assert.Empty(t, srv.Sent())
}

func TestBalance(t *testing.T) {
	dir := isolate(t)
	srv := localnetNode(t, dir)
	srv.Handle("getBalance", func(params json.RawMessage) (any, *chaintest.RPCError) {
		return map[string]any{"context": map[string]any{"slot": 100}, "value": 1_500_000_000}, nil
	})

	out, err := execute(t, dir, "balance", testAddr, "--network", "localnet")
	require.NoError(t, err)
	assert.Contains(t, out, "1.500000000 SOL")
	assert.Contains(t, out, "1500000000")

	_, err = execute(t, dir, "balance", "nobody", "--network", "localnet")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "neither an address nor a wallet")
}

func TestBalanceFallsBackToDefaultWallet(t *testing.T) {
	dir := isolate(t)
	srv := localnetNode(t, dir)
	_, err := execute(t, dir, "wallet", "add", "savings", testAddr)
	require.NoError(t, err)
	_, err = execute(t, dir, "wallet", "use", "savings")
	require.NoError(t, err)

	out, err := execute(t, dir, "balance", "-n", "localnet")
	require.NoError(t, err)
	assert.Contains(t, out, "0.000000000 SOL")
	assert.Equal(t, 1, srv.Calls("getBalance"))
}

func TestAirdrop(t *testing.T) {
	dir := isolate(t)
	srv := localnetNode(t, dir)
	var sig solana.Signature
	sig[0] = 0xA1
	srv.SetStatus(sig, "confirmed")

	out, err := execute(t, dir, "airdrop", "2", "--network", "localnet", "--to", testAddr)
	require.NoError(t, err)
	assert.Contains(t, out, "Airdropped 2.000000000 SOL")
	assert.Contains(t, out, sig.String())
	assert.Equal(t, 1, srv.Calls("requestAirdrop"))
}

func TestAirdropRefusedWithoutFaucet(t *testing.T) {
	dir := isolate(t)
	_, err := execute(t, dir, "airdrop", "--network", "mainnet-beta", "--to", testAddr)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no faucet")
}

func TestFaucet(t *testing.T) {
	dir := isolate(t)

	out, err := execute(t, dir, "faucet", "--network", "devnet")
	require.NoError(t, err)
	assert.Contains(t, out, "https://faucet.solana.com")

	out, err = execute(t, dir, "faucet", "--network", "mainnet-beta")
	require.NoError(t, err)
	assert.True(t, strings.Contains(out, "No faucet"))

	out, err = execute(t, dir, "faucet", "--network", "localnet")
	require.NoError(t, err)
	assert.Contains(t, out, "solsend airdrop")
}

func TestHistoryPlain(t *testing.T) {
	dir := isolate(t)
	srv := localnetNode(t, dir)
	var sig solana.Signature
	sig[0] = 0xB2
	srv.Handle("getSignaturesForAddress", func(json.RawMessage) (any, *chaintest.RPCError) {
		return []map[string]any{
			{"signature": sig.String(), "slot": 4242, "err": nil, "memo": nil, "blockTime": nil, "confirmationStatus": "finalized"},
		}, nil
	})

	out, err := execute(t, dir, "history", testAddr, "--plain", "--network", "localnet")
	require.NoError(t, err)
	assert.Contains(t, out, "4242")
	assert.Contains(t, out, "finalized")
	assert.Contains(t, out, "explorer.solana.com/address/"+testAddr)
}

func TestHistoryPlainEmpty(t *testing.T) {
	dir := isolate(t)
	localnetNode(t, dir)

	out, err := execute(t, dir, "history", testAddr, "--plain", "-n", "localnet")
	require.NoError(t, err)
	assert.Contains(t, out, "No transactions found")
}

func TestHistoryRejectsBadLimit(t *testing.T) {
	dir := isolate(t)
	_, err := execute(t, dir, "history", testAddr, "--plain", "--limit", "0")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "--limit")
}

func TestBalanceLiveRejectsShortInterval(t *testing.T) {
	dir := isolate(t)
	localnetNode(t, dir)
	_, err := execute(t, dir, "balance", testAddr, "--live", "--interval", "10ms", "-n", "localnet")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "--interval")
}

func TestFees(t *testing.T) {
	dir := isolate(t)
	srv := localnetNode(t, dir)

	out, err := execute(t, dir, "fees", "--to", testAddr, "-n", "localnet")
	require.NoError(t, err)
	assert.Contains(t, out, "0.000005000 SOL")
	assert.Contains(t, out, "5000 lamports")
	assert.Contains(t, out, "median 1000")
	assert.Equal(t, 1, srv.Calls("getFeeForMessage"))
}
