package wallet

import (
	"crypto/ed25519"
	"encoding/hex"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/gagliardetto/solana-go"
	"github.com/mr-tron/base58"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seedKey(b byte) solana.PrivateKey {
	seed := make([]byte, ed25519.SeedSize)
	for i := range seed {
		seed[i] = b
	}
	return solana.PrivateKey(ed25519.NewKeyFromSeed(seed))
}

func jsonArray(t *testing.T, b []byte) string {
	t.Helper()
	ints := make([]int, len(b))
	for i, v := range b {
		ints[i] = int(v)
	}
	out, err := json.Marshal(ints)
	require.NoError(t, err)
	return string(out)
}

// ---------------------------------------------------------------------------
// ParseSecretKey
// ---------------------------------------------------------------------------

func TestParseSecretKeyBase58Keypair(t *testing.T) {
	key := seedKey(5)
	got, err := ParseSecretKey(key.String())
	require.NoError(t, err)
	assert.Equal(t, key, got)
}

func TestParseSecretKeyTrimsWhitespace(t *testing.T) {
	key := seedKey(5)
	got, err := ParseSecretKey("  " + key.String() + "\n")
	require.NoError(t, err)
	assert.Equal(t, key.PublicKey(), got.PublicKey())
}

func TestParseSecretKeyJSONKeypair(t *testing.T) {
	key := seedKey(6)
	got, err := ParseSecretKey(jsonArray(t, key))
	require.NoError(t, err)
	assert.Equal(t, key, got)
}

func TestParseSecretKeySeedOnly(t *testing.T) {
	key := seedKey(8)
	seed := key[:ed25519.SeedSize]

	fromB58, err := ParseSecretKey(base58.Encode(seed))
	require.NoError(t, err)
	assert.Equal(t, key.PublicKey(), fromB58.PublicKey())

	fromJSON, err := ParseSecretKey(jsonArray(t, seed))
	require.NoError(t, err)
	assert.Equal(t, key.PublicKey(), fromJSON.PublicKey())
}

func TestParseSecretKeyMismatchedPublicHalf(t *testing.T) {
	a, b := seedKey(1), seedKey(2)
	forged := append(append([]byte{}, a[:32]...), b[32:]...)
	_, err := ParseSecretKey(base58.Encode(forged))
	assert.ErrorIs(t, err, ErrInvalidKey)
}

func TestParseSecretKeyRejects(t *testing.T) {
	cases := map[string]string{
		"empty":        "",
		"bad base58":   "0OIl",
		"wrong length": base58.Encode([]byte{1, 2, 3}),
		"bad json":     "[1,2,",
		"byte range":   "[256" + strings.Repeat(",0", 31) + "]",
		"negative":     "[-1" + strings.Repeat(",0", 31) + "]",
	}
	for name, in := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := ParseSecretKey(in)
			assert.ErrorIs(t, err, ErrInvalidKey)
		})
	}
}

// ---------------------------------------------------------------------------
// SLIP-0010 derivation
// ---------------------------------------------------------------------------

// Test vector 1 for ed25519 from SLIP-0010.
func TestDeriveEd25519Vectors(t *testing.T) {
	seed, err := hex.DecodeString("000102030405060708090a0b0c0d0e0f")
	require.NoError(t, err)

	master := deriveEd25519(seed, nil)
	assert.Equal(t, "2b4be7f19ee27bbf30c667b642d5f4aa69fd169872f8fc3059c08ebae2eb19e7", hex.EncodeToString(master))

	child := deriveEd25519(seed, []uint32{0})
	assert.Equal(t, "68e0fe46dfb67e368c75379acec591dad19df3cde26e63b93a8e704f1dade7a3", hex.EncodeToString(child))
}

func TestKeyFromMnemonicDeterministic(t *testing.T) {
	mnemonic, err := NewMnemonic()
	require.NoError(t, err)

	a, err := KeyFromMnemonic(mnemonic, "", 0)
	require.NoError(t, err)
	b, err := KeyFromMnemonic("  "+strings.ReplaceAll(mnemonic, " ", "   ")+" ", "", 0)
	require.NoError(t, err)
	assert.Equal(t, a, b, "whitespace must not change the derived key")

	next, err := KeyFromMnemonic(mnemonic, "", 1)
	require.NoError(t, err)
	assert.NotEqual(t, a.PublicKey(), next.PublicKey())

	withPass, err := KeyFromMnemonic(mnemonic, "hunter2", 0)
	require.NoError(t, err)
	assert.NotEqual(t, a.PublicKey(), withPass.PublicKey())
}

func TestKeyFromMnemonicInvalidChecksum(t *testing.T) {
	_, err := KeyFromMnemonic(strings.Repeat("abandon ", 12), "", 0)
	assert.ErrorIs(t, err, ErrInvalidKey)
}

// ---------------------------------------------------------------------------
// WriteKeygenFile
// ---------------------------------------------------------------------------

func TestWriteKeygenFileReadableBySolanaGo(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "id.json")
	key := seedKey(4)
	require.NoError(t, WriteKeygenFile(path, key))

	got, err := solana.PrivateKeyFromSolanaKeygenFile(path)
	require.NoError(t, err)
	assert.Equal(t, key.PublicKey(), got.PublicKey())

	info, err := os.Stat(path)
	require.NoError(t, err)
	if info.Mode().Perm() != 0 { // Unix only
		assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())
	}
}
