package fixtures

import (
	"encoding/json"
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/Mohsinsiddi/solsend/internal/chain/chaintest"
	"github.com/stretchr/testify/require"
)

// fixturesDir returns the absolute path to the fixtures directory.
func fixturesDir() string {
	_, file, _, _ := runtime.Caller(0)
	return filepath.Dir(file)
}

// rpcResponse is a recorded JSON-RPC response.
type rpcResponse struct {
	Result json.RawMessage `json:"result"`
}

// LoadRPCResponse loads a fixture RPC response JSON file.
func LoadRPCResponse(t *testing.T, filename string) map[string]interface{} {
	t.Helper()
	data := read(t, filename)

	var resp map[string]interface{}
	require.NoError(t, json.Unmarshal(data, &resp))
	return resp
}

// LoadRPCResult returns the raw "result" member of a recorded response.
func LoadRPCResult(t *testing.T, filename string) json.RawMessage {
	t.Helper()
	var resp rpcResponse
	require.NoError(t, json.Unmarshal(read(t, filename), &resp))
	require.NotEmpty(t, resp.Result, "fixture %s has no result", filename)
	return resp.Result
}

// Reply returns a chaintest handler that answers with a recorded result,
// whatever the params.
func Reply(t *testing.T, filename string) chaintest.Handler {
	t.Helper()
	result := LoadRPCResult(t, filename)
	return func(json.RawMessage) (any, *chaintest.RPCError) {
		return result, nil
	}
}

func read(t *testing.T, filename string) []byte {
	t.Helper()
	path := filepath.Join(fixturesDir(), "rpc", filename)
	data, err := os.ReadFile(path)
	require.NoError(t, err, "failed to load fixture RPC response: %s", filename)
	return data
}
