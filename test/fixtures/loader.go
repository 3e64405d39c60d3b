package fixtures

import (
	"encoding/json"
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/stretchr/testify/require"
)

// fixturesDir returns the absolute path to the fixtures directory.
func fixturesDir() string {
	_, file, _, _ := runtime.Caller(0)
	return filepath.Dir(file)
}

// LoadRPCResults loads a fixture file mapping JSON-RPC method names to the
// result a node returns for them.
func LoadRPCResults(t *testing.T, filename string) map[string]json.RawMessage {
	t.Helper()
	path := filepath.Join(fixturesDir(), "rpc", filename)
	data, err := os.ReadFile(path)
	require.NoError(t, err, "failed to load fixture RPC results: %s", filename)

	var results map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(data, &results))
	return results
}
