package cmd

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"sync"
	"testing"

	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/stretchr/testify/require"

	"github.com/Mohsinsiddi/autosend/internal/wallet"
)

const (
	// Hardhat/Anvil test account #0. Never fund on mainnet.
	testKey    = "ac0974bec39a17e36ba4a6b4d238ff944bacb478cbed5efcae784d7bf4f2ff80"
	testSender = "0xf39Fd6e51aad88F6F4ce6aB8827279cffFb92266"
)

// devNode is a minimal Sepolia-like JSON-RPC node. It decodes submitted
// transactions and reports their real hash.
type devNode struct {
	*httptest.Server

	mu           sync.Mutex
	calls        []string
	sent         []*types.Transaction
	balance      string
	pendingPolls int
	neverMined   bool
	rejectSend   bool
}

func newDevNode(t *testing.T) *devNode {
	t.Helper()
	n := &devNode{balance: "0xde0b6b3a7640000"} // 1 ETH
	n.Server = httptest.NewServer(http.HandlerFunc(n.serve))
	t.Cleanup(n.Close)
	return n
}

func (n *devNode) serve(w http.ResponseWriter, r *http.Request) {
	var req struct {
		ID     uint64            `json:"id"`
		Method string            `json:"method"`
		Params []json.RawMessage `json:"params"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "bad request", http.StatusBadRequest)
		return
	}

	n.mu.Lock()
	n.calls = append(n.calls, req.Method)
	var result interface{}
	var rpcErr map[string]interface{}
	switch req.Method {
	case "eth_chainId":
		result = "0xaa36a7"
	case "eth_blockNumber":
		result = "0x6b4c2a"
	case "eth_getBalance":
		result = n.balance
	case "eth_gasPrice":
		result = "0x3b9aca00"
	case "eth_getTransactionCount":
		result = "0x7"
	case "eth_sendRawTransaction":
		result, rpcErr = n.accept(req.Params)
	case "eth_getTransactionReceipt":
		if n.neverMined || n.pendingPolls > 0 {
			n.pendingPolls--
			result = nil
		} else {
			result = map[string]string{"status": "0x1", "blockNumber": "0x6b4c2b", "gasUsed": "0x5208"}
		}
	default:
		rpcErr = map[string]interface{}{"code": -32601, "message": "method not found"}
	}
	n.mu.Unlock()

	resp := map[string]interface{}{"jsonrpc": "2.0", "id": req.ID, "result": result}
	if rpcErr != nil {
		resp = map[string]interface{}{"jsonrpc": "2.0", "id": req.ID, "error": rpcErr}
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(resp) //nolint:errcheck
}

func (n *devNode) accept(params []json.RawMessage) (interface{}, map[string]interface{}) {
	if n.rejectSend {
		return nil, map[string]interface{}{"code": -32000, "message": "nonce too low"}
	}
	var rawHex string
	if len(params) != 1 || json.Unmarshal(params[0], &rawHex) != nil {
		return nil, map[string]interface{}{"code": -32602, "message": "invalid params"}
	}
	raw, err := hexutil.Decode(rawHex)
	if err != nil {
		return nil, map[string]interface{}{"code": -32602, "message": err.Error()}
	}
	tx := new(types.Transaction)
	if err := tx.UnmarshalBinary(raw); err != nil {
		return nil, map[string]interface{}{"code": -32602, "message": err.Error()}
	}
	n.sent = append(n.sent, tx)
	return tx.Hash().Hex(), nil
}

func (n *devNode) count(method string) int {
	n.mu.Lock()
	defer n.mu.Unlock()
	c := 0
	for _, m := range n.calls {
		if m == method {
			c++
		}
	}
	return c
}

func (n *devNode) sentTxs() []*types.Transaction {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]*types.Transaction(nil), n.sent...)
}

var envKeys = []string{
	"RPC_ENDPOINT", "SEPOLIA_RPC_URL", "PRIVATE_KEY", "KEY_REF", "SENDER_ADDRESS",
	"RECIPIENTS", "MIN_AMOUNT_ETH", "MAX_AMOUNT_ETH", "GAS_LIMIT", "CONFIRM_TIMEOUT",
	"POLL_INTERVAL", "RPC_ALGORITHM", "RAND_SEED", "PUSHGATEWAY_URL", "APP_ENV",
}

// isolateEnv clears every autosend variable for the test and runs it in an
// empty directory so no stray .env is picked up.
func isolateEnv(t *testing.T) {
	t.Helper()
	for _, k := range envKeys {
		t.Setenv(k, "")
		require.NoError(t, os.Unsetenv(k))
	}
	t.Chdir(t.TempDir())
}

func setSendEnv(t *testing.T, rpcURL string) {
	t.Helper()
	isolateEnv(t)
	t.Setenv("RPC_ENDPOINT", rpcURL)
	t.Setenv("PRIVATE_KEY", "0x"+testKey)
	t.Setenv("SENDER_ADDRESS", testSender)
	t.Setenv("POLL_INTERVAL", "5ms")
	t.Setenv("RAND_SEED", "7")
}

// useKeystore swaps the keychain for an in-memory store.
func useKeystore(t *testing.T) *wallet.InMemoryKeystore {
	t.Helper()
	ks := wallet.NewInMemoryKeystore()
	prev := openKeystore
	openKeystore = func() wallet.KeystoreBackend { return ks }
	t.Cleanup(func() { openKeystore = prev })
	return ks
}

// execute runs the root command with args and stdin, returning stdout.
// Flag values live in package variables, so they are reset first.
func execute(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()
	resetFlags(rootCmd)
	var out, errOut bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&errOut)
	rootCmd.SetIn(strings.NewReader(stdin))
	rootCmd.SetArgs(args)
	t.Cleanup(func() {
		rootCmd.SetOut(nil)
		rootCmd.SetErr(nil)
		rootCmd.SetIn(nil)
		rootCmd.SetArgs(nil)
	})
	err := rootCmd.Execute()
	return out.String(), err
}

func resetFlags(c *cobra.Command) {
	reset := func(f *pflag.Flag) {
		_ = f.Value.Set(f.DefValue)
		f.Changed = false
	}
	c.Flags().VisitAll(reset)
	c.PersistentFlags().VisitAll(reset)
	for _, sub := range c.Commands() {
		resetFlags(sub)
	}
}

func unsetEnv(key string) error { return os.Unsetenv(key) }
