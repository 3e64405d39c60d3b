package integration_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Mohsinsiddi/autosend/internal/chain"
	"github.com/Mohsinsiddi/autosend/internal/config"
	"github.com/Mohsinsiddi/autosend/internal/transfer"
	"github.com/Mohsinsiddi/autosend/test/fixtures"
)

// Hardhat/Anvil test account #0.
const testKey = "ac0974bec39a17e36ba4a6b4d238ff944bacb478cbed5efcae784d7bf4f2ff80"

var testSender = common.HexToAddress("0xf39Fd6e51aad88F6F4ce6aB8827279cffFb92266")

// fixtureNode serves fixture results and decodes submitted transactions so
// eth_sendRawTransaction answers with the real hash.
type fixtureNode struct {
	mu      sync.Mutex
	results map[string]json.RawMessage
	raw     [][]byte
}

func mockRPCServer(t *testing.T, fixture string) (*httptest.Server, *fixtureNode) {
	t.Helper()
	n := &fixtureNode{results: fixtures.LoadRPCResults(t, fixture)}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Method string            `json:"method"`
			Params []json.RawMessage `json:"params"`
			ID     int               `json:"id"`
		}
		json.NewDecoder(r.Body).Decode(&req) //nolint:errcheck

		var result interface{}
		if req.Method == "eth_sendRawTransaction" {
			var rawHex string
			json.Unmarshal(req.Params[0], &rawHex) //nolint:errcheck
			raw, err := hexutil.Decode(rawHex)
			tx := new(types.Transaction)
			if err == nil {
				err = tx.UnmarshalBinary(raw)
			}
			if err != nil {
				http.Error(w, err.Error(), http.StatusBadRequest)
				return
			}
			n.mu.Lock()
			n.raw = append(n.raw, raw)
			n.mu.Unlock()
			result = tx.Hash().Hex()
		} else {
			res, ok := n.results[req.Method]
			if !ok {
				http.Error(w, "method not found", http.StatusNotFound)
				return
			}
			result = res
		}

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]interface{}{ //nolint:errcheck
			"jsonrpc": "2.0",
			"id":      req.ID,
			"result":  result,
		})
	}))
	t.Cleanup(srv.Close)
	return srv, n
}

func (n *fixtureNode) sent(t *testing.T) []*types.Transaction {
	t.Helper()
	n.mu.Lock()
	defer n.mu.Unlock()
	var txs []*types.Transaction
	for _, raw := range n.raw {
		tx := new(types.Transaction)
		require.NoError(t, tx.UnmarshalBinary(raw))
		txs = append(txs, tx)
	}
	return txs
}

func params() transfer.Params {
	minWei, _ := chain.ParseEther(config.DefaultMinAmountETH)
	maxWei, _ := chain.ParseEther(config.DefaultMaxAmountETH)
	return transfer.Params{
		SecretKey:  testKey,
		Sender:     testSender.Hex(),
		Recipients: config.DefaultRecipients,
		MinAmount:  minWei,
		MaxAmount:  maxWei,
	}
}

func TestPipelineAgainstEVMClient(t *testing.T) {
	srv, node := mockRPCServer(t, "sepolia_funded.json")
	client := chain.NewEVMClient(srv.URL)
	defer client.Close()

	p := &transfer.Pipeline{
		Node:           client,
		Rand:           transfer.SeededSource(3),
		PollInterval:   5 * time.Millisecond,
		ConfirmTimeout: time.Second,
	}
	res, err := p.Run(context.Background(), params())
	require.NoError(t, err)

	txs := node.sent(t)
	require.Len(t, txs, 1)
	tx := txs[0]
	assert.Equal(t, uint64(42), tx.Nonce())
	assert.Equal(t, "2000000000", tx.GasPrice().String())
	assert.Equal(t, uint64(21000), tx.Gas())
	assert.Equal(t, res.Intent.Amount.String(), tx.Value().String())
	assert.Equal(t, uint64(11155111), tx.ChainId().Uint64())

	from, err := types.Sender(types.NewLondonSigner(tx.ChainId()), tx)
	require.NoError(t, err)
	assert.Equal(t, testSender, from)

	assert.Equal(t, tx.Hash(), res.Pending.Hash)
	assert.Equal(t, transfer.StateConfirmed, res.Outcome.State)
	assert.True(t, res.Outcome.Succeeded())
	assert.Equal(t, uint64(7031851), res.Outcome.Receipt.BlockNumber)
	assert.Equal(t, "https://sepolia.etherscan.io/tx/"+tx.Hash().Hex(), chain.TxURL(res.ChainID, tx.Hash().Hex()))
}

func TestPipelineRevertedIsConfirmed(t *testing.T) {
	srv, _ := mockRPCServer(t, "sepolia_reverted.json")
	client := chain.NewEVMClient(srv.URL)
	defer client.Close()

	p := &transfer.Pipeline{Node: client, PollInterval: 5 * time.Millisecond, ConfirmTimeout: time.Second}
	res, err := p.Run(context.Background(), params())
	require.NoError(t, err)
	assert.Equal(t, transfer.StateConfirmed, res.Outcome.State)
	assert.False(t, res.Outcome.Succeeded())
}
