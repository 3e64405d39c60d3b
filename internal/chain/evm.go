package chain

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math/big"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
)

// ErrEmptyResult is returned when the node answers a call with a null result
// where a value is required.
var ErrEmptyResult = errors.New("empty result")

// EVMClient is a minimal JSON-RPC client for EVM chains. One client holds one
// HTTP session (keep-alive connections) for its whole lifetime.
type EVMClient struct {
	url    string
	client *http.Client
	nextID atomic.Uint64
}

// TxReceipt holds the on-chain receipt of a mined transaction.
type TxReceipt struct {
	Hash        common.Hash
	Status      uint64 // 1 = success, 0 = reverted
	BlockNumber uint64
	GasUsed     uint64
}

// Succeeded reports whether the receipt carries the success status flag.
func (r *TxReceipt) Succeeded() bool { return r.Status == 1 }

// RPCError is a JSON-RPC error object returned by the node.
type RPCError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

func (e *RPCError) Error() string {
	return fmt.Sprintf("RPC error %d: %s", e.Code, e.Message)
}

// NewEVMClient creates a new EVM JSON-RPC client pointed at url.
func NewEVMClient(url string) *EVMClient {
	return &EVMClient{
		url: url,
		client: &http.Client{
			Timeout: 15 * time.Second,
		},
	}
}

// URL returns the endpoint this client talks to.
func (c *EVMClient) URL() string { return c.url }

// Close releases idle connections held by the session.
func (c *EVMClient) Close() {
	c.client.CloseIdleConnections()
}

// ChainID returns the chain's ID (eth_chainId).
func (c *EVMClient) ChainID(ctx context.Context) (uint64, error) {
	var id hexutil.Big
	if err := c.call(ctx, "eth_chainId", &id); err != nil {
		return 0, err
	}
	n := (*big.Int)(&id)
	if !n.IsUint64() {
		return 0, fmt.Errorf("chain id %s out of range", n)
	}
	return n.Uint64(), nil
}

// GetBalance returns the native balance in wei at the latest block.
func (c *EVMClient) GetBalance(ctx context.Context, address common.Address) (*big.Int, error) {
	var bal hexutil.Big
	if err := c.call(ctx, "eth_getBalance", &bal, address, "latest"); err != nil {
		return nil, err
	}
	return (*big.Int)(&bal), nil
}

// GasPrice returns the current legacy gas price (eth_gasPrice).
func (c *EVMClient) GasPrice(ctx context.Context) (*big.Int, error) {
	var gp hexutil.Big
	if err := c.call(ctx, "eth_gasPrice", &gp); err != nil {
		return nil, err
	}
	return (*big.Int)(&gp), nil
}

// GetNonce returns the transaction count (nonce) for an address at the latest block.
func (c *EVMClient) GetNonce(ctx context.Context, address common.Address) (uint64, error) {
	var n hexutil.Uint64
	if err := c.call(ctx, "eth_getTransactionCount", &n, address, "latest"); err != nil {
		return 0, err
	}
	return uint64(n), nil
}

// GetBlockNumber returns the latest block number.
func (c *EVMClient) GetBlockNumber(ctx context.Context) (uint64, error) {
	var n hexutil.Uint64
	if err := c.call(ctx, "eth_blockNumber", &n); err != nil {
		return 0, err
	}
	return uint64(n), nil
}

// SendRawTransaction broadcasts a signed, RLP/typed-encoded transaction and
// returns the hash reported by the node.
func (c *EVMClient) SendRawTransaction(ctx context.Context, raw []byte) (common.Hash, error) {
	var hash common.Hash
	if err := c.call(ctx, "eth_sendRawTransaction", &hash, hexutil.Bytes(raw)); err != nil {
		return common.Hash{}, err
	}
	return hash, nil
}

// GetTransactionReceipt fetches the receipt for hash.
// Returns nil, nil if the transaction is still pending.
func (c *EVMClient) GetTransactionReceipt(ctx context.Context, hash common.Hash) (*TxReceipt, error) {
	var r *struct {
		Status      hexutil.Uint64 `json:"status"`
		BlockNumber hexutil.Uint64 `json:"blockNumber"`
		GasUsed     hexutil.Uint64 `json:"gasUsed"`
	}
	if err := c.callNullable(ctx, "eth_getTransactionReceipt", &r, hash); err != nil {
		return nil, err
	}
	if r == nil {
		return nil, nil // still pending
	}
	return &TxReceipt{
		Hash:        hash,
		Status:      uint64(r.Status),
		BlockNumber: uint64(r.BlockNumber),
		GasUsed:     uint64(r.GasUsed),
	}, nil
}

// Ping tests the RPC endpoint and returns latency + block number.
func (c *EVMClient) Ping(ctx context.Context) (latency time.Duration, blockNum uint64, err error) {
	start := time.Now()
	blockNum, err = c.GetBlockNumber(ctx)
	return time.Since(start), blockNum, err
}

// --- internal JSON-RPC plumbing ---

type rpcRequest struct {
	JSONRPC string        `json:"jsonrpc"`
	Method  string        `json:"method"`
	Params  []interface{} `json:"params"`
	ID      uint64        `json:"id"`
}

type rpcResponse struct {
	JSONRPC string          `json:"jsonrpc"`
	ID      uint64          `json:"id"`
	Result  json.RawMessage `json:"result"`
	Error   *RPCError       `json:"error"`
}

// call performs method and decodes a required (non-null) result into out.
func (c *EVMClient) call(ctx context.Context, method string, out interface{}, params ...interface{}) error {
	raw, err := c.roundTrip(ctx, method, params)
	if err != nil {
		return err
	}
	if isNull(raw) {
		return fmt.Errorf("%s: %w", method, ErrEmptyResult)
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("parsing %s result: %w", method, err)
	}
	return nil
}

// callNullable is like call but accepts a null result, leaving out untouched.
func (c *EVMClient) callNullable(ctx context.Context, method string, out interface{}, params ...interface{}) error {
	raw, err := c.roundTrip(ctx, method, params)
	if err != nil {
		return err
	}
	if isNull(raw) {
		return nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("parsing %s result: %w", method, err)
	}
	return nil
}

func (c *EVMClient) roundTrip(ctx context.Context, method string, params []interface{}) (json.RawMessage, error) {
	if params == nil {
		params = []interface{}{}
	}
	reqBody, err := json.Marshal(rpcRequest{
		JSONRPC: "2.0",
		Method:  method,
		Params:  params,
		ID:      c.nextID.Add(1),
	})
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(reqBody))
	if err != nil {
		return nil, fmt.Errorf("building request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("RPC request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading response: %w", err)
	}

	var rpcResp rpcResponse
	if err := json.Unmarshal(body, &rpcResp); err != nil {
		if resp.StatusCode != http.StatusOK {
			return nil, fmt.Errorf("RPC request failed: HTTP %d", resp.StatusCode)
		}
		return nil, fmt.Errorf("parsing response: %w", err)
	}
	if rpcResp.Error != nil {
		return nil, rpcResp.Error
	}
	return rpcResp.Result, nil
}

func isNull(raw json.RawMessage) bool {
	trimmed := bytes.TrimSpace(raw)
	return len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null"))
}
