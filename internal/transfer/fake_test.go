package transfer

import (
	"context"
	"errors"
	"math/big"
	"sync"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"

	"github.com/Mohsinsiddi/autosend/internal/chain"
)

// Hardhat/Anvil test account #0.
const (
	testKey    = "ac0974bec39a17e36ba4a6b4d238ff944bacb478cbed5efcae784d7bf4f2ff80"
	testSender = "0xf39Fd6e51aad88F6F4ce6aB8827279cffFb92266"
)

const sepolia = 11155111

var errNodeDown = errors.New("node down")

// fakeNode is an in-memory Node that records every call by RPC method name.
type fakeNode struct {
	mu sync.Mutex

	chainID    uint64
	chainErr   error
	balance    *big.Int
	balanceErr error
	gasPrice   *big.Int
	gasErr     error
	nonce      uint64
	nonceErr   error
	sendErr    error
	// wrongHash makes SendRawTransaction report a hash unrelated to the payload.
	wrongHash bool

	// Receipt lookups fail receiptErrs times, then return nil pendingPolls
	// times, then return receipt. A nil receipt stays pending forever.
	receiptErrs  int
	pendingPolls int
	receipt      *chain.TxReceipt

	calls        []string
	balanceOf    []common.Address
	nonceOf      []common.Address
	sent         []*types.Transaction
	receiptPolls int
}

func newFakeNode() *fakeNode {
	return &fakeNode{
		chainID:  sepolia,
		balance:  ether(1),
		gasPrice: big.NewInt(10_000_000_000),
		receipt:  &chain.TxReceipt{Status: 1, BlockNumber: 4_000_000, GasUsed: 21000},
	}
}

func (f *fakeNode) record(method string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, method)
}

func (f *fakeNode) Calls() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.calls...)
}

func (f *fakeNode) count(method string) int {
	n := 0
	for _, c := range f.Calls() {
		if c == method {
			n++
		}
	}
	return n
}

func (f *fakeNode) ChainID(ctx context.Context) (uint64, error) {
	f.record("eth_chainId")
	return f.chainID, f.chainErr
}

func (f *fakeNode) GetBalance(ctx context.Context, address common.Address) (*big.Int, error) {
	f.record("eth_getBalance")
	f.balanceOf = append(f.balanceOf, address)
	if f.balanceErr != nil {
		return nil, f.balanceErr
	}
	return new(big.Int).Set(f.balance), nil
}

func (f *fakeNode) GasPrice(ctx context.Context) (*big.Int, error) {
	f.record("eth_gasPrice")
	if f.gasErr != nil {
		return nil, f.gasErr
	}
	return new(big.Int).Set(f.gasPrice), nil
}

func (f *fakeNode) GetNonce(ctx context.Context, address common.Address) (uint64, error) {
	f.record("eth_getTransactionCount")
	f.nonceOf = append(f.nonceOf, address)
	return f.nonce, f.nonceErr
}

func (f *fakeNode) SendRawTransaction(ctx context.Context, raw []byte) (common.Hash, error) {
	f.record("eth_sendRawTransaction")
	if f.sendErr != nil {
		return common.Hash{}, f.sendErr
	}
	tx := new(types.Transaction)
	if err := tx.UnmarshalBinary(raw); err != nil {
		return common.Hash{}, err
	}
	f.sent = append(f.sent, tx)
	if f.wrongHash {
		return common.HexToHash("0x01"), nil
	}
	return tx.Hash(), nil
}

func (f *fakeNode) GetTransactionReceipt(ctx context.Context, hash common.Hash) (*chain.TxReceipt, error) {
	f.record("eth_getTransactionReceipt")
	f.mu.Lock()
	f.receiptPolls++
	n := f.receiptPolls
	f.mu.Unlock()
	switch {
	case n <= f.receiptErrs:
		return nil, errNodeDown
	case n <= f.receiptErrs+f.pendingPolls, f.receipt == nil:
		return nil, nil
	}
	r := *f.receipt
	r.Hash = hash
	return &r, nil
}

// fixedSource replays queued draws.
type fixedSource struct {
	vals []int64
}

func (s *fixedSource) Int(max *big.Int) (*big.Int, error) {
	if len(s.vals) == 0 {
		return nil, errors.New("fixedSource exhausted")
	}
	v := big.NewInt(s.vals[0])
	s.vals = s.vals[1:]
	if v.Cmp(max) >= 0 {
		return nil, errors.New("fixedSource value out of range")
	}
	return v, nil
}

func ether(n int64) *big.Int {
	return new(big.Int).Mul(big.NewInt(n), big.NewInt(1_000_000_000_000_000_000))
}

func gwei(n int64) *big.Int {
	return new(big.Int).Mul(big.NewInt(n), big.NewInt(1_000_000_000))
}
