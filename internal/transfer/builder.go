package transfer

import (
	"context"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
)

// DefaultGasLimit covers a plain value transfer to an externally owned account.
const DefaultGasLimit uint64 = 21000

// FeeReader supplies the network data an unsigned transaction needs.
type FeeReader interface {
	GasPrice(ctx context.Context) (*big.Int, error)
	GetNonce(ctx context.Context, address common.Address) (uint64, error)
}

// UnsignedTx is a fully populated legacy transfer awaiting a signature.
type UnsignedTx struct {
	From     common.Address
	To       common.Address
	Value    *big.Int
	GasLimit uint64
	GasPrice *big.Int
	Nonce    uint64
	ChainID  uint64
}

// Transaction converts u into a go-ethereum legacy transaction.
func (u *UnsignedTx) Transaction() *types.Transaction {
	to := u.To
	return types.NewTx(&types.LegacyTx{
		Nonce:    u.Nonce,
		GasPrice: new(big.Int).Set(u.GasPrice),
		Gas:      u.GasLimit,
		To:       &to,
		Value:    new(big.Int).Set(u.Value),
	})
}

// Fee is the worst-case fee, gasLimit * gasPrice.
func (u *UnsignedTx) Fee() *big.Int {
	return new(big.Int).Mul(new(big.Int).SetUint64(u.GasLimit), u.GasPrice)
}

// MaxCost is value plus the worst-case fee.
func (u *UnsignedTx) MaxCost() *big.Int {
	return new(big.Int).Add(u.Value, u.Fee())
}

// BuildTx fetches the gas price and then the account nonce of from, and
// assembles the transfer described by intent. A gasLimit of zero means
// DefaultGasLimit.
func BuildTx(ctx context.Context, node FeeReader, from common.Address, intent Intent, chainID, gasLimit uint64) (*UnsignedTx, error) {
	if gasLimit == 0 {
		gasLimit = DefaultGasLimit
	}
	price, err := node.GasPrice(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrGasPriceFetch, err)
	}
	nonce, err := node.GetNonce(ctx, from)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrNonceFetch, err)
	}
	return &UnsignedTx{
		From:     from,
		To:       intent.Recipient,
		Value:    new(big.Int).Set(intent.Amount),
		GasLimit: gasLimit,
		GasPrice: price,
		Nonce:    nonce,
		ChainID:  chainID,
	}, nil
}
