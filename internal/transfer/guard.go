package transfer

import (
	"context"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
)

// BalanceReader reads an account's native balance.
type BalanceReader interface {
	GetBalance(ctx context.Context, address common.Address) (*big.Int, error)
}

// CheckBalance fetches the sender's balance and refuses amounts it cannot
// cover. Gas is not counted; a balance that covers the value but not the
// fee is rejected by the node at broadcast.
func CheckBalance(ctx context.Context, node BalanceReader, sender common.Address, amount *big.Int) (*big.Int, error) {
	bal, err := node.GetBalance(ctx, sender)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrBalanceFetch, err)
	}
	if bal.Cmp(amount) < 0 {
		return bal, &InsufficientFundsError{Balance: bal, Amount: amount}
	}
	return bal, nil
}
