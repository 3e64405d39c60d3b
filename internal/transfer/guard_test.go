package transfer

import (
	"context"
	"errors"
	"math/big"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCheckBalanceInsufficient(t *testing.T) {
	node := newFakeNode()
	node.balance = big.NewInt(100)

	bal, err := CheckBalance(context.Background(), node, common.HexToAddress(testSender), big.NewInt(150))
	require.ErrorIs(t, err, ErrInsufficientFunds)
	assert.Equal(t, "100", bal.String())

	var ife *InsufficientFundsError
	require.True(t, errors.As(err, &ife))
	assert.Equal(t, "100", ife.Balance.String())
	assert.Equal(t, "150", ife.Amount.String())
	assert.Contains(t, err.Error(), "insufficient funds")
}

func TestCheckBalanceSufficient(t *testing.T) {
	node := newFakeNode()
	node.balance = big.NewInt(100)

	_, err := CheckBalance(context.Background(), node, common.HexToAddress(testSender), big.NewInt(50))
	require.NoError(t, err)

	_, err = CheckBalance(context.Background(), node, common.HexToAddress(testSender), big.NewInt(100))
	require.NoError(t, err, "amount equal to balance passes")
}

func TestCheckBalanceFetchError(t *testing.T) {
	node := newFakeNode()
	node.balanceErr = errNodeDown

	_, err := CheckBalance(context.Background(), node, common.HexToAddress(testSender), big.NewInt(1))
	require.ErrorIs(t, err, ErrBalanceFetch)
	assert.ErrorIs(t, err, errNodeDown)
	assert.NotErrorIs(t, err, ErrInsufficientFunds)
}
