package transfer

import (
	"errors"
	"fmt"
	"math/big"

	"github.com/Mohsinsiddi/autosend/internal/chain"
)

// Error kinds surfaced by the pipeline. Every stage wraps one of these so
// callers can branch with errors.Is.
var (
	ErrConnection        = errors.New("connection error")
	ErrInvalidKey        = errors.New("invalid key")
	ErrAddressParse      = errors.New("address parse error")
	ErrSenderMismatch    = errors.New("sender address does not match signing key")
	ErrRange             = errors.New("invalid amount range")
	ErrBalanceFetch      = errors.New("balance fetch failed")
	ErrInsufficientFunds = errors.New("insufficient funds")
	ErrGasPriceFetch     = errors.New("gas price fetch failed")
	ErrNonceFetch        = errors.New("nonce fetch failed")
	ErrAborted           = errors.New("aborted before broadcast")
	ErrBroadcast         = errors.New("broadcast failed")
)

// InsufficientFundsError reports a failed balance check. It matches
// ErrInsufficientFunds under errors.Is.
type InsufficientFundsError struct {
	Balance *big.Int
	Amount  *big.Int
}

func (e *InsufficientFundsError) Error() string {
	return fmt.Sprintf("insufficient funds: balance %s ETH < amount %s ETH",
		chain.FormatEther(e.Balance), chain.FormatEther(e.Amount))
}

// Is makes errors.Is(err, ErrInsufficientFunds) hold.
func (e *InsufficientFundsError) Is(target error) bool {
	return target == ErrInsufficientFunds
}
