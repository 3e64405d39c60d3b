package chain

import (
	"errors"
	"fmt"
	"math/big"

	"github.com/shopspring/decimal"
)

// etherDecimals is the number of decimal places between wei and ether.
const etherDecimals = 18

// ErrInvalidAmount is returned when an ether amount string cannot be
// represented as a whole, non-negative number of wei.
var ErrInvalidAmount = errors.New("invalid ether amount")

// ParseEther converts a decimal ether string ("0.0005") into wei without any
// floating-point step.
func ParseEther(s string) (*big.Int, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return nil, fmt.Errorf("%w %q: %v", ErrInvalidAmount, s, err)
	}
	if d.IsNegative() {
		return nil, fmt.Errorf("%w %q: negative", ErrInvalidAmount, s)
	}
	wei := d.Shift(etherDecimals)
	if !wei.IsInteger() {
		return nil, fmt.Errorf("%w %q: more than %d decimals", ErrInvalidAmount, s, etherDecimals)
	}
	return wei.BigInt(), nil
}

// FormatEther renders a wei amount as an ether decimal string with trailing
// zeros removed ("0.0005", "1").
func FormatEther(wei *big.Int) string {
	if wei == nil {
		return "0"
	}
	return decimal.NewFromBigInt(wei, -etherDecimals).String()
}

// FormatGwei renders a wei amount in gwei.
func FormatGwei(wei *big.Int) string {
	if wei == nil {
		return "0"
	}
	return decimal.NewFromBigInt(wei, -9).String()
}
