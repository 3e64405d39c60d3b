package transfer

import (
	"fmt"
	"math/big"
	"strings"

	"github.com/ethereum/go-ethereum/common"
)

// Intent is what the pipeline decided to send: one recipient and one amount
// in wei. It is fixed before any fee or nonce data is fetched.
type Intent struct {
	Recipient common.Address
	Amount    *big.Int
}

// ParseAddress parses a hex address, with or without 0x, wrapping failures
// in ErrAddressParse.
func ParseAddress(s string) (common.Address, error) {
	s = strings.TrimSpace(s)
	if !common.IsHexAddress(s) {
		return common.Address{}, fmt.Errorf("%w: %q", ErrAddressParse, s)
	}
	return common.HexToAddress(s), nil
}

// PickRecipient draws one entry of list uniformly and parses it. Only the
// selected entry is parsed, so a malformed entry fails only when drawn.
// It returns the index drawn alongside the address.
func PickRecipient(src Source, list []string) (common.Address, int, error) {
	if len(list) == 0 {
		return common.Address{}, -1, fmt.Errorf("%w: recipient list is empty", ErrAddressParse)
	}
	n, err := src.Int(big.NewInt(int64(len(list))))
	if err != nil {
		return common.Address{}, -1, fmt.Errorf("drawing recipient: %w", err)
	}
	idx := int(n.Int64())
	addr, err := ParseAddress(list[idx])
	if err != nil {
		return common.Address{}, idx, err
	}
	return addr, idx, nil
}

// PickAmount draws a wei amount uniformly from the half-open range
// [min, max). Bounds must be non-negative with min < max.
func PickAmount(src Source, min, max *big.Int) (*big.Int, error) {
	if min == nil || max == nil {
		return nil, fmt.Errorf("%w: bounds not set", ErrRange)
	}
	if min.Sign() < 0 || max.Sign() < 0 {
		return nil, fmt.Errorf("%w: bounds must be non-negative", ErrRange)
	}
	if min.Cmp(max) >= 0 {
		return nil, fmt.Errorf("%w: min %s must be below max %s", ErrRange, min, max)
	}
	span := new(big.Int).Sub(max, min)
	offset, err := src.Int(span)
	if err != nil {
		return nil, fmt.Errorf("drawing amount: %w", err)
	}
	return offset.Add(offset, min), nil
}
