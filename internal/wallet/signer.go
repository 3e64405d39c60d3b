package wallet

import (
	"crypto/ecdsa"
	"errors"
	"fmt"
	"math/big"
	"strings"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/crypto"
)

// ErrInvalidKey is returned when a private key string is not a valid
// secp256k1 scalar encoding.
var ErrInvalidKey = errors.New("invalid private key")

// Signer is a signing identity: a private key, its derived address and the
// chain id every signature is bound to.
type Signer struct {
	key     *ecdsa.PrivateKey
	address common.Address
	chainID *big.Int
}

// ParseKey parses a hex-encoded private key (with or without 0x) into a
// signer bound to chainID.
func ParseKey(hexKey string, chainID uint64) (*Signer, error) {
	hexKey = stripHexPrefix(strings.TrimSpace(hexKey))
	if hexKey == "" {
		return nil, fmt.Errorf("%w: empty", ErrInvalidKey)
	}
	privKey, err := crypto.HexToECDSA(hexKey)
	if err != nil {
		// The library error may echo key material; keep it out of messages.
		return nil, fmt.Errorf("%w: not a 32-byte hex scalar", ErrInvalidKey)
	}
	return &Signer{
		key:     privKey,
		address: crypto.PubkeyToAddress(privKey.PublicKey),
		chainID: new(big.Int).SetUint64(chainID),
	}, nil
}

// ValidateKey reports whether hexKey parses as a private key and returns the
// address it controls.
func ValidateKey(hexKey string) (common.Address, error) {
	s, err := ParseKey(hexKey, 0)
	if err != nil {
		return common.Address{}, err
	}
	return s.address, nil
}

// Address returns the address derived from the private key.
func (s *Signer) Address() common.Address { return s.address }

// ChainID returns the chain id signatures are bound to.
func (s *Signer) ChainID() uint64 { return s.chainID.Uint64() }

// SignTx signs tx for the signer's chain and returns the signed transaction.
func (s *Signer) SignTx(tx *types.Transaction) (*types.Transaction, error) {
	signer := types.NewLondonSigner(s.chainID)
	signed, err := types.SignTx(tx, signer, s.key)
	if err != nil {
		return nil, fmt.Errorf("signing transaction: %w", err)
	}
	return signed, nil
}

// String never includes key material.
func (s *Signer) String() string {
	return fmt.Sprintf("Signer(%s, chain %s)", s.address.Hex(), s.chainID)
}

func stripHexPrefix(s string) string {
	if strings.HasPrefix(s, "0x") || strings.HasPrefix(s, "0X") {
		return s[2:]
	}
	return s
}
