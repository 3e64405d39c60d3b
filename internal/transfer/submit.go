package transfer

import (
	"context"
	"fmt"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"

	"github.com/Mohsinsiddi/autosend/internal/wallet"
)

// Broadcaster relays signed transactions to the network.
type Broadcaster interface {
	SendRawTransaction(ctx context.Context, raw []byte) (common.Hash, error)
}

// PendingTx is a transaction the node accepted into its pool.
type PendingTx struct {
	// Hash is the hash reported by the node.
	Hash common.Hash
	Tx   *types.Transaction
}

// LocalHash is the hash computed from the signed payload. It equals Hash
// unless the node misreports.
func (p *PendingTx) LocalHash() common.Hash { return p.Tx.Hash() }

// Submit signs utx and broadcasts it exactly once. There is no retry: a
// second attempt with the same nonce could replace or duplicate the first.
func Submit(ctx context.Context, node Broadcaster, signer *wallet.Signer, utx *UnsignedTx) (*PendingTx, error) {
	if signer.ChainID() != utx.ChainID {
		return nil, fmt.Errorf("signer bound to chain %d, transaction built for chain %d", signer.ChainID(), utx.ChainID)
	}
	signed, err := signer.SignTx(utx.Transaction())
	if err != nil {
		return nil, err
	}
	raw, err := signed.MarshalBinary()
	if err != nil {
		return nil, fmt.Errorf("encoding transaction: %w", err)
	}
	hash, err := node.SendRawTransaction(ctx, raw)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrBroadcast, err)
	}
	return &PendingTx{Hash: hash, Tx: signed}, nil
}
