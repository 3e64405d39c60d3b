package transfer

import (
	"context"
	"fmt"
	"math/big"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"go.uber.org/zap"

	"github.com/Mohsinsiddi/autosend/internal/chain"
	"github.com/Mohsinsiddi/autosend/internal/wallet"
)

// ChainIDReader reports the chain id a node serves.
type ChainIDReader interface {
	ChainID(ctx context.Context) (uint64, error)
}

// Node is the full RPC surface the pipeline uses. *chain.EVMClient
// satisfies it.
type Node interface {
	ChainIDReader
	BalanceReader
	FeeReader
	Broadcaster
	ReceiptReader
}

var _ Node = (*chain.EVMClient)(nil)

// Connect queries the chain id once. No retry.
func Connect(ctx context.Context, node ChainIDReader) (uint64, error) {
	id, err := node.ChainID(ctx)
	if err != nil {
		return 0, fmt.Errorf("%w: %w", ErrConnection, err)
	}
	return id, nil
}

// LoadIdentity parses the secret key into a signer bound to chainID.
func LoadIdentity(secretKey string, chainID uint64) (*wallet.Signer, error) {
	s, err := wallet.ParseKey(secretKey, chainID)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidKey, err)
	}
	return s, nil
}

// Params are the per-run inputs of a transfer.
type Params struct {
	SecretKey string
	// Sender is the configured sender address. Empty skips the comparison
	// with the address derived from SecretKey.
	Sender     string
	Recipients []string
	MinAmount  *big.Int
	MaxAmount  *big.Int
	GasLimit   uint64
	// StrictSender turns a sender mismatch into ErrSenderMismatch instead
	// of a warning.
	StrictSender bool
}

// Hooks let the caller observe and gate the run. All fields are optional.
type Hooks struct {
	// Confirm is asked before broadcast with everything gathered so far;
	// false aborts with ErrAborted.
	Confirm func(res *Result) bool
	// Sent fires once the node accepts the transaction.
	Sent func(p *PendingTx)
	// Poll fires before each receipt lookup.
	Poll func(attempt int)
}

// Result records how far a run got. Fields past the failing stage are zero.
type Result struct {
	ChainID   uint64
	From      common.Address
	Intent    Intent
	Recipient int
	Balance   *big.Int
	Tx        *UnsignedTx
	Pending   *PendingTx
	Outcome   Outcome
}

// Pipeline runs the eight transfer stages strictly in order against one node.
type Pipeline struct {
	Node           Node
	Rand           Source
	Log            *zap.Logger
	Hooks          Hooks
	PollInterval   time.Duration
	ConfirmTimeout time.Duration
}

// Run performs one transfer. The returned Result is never nil and holds
// everything gathered before a failure. Once the transaction is broadcast
// Run returns no error; an unconfirmed transaction is reported through
// Result.Outcome.
func (p *Pipeline) Run(ctx context.Context, params Params) (*Result, error) {
	log := p.Log
	if log == nil {
		log = zap.NewNop()
	}
	src := p.Rand
	if src == nil {
		src = CryptoSource()
	}
	res := &Result{Recipient: -1}

	chainID, err := Connect(ctx, p.Node)
	if err != nil {
		return res, err
	}
	res.ChainID = chainID
	log.Info("connected", zap.Uint64("chain_id", chainID), zap.String("network", chain.NetworkName(chainID)))

	signer, err := LoadIdentity(params.SecretKey, chainID)
	if err != nil {
		return res, err
	}
	res.From = signer.Address()
	if err := checkSender(log, params, signer.Address()); err != nil {
		return res, err
	}

	recipient, idx, err := PickRecipient(src, params.Recipients)
	res.Recipient = idx
	if err != nil {
		return res, err
	}
	amount, err := PickAmount(src, params.MinAmount, params.MaxAmount)
	if err != nil {
		return res, err
	}
	res.Intent = Intent{Recipient: recipient, Amount: amount}
	log.Info("transfer selected",
		zap.Stringer("to", recipient),
		zap.String("amount_eth", chain.FormatEther(amount)),
		zap.Int("recipient_index", idx))

	bal, err := CheckBalance(ctx, p.Node, res.From, amount)
	res.Balance = bal
	if err != nil {
		return res, err
	}
	log.Debug("balance ok", zap.String("balance_eth", chain.FormatEther(bal)))

	utx, err := BuildTx(ctx, p.Node, res.From, res.Intent, chainID, params.GasLimit)
	if err != nil {
		return res, err
	}
	res.Tx = utx
	log.Debug("transaction built",
		zap.Uint64("nonce", utx.Nonce),
		zap.String("gas_price_gwei", chain.FormatGwei(utx.GasPrice)),
		zap.Uint64("gas_limit", utx.GasLimit))

	if p.Hooks.Confirm != nil && !p.Hooks.Confirm(res) {
		return res, ErrAborted
	}

	pending, err := Submit(ctx, p.Node, signer, utx)
	if err != nil {
		return res, err
	}
	res.Pending = pending
	if pending.Hash != pending.LocalHash() {
		log.Warn("node reported a different transaction hash",
			zap.Stringer("node", pending.Hash),
			zap.Stringer("local", pending.LocalHash()))
	}
	log.Info("transaction sent", zap.Stringer("tx", pending.Hash))
	if p.Hooks.Sent != nil {
		p.Hooks.Sent(pending)
	}

	w := &Waiter{
		Receipts: p.Node,
		Interval: p.PollInterval,
		Timeout:  p.ConfirmTimeout,
		Log:      log,
		OnPoll:   p.Hooks.Poll,
	}
	res.Outcome = w.Wait(ctx, pending.Hash)
	if res.Outcome.State == StateConfirmed {
		log.Info("transaction confirmed",
			zap.Uint64("block", res.Outcome.Receipt.BlockNumber),
			zap.Uint64("gas_used", res.Outcome.Receipt.GasUsed),
			zap.Bool("success", res.Outcome.Receipt.Succeeded()))
	}
	return res, nil
}

// checkSender compares the configured sender with the derived address.
// Balance and nonce are always read for the derived address, the account
// that actually pays.
func checkSender(log *zap.Logger, params Params, derived common.Address) error {
	if params.Sender == "" {
		return nil
	}
	configured, err := ParseAddress(params.Sender)
	if err != nil {
		return err
	}
	if configured == derived {
		return nil
	}
	if params.StrictSender {
		return fmt.Errorf("%w: configured %s, key controls %s", ErrSenderMismatch, configured, derived)
	}
	log.Warn("configured sender differs from key address; SENDER_ADDRESS is ignored, balance and nonce are read for the key address",
		zap.Stringer("configured", configured),
		zap.Stringer("derived", derived))
	return nil
}
