package transfer

import (
	"context"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"go.uber.org/zap"

	"github.com/Mohsinsiddi/autosend/internal/chain"
)

const (
	DefaultPollInterval   = 500 * time.Millisecond
	DefaultConfirmTimeout = 3 * time.Minute
)

// State is where a broadcast transaction stands from the waiter's view.
type State int

const (
	StatePending State = iota
	StateConfirmed
	// StateUnobserved means no receipt was seen before the deadline or
	// cancellation. The transaction may still be mined later.
	StateUnobserved
)

func (s State) String() string {
	switch s {
	case StatePending:
		return "pending"
	case StateConfirmed:
		return "confirmed"
	case StateUnobserved:
		return "unobserved"
	default:
		return "unknown"
	}
}

// Outcome is the terminal result of waiting on a transaction.
type Outcome struct {
	State   State
	Receipt *chain.TxReceipt
	Polls   int
	Elapsed time.Duration
}

// Succeeded reports whether the transaction was mined without reverting.
func (o Outcome) Succeeded() bool {
	return o.State == StateConfirmed && o.Receipt != nil && o.Receipt.Succeeded()
}

// ReceiptReader looks up receipts; a nil receipt with a nil error means the
// transaction is not yet mined.
type ReceiptReader interface {
	GetTransactionReceipt(ctx context.Context, hash common.Hash) (*chain.TxReceipt, error)
}

// Waiter polls for a receipt until it appears, the timeout passes or ctx is
// cancelled.
type Waiter struct {
	Receipts ReceiptReader
	Interval time.Duration
	Timeout  time.Duration
	Log      *zap.Logger
	// OnPoll, when set, is called before every receipt lookup.
	OnPoll func(attempt int)
}

// Wait blocks until hash has a receipt or waiting stops. Poll failures are
// logged and polling continues; they never end the wait early.
func (w *Waiter) Wait(ctx context.Context, hash common.Hash) Outcome {
	log := w.Log
	if log == nil {
		log = zap.NewNop()
	}
	interval := w.Interval
	if interval <= 0 {
		interval = DefaultPollInterval
	}
	if w.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, w.Timeout)
		defer cancel()
	}

	start := time.Now()
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	out := Outcome{State: StatePending}
	for {
		out.Polls++
		if w.OnPoll != nil {
			w.OnPoll(out.Polls)
		}
		receipt, err := w.Receipts.GetTransactionReceipt(ctx, hash)
		switch {
		case err != nil:
			if ctx.Err() == nil {
				log.Warn("receipt poll failed", zap.Int("attempt", out.Polls), zap.Error(err))
			}
		case receipt != nil:
			out.State = StateConfirmed
			out.Receipt = receipt
			out.Elapsed = time.Since(start)
			return out
		}

		if ctx.Err() == nil {
			select {
			case <-ctx.Done():
			case <-ticker.C:
				continue
			}
		}
		out.State = StateUnobserved
		out.Elapsed = time.Since(start)
		log.Warn("stopped waiting for receipt",
			zap.Stringer("tx", hash),
			zap.Int("polls", out.Polls),
			zap.Error(ctx.Err()))
		return out
	}
}
