package transfer

import (
	"context"
	"testing"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var waitHash = common.HexToHash("0x5c504ed432cb51138bcf09aa5e8a410dd4a1e204ef84bfed1be16dfba1b22060")

func TestWaitConfirmsAfterPendingPolls(t *testing.T) {
	node := newFakeNode()
	node.pendingPolls = 3

	var attempts []int
	w := &Waiter{
		Receipts: node,
		Interval: time.Millisecond,
		Timeout:  5 * time.Second,
		OnPoll:   func(n int) { attempts = append(attempts, n) },
	}
	out := w.Wait(context.Background(), waitHash)

	assert.Equal(t, StateConfirmed, out.State)
	assert.Equal(t, 4, out.Polls)
	assert.Equal(t, []int{1, 2, 3, 4}, attempts)
	require.NotNil(t, out.Receipt)
	assert.Equal(t, waitHash, out.Receipt.Hash)
	assert.True(t, out.Succeeded())
}

func TestWaitReverted(t *testing.T) {
	node := newFakeNode()
	node.receipt.Status = 0

	out := (&Waiter{Receipts: node, Interval: time.Millisecond}).Wait(context.Background(), waitHash)
	assert.Equal(t, StateConfirmed, out.State)
	assert.False(t, out.Succeeded())
}

func TestWaitSurvivesPollErrors(t *testing.T) {
	node := newFakeNode()
	node.receiptErrs = 2

	out := (&Waiter{Receipts: node, Interval: time.Millisecond, Timeout: 5 * time.Second}).Wait(context.Background(), waitHash)
	assert.Equal(t, StateConfirmed, out.State)
	assert.Equal(t, 3, out.Polls)
}

func TestWaitTimeoutIsUnobserved(t *testing.T) {
	node := newFakeNode()
	node.receipt = nil

	out := (&Waiter{Receipts: node, Interval: 5 * time.Millisecond, Timeout: 40 * time.Millisecond}).Wait(context.Background(), waitHash)
	assert.Equal(t, StateUnobserved, out.State)
	assert.Nil(t, out.Receipt)
	assert.GreaterOrEqual(t, out.Polls, 1)
	assert.GreaterOrEqual(t, out.Elapsed, 30*time.Millisecond)
	assert.Zero(t, node.count("eth_sendRawTransaction"))
}

func TestWaitCancelIsUnobserved(t *testing.T) {
	node := newFakeNode()
	node.receipt = nil

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	w := &Waiter{
		Receipts: node,
		Interval: time.Millisecond,
		OnPoll: func(n int) {
			if n == 3 {
				cancel()
			}
		},
	}
	out := w.Wait(ctx, waitHash)
	assert.Equal(t, StateUnobserved, out.State)
	assert.Equal(t, 3, out.Polls)
}

func TestStateString(t *testing.T) {
	assert.Equal(t, "pending", StatePending.String())
	assert.Equal(t, "confirmed", StateConfirmed.String())
	assert.Equal(t, "unobserved", StateUnobserved.String())
	assert.Equal(t, "unknown", State(42).String())
}
