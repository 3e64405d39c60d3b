package cmd

import (
	"fmt"
	"io"
	"time"

	"github.com/Mohsinsiddi/autosend/internal/chain"
	"github.com/Mohsinsiddi/autosend/internal/transfer"
	"github.com/Mohsinsiddi/autosend/internal/ui"
)

// printPreview shows what the run gathered before broadcast.
func printPreview(out io.Writer, res *transfer.Result) {
	utx := res.Tx
	fmt.Fprintln(out, ui.Step(fmt.Sprintf("Connected to %s (chain %d)",
		ui.ChainName(chain.NetworkName(res.ChainID)), res.ChainID)))
	fmt.Fprintln(out, ui.Step(fmt.Sprintf("Recipient #%d: %s", res.Recipient, ui.Addr(res.Intent.Recipient.Hex()))))
	fmt.Fprintln(out, ui.Step("Amount: "+ui.Val(chain.FormatEther(res.Intent.Amount)+" ETH")))
	fmt.Fprintln(out, ui.Step("Balance: "+ui.Val(chain.FormatEther(res.Balance)+" ETH")))
	fmt.Fprintln(out)

	fmt.Fprintln(out, ui.KeyValueBlock("Transaction", [][2]string{
		{"From", utx.From.Hex()},
		{"To", utx.To.Hex()},
		{"Value", chain.FormatEther(utx.Value) + " ETH"},
		{"Nonce", fmt.Sprintf("%d", utx.Nonce)},
		{"Gas Limit", fmt.Sprintf("%d", utx.GasLimit)},
		{"Gas Price", chain.FormatGwei(utx.GasPrice) + " gwei"},
		{"Max Fee", chain.FormatEther(utx.Fee()) + " ETH"},
		{"Network", fmt.Sprintf("%s (%d)", chain.NetworkName(utx.ChainID), utx.ChainID)},
	}))
}

// printFailure reports how far a failed run got.
func printFailure(out io.Writer, res *transfer.Result) {
	if res == nil || res.ChainID == 0 {
		return
	}
	pairs := [][2]string{{"Network", fmt.Sprintf("%s (%d)", chain.NetworkName(res.ChainID), res.ChainID)}}
	if res.Intent.Amount != nil {
		pairs = append(pairs,
			[2]string{"To", res.Intent.Recipient.Hex()},
			[2]string{"Value", chain.FormatEther(res.Intent.Amount) + " ETH"})
	}
	if res.Balance != nil {
		pairs = append(pairs, [2]string{"Balance", chain.FormatEther(res.Balance) + " ETH"})
	}
	fmt.Fprintln(out, ui.KeyValueBlock("Not sent", pairs))
}

// printOutcome reports the terminal state of a broadcast transaction.
func printOutcome(out io.Writer, res *transfer.Result) {
	o := res.Outcome
	hash := res.Pending.Hash.Hex()
	switch {
	case o.State == transfer.StateConfirmed && o.Succeeded():
		fmt.Fprintln(out, ui.Success(fmt.Sprintf("Confirmed in block %d (gas used %d, %s)",
			o.Receipt.BlockNumber, o.Receipt.GasUsed, o.Elapsed.Round(time.Second))))
	case o.State == transfer.StateConfirmed:
		fmt.Fprintln(out, ui.Err(fmt.Sprintf("Mined in block %d with failed status (gas used %d)",
			o.Receipt.BlockNumber, o.Receipt.GasUsed)))
	default:
		fmt.Fprintln(out, ui.Warn(fmt.Sprintf("No receipt after %d polls; %s may still be mined", o.Polls, ui.TruncateAddr(hash))))
	}
}
