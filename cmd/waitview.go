package cmd

import (
	"fmt"
	"io"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/Mohsinsiddi/autosend/internal/transfer"
	"github.com/Mohsinsiddi/autosend/internal/ui"
)

// waitView renders the confirmation wait. stop abandons the wait early.
type waitView interface {
	Start(hash, link string, stop func())
	Poll(attempt int)
	Finish(o transfer.Outcome)
}

type spinnerView struct {
	out io.Writer
	sp  *ui.Spinner
}

func newSpinnerView(out io.Writer) *spinnerView {
	return &spinnerView{out: out}
}

func (v *spinnerView) Start(hash, link string, stop func()) {
	v.sp = ui.NewSpinner(v.out, "Waiting for confirmation...")
	v.sp.Start()
}

func (v *spinnerView) Poll(attempt int) {
	if v.sp != nil {
		v.sp.SetMessage(fmt.Sprintf("Waiting for confirmation (poll %d)...", attempt))
	}
}

func (v *spinnerView) Finish(transfer.Outcome) {
	if v.sp != nil {
		v.sp.Stop()
		v.sp = nil
	}
}

// teaView runs ui.WaitModel in its own goroutine. Quitting the view stops
// the wait; the transaction is already broadcast.
type teaView struct {
	in   io.Reader
	out  io.Writer
	prog *tea.Program
	done chan struct{}
}

func newTeaView(in io.Reader, out io.Writer) *teaView {
	return &teaView{in: in, out: out}
}

func (v *teaView) Start(hash, link string, stop func()) {
	v.prog = tea.NewProgram(ui.NewWaitModel(hash, link), tea.WithInput(v.in), tea.WithOutput(v.out))
	v.done = make(chan struct{})
	go func() {
		defer close(v.done)
		final, err := v.prog.Run()
		if err != nil {
			stop()
			return
		}
		if m, ok := final.(ui.WaitModel); ok && m.Interrupted {
			stop()
		}
	}()
}

func (v *teaView) Poll(attempt int) {
	if v.prog != nil {
		v.prog.Send(ui.PollMsg{Attempt: attempt})
	}
}

func (v *teaView) Finish(o transfer.Outcome) {
	if v.prog == nil {
		return
	}
	msg := ui.DoneMsg{State: o.State.String(), Success: o.Succeeded(), Duration: o.Elapsed}
	if o.Receipt != nil {
		msg.Block, msg.GasUsed = o.Receipt.BlockNumber, o.Receipt.GasUsed
	}
	v.prog.Send(msg)
	<-v.done
}
