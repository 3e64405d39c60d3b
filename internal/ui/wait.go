package ui

import (
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
)

// PollMsg reports that receipt lookup number Attempt started.
type PollMsg struct {
	Attempt int
}

// DoneMsg ends the wait view with the final state.
type DoneMsg struct {
	State    string // "confirmed" | "unobserved"
	Success  bool
	Block    uint64
	GasUsed  uint64
	Duration time.Duration
}

type waitTickMsg struct{}

func waitTick() tea.Cmd {
	return tea.Tick(80*time.Millisecond, func(time.Time) tea.Msg {
		return waitTickMsg{}
	})
}

// WaitModel is the Bubble Tea view shown while a transaction awaits its
// receipt.
type WaitModel struct {
	Hash     string
	Explorer string
	Polls    int
	Frame    int
	Done     *DoneMsg
	// Interrupted is set when the user quit before a final state arrived.
	Interrupted bool
}

// NewWaitModel returns a model for hash; explorer may be empty.
func NewWaitModel(hash, explorer string) WaitModel {
	return WaitModel{Hash: hash, Explorer: explorer}
}

func (m WaitModel) Init() tea.Cmd { return waitTick() }

func (m WaitModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			m.Interrupted = true
			return m, tea.Quit
		}
	case PollMsg:
		m.Polls = msg.Attempt
	case DoneMsg:
		m.Done = &msg
		return m, tea.Quit
	case waitTickMsg:
		if m.Done != nil {
			return m, nil
		}
		m.Frame++
		return m, waitTick()
	}
	return m, nil
}

func (m WaitModel) View() string {
	var sb strings.Builder
	sb.WriteString(StyleTitle.Render("Waiting for confirmation"))
	sb.WriteString("\n")
	sb.WriteString("  " + Meta("tx     ") + Addr(m.Hash) + "\n")
	if m.Explorer != "" {
		sb.WriteString("  " + Meta("link   ") + Addr(m.Explorer) + "\n")
	}
	sb.WriteString("\n")

	switch {
	case m.Done == nil && m.Interrupted:
		sb.WriteString(Warn("stopped by user") + "\n")
	case m.Done == nil:
		frame := StyleChain.Render(spinnerFrames[m.Frame%len(spinnerFrames)])
		sb.WriteString(fmt.Sprintf("%s  polling receipt (attempt %d)\n", frame, m.Polls))
		sb.WriteString(Meta("  q to stop waiting; the transaction stays in the pool") + "\n")
	case m.Done.State == "confirmed" && m.Done.Success:
		sb.WriteString(Success(fmt.Sprintf("confirmed in block %d, gas used %d (%s)",
			m.Done.Block, m.Done.GasUsed, m.Done.Duration.Round(time.Second))) + "\n")
	case m.Done.State == "confirmed":
		sb.WriteString(Err(fmt.Sprintf("reverted in block %d, gas used %d", m.Done.Block, m.Done.GasUsed)) + "\n")
	default:
		sb.WriteString(Warn(fmt.Sprintf("no receipt after %d polls; it may still be mined", m.Polls)) + "\n")
	}
	return StyleBorder.Render(sb.String())
}
