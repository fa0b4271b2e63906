// Package bubbletea provides a Bubble Tea TUI for course chat.
package bubbletea

import (
	"context"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/fwojciec/coursechat/chat"
)

// Run creates and runs the Bubble Tea TUI program. It blocks until the program
// exits. When ctx is cancelled the program quits.
func Run(ctx context.Context, m Model) error {
	p := tea.NewProgram(m, tea.WithAltScreen())
	go func() {
		<-ctx.Done()
		p.Quit()
	}()
	_, err := p.Run()
	return err
}

// StartedMsg reports the initial directory load.
type StartedMsg struct {
	Err error
}

// SentMsg reports a completed send. Err is set only when the question was
// rejected; a failed answer arrives as Exchange.Err.
type SentMsg struct {
	Exchange chat.Exchange
	Err      error
}

// CreatedMsg reports an explicit session creation.
type CreatedMsg struct {
	SessionID string
	Err       error
}

// SelectedMsg reports a session switch.
type SelectedMsg struct {
	SessionID string
	Err       error
}

// DeletedMsg reports a session deletion.
type DeletedMsg struct {
	SessionID string
	Err       error
}

// RefreshedMsg reports a manual directory refresh.
type RefreshedMsg struct {
	Err error
}
