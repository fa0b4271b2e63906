package bubbletea

import (
	"context"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/fwojciec/coursechat"
	"github.com/fwojciec/coursechat/chat"
)

func start(ctx context.Context, ctrl *chat.Controller) tea.Cmd {
	return func() tea.Msg {
		return StartedMsg{Err: ctrl.Start(ctx)}
	}
}

func refresh(ctx context.Context, ctrl *chat.Controller) tea.Cmd {
	return func() tea.Msg {
		return RefreshedMsg{Err: ctrl.Refresh(ctx)}
	}
}

func send(ctx context.Context, ctrl *chat.Controller, text string, subject coursechat.Subject) tea.Cmd {
	return func() tea.Msg {
		ex, err := ctrl.Send(ctx, text, subject)
		return SentMsg{Exchange: ex, Err: err}
	}
}

func create(ctx context.Context, ctrl *chat.Controller) tea.Cmd {
	return func() tea.Msg {
		id, err := ctrl.NewSession(ctx)
		return CreatedMsg{SessionID: id, Err: err}
	}
}

func selectSession(ctx context.Context, ctrl *chat.Controller, id string) tea.Cmd {
	return func() tea.Msg {
		return SelectedMsg{SessionID: id, Err: ctrl.Select(ctx, id)}
	}
}

func deleteSession(ctx context.Context, ctrl *chat.Controller, id string) tea.Cmd {
	return func() tea.Msg {
		return DeletedMsg{SessionID: id, Err: ctrl.Delete(ctx, id)}
	}
}
