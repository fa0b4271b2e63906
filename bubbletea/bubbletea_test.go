package bubbletea_test

import (
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/fwojciec/coursechat"
	bt "github.com/fwojciec/coursechat/bubbletea"
	"github.com/fwojciec/coursechat/chat"
	"github.com/fwojciec/coursechat/mock"
	"github.com/stretchr/testify/require"
)

// newModel creates a model over a Controller backed by backend.
func newModel(t *testing.T, backend *mock.Backend, opts ...bt.Option) (bt.Model, *chat.Controller) {
	t.Helper()
	ctrl := chat.NewController(backend)
	return bt.New(ctrl, coursechat.DefaultTheme(), opts...), ctrl
}

// initModel sends a WindowSizeMsg to initialize the viewport.
func initModel(t *testing.T, m bt.Model) bt.Model {
	t.Helper()
	return initModelWithSize(t, m, 100, 30)
}

// initModelWithSize initializes the viewport with a custom terminal size.
func initModelWithSize(t *testing.T, m bt.Model, width, height int) bt.Model {
	t.Helper()
	return updateModel(t, m, tea.WindowSizeMsg{Width: width, Height: height})
}

// updateModel sends a message and returns the updated Model.
func updateModel(t *testing.T, m bt.Model, msg tea.Msg) bt.Model {
	t.Helper()
	updated, _ := m.Update(msg)
	model, ok := updated.(bt.Model)
	require.True(t, ok)
	return model
}

// updateModelCmd sends a message and returns the updated Model and command.
func updateModelCmd(t *testing.T, m bt.Model, msg tea.Msg) (bt.Model, tea.Cmd) {
	t.Helper()
	updated, cmd := m.Update(msg)
	model, ok := updated.(bt.Model)
	require.True(t, ok)
	return model, cmd
}
