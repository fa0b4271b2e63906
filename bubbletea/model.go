package bubbletea

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/fwojciec/coursechat"
	"github.com/fwojciec/coursechat/chat"
	"github.com/mattn/go-runewidth"
)

var _ tea.Model = Model{}

// The sidebar is hidden on terminals narrower than minSidebarTerm.
const (
	sidebarWidth   = 28
	minSidebarTerm = 72
)

const keyHints = "enter send · tab/shift+tab switch · ctrl+n new · ctrl+d delete · ctrl+s subject · ctrl+r refresh · ctrl+c quit"

// Model is the Bubble Tea model for the course chat TUI. It renders
// snapshots of a chat.Controller and runs every Controller call as a
// tea.Cmd so the UI never blocks on the network.
type Model struct {
	// Input is the text input component. Exported for test access.
	Input textinput.Model
	// Viewport is the scrollable conversation area. Exported for test access.
	Viewport viewport.Model
	// Spinner animates while requests are in flight.
	Spinner spinner.Model

	ctrl    *chat.Controller
	ctx     context.Context
	theme   coursechat.Theme
	styles  Styles
	subject coursechat.Subject

	view     chat.View
	blocks   []MessageBlock
	cursor   int // highlighted sidebar entry (-1 = none)
	spinning bool

	err     error
	notice  string
	width   int
	sidebar int
	ready   bool
}

// Option configures a Model.
type Option func(*Model)

// WithSubject sets the initial subject filter.
func WithSubject(s coursechat.Subject) Option {
	return func(m *Model) { m.subject = s }
}

// WithContext sets the context passed to Controller calls.
func WithContext(ctx context.Context) Option {
	return func(m *Model) { m.ctx = ctx }
}

// New creates a TUI Model driving ctrl.
func New(ctrl *chat.Controller, theme coursechat.Theme, opts ...Option) Model {
	ti := textinput.New()
	ti.Placeholder = "Ask about your course materials..."
	ti.Prompt = ""
	ti.Focus()
	ti.CharLimit = 0

	styles := NewStyles(theme)
	sp := spinner.New(spinner.WithSpinner(spinner.Dot), spinner.WithStyle(styles.Accent))

	m := Model{
		Input:   ti,
		Spinner: sp,
		ctrl:    ctrl,
		ctx:     context.Background(),
		theme:   theme,
		styles:  styles,
		cursor:  -1,
	}
	for _, opt := range opts {
		opt(&m)
	}
	return m
}

// Subject returns the subject attached to the next question.
func (m Model) Subject() coursechat.Subject { return m.subject }

// Err returns the last error, if any.
func (m Model) Err() error { return m.err }

// Cursor returns the index of the highlighted session, or -1.
func (m Model) Cursor() int { return m.cursor }

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	return tea.Batch(textinput.Blink, start(m.ctx, m.ctrl))
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		return m.handleWindowSize(msg), nil

	case tea.KeyMsg:
		return m.handleKey(msg)

	case spinner.TickMsg:
		m = m.sync()
		if !m.ctrl.Pending() {
			m.spinning = false
			return m, nil
		}
		var cmd tea.Cmd
		m.Spinner, cmd = m.Spinner.Update(msg)
		return m, cmd

	case StartedMsg:
		m.err = msg.Err
		return m.sync(), nil

	case RefreshedMsg:
		m.err = msg.Err
		return m.sync(), nil

	case SentMsg:
		switch {
		case msg.Err != nil:
			m.err = msg.Err
		case msg.Exchange.Err != nil:
			m.notice = "answer failed"
		default:
			m.notice = ""
		}
		return m.sync(), nil

	case CreatedMsg:
		m.err = msg.Err
		return m.sync(), nil

	case SelectedMsg:
		m.err = msg.Err
		return m.sync(), nil

	case DeletedMsg:
		m.err = msg.Err
		return m.sync(), nil
	}

	var cmds []tea.Cmd
	var cmd tea.Cmd
	m.Viewport, cmd = m.Viewport.Update(msg)
	cmds = append(cmds, cmd)
	m.Input, cmd = m.Input.Update(msg)
	cmds = append(cmds, cmd)
	return m, tea.Batch(cmds...)
}

// View implements tea.Model.
func (m Model) View() string {
	if !m.ready {
		return "Initializing..."
	}

	var b strings.Builder
	if m.sidebar > 0 {
		side := m.styles.Divider.
			Width(m.sidebar - 1).
			Height(m.Viewport.Height).
			Render(m.renderSidebar(m.sidebar-1, m.Viewport.Height))
		b.WriteString(lipgloss.JoinHorizontal(lipgloss.Top, side, " ", m.Viewport.View()))
	} else {
		b.WriteString(m.Viewport.View())
	}
	b.WriteString("\n")
	b.WriteString(m.statusLine())
	b.WriteString("\n")
	b.WriteString(m.Input.View())
	return b.String()
}

func (m Model) handleWindowSize(msg tea.WindowSizeMsg) Model {
	inputH := 1
	statusHeight := 1
	vpHeight := max(msg.Height-inputH-statusHeight, 1)

	m.width = msg.Width
	m.sidebar = 0
	if msg.Width >= minSidebarTerm {
		m.sidebar = sidebarWidth
	}
	vpWidth := msg.Width
	if m.sidebar > 0 {
		vpWidth -= m.sidebar + 1
	}

	if !m.ready {
		m.Viewport = viewport.New(vpWidth, vpHeight)
		m.ready = true
	} else {
		m.Viewport.Width = vpWidth
		m.Viewport.Height = vpHeight
	}
	m.Viewport.SetContent(m.renderContent())
	m.Viewport.GotoBottom()
	m.Input.Width = msg.Width
	return m
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyCtrlC:
		return m, tea.Quit

	case tea.KeyEnter:
		text := strings.TrimSpace(m.Input.Value())
		if text == "" {
			return m, nil
		}
		m.Input.SetValue("")
		m.err = nil
		return m.busy(send(m.ctx, m.ctrl, text, m.subject))

	case tea.KeyCtrlN:
		m.err = nil
		return m.busy(create(m.ctx, m.ctrl))

	case tea.KeyCtrlR:
		m.err = nil
		return m.busy(refresh(m.ctx, m.ctrl))

	case tea.KeyCtrlS:
		m.subject = m.subject.Next()
		return m, nil

	case tea.KeyTab, tea.KeyShiftTab:
		n := len(m.view.Sessions)
		if n == 0 {
			return m, nil
		}
		if msg.Type == tea.KeyTab {
			m.cursor = (m.cursor + 1) % n
		} else {
			m.cursor = (max(m.cursor, 0) - 1 + n) % n
		}
		m.err = nil
		return m.busy(selectSession(m.ctx, m.ctrl, m.view.Sessions[m.cursor].ID))

	case tea.KeyCtrlD:
		if m.cursor < 0 || m.cursor >= len(m.view.Sessions) {
			return m, nil
		}
		m.err = nil
		return m.busy(deleteSession(m.ctx, m.ctrl, m.view.Sessions[m.cursor].ID))
	}

	// Only forward non-character keys to viewport so typing never scrolls.
	var cmds []tea.Cmd
	var cmd tea.Cmd
	if msg.Type != tea.KeyRunes {
		m.Viewport, cmd = m.Viewport.Update(msg)
		cmds = append(cmds, cmd)
	}
	m.Input, cmd = m.Input.Update(msg)
	cmds = append(cmds, cmd)
	return m, tea.Batch(cmds...)
}

// busy runs cmd and starts the spinner if it is not already ticking.
func (m Model) busy(cmd tea.Cmd) (Model, tea.Cmd) {
	if m.spinning {
		return m, cmd
	}
	m.spinning = true
	return m, tea.Batch(cmd, m.Spinner.Tick)
}

// sync pulls a fresh snapshot from the Controller. Blocks are rebuilt when
// the active session changed and appended otherwise.
func (m Model) sync() Model {
	v := m.ctrl.View()
	if v.ActiveSessionID != m.view.ActiveSessionID || len(v.Messages) < len(m.blocks) {
		m.blocks = nil
	}
	grew := len(v.Messages) != len(m.blocks)
	for _, msg := range v.Messages[len(m.blocks):] {
		m.blocks = append(m.blocks, NewBlock(msg, m.theme, m.styles))
	}
	switched := v.ActiveSessionID != m.view.ActiveSessionID
	m.view = v

	// The cursor follows the active session but is left alone while a
	// switch is still in flight.
	if switched || m.cursor >= len(v.Sessions) {
		m.cursor = -1
		for i, s := range v.Sessions {
			if s.ID == v.ActiveSessionID {
				m.cursor = i
				break
			}
		}
	}

	if m.ready {
		m.Viewport.SetContent(m.renderContent())
		if grew {
			m.Viewport.GotoBottom()
		}
	}
	return m
}

func (m Model) renderContent() string {
	if len(m.blocks) == 0 {
		return m.styles.Accent.Render("Ask me anything") + "\n\n" +
			m.styles.Muted.Render(lipgloss.NewStyle().Width(m.Viewport.Width).Render(
				"I can help you understand concepts from your course materials using retrieval-augmented generation."))
	}
	var b strings.Builder
	for i, block := range m.blocks {
		if i > 0 {
			b.WriteString("\n\n")
		}
		b.WriteString(block.View(m.Viewport.Width))
	}
	return b.String()
}

func (m Model) renderSidebar(width, height int) string {
	lines := []string{m.styles.Accent.Render(runewidth.Truncate(fmt.Sprintf("Sessions (%d)", len(m.view.Sessions)), width, "…"))}
	if len(m.view.Sessions) == 0 {
		lines = append(lines, m.styles.Muted.Render(runewidth.Truncate("none yet", width, "…")))
		return strings.Join(lines, "\n")
	}

	// Two lines per entry; scroll so the cursor stays visible.
	visible := max((height-1)/2, 1)
	first := 0
	if m.cursor >= visible {
		first = m.cursor - visible + 1
	}
	last := min(first+visible, len(m.view.Sessions))

	for i := first; i < last; i++ {
		s := m.view.Sessions[i]
		marker := "  "
		if i == m.cursor {
			marker = "▸ "
		}
		title := runewidth.Truncate(marker+sessionTitle(s), width, "…")
		detail := runewidth.Truncate("  "+sessionDetail(s), width, "…")
		if s.ID == m.view.ActiveSessionID {
			title = m.styles.Selected.Render(title)
		}
		lines = append(lines, title, m.styles.Muted.Render(detail))
	}
	return strings.Join(lines, "\n")
}

func sessionTitle(s coursechat.SessionSummary) string {
	if s.Subject != coursechat.AllSubjects {
		return s.Subject.Label()
	}
	return "General"
}

func sessionDetail(s coursechat.SessionSummary) string {
	noun := "messages"
	if s.MessageCount == 1 {
		noun = "message"
	}
	detail := fmt.Sprintf("%d %s", s.MessageCount, noun)
	if s.CreatedAt != nil {
		detail += " · " + s.CreatedAt.Local().Format("Jan 2 15:04")
	}
	return detail
}

func (m Model) statusLine() string {
	subject := "[" + m.subject.Label() + "]"
	room := max(m.width-runewidth.StringWidth(subject)-1, 0)

	var left string
	switch {
	case m.spinning:
		left = m.Spinner.View() + " " + m.styles.Muted.Render(runewidth.Truncate("Thinking...", max(room-2, 0), "…"))
	case m.err != nil:
		left = m.styles.Error.Render(runewidth.Truncate("Error: "+m.err.Error(), room, "…"))
	case m.notice != "":
		left = m.styles.Error.Render(runewidth.Truncate(m.notice, room, "…"))
	default:
		left = m.styles.Muted.Render(runewidth.Truncate(keyHints, room, "…"))
	}
	return left + " " + m.styles.Accent.Render(subject)
}
