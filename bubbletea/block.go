package bubbletea

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/fwojciec/coursechat"
	"github.com/fwojciec/coursechat/goldmark"
	"github.com/mattn/go-runewidth"
)

// Answers list every source in the count but show only the first few.
const (
	maxShownSources = 2
	sourceLines     = 2
)

// MessageBlock is a renderable conversation turn. View takes a width so the
// root model controls layout and blocks are testable in isolation.
type MessageBlock interface {
	View(width int) string
}

// NewBlock picks the block type for msg.
func NewBlock(msg coursechat.Message, theme coursechat.Theme, styles Styles) MessageBlock {
	switch {
	case msg.Role == coursechat.RoleUser:
		return &UserBlock{text: msg.Content, styles: styles}
	case msg.Content == coursechat.FailureNotice:
		return &FailureBlock{text: msg.Content, styles: styles}
	default:
		return &AnswerBlock{msg: msg, theme: theme, styles: styles, byWidth: make(map[int]string)}
	}
}

// UserBlock renders a question with a "> " prefix.
type UserBlock struct {
	text   string
	styles Styles
}

func (b *UserBlock) View(width int) string {
	content := b.styles.UserMsg.Render("> ") + b.text
	return lipgloss.NewStyle().Width(width).Render(content)
}

// FailureBlock renders the notice shown in place of an answer that failed.
type FailureBlock struct {
	text   string
	styles Styles
}

func (b *FailureBlock) View(width int) string {
	return b.styles.Error.Width(width).Render(b.text)
}

// AnswerBlock renders an answer as markdown followed by its sources.
// Rendering is cached per width since messages never change once appended.
type AnswerBlock struct {
	msg     coursechat.Message
	theme   coursechat.Theme
	styles  Styles
	byWidth map[int]string
}

func (b *AnswerBlock) View(width int) string {
	if cached, ok := b.byWidth[width]; ok {
		return cached
	}
	var sb strings.Builder
	sb.WriteString(goldmark.Render(b.msg.Content, width, b.theme))
	if n := len(b.msg.Sources); n > 0 {
		sb.WriteString("\n\n")
		sb.WriteString(b.styles.Muted.Render(fmt.Sprintf("Sources (%d)", n)))
		for _, src := range b.msg.Sources[:min(n, maxShownSources)] {
			for _, l := range clamp(src.Excerpt, width-2, sourceLines) {
				sb.WriteString("\n  " + b.styles.Source.Render(l))
			}
		}
	}
	out := sb.String()
	b.byWidth[width] = out
	return out
}

// clamp wraps text to width and keeps at most n lines, marking a cut with
// an ellipsis.
func clamp(text string, width, n int) []string {
	width = max(width, 10)
	wrapped := lipgloss.NewStyle().Width(width).Render(strings.Join(strings.Fields(text), " "))
	lines := strings.Split(wrapped, "\n")
	for i := range lines {
		lines[i] = strings.TrimRight(lines[i], " ")
	}
	if len(lines) <= n {
		return lines
	}
	lines = lines[:n]
	lines[n-1] = runewidth.Truncate(lines[n-1]+" …", width, "…")
	return lines
}
