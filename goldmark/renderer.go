package goldmark

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/fwojciec/coursechat"
	"github.com/mattn/go-runewidth"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/extension"
	east "github.com/yuin/goldmark/extension/ast"
	"github.com/yuin/goldmark/text"
)

// minItemWidth keeps deeply nested list items readable on narrow terminals.
const minItemWidth = 10

var parser = goldmark.New(goldmark.WithExtensions(extension.Table, extension.Strikethrough)).Parser()

type renderer struct {
	width  int
	source []byte
	out    strings.Builder

	bold      lipgloss.Style
	italic    lipgloss.Style
	strike    lipgloss.Style
	heading   lipgloss.Style
	code      lipgloss.Style
	muted     lipgloss.Style
	underline lipgloss.Style
}

func newRenderer(theme coursechat.Theme, width int) *renderer {
	return &renderer{
		width:     width,
		bold:      lipgloss.NewStyle().Bold(true),
		italic:    lipgloss.NewStyle().Italic(true),
		strike:    lipgloss.NewStyle().Strikethrough(true),
		heading:   lipgloss.NewStyle().Foreground(ansiColor(theme.Accent)).Bold(true),
		code:      lipgloss.NewStyle().Foreground(ansiColor(theme.Answer)),
		muted:     lipgloss.NewStyle().Foreground(ansiColor(theme.Muted)).Faint(true),
		underline: lipgloss.NewStyle().Underline(true),
	}
}

// ansiColor maps a 0-15 palette index to a lipgloss color. Negative means
// the terminal default.
func ansiColor(index int) lipgloss.TerminalColor {
	if index < 0 {
		return lipgloss.NoColor{}
	}
	return lipgloss.Color(strconv.Itoa(index))
}

func (r *renderer) render(source []byte) string {
	r.source = source
	doc := parser.Parse(text.NewReader(source))
	r.blocks(doc, "")
	return strings.TrimRight(r.out.String(), "\n")
}

// blocks renders the block children of node. Every output line is prefixed
// with prefix, which is how blockquotes nest.
func (r *renderer) blocks(node ast.Node, prefix string) {
	for c := node.FirstChild(); c != nil; c = c.NextSibling() {
		r.block(c, prefix)
		if c.NextSibling() != nil {
			r.out.WriteString(strings.TrimRight(prefix, " ") + "\n")
		}
	}
}

func (r *renderer) block(node ast.Node, prefix string) {
	switch n := node.(type) {
	case *ast.Paragraph, *ast.TextBlock:
		r.wrapped(prefix, r.inline(n))

	case *ast.Heading:
		content := r.inline(n)
		if n.Level > 2 {
			content = r.bold.Render(content)
		} else {
			content = r.heading.Render(content)
		}
		r.wrapped(prefix, content)

	case *ast.FencedCodeBlock:
		lang := string(n.Language(r.source))
		if lang != "" {
			r.line(prefix, r.muted.Render(lang))
		}
		r.codeLines(n, prefix, lang)

	case *ast.CodeBlock:
		r.codeLines(n, prefix, "")

	case *ast.Blockquote:
		r.blocks(n, prefix+r.muted.Render("▌")+" ")

	case *ast.List:
		r.list(n, prefix, 0)

	case *ast.ThematicBreak:
		r.line(prefix, r.muted.Render(strings.Repeat("─", max(r.available(prefix), 3))))

	case *east.Table:
		r.table(n, prefix)

	case *ast.HTMLBlock:
		lines := n.Lines()
		for i := 0; i < lines.Len(); i++ {
			seg := lines.At(i)
			r.line(prefix, strings.TrimRight(string(seg.Value(r.source)), "\n"))
		}

	default:
		r.blocks(node, prefix)
	}
}

func (r *renderer) line(prefix, s string) {
	r.out.WriteString(prefix + s + "\n")
}

// available is the printable width left after prefix.
func (r *renderer) available(prefix string) int {
	return r.width - lipgloss.Width(prefix)
}

func (r *renderer) wrapped(prefix, content string) {
	w := max(r.available(prefix), minItemWidth)
	for _, l := range strings.Split(lipgloss.NewStyle().Width(w).Render(content), "\n") {
		r.line(prefix, strings.TrimRight(l, " "))
	}
}

func (r *renderer) codeLines(n ast.Node, prefix, lang string) {
	gutter := r.muted.Render("│") + " "
	segs := n.Lines()
	lines := make([]string, segs.Len())
	for i := range lines {
		seg := segs.At(i)
		lines[i] = strings.TrimRight(string(seg.Value(r.source)), "\n")
	}

	if lang != "" {
		if colored, ok := highlight(lines, lang); ok {
			for _, l := range colored {
				r.line(prefix, gutter+l)
			}
			return
		}
	}
	for _, l := range lines {
		r.line(prefix, gutter+r.code.Render(l))
	}
}

func (r *renderer) list(n *ast.List, prefix string, depth int) {
	num := n.Start
	for c := n.FirstChild(); c != nil; c = c.NextSibling() {
		item, ok := c.(*ast.ListItem)
		if !ok {
			continue
		}
		marker := "• "
		if n.IsOrdered() {
			marker = fmt.Sprintf("%d. ", num)
			num++
		}
		lead := prefix + strings.Repeat("  ", depth)

		var pending strings.Builder
		flush := func() {
			if pending.Len() == 0 {
				return
			}
			r.listItem(lead, marker, pending.String())
			pending.Reset()
			marker = strings.Repeat(" ", runewidth.StringWidth(marker))
		}
		for ic := item.FirstChild(); ic != nil; ic = ic.NextSibling() {
			switch in := ic.(type) {
			case *ast.Paragraph, *ast.TextBlock:
				if pending.Len() > 0 {
					pending.WriteString(" ")
				}
				pending.WriteString(r.inline(in))
			case *ast.List:
				flush()
				r.list(in, prefix, depth+1)
			default:
				flush()
				r.block(ic, lead+strings.Repeat(" ", runewidth.StringWidth(marker)))
			}
		}
		flush()
	}
}

// listItem writes content after marker, indenting continuation lines to
// align with the first.
func (r *renderer) listItem(lead, marker, content string) {
	w := max(r.available(lead)-runewidth.StringWidth(marker), minItemWidth)
	hang := strings.Repeat(" ", runewidth.StringWidth(marker))
	for i, l := range strings.Split(lipgloss.NewStyle().Width(w).Render(content), "\n") {
		l = strings.TrimRight(l, " ")
		if i == 0 {
			r.line(lead, marker+l)
		} else {
			r.line(lead, hang+l)
		}
	}
}

// table lays cells out in columns sized by display width. When the table is
// wider than the terminal the widest columns are truncated.
func (r *renderer) table(n *east.Table, prefix string) {
	var rows [][]string
	for row := n.FirstChild(); row != nil; row = row.NextSibling() {
		var cells []string
		for cell := row.FirstChild(); cell != nil; cell = cell.NextSibling() {
			cells = append(cells, strings.TrimSpace(r.plain(cell)))
		}
		rows = append(rows, cells)
	}
	if len(rows) == 0 {
		return
	}

	cols := len(n.Alignments)
	widths := make([]int, cols)
	for _, cells := range rows {
		for i := 0; i < cols && i < len(cells); i++ {
			widths[i] = max(widths[i], runewidth.StringWidth(cells[i]))
		}
	}
	fitColumns(widths, r.available(prefix)-3*(cols-1))

	sep := r.muted.Render(" │ ")
	for ri, cells := range rows {
		parts := make([]string, cols)
		for i := range parts {
			var cell string
			if i < len(cells) {
				cell = runewidth.Truncate(cells[i], widths[i], "…")
			}
			if n.Alignments[i] == east.AlignRight {
				cell = runewidth.FillLeft(cell, widths[i])
			} else {
				cell = runewidth.FillRight(cell, widths[i])
			}
			if ri == 0 {
				cell = r.bold.Render(cell)
			}
			parts[i] = cell
		}
		r.line(prefix, strings.TrimRight(strings.Join(parts, sep), " "))
		if ri == 0 {
			rules := make([]string, cols)
			for i, w := range widths {
				rules[i] = strings.Repeat("─", w)
			}
			r.line(prefix, r.muted.Render(strings.Join(rules, "─┼─")))
		}
	}
}

// fitColumns shrinks the widest columns one cell at a time until their sum
// fits budget or every column is down to three cells.
func fitColumns(widths []int, budget int) {
	total := 0
	for _, w := range widths {
		total += w
	}
	for total > budget {
		widest := 0
		for i, w := range widths {
			if w > widths[widest] {
				widest = i
			}
		}
		if widths[widest] <= 3 {
			return
		}
		widths[widest]--
		total--
	}
}

// inline renders the styled inline content of node.
func (r *renderer) inline(node ast.Node) string {
	var b strings.Builder
	for c := node.FirstChild(); c != nil; c = c.NextSibling() {
		r.inlineNode(c, &b)
	}
	return b.String()
}

func (r *renderer) inlineNode(node ast.Node, b *strings.Builder) {
	switch n := node.(type) {
	case *ast.Text:
		b.Write(n.Segment.Value(r.source))
		switch {
		case n.HardLineBreak():
			b.WriteByte('\n')
		case n.SoftLineBreak():
			b.WriteByte(' ')
		}

	case *ast.String:
		b.Write(n.Value)

	case *ast.Emphasis:
		if n.Level == 1 {
			b.WriteString(r.italic.Render(r.inline(n)))
		} else {
			b.WriteString(r.bold.Render(r.inline(n)))
		}

	case *east.Strikethrough:
		b.WriteString(r.strike.Render(r.inline(n)))

	case *ast.CodeSpan:
		b.WriteString(r.code.Render(r.plain(n)))

	case *ast.Link:
		label := r.inline(n)
		dest := string(n.Destination)
		b.WriteString(r.underline.Render(label))
		if dest != "" && dest != r.plain(n) {
			b.WriteString(" " + r.muted.Render("("+dest+")"))
		}

	case *ast.AutoLink:
		b.WriteString(r.underline.Render(string(n.URL(r.source))))

	case *ast.Image:
		alt := r.plain(n)
		if alt == "" {
			alt = "image"
		}
		b.WriteString(r.muted.Render("[" + alt + "]"))

	case *ast.RawHTML:
		for i := 0; i < n.Segments.Len(); i++ {
			seg := n.Segments.At(i)
			b.Write(seg.Value(r.source))
		}

	default:
		for c := node.FirstChild(); c != nil; c = c.NextSibling() {
			r.inlineNode(c, b)
		}
	}
}

// plain returns the unstyled text of node's inline children.
func (r *renderer) plain(node ast.Node) string {
	var b strings.Builder
	var walk func(ast.Node)
	walk = func(n ast.Node) {
		for c := n.FirstChild(); c != nil; c = c.NextSibling() {
			switch t := c.(type) {
			case *ast.Text:
				b.Write(t.Segment.Value(r.source))
				if t.SoftLineBreak() {
					b.WriteByte(' ')
				}
			case *ast.String:
				b.Write(t.Value)
			default:
				walk(c)
			}
		}
	}
	walk(node)
	return b.String()
}
