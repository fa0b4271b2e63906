// Package goldmark renders assistant answers, which arrive as markdown, to
// ANSI-styled terminal text using goldmark for parsing and lipgloss for
// styling.
package goldmark

import "github.com/fwojciec/coursechat"

const defaultWidth = 80

// Render parses markdown source and returns styled terminal output wrapped
// to width. Code blocks keep their lines as written; tables are laid out in
// aligned columns and truncated to fit.
func Render(source string, width int, theme coursechat.Theme) string {
	if source == "" {
		return ""
	}
	if width <= 0 {
		width = defaultWidth
	}
	return newRenderer(theme, width).render([]byte(source))
}
