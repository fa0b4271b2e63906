package goldmark

import (
	"strings"

	"github.com/alecthomas/chroma/v2"
	"github.com/alecthomas/chroma/v2/formatters"
	"github.com/alecthomas/chroma/v2/lexers"
	"github.com/alecthomas/chroma/v2/styles"
)

const highlightStyle = "monokai"

// highlight colors code for a known language. It returns false when the
// language is unknown or the highlighted output does not line up with the
// input, in which case the caller renders plain lines.
func highlight(lines []string, language string) ([]string, bool) {
	lexer := lexers.Get(language)
	if lexer == nil {
		return nil, false
	}
	lexer = chroma.Coalesce(lexer)

	style := styles.Get(highlightStyle)
	if style == nil {
		style = styles.Fallback
	}
	formatter := formatters.Get("terminal256")
	if formatter == nil {
		return nil, false
	}

	iterator, err := lexer.Tokenise(nil, strings.Join(lines, "\n"))
	if err != nil {
		return nil, false
	}
	var sb strings.Builder
	if err := formatter.Format(&sb, style, iterator); err != nil {
		return nil, false
	}

	// Lexers may append a final newline; whatever follows it is escape codes.
	out := strings.Split(sb.String(), "\n")
	if n := len(out); n == len(lines)+1 {
		out[n-2] += out[n-1]
		out = out[:n-1]
	}
	if len(out) != len(lines) {
		return nil, false
	}
	return out, true
}
