package coursechat

// Theme defines semantic color mappings using ANSI color indices (0-15).
// The user's terminal theme determines the actual RGB values.
type Theme struct {
	UserMsg  int // User message accent
	Answer   int // Assistant answer accent
	Source   int // Source excerpts
	Error    int // Failure notices and errors
	Success  int // Correct quiz answers
	Muted    int // Status bar, placeholders
	Selected int // Active session in the sidebar
	Accent   int // Headings, links
}

// DefaultTheme returns the default ANSI color mapping.
func DefaultTheme() Theme {
	return Theme{
		UserMsg:  4,
		Answer:   6,
		Source:   8,
		Error:    1,
		Success:  2,
		Muted:    8,
		Selected: 3,
		Accent:   5,
	}
}
