package bubbletea

// RenderContent exports renderContent for testing.
func RenderContent(m Model) string {
	return m.renderContent()
}

// RenderSidebar exports renderSidebar for testing.
func RenderSidebar(m Model, width, height int) string {
	return m.renderSidebar(width, height)
}

// StatusLine exports statusLine for testing.
func StatusLine(m Model) string {
	return m.statusLine()
}

// Clamp exports clamp for testing.
func Clamp(text string, width, n int) []string {
	return clamp(text, width, n)
}
