package export

import "github.com/charmbracelet/glamour"

// Render pretty-prints a Markdown document for the terminal. On any
// rendering failure the raw Markdown is returned so output is never lost.
func Render(markdown string, width int) string {
	if width <= 0 {
		width = 80
	}
	r, err := glamour.NewTermRenderer(
		glamour.WithStylePath("dark"),
		glamour.WithWordWrap(width),
	)
	if err != nil {
		return markdown
	}
	rendered, err := r.Render(markdown)
	if err != nil {
		return markdown
	}
	return rendered
}
