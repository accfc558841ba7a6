package tui

import (
	"strings"

	"github.com/charmbracelet/glamour"
)

// markdownRenderer caches a glamour renderer per wrap width. Creating one is
// expensive, and a failed creation falls back to plain text.
type markdownRenderer struct {
	width    int
	renderer *glamour.TermRenderer
}

func newMarkdownRenderer(width int) *markdownRenderer {
	r := &markdownRenderer{}
	r.setWidth(width)
	return r
}

func (r *markdownRenderer) setWidth(width int) {
	if width < 20 {
		width = 20
	}
	if width == r.width && r.renderer != nil {
		return
	}
	r.width = width
	r.renderer, _ = glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(width),
	)
}

func (r *markdownRenderer) render(text string) string {
	if r == nil || r.renderer == nil {
		return text
	}
	out, err := r.renderer.Render(text)
	if err != nil {
		return text
	}
	return strings.Trim(out, "\n")
}
