package html

import (
	"bytes"
	"fmt"
	"html/template"

	"github.com/sonnes/obsession/search"
)

// renderBody converts a chat or memory body to safe HTML. Bodies mix
// markdown with raw HTML; the sanitizer strips anything executable.
func (r *Renderer) renderBody(text string) (template.HTML, error) {
	var buf bytes.Buffer
	if err := r.md.Convert([]byte(text), &buf); err != nil {
		return "", fmt.Errorf("goldmark convert: %w", err)
	}
	return template.HTML(r.policy.SanitizeBytes(buf.Bytes())), nil
}

// highlight escapes the hit text and marks every match.
func highlight(h search.Hit) template.HTML {
	return template.HTML(search.Highlight(h.Text, h.Spans, `<mark class="hit">`, `</mark>`, template.HTMLEscapeString))
}
