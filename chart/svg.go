package chart

import (
	"html/template"
	"strconv"
	"strings"
)

// SVG renders g as an inline <svg> element filled with color. Empty geometry
// renders as an empty string.
func SVG(g Geometry, color string) template.HTML {
	if g.IsEmpty() {
		return ""
	}
	c := template.HTMLEscapeString(color)
	h := num(g.Height)

	var b strings.Builder
	b.WriteString(`<svg viewBox="0 0 ` + num(g.Width) + ` ` + h + `" preserveAspectRatio="none" style="width:100%; height:` + h + `px; overflow:visible;">`)

	for _, r := range g.Bars {
		b.WriteString(`<rect x="` + num(r.X) + `" y="` + num(r.Y) + `" width="` + num(r.Width) + `" height="` + num(r.Height) +
			`" fill="` + c + `" rx="1" style="opacity:` + num(r.Opacity) + `"/>`)
	}

	if len(g.Points) > 0 {
		b.WriteString(`<polygon points="` + pointList(g.Area) + `" fill="` + c + `" style="opacity:` + num(AreaOpacity) + `"/>`)
		b.WriteString(`<polyline points="` + pointList(g.Points) + `" fill="none" stroke="` + c +
			`" stroke-width="1.5" stroke-linecap="round" stroke-linejoin="round"/>`)
	}
	if g.Marker != nil {
		b.WriteString(`<circle cx="` + num(g.Marker.X) + `" cy="` + num(g.Marker.Y) + `" r="2" fill="#fff" stroke="` + c + `" stroke-width="1"/>`)
	}

	b.WriteString(`</svg>`)
	return template.HTML(b.String())
}

func pointList(ps []Point) string {
	parts := make([]string, len(ps))
	for i, p := range ps {
		parts[i] = num(p.X) + "," + num(p.Y)
	}
	return strings.Join(parts, " ")
}

// num formats f with the fewest digits that round-trip, matching how
// browsers print numbers in attributes.
func num(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}
