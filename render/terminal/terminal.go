// Package terminal renders statistics, search hits and memories as
// ANSI-colored text.
package terminal

import (
	"fmt"
	"io"
	"math"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"
	"github.com/charmbracelet/x/term"
	"github.com/sonnes/obsession/chart"
	"github.com/sonnes/obsession/memory"
	"github.com/sonnes/obsession/render"
	"github.com/sonnes/obsession/search"
	"github.com/sonnes/obsession/stats"
)

const (
	defaultWidth = 100
	maxShareBar  = 60
	maxHitLines  = 4
)

// Renderer prints reports to the terminal.
type Renderer struct {
	// Width overrides terminal width detection. Zero means auto-detect.
	Width int
}

// New creates a terminal Renderer.
func New() *Renderer {
	return &Renderer{}
}

// Render writes the statistics report to w.
func (r *Renderer) Render(w io.Writer, s *stats.Stats) error {
	width := r.termWidth()
	charts := render.BuildCharts(s, render.ChartHeight)

	writeHeader(w, s)
	fmt.Fprintln(w)
	writeCounters(w, s)

	writeSection(w, "SHARE", "", width)
	writeShare(w, s, width)

	peak := ""
	if !charts.Hours.IsEmpty() {
		peak = fmt.Sprintf("peak %02d:00", s.PeakHour())
	}
	writeSection(w, "24H", peak, width)
	writeHours(w, charts.Hours)

	writeSection(w, fmt.Sprintf("LAST %d DAYS", render.TrendDays), "", width)
	writeTrend(w, charts)

	writeSection(w, "WORDS", "", width)
	writeTerms(w, s.TopTerms, width)

	fmt.Fprintln(w)
	return nil
}

// RenderSearch writes the hits of query, newest first.
func (r *Renderer) RenderSearch(w io.Writer, query string, hits []search.Hit) error {
	width := r.termWidth()

	fmt.Fprintln(w, styleTitle.Render("Search")+"  "+styleMeta.Render(fmt.Sprintf("%s hits for %q", render.FormatNumber(len(hits)), query)))
	if len(hits) == 0 {
		fmt.Fprintln(w)
		fmt.Fprintln(w, styleMeta.Render("  no matches"))
		return nil
	}

	for _, h := range hits {
		writeSeparator(w, width)
		header := sideBadge(h.Message.Name, h.Message.IsUser)
		meta := []string{fmt.Sprintf("#%d", h.Index)}
		if h.Message.SendDate != "" {
			meta = append(meta, h.Message.SendDate)
		}
		fmt.Fprintln(w, " "+header+"    "+styleMeta.Render(strings.Join(meta, "    ")))

		for _, line := range hitLines(h, width-4) {
			fmt.Fprintln(w, "  "+line)
		}
	}
	fmt.Fprintln(w)
	return nil
}

// RenderMemories writes a character's memories with their previews.
func (r *Renderer) RenderMemories(w io.Writer, character string, list []memory.Memory) error {
	width := r.termWidth()

	fmt.Fprintln(w, styleTitle.Render("Memories: "+character)+"  "+styleMeta.Render(render.FormatNumber(len(list))+" collected"))
	if len(list) == 0 {
		fmt.Fprintln(w)
		fmt.Fprintln(w, styleMeta.Render("  no memories yet"))
		return nil
	}

	for _, m := range list {
		writeSeparator(w, width)
		date, text := memory.Preview(m)
		header := styleStat.Render(date)
		if m.Title != "" {
			header += "  " + styleMemTitle.Render(m.Title)
		}
		header += "    " + styleMeta.Render(m.ID)
		fmt.Fprintln(w, " "+header)
		fmt.Fprintln(w, "  "+ansi.Truncate(flatten(text), width-4, "…"))
	}
	fmt.Fprintln(w)
	return nil
}

func (r *Renderer) termWidth() int {
	if r.Width > 0 {
		return r.Width
	}
	if w, _, err := term.GetSize(os.Stdout.Fd()); err == nil && w > 0 {
		return w
	}
	return defaultWidth
}

// writeHeader renders the title and the participants row.
func writeHeader(w io.Writer, s *stats.Stats) {
	fmt.Fprintln(w, styleTitle.Render(render.Title(s.CharName)))

	parts := []string{sideName(s.UserName, true) + " & " + sideName(s.CharName, false)}
	parts = append(parts, "first contact "+s.FirstContact)
	if s.Unparsed > 0 {
		parts = append(parts, render.FormatNumber(s.Unparsed)+" undated")
	}
	fmt.Fprintln(w, styleMeta.Render(strings.Join(parts, "  ")))
}

// writeCounters renders the counters in two rows: values then labels.
func writeCounters(w io.Writer, s *stats.Stats) {
	type stat struct {
		value int
		label string
	}
	counters := []stat{
		{s.TotalMessages, "MESSAGES"},
		{s.UserChars, "USER CHARS"},
		{s.CharChars, "CHAR CHARS"},
		{len(s.TermFrequency), "TERMS"},
	}

	var values, labels []string
	for _, c := range counters {
		formatted := render.FormatNumber(c.value)
		colWidth := max(len(formatted), len(c.label))
		values = append(values, fmt.Sprintf("%*s", colWidth, formatted))
		labels = append(labels, fmt.Sprintf("%-*s", colWidth, c.label))
	}

	fmt.Fprintln(w, "  "+styleStat.Render(strings.Join(values, "    ")))
	fmt.Fprintln(w, "  "+styleStatLabel.Render(strings.Join(labels, "    ")))
}

// writeShare renders the user/character split of written characters.
func writeShare(w io.Writer, s *stats.Stats, width int) {
	user, char := s.Shares()
	left := sideName(s.UserName, true) + " " + render.FormatPercent(user) + " "
	right := " " + render.FormatPercent(char) + " " + sideName(s.CharName, false)

	barWidth := min(maxShareBar, width-4-len(left)-len(right))
	barWidth = max(barWidth, 10)
	userCells := int(math.Round(user / 100 * float64(barWidth)))

	bar := styleUserBar.Render(strings.Repeat("█", userCells)) +
		styleCharBar.Render(strings.Repeat("█", barWidth-userCells))
	fmt.Fprintln(w, "  "+left+bar+right)
}

func writeHours(w io.Writer, g chart.Geometry) {
	if g.IsEmpty() {
		fmt.Fprintln(w, styleMeta.Render("  no timestamps"))
		return
	}
	fmt.Fprintln(w, "  "+styleUserBar.Render(sparkline(g)))
	fmt.Fprintln(w, "  "+styleMeta.Render(fmt.Sprintf("%-6s%-6s%-6s%-4s%s", "0", "6", "12", "18", "23")))
}

func writeTrend(w io.Writer, c render.Charts) {
	if c.Trend.IsEmpty() {
		fmt.Fprintln(w, styleMeta.Render("  no data"))
		return
	}
	fmt.Fprintln(w, "  "+styleCharBar.Render(sparkline(c.Trend)))
	first, last := c.TrendLabels[0], c.TrendLabels[len(c.TrendLabels)-1]
	fmt.Fprintln(w, "  "+styleMeta.Render(first+" → "+last))
}

// writeTerms renders term tags, wrapped to width.
func writeTerms(w io.Writer, terms []stats.TermCount, width int) {
	if len(terms) == 0 {
		fmt.Fprintln(w, styleMeta.Render("  not enough dialogue yet"))
		return
	}

	limit := max(width-4, 20)
	var line string
	for _, t := range terms {
		tag := styleTerm.Render(t.Term) + styleTermCount.Render(" ×"+render.FormatNumber(t.Count))
		if line != "" && lipgloss.Width(line)+2+lipgloss.Width(tag) > limit {
			fmt.Fprintln(w, "  "+line)
			line = ""
		}
		if line != "" {
			line += "  "
		}
		line += tag
	}
	if line != "" {
		fmt.Fprintln(w, "  "+line)
	}
}

// writeSection renders a labelled horizontal rule.
func writeSection(w io.Writer, label, note string, width int) {
	n := min(width, 72)
	head := "── " + label + " "
	if note != "" {
		head += styleMeta.Render(note) + " "
	}
	fill := max(n-lipgloss.Width(head), 3)
	fmt.Fprintln(w)
	fmt.Fprintln(w, styleSeparator.Render(head+strings.Repeat("─", fill)))
}

// writeSeparator renders a horizontal rule.
func writeSeparator(w io.Writer, width int) {
	n := min(width, 72)
	fmt.Fprintln(w)
	fmt.Fprintln(w, styleSeparator.Render(strings.Repeat("─", n)))
}

// hitLines renders the hit text with highlighted matches, wrapped to width
// and cut after maxHitLines lines.
func hitLines(h search.Hit, width int) []string {
	width = max(width, 20)
	text := flatten(h.Text)

	var b strings.Builder
	pos := 0
	for _, sp := range h.Spans {
		if sp[0] < pos || sp[1] > len(text) {
			continue
		}
		b.WriteString(text[pos:sp[0]])
		b.WriteString(styleHighlight.Render(text[sp[0]:sp[1]]))
		pos = sp[1]
	}
	b.WriteString(text[pos:])

	wrapped := lipgloss.NewStyle().Width(width).Render(b.String())
	lines := strings.Split(wrapped, "\n")
	if len(lines) > maxHitLines {
		lines = lines[:maxHitLines]
		last := strings.TrimRight(lines[maxHitLines-1], " ")
		lines[maxHitLines-1] = ansi.Truncate(last, width-1, "") + "…"
	}
	for i := range lines {
		lines[i] = strings.TrimRight(lines[i], " ")
	}
	return lines
}

// flatten turns line breaks into spaces. Byte offsets are preserved.
func flatten(s string) string {
	return strings.NewReplacer("\r", " ", "\n", " ", "\t", " ").Replace(s)
}

func sideName(name string, isUser bool) string {
	if name != "" {
		return name
	}
	if isUser {
		return "User"
	}
	return "Char"
}

func sideBadge(name string, isUser bool) string {
	label := strings.ToUpper(sideName(name, isUser))
	if isUser {
		return styleUserBadge.Render(label)
	}
	return styleCharBadge.Render(label)
}
