// Package render defines the output formats for chat statistics, search
// results and memory lists, and the view helpers the formats share.
package render

import (
	"io"

	"github.com/sonnes/obsession/chart"
	"github.com/sonnes/obsession/memory"
	"github.com/sonnes/obsession/search"
	"github.com/sonnes/obsession/stats"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// Renderer writes the results of each operation in a specific format.
type Renderer interface {
	Render(w io.Writer, s *stats.Stats) error
	RenderSearch(w io.Writer, query string, hits []search.Hit) error
	RenderMemories(w io.Writer, character string, list []memory.Memory) error
}

const (
	// TrendDays is how many day buckets the trend chart shows.
	TrendDays = 30
	// ChartHeight is the viewbox height of both activity charts.
	ChartHeight = 50
)

// Charts are the two activity charts of a statistics report.
type Charts struct {
	Hours       chart.Geometry // 24 bars, one per hour of day
	Trend       chart.Geometry // line over the last TrendDays day buckets
	TrendLabels []string       // MM-DD key of each Trend point
}

// BuildCharts computes both charts for s.
func BuildCharts(s *stats.Stats, height float64) Charts {
	days, counts := s.Trend(TrendDays)
	return Charts{
		Hours:       chart.Transform(chart.Ints(s.Hours[:]), chart.Bar, height),
		Trend:       chart.Transform(chart.Ints(counts), chart.Line, height),
		TrendLabels: days,
	}
}

var printer = message.NewPrinter(language.English)

// FormatNumber formats n with thousands separators.
func FormatNumber(n int) string {
	return printer.Sprintf("%d", n)
}

// FormatPercent formats a percentage with one decimal.
func FormatPercent(p float64) string {
	return printer.Sprintf("%.1f%%", p)
}

// Title is the report heading for a character.
func Title(charName string) string {
	if charName == "" {
		return "The Obsession"
	}
	return "The Obsession: " + charName
}
