package terminal

import (
	"math"
	"strings"

	"github.com/sonnes/obsession/chart"
)

var levels = []rune(" ▁▂▃▄▅▆▇█")

// sparkline draws g as one row of block characters, one per bar or point.
// Heights are read from the geometry so the terminal and HTML charts agree.
func sparkline(g chart.Geometry) string {
	if g.Height <= 0 {
		return ""
	}
	var b strings.Builder
	switch g.Mode {
	case chart.Bar:
		for _, r := range g.Bars {
			b.WriteRune(level(r.Height / g.Height))
		}
	case chart.Line:
		for _, p := range g.Points {
			b.WriteRune(level((g.Height - p.Y) / g.Height))
		}
	}
	return b.String()
}

// level maps a 0..1 ratio to a block. Any non-zero ratio shows at least the
// lowest block.
func level(ratio float64) rune {
	if ratio <= 0 {
		return levels[0]
	}
	i := int(math.Ceil(ratio * float64(len(levels)-1)))
	return levels[min(i, len(levels)-1)]
}
