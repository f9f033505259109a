// Package chart turns numeric series into resolution-independent drawing
// primitives. Geometry lives in a viewbox that is 100 units wide and as tall
// as the caller asks; renderers scale it to pixels.
package chart

// Width is the fixed viewbox width.
const Width = 100.0

// Mode selects the kind of chart.
type Mode string

const (
	Bar  Mode = "bar"
	Line Mode = "line"
)

const (
	minBarOpacity = 0.3
	barFill       = 0.8 // fraction of a slot covered by its bar
	// AreaOpacity is the fill opacity of the area under a line chart.
	AreaOpacity = 0.15
)

// Point is a viewbox coordinate. Y grows downward, so the baseline is at
// Y == Height.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Rect is one bar of a bar chart.
type Rect struct {
	X       float64 `json:"x"`
	Y       float64 `json:"y"`
	Width   float64 `json:"width"`
	Height  float64 `json:"height"`
	Opacity float64 `json:"opacity"`
}

// Geometry is the output of Transform. Bar charts populate Bars; line charts
// populate Points, Area and Marker.
type Geometry struct {
	Mode   Mode    `json:"mode"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`

	Bars []Rect `json:"bars,omitempty"`

	Points []Point `json:"points,omitempty"`
	// Area closes Points down to the baseline on both edges.
	Area   []Point `json:"area,omitempty"`
	Marker *Point  `json:"marker,omitempty"`
}

// IsEmpty reports whether g has nothing above the baseline, which is the
// case for empty and all-zero input. Callers should show a placeholder
// instead of an empty chart.
func (g Geometry) IsEmpty() bool {
	for _, r := range g.Bars {
		if r.Height > 0 {
			return false
		}
	}
	for _, p := range g.Points {
		if p.Y < g.Height {
			return false
		}
	}
	return true
}

// Transform maps values into chart geometry of the given height. The largest
// value reaches full height; when every value is zero the scale is 1.
func Transform(values []float64, mode Mode, height float64) Geometry {
	g := Geometry{Mode: mode, Width: Width, Height: height}
	if len(values) == 0 {
		return g
	}

	maxIdx := 0
	for i, v := range values {
		if v > values[maxIdx] {
			maxIdx = i
		}
	}
	maxVal := values[maxIdx]
	if maxVal == 0 {
		maxVal = 1
	}

	switch mode {
	case Bar:
		g.Bars = bars(values, maxVal, height)
	case Line:
		g.Points, g.Area, g.Marker = line(values, maxVal, maxIdx, height)
	}
	return g
}

func bars(values []float64, maxVal, height float64) []Rect {
	n := float64(len(values))
	slot := Width / n
	out := make([]Rect, len(values))
	for i, v := range values {
		ratio := v / maxVal
		h := ratio * height
		out[i] = Rect{
			X:       slot * float64(i),
			Y:       height - h,
			Width:   slot * barFill,
			Height:  h,
			Opacity: minBarOpacity + ratio*(1-minBarOpacity),
		}
	}
	return out
}

func line(values []float64, maxVal float64, maxIdx int, height float64) (points, area []Point, marker *Point) {
	step := Width
	if len(values) > 1 {
		step = Width / float64(len(values)-1)
	}

	points = make([]Point, len(values))
	for i, v := range values {
		points[i] = Point{X: float64(i) * step, Y: height - (v/maxVal)*height}
	}

	area = make([]Point, 0, len(points)+2)
	area = append(area, Point{X: 0, Y: height})
	area = append(area, points...)
	area = append(area, Point{X: Width, Y: height})

	m := points[maxIdx]
	return points, area, &m
}

// Ints converts integer counts into chart values.
func Ints(xs []int) []float64 {
	out := make([]float64, len(xs))
	for i, x := range xs {
		out[i] = float64(x)
	}
	return out
}
