package state

import "fmt"

// Point is one sampled pointer position in canvas-local pixels.
type Point struct{ X, Y float64 }

// Tool is what the local participant is drawing with.
type Tool int

const (
	ToolPen Tool = iota
	ToolEraser
)

func (t Tool) String() string {
	switch t {
	case ToolPen:
		return "pen"
	case ToolEraser:
		return "eraser"
	default:
		return fmt.Sprintf("tool(%d)", int(t))
	}
}

// Composite is how a stroke is combined with what is already on the canvas.
type Composite int

const (
	CompositeNormal Composite = iota
	// CompositeSubtractive clears instead of painting. Surfaces that cannot
	// clear paint with the style color, which for the eraser is EraserColor.
	CompositeSubtractive
)

func (c Composite) String() string {
	switch c {
	case CompositeNormal:
		return "normal"
	case CompositeSubtractive:
		return "subtractive"
	default:
		return fmt.Sprintf("composite(%d)", int(c))
	}
}

// Style is fixed for the lifetime of a stroke.
type Style struct {
	Color     string
	Width     float64
	Composite Composite
}

// Erases reports whether the style clears pixels.
func (s Style) Erases() bool { return s.Composite == CompositeSubtractive }

// Stroke is the derived record of one gesture: Start, zero or more
// Segments, End. A stroke with a single point is drawn as a dot.
type Stroke struct {
	Owner  string
	Style  Style
	Points []Point
	Sealed bool
}

// Segments returns the line segments between consecutive points.
func (s Stroke) Segments() [][2]Point {
	if len(s.Points) < 2 {
		return nil
	}
	out := make([][2]Point, 0, len(s.Points)-1)
	for i := 1; i < len(s.Points); i++ {
		out = append(out, [2]Point{s.Points[i-1], s.Points[i]})
	}
	return out
}
