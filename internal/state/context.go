package state

const (
	// EraserColor is sent with eraser strokes for receivers that paint
	// instead of clearing.
	EraserColor = "#ffffff"
	// EraserScale multiplies the brush width while erasing.
	EraserScale = 2

	DefaultColor = "#000000"
	DefaultWidth = 3.0
)

// StyleContext is the live tool/color/size selection of the local
// participant. UI actions mutate it; Capture reads it once per stroke.
type StyleContext struct {
	tool  Tool
	color string
	width float64
}

func NewStyleContext(color string, width float64) *StyleContext {
	sc := &StyleContext{tool: ToolPen, color: DefaultColor, width: DefaultWidth}
	sc.SetColor(color)
	sc.SetWidth(width)
	return sc
}

func (sc *StyleContext) Tool() Tool     { return sc.tool }
func (sc *StyleContext) Color() string  { return sc.color }
func (sc *StyleContext) Width() float64 { return sc.width }
func (sc *StyleContext) SetTool(t Tool) { sc.tool = t }

// SetColor ignores empty colors.
func (sc *StyleContext) SetColor(c string) {
	if c != "" {
		sc.color = c
	}
}

// SetWidth ignores non-positive widths.
func (sc *StyleContext) SetWidth(w float64) {
	if w > 0 {
		sc.width = w
	}
}

// Freeze snapshots the selection into the Style of a new stroke.
func (sc *StyleContext) Freeze() Style {
	if sc.tool == ToolEraser {
		return Style{
			Color:     EraserColor,
			Width:     sc.width * EraserScale,
			Composite: CompositeSubtractive,
		}
	}
	return Style{Color: sc.color, Width: sc.width, Composite: CompositeNormal}
}
