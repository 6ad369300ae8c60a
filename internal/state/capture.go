package state

// Renderer is where the local participant's strokes show up immediately.
type Renderer interface {
	Begin(owner string, p Point, s Style)
	Line(owner string, from, to Point, s Style)
	Finish(owner string)
}

// Capture turns pointer input into stroke events. It is Idle until a
// pointer-down and Drawing until the pointer is released or leaves the
// canvas. The style of a stroke is frozen at its Start.
//
// Capture is not safe for concurrent use; it belongs to one event loop.
type Capture struct {
	owner  string
	bounds Bounds
	styles *StyleContext
	out    Renderer
	emit   func(Event)

	drawing bool
	last    Point
	style   Style
}

// NewCapture wires a state machine to its style source, the local
// renderer and the outbound event sink. Either of out or emit may be nil.
func NewCapture(owner string, bounds Bounds, styles *StyleContext, out Renderer, emit func(Event)) *Capture {
	if styles == nil {
		styles = NewStyleContext(DefaultColor, DefaultWidth)
	}
	return &Capture{
		owner:  owner,
		bounds: bounds,
		styles: styles,
		out:    out,
		emit:   emit,
	}
}

// Drawing reports whether a stroke is open.
func (c *Capture) Drawing() bool { return c.drawing }

// Style returns the frozen style of the open stroke.
func (c *Capture) Style() (Style, bool) { return c.style, c.drawing }

// PointerDown starts a stroke at p. A press outside the canvas is ignored.
// Pressing while a stroke is open closes that stroke first.
func (c *Capture) PointerDown(p Point) {
	if !c.bounds.Contains(p) {
		return
	}
	if c.drawing {
		c.end()
	}
	c.drawing = true
	c.last = p
	c.style = c.styles.Freeze()
	c.send(Start{Point: p, Style: c.style})
	if c.out != nil {
		c.out.Begin(c.owner, p, c.style)
	}
}

// PointerMove extends the open stroke. Leaving the canvas ends it.
func (c *Capture) PointerMove(p Point) {
	if !c.drawing {
		return
	}
	if !c.bounds.Contains(p) {
		c.end()
		return
	}
	from := c.last
	c.last = p
	c.send(Segment{Point: p})
	if c.out != nil {
		c.out.Line(c.owner, from, p, c.style)
	}
}

// PointerUp seals the open stroke.
func (c *Capture) PointerUp() {
	if c.drawing {
		c.end()
	}
}

// PointerLeave seals the open stroke; no stroke may stay open on the wire.
func (c *Capture) PointerLeave() {
	if c.drawing {
		c.end()
	}
}

// Cancel seals the open stroke on behalf of something other than the
// pointer, such as a local clear.
func (c *Capture) Cancel() {
	if c.drawing {
		c.end()
	}
}

// Resume re-announces the open stroke with a fresh Start at its last point
// and its frozen style. Receivers need it after a ClearAll dropped their
// cursor for this participant.
func (c *Capture) Resume() {
	if !c.drawing {
		return
	}
	c.send(Start{Point: c.last, Style: c.style})
	if c.out != nil {
		c.out.Begin(c.owner, c.last, c.style)
	}
}

func (c *Capture) end() {
	c.drawing = false
	c.send(End{})
	if c.out != nil {
		c.out.Finish(c.owner)
	}
}

func (c *Capture) send(ev Event) {
	if c.emit != nil {
		c.emit(ev)
	}
}
