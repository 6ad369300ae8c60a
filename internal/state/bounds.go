package state

// Bounds is the drawable canvas area, anchored at the origin.
// The zero value places no upper limit on coordinates.
type Bounds struct {
	Width  float64
	Height float64
}

// Limited reports whether the bounds constrain anything.
func (b Bounds) Limited() bool {
	return b.Width > 0 && b.Height > 0
}

// Contains checks if the point lies on the canvas, edges included.
func (b Bounds) Contains(p Point) bool {
	if p.X < 0 || p.Y < 0 {
		return false
	}
	if !b.Limited() {
		return true
	}
	return p.X <= b.Width && p.Y <= b.Height
}

// Clamp moves the point onto the nearest canvas position.
func (b Bounds) Clamp(p Point) Point {
	p.X = clamp(p.X, b.Width)
	p.Y = clamp(p.Y, b.Height)
	return p
}

func clamp(v, limit float64) float64 {
	if v < 0 {
		return 0
	}
	if limit > 0 && v > limit {
		return limit
	}
	return v
}
