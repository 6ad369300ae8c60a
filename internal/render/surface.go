// Package render holds the drawing surfaces strokes are replayed onto.
package render

import "SharedBoard/internal/state"

// Surface is a 2D drawing target. Owner keys keep interleaved strokes of
// different participants apart; surfaces that only paint pixels may ignore
// them.
type Surface interface {
	state.Renderer
	// Clear fills the whole canvas with the background.
	Clear()
}

// Tee forwards every call to each surface in order.
type Tee []Surface

func (t Tee) Begin(owner string, p state.Point, s state.Style) {
	for _, sf := range t {
		sf.Begin(owner, p, s)
	}
}

func (t Tee) Line(owner string, from, to state.Point, s state.Style) {
	for _, sf := range t {
		sf.Line(owner, from, to, s)
	}
}

func (t Tee) Finish(owner string) {
	for _, sf := range t {
		sf.Finish(owner)
	}
}

func (t Tee) Clear() {
	for _, sf := range t {
		sf.Clear()
	}
}
