package render

import (
	"sync"

	"SharedBoard/internal/state"
)

// Line is one drawn segment, in the order it reached the surface.
type Line struct {
	Owner    string
	From, To state.Point
	Style    state.Style
}

// Scene keeps the canvas content in memory. The UI renders from it and
// exports read it, so it is safe for concurrent use.
type Scene struct {
	mu      sync.RWMutex
	strokes []*state.Stroke
	open    map[string]*state.Stroke
	lines   []Line

	// OnChange, when set, runs after every mutation, outside the lock.
	OnChange func()
}

func NewScene() *Scene {
	return &Scene{open: make(map[string]*state.Stroke)}
}

func (s *Scene) Begin(owner string, p state.Point, st state.Style) {
	s.mu.Lock()
	if prev, ok := s.open[owner]; ok {
		prev.Sealed = true
	}
	stroke := &state.Stroke{Owner: owner, Style: st, Points: []state.Point{p}}
	s.strokes = append(s.strokes, stroke)
	s.open[owner] = stroke
	s.mu.Unlock()
	s.changed()
}

func (s *Scene) Line(owner string, from, to state.Point, st state.Style) {
	s.mu.Lock()
	s.lines = append(s.lines, Line{Owner: owner, From: from, To: to, Style: st})
	if stroke, ok := s.open[owner]; ok {
		stroke.Points = append(stroke.Points, to)
	}
	s.mu.Unlock()
	s.changed()
}

func (s *Scene) Finish(owner string) {
	s.mu.Lock()
	if stroke, ok := s.open[owner]; ok {
		stroke.Sealed = true
		delete(s.open, owner)
	}
	s.mu.Unlock()
	s.changed()
}

func (s *Scene) Clear() {
	s.mu.Lock()
	s.strokes = nil
	s.lines = nil
	s.open = make(map[string]*state.Stroke)
	s.mu.Unlock()
	s.changed()
}

// Strokes returns a copy of every stroke on the canvas, oldest first.
func (s *Scene) Strokes() []state.Stroke {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]state.Stroke, 0, len(s.strokes))
	for _, st := range s.strokes {
		cp := *st
		cp.Points = append([]state.Point(nil), st.Points...)
		out = append(out, cp)
	}
	return out
}

// StrokesBy filters Strokes by owner.
func (s *Scene) StrokesBy(owner string) []state.Stroke {
	var out []state.Stroke
	for _, st := range s.Strokes() {
		if st.Owner == owner {
			out = append(out, st)
		}
	}
	return out
}

// Lines returns every drawn segment in drawing order.
func (s *Scene) Lines() []Line {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]Line(nil), s.lines...)
}

// LinesBy filters Lines by owner.
func (s *Scene) LinesBy(owner string) []Line {
	var out []Line
	for _, l := range s.Lines() {
		if l.Owner == owner {
			out = append(out, l)
		}
	}
	return out
}

// Empty reports whether nothing has been drawn since the last Clear.
func (s *Scene) Empty() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.strokes) == 0
}

// Replay draws the scene's strokes onto another surface.
func (s *Scene) Replay(dst Surface) {
	for _, st := range s.Strokes() {
		dst.Begin(st.Owner, st.Points[0], st.Style)
		for _, seg := range st.Segments() {
			dst.Line(st.Owner, seg[0], seg[1], st.Style)
		}
		dst.Finish(st.Owner)
	}
}

func (s *Scene) changed() {
	if s.OnChange != nil {
		s.OnChange()
	}
}
