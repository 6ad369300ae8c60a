// Package replay rebuilds remote strokes from the flat stream of inbound
// events, one cursor per sender.
package replay

import (
	"sort"

	pkglog "SharedBoard/internal/log"
	"SharedBoard/internal/render"
	"SharedBoard/internal/state"
	"SharedBoard/internal/wire"

	"github.com/rs/zerolog"
)

// cursor is the replay state of one sender. A sender without a cursor, or
// with open == false, is not drawing.
type cursor struct {
	open    bool
	last    state.Point
	style   state.Style
	lastSeq uint64
}

// Engine applies inbound events to a surface in arrival order. Events from
// one sender must arrive in the order they were sent; events of different
// senders may interleave freely.
//
// Engine is not safe for concurrent use.
type Engine struct {
	surface render.Surface
	bounds  state.Bounds
	log     zerolog.Logger
	cursors map[string]*cursor
}

type Option func(*Engine)

// WithBounds clamps replayed points onto the canvas.
func WithBounds(b state.Bounds) Option {
	return func(e *Engine) { e.bounds = b }
}

// WithLogger replaces the global logger.
func WithLogger(l zerolog.Logger) Option {
	return func(e *Engine) { e.log = l }
}

func NewEngine(surface render.Surface, opts ...Option) *Engine {
	e := &Engine{
		surface: surface,
		log:     pkglog.L(),
		cursors: make(map[string]*cursor),
	}
	for _, opt := range opts {
		opt(e)
	}
	e.log = e.log.With().Str(pkglog.FieldComponent, "replay").Logger()
	return e
}

// ApplyRaw decodes and applies one inbound payload. Undecodable payloads
// are logged and dropped; the canvas is left untouched. It returns the
// decoded message and whether Apply accepted it.
func (e *Engine) ApplyRaw(data []byte) (wire.Message, bool) {
	m, err := wire.Decode(data)
	if err != nil {
		e.log.Warn().Err(err).Int(pkglog.FieldSize, len(data)).Msg("dropping undecodable event")
		return wire.Message{}, false
	}
	return m, e.Apply(m)
}

// Apply applies one decoded message. It reports false for messages it
// drops: duplicates and segments without an open stroke.
//
// Duplicates are only detected for stamped senders. Without a "from" every
// participant shares one cursor while numbering seq on its own, so their
// sequences say nothing about each other.
func (e *Engine) Apply(m wire.Message) bool {
	if m.Event == nil {
		return false
	}

	c := e.cursor(m.From)
	if m.Seq != 0 && m.From != "" {
		if m.Seq <= c.lastSeq {
			e.log.Debug().Str(pkglog.FieldSender, m.From).Uint64(pkglog.FieldSeq, m.Seq).Msg("dropping duplicate event")
			return false
		}
		c.lastSeq = m.Seq
	}

	switch ev := m.Event.(type) {
	case state.Start:
		if c.open {
			e.end(m.From, c)
		}
		p := e.bounds.Clamp(ev.Point)
		c.open, c.last, c.style = true, p, ev.Style
		e.surface.Begin(m.From, p, ev.Style)
	case state.Segment:
		if !c.open {
			e.log.Debug().Str(pkglog.FieldSender, m.From).Msg("segment without open stroke")
			return false
		}
		p := e.bounds.Clamp(ev.Point)
		e.surface.Line(m.From, c.last, p, c.style)
		c.last = p
	case state.End:
		if c.open {
			e.end(m.From, c)
		}
		if m.Seq == 0 && m.From != "" {
			// The relay's departure frame; a returning sender gets a new id.
			delete(e.cursors, m.From)
		}
	case state.ClearAll:
		e.surface.Clear()
		e.Reset()
	}
	return true
}

// Reset closes every cursor without touching the surface. The clear
// coordinator calls it after wiping the canvas locally.
func (e *Engine) Reset() {
	for _, c := range e.cursors {
		c.open = false
	}
}

// Open lists the senders with an unterminated stroke, sorted.
func (e *Engine) Open() []string {
	var out []string
	for id, c := range e.cursors {
		if c.open {
			out = append(out, id)
		}
	}
	sort.Strings(out)
	return out
}

func (e *Engine) cursor(sender string) *cursor {
	c, ok := e.cursors[sender]
	if !ok {
		c = &cursor{}
		e.cursors[sender] = c
	}
	return c
}

func (e *Engine) end(sender string, c *cursor) {
	c.open = false
	e.surface.Finish(sender)
}
