// Package session runs one participant: pointer input, style changes,
// inbound events and clears all funnel into a single event loop.
package session

import (
	"context"

	pkglog "SharedBoard/internal/log"
	"SharedBoard/internal/render"
	"SharedBoard/internal/replay"
	"SharedBoard/internal/state"
	"SharedBoard/internal/wire"

	"github.com/rs/zerolog"
)

const defaultQueueSize = 256

// Transport carries encoded events to and from the relay.
type Transport interface {
	Send(ctx context.Context, data []byte) error
	OnReceive(fn func(data []byte))
}

type Option func(*Session)

// WithBounds sets the canvas area for capture and replay.
func WithBounds(b state.Bounds) Option {
	return func(s *Session) { s.bounds = b }
}

// WithBrush sets the initial pen color and width.
func WithBrush(color string, width float64) Option {
	return func(s *Session) {
		s.styles.SetColor(color)
		s.styles.SetWidth(width)
	}
}

// WithLogger replaces the global logger.
func WithLogger(l zerolog.Logger) Option {
	return func(s *Session) { s.log = l }
}

// WithQueueSize sets how many inputs may wait for the event loop.
func WithQueueSize(n int) Option {
	return func(s *Session) {
		if n > 0 {
			s.queueSize = n
		}
	}
}

// Session is the local participant. Its exported methods are safe to call
// from any goroutine; the work they describe runs on the goroutine that
// called Run, in the order it was posted.
type Session struct {
	surface   render.Surface
	transport Transport
	bounds    state.Bounds
	clock     *state.Clock
	styles    *state.StyleContext
	capture   *state.Capture
	engine    *replay.Engine
	log       zerolog.Logger
	queueSize int

	inbox chan func()
	done  chan struct{}
	ctx   context.Context
}

// New builds a session drawing onto surface. A nil transport leaves the
// session offline: drawing works, nothing is sent or received.
func New(surface render.Surface, transport Transport, opts ...Option) *Session {
	s := &Session{
		surface:   surface,
		transport: transport,
		clock:     state.NewClock(),
		styles:    state.NewStyleContext(state.DefaultColor, state.DefaultWidth),
		log:       pkglog.L(),
		queueSize: defaultQueueSize,
		done:      make(chan struct{}),
		ctx:       context.Background(),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.log = s.log.With().Str(pkglog.FieldComponent, "session").Str(pkglog.FieldClientID, s.clock.Site()).Logger()
	s.inbox = make(chan func(), s.queueSize)
	s.capture = state.NewCapture(s.clock.Site(), s.bounds, s.styles, surface, s.emit)
	s.engine = replay.NewEngine(surface, replay.WithBounds(s.bounds), replay.WithLogger(s.log))

	if transport != nil {
		transport.OnReceive(func(data []byte) {
			s.post(func() { s.receive(data) })
		})
	}
	return s
}

// Site is the local participant id; local strokes are drawn under it.
func (s *Session) Site() string { return s.clock.Site() }

// Run processes posted inputs until ctx is done.
func (s *Session) Run(ctx context.Context) error {
	defer close(s.done)
	s.ctx = ctx
	s.log.Info().Msg("session started")
	for {
		select {
		case <-ctx.Done():
			s.log.Info().Msg("session stopped")
			return nil
		case fn := <-s.inbox:
			fn()
		}
	}
}

func (s *Session) PointerDown(p state.Point) { s.post(func() { s.capture.PointerDown(p) }) }
func (s *Session) PointerMove(p state.Point) { s.post(func() { s.capture.PointerMove(p) }) }
func (s *Session) PointerUp()                { s.post(s.capture.PointerUp) }
func (s *Session) PointerLeave()             { s.post(s.capture.PointerLeave) }

// SetTool, SetColor and SetWidth take effect from the next stroke on.
func (s *Session) SetTool(t state.Tool) { s.post(func() { s.styles.SetTool(t) }) }
func (s *Session) SetColor(c string)    { s.post(func() { s.styles.SetColor(c) }) }
func (s *Session) SetWidth(w float64)   { s.post(func() { s.styles.SetWidth(w) }) }

// Clear wipes the canvas for everyone. The local stroke, if any, is ended
// first so no receiver is left with an open cursor for it.
func (s *Session) Clear() { s.post(s.clear) }

func (s *Session) clear() {
	s.capture.Cancel()
	s.surface.Clear()
	s.engine.Reset()
	s.emit(state.ClearAll{})
}

func (s *Session) receive(data []byte) {
	m, applied := s.engine.ApplyRaw(data)
	if !applied {
		return
	}
	if _, ok := m.Event.(state.ClearAll); ok && s.capture.Drawing() {
		// The clear wiped our open stroke everywhere, including here.
		s.capture.Resume()
	}
}

func (s *Session) emit(ev state.Event) {
	if s.transport == nil {
		return
	}
	data, err := wire.Encode(wire.Message{Seq: s.clock.Next(), Event: ev})
	if err != nil {
		s.log.Error().Err(err).Msg("encode event")
		return
	}
	if err := s.transport.Send(s.ctx, data); err != nil {
		s.log.Debug().Err(err).Str(pkglog.FieldEventType, string(ev.Kind())).Msg("send failed")
	}
}

// post queues fn for the event loop. Inputs arriving after Run returned
// are discarded.
func (s *Session) post(fn func()) {
	select {
	case s.inbox <- fn:
	case <-s.done:
	}
}
