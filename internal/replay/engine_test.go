package replay

import (
	"math/rand"
	"testing"

	pkglog "SharedBoard/internal/log"
	"SharedBoard/internal/render"
	"SharedBoard/internal/state"
	"SharedBoard/internal/wire"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var pen = state.Style{Color: "#336699", Width: 3}

func newEngine(opts ...Option) (*Engine, *render.Scene) {
	scene := render.NewScene()
	opts = append([]Option{WithLogger(pkglog.Nop())}, opts...)
	return NewEngine(scene, opts...), scene
}

func msg(from string, ev state.Event) wire.Message {
	return wire.Message{From: from, Event: ev}
}

func pt(x, y float64) state.Point { return state.Point{X: x, Y: y} }

func segments(lines []render.Line) [][2]state.Point {
	out := make([][2]state.Point, 0, len(lines))
	for _, l := range lines {
		out = append(out, [2]state.Point{l.From, l.To})
	}
	return out
}

func TestLocalRemoteEquivalence(t *testing.T) {
	points := []state.Point{pt(1, 1), pt(5, 3), pt(9, 9), pt(12, 4), pt(12, 4), pt(0, 0)}

	local := render.NewScene()
	var sent []state.Event
	styles := state.NewStyleContext(pen.Color, pen.Width)
	c := state.NewCapture("me", state.Bounds{Width: 100, Height: 100}, styles, local, func(ev state.Event) {
		sent = append(sent, ev)
	})
	c.PointerDown(points[0])
	for _, p := range points[1:] {
		c.PointerMove(p)
	}
	c.PointerUp()

	e, remote := newEngine()
	for _, ev := range sent {
		data, err := wire.EncodeEvent(ev)
		require.NoError(t, err)
		e.ApplyRaw(data)
	}

	assert.Equal(t, segments(local.Lines()), segments(remote.Lines()))
	require.Len(t, remote.Strokes(), 1)
	assert.Equal(t, points, remote.Strokes()[0].Points)
	assert.Equal(t, pen, remote.Strokes()[0].Style)
	assert.True(t, remote.Strokes()[0].Sealed)
}

func TestPerSenderIndependence(t *testing.T) {
	streams := map[string][]state.Event{
		"a": {state.Start{Point: pt(0, 0), Style: pen}, state.Segment{Point: pt(1, 0)}, state.Segment{Point: pt(2, 0)}, state.End{}},
		"b": {state.Start{Point: pt(0, 9), Style: pen}, state.Segment{Point: pt(0, 8)}, state.End{}},
	}
	want := map[string][][2]state.Point{
		"a": {{pt(0, 0), pt(1, 0)}, {pt(1, 0), pt(2, 0)}},
		"b": {{pt(0, 9), pt(0, 8)}},
	}

	r := rand.New(rand.NewSource(1))
	for round := 0; round < 50; round++ {
		e, scene := newEngine()
		idx := map[string]int{}
		for idx["a"] < len(streams["a"]) || idx["b"] < len(streams["b"]) {
			id := "a"
			if idx["a"] == len(streams["a"]) || (idx["b"] < len(streams["b"]) && r.Intn(2) == 0) {
				id = "b"
			}
			e.Apply(msg(id, streams[id][idx[id]]))
			idx[id]++
		}
		for id, segs := range want {
			assert.Equal(t, segs, segments(scene.LinesBy(id)), "round %d sender %s", round, id)
		}
		assert.Empty(t, e.Open())
	}
}

func TestIdempotentTermination(t *testing.T) {
	e, scene := newEngine()
	e.Apply(msg("a", state.Start{Point: pt(1, 1), Style: pen}))
	e.Apply(msg("a", state.Segment{Point: pt(2, 2)}))
	e.Apply(msg("a", state.End{}))

	before := scene.Lines()
	e.Apply(msg("a", state.End{}))
	e.Apply(msg("a", state.Segment{Point: pt(3, 3)}))
	e.Apply(msg("z", state.End{}))
	e.Apply(msg("z", state.Segment{Point: pt(3, 3)}))

	assert.Equal(t, before, scene.Lines())
	assert.Len(t, scene.Strokes(), 1)
}

func TestImplicitCloseOnRestart(t *testing.T) {
	e, scene := newEngine()
	other := state.Style{Color: "#000000", Width: 7}
	e.Apply(msg("a", state.Start{Point: pt(1, 1), Style: pen}))
	e.Apply(msg("a", state.Segment{Point: pt(2, 2)}))
	e.Apply(msg("a", state.Start{Point: pt(10, 10), Style: other}))
	e.Apply(msg("a", state.Segment{Point: pt(11, 11)}))
	e.Apply(msg("a", state.End{}))

	strokes := scene.StrokesBy("a")
	require.Len(t, strokes, 2)
	assert.True(t, strokes[0].Sealed)
	assert.Equal(t, []state.Point{pt(1, 1), pt(2, 2)}, strokes[0].Points)
	assert.True(t, strokes[1].Sealed)
	assert.Equal(t, []state.Point{pt(10, 10), pt(11, 11)}, strokes[1].Points)
	assert.Equal(t, other, strokes[1].Style)

	lines := scene.LinesBy("a")
	assert.Equal(t, render.Line{Owner: "a", From: pt(10, 10), To: pt(11, 11), Style: other}, lines[1])
}

func TestClearResetsAllCursors(t *testing.T) {
	e, scene := newEngine()
	e.Apply(msg("a", state.Start{Point: pt(1, 1), Style: pen}))
	e.Apply(msg("b", state.Start{Point: pt(5, 5), Style: pen}))
	e.Apply(msg("b", state.Segment{Point: pt(6, 6)}))
	require.Equal(t, []string{"a", "b"}, e.Open())

	e.Apply(msg("c", state.ClearAll{}))
	assert.True(t, scene.Empty())
	assert.Empty(t, e.Open())

	e.Apply(msg("a", state.Segment{Point: pt(2, 2)}))
	e.Apply(msg("b", state.Segment{Point: pt(7, 7)}))
	assert.True(t, scene.Empty())
	assert.Empty(t, scene.Lines())
}

func TestSingleDotStroke(t *testing.T) {
	e, scene := newEngine()
	e.Apply(msg("a", state.Start{Point: pt(4, 4), Style: pen}))
	e.Apply(msg("a", state.End{}))

	strokes := scene.Strokes()
	require.Len(t, strokes, 1)
	assert.Equal(t, []state.Point{pt(4, 4)}, strokes[0].Points)
	assert.True(t, strokes[0].Sealed)
	assert.Empty(t, scene.Lines())
}

func TestGarbageIsDropped(t *testing.T) {
	e, scene := newEngine()
	e.Apply(msg("a", state.Start{Point: pt(1, 1), Style: pen}))

	for _, raw := range []string{"", "{", `{"type":"draw"}`, `{"type":"boom"}`, "\x00\xff"} {
		assert.NotPanics(t, func() { e.ApplyRaw([]byte(raw)) })
	}
	assert.Len(t, scene.Strokes(), 1)
	assert.Empty(t, scene.Lines())
	assert.Equal(t, []string{"a"}, e.Open())
}

func TestDuplicateSeqDropped(t *testing.T) {
	e, scene := newEngine()
	e.Apply(wire.Message{From: "a", Seq: 1, Event: state.Start{Point: pt(1, 1), Style: pen}})
	e.Apply(wire.Message{From: "a", Seq: 2, Event: state.Segment{Point: pt(2, 2)}})
	e.Apply(wire.Message{From: "a", Seq: 2, Event: state.Segment{Point: pt(2, 2)}})
	e.Apply(wire.Message{From: "b", Seq: 2, Event: state.Start{Point: pt(9, 9), Style: pen}})
	e.Apply(wire.Message{From: "a", Seq: 3, Event: state.Segment{Point: pt(3, 3)}})

	assert.Len(t, scene.LinesBy("a"), 2)
	assert.Equal(t, []string{"a", "b"}, e.Open())
}

func TestBoundsClamp(t *testing.T) {
	e, scene := newEngine(WithBounds(state.Bounds{Width: 10, Height: 10}))
	e.Apply(msg("a", state.Start{Point: pt(5, 5), Style: pen}))
	e.Apply(msg("a", state.Segment{Point: pt(50, 5)}))
	assert.Equal(t, pt(10, 5), scene.Lines()[0].To)
}

func TestResetKeepsSurface(t *testing.T) {
	e, scene := newEngine()
	e.Apply(msg("a", state.Start{Point: pt(1, 1), Style: pen}))
	e.Reset()
	assert.False(t, scene.Empty())
	assert.Empty(t, e.Open())
}

func TestUnstampedSendersKeepOwnSequences(t *testing.T) {
	e, scene := newEngine()
	a := []state.Event{
		state.Start{Point: pt(1, 1), Style: pen},
		state.Segment{Point: pt(2, 2)},
		state.Segment{Point: pt(3, 3)},
		state.End{},
	}
	b := []state.Event{
		state.Start{Point: pt(20, 20), Style: pen},
		state.Segment{Point: pt(21, 21)},
		state.End{},
	}
	for i, ev := range a {
		assert.True(t, e.Apply(wire.Message{Seq: uint64(i + 1), Event: ev}))
	}
	for i, ev := range b {
		assert.True(t, e.Apply(wire.Message{Seq: uint64(i + 1), Event: ev}))
	}

	assert.Len(t, scene.Strokes(), 2)
	assert.Len(t, scene.Lines(), 3)
}

func TestApplyReportsDrops(t *testing.T) {
	e, _ := newEngine()
	wipe := wire.Message{From: "peer", Seq: 7, Event: state.ClearAll{}}
	assert.True(t, e.Apply(wipe))
	assert.False(t, e.Apply(wipe))
	assert.False(t, e.Apply(msg("peer", state.Segment{Point: pt(1, 1)})))
	assert.False(t, e.Apply(wire.Message{From: "peer"}))

	data, err := wire.Encode(wire.Message{From: "peer", Seq: 8, Event: state.ClearAll{}})
	require.NoError(t, err)
	m, ok := e.ApplyRaw(data)
	assert.True(t, ok)
	assert.Equal(t, state.ClearAll{}, m.Event)
	_, ok = e.ApplyRaw(data)
	assert.False(t, ok)
	_, ok = e.ApplyRaw([]byte("{"))
	assert.False(t, ok)
}

func TestDepartureForgetsSender(t *testing.T) {
	e, scene := newEngine()
	e.Apply(wire.Message{From: "a", Seq: 1, Event: state.Start{Point: pt(1, 1), Style: pen}})
	e.Apply(wire.Message{From: "a", Seq: 2, Event: state.End{}})
	require.Contains(t, e.cursors, "a")

	e.ApplyRaw(wire.Departure("a"))
	assert.NotContains(t, e.cursors, "a")
	assert.Len(t, scene.Strokes(), 1)

	e.Apply(wire.Message{From: "b", Seq: 1, Event: state.Start{Point: pt(5, 5), Style: pen}})
	e.ApplyRaw(wire.Departure("b"))
	assert.Empty(t, e.cursors)
	assert.Empty(t, e.Open())
	assert.True(t, scene.StrokesBy("b")[0].Sealed)
}
