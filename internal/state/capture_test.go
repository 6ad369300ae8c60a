package state

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type call struct {
	op       string
	owner    string
	from, to Point
	style    Style
}

type recordingRenderer struct{ calls []call }

func (r *recordingRenderer) Begin(owner string, p Point, s Style) {
	r.calls = append(r.calls, call{op: "begin", owner: owner, to: p, style: s})
}

func (r *recordingRenderer) Line(owner string, from, to Point, s Style) {
	r.calls = append(r.calls, call{op: "line", owner: owner, from: from, to: to, style: s})
}

func (r *recordingRenderer) Finish(owner string) {
	r.calls = append(r.calls, call{op: "finish", owner: owner})
}

func newTestCapture(styles *StyleContext) (*Capture, *recordingRenderer, *[]Event) {
	r := &recordingRenderer{}
	var events []Event
	c := NewCapture("me", Bounds{Width: 800, Height: 600}, styles, r, func(ev Event) {
		events = append(events, ev)
	})
	return c, r, &events
}

func TestCaptureGesture(t *testing.T) {
	styles := NewStyleContext("#ff0000", 4)
	c, r, events := newTestCapture(styles)

	c.PointerDown(Point{10, 10})
	c.PointerMove(Point{20, 15})
	c.PointerMove(Point{30, 20})
	c.PointerUp()

	want := Style{Color: "#ff0000", Width: 4}
	assert.Equal(t, []Event{
		Start{Point: Point{10, 10}, Style: want},
		Segment{Point: Point{20, 15}},
		Segment{Point: Point{30, 20}},
		End{},
	}, *events)

	require.Len(t, r.calls, 4)
	assert.Equal(t, "begin", r.calls[0].op)
	assert.Equal(t, call{op: "line", owner: "me", from: Point{10, 10}, to: Point{20, 15}, style: want}, r.calls[1])
	assert.Equal(t, call{op: "line", owner: "me", from: Point{20, 15}, to: Point{30, 20}, style: want}, r.calls[2])
	assert.Equal(t, "finish", r.calls[3].op)
	assert.False(t, c.Drawing())
}

func TestCaptureIgnoresInputWhileIdle(t *testing.T) {
	c, r, events := newTestCapture(nil)

	c.PointerMove(Point{1, 1})
	c.PointerUp()
	c.PointerLeave()
	c.Cancel()
	c.Resume()

	assert.Empty(t, *events)
	assert.Empty(t, r.calls)
}

func TestCaptureStyleFrozenAtStart(t *testing.T) {
	styles := NewStyleContext("#000000", 2)
	c, r, events := newTestCapture(styles)

	c.PointerDown(Point{1, 1})
	styles.SetColor("#00ff00")
	styles.SetWidth(9)
	styles.SetTool(ToolEraser)
	c.PointerMove(Point{2, 2})
	c.PointerUp()

	frozen := Style{Color: "#000000", Width: 2}
	assert.Equal(t, Start{Point: Point{1, 1}, Style: frozen}, (*events)[0])
	assert.Equal(t, frozen, r.calls[1].style)

	c.PointerDown(Point{5, 5})
	assert.Equal(t, Style{Color: EraserColor, Width: 18, Composite: CompositeSubtractive}, (*events)[3].(Start).Style)
}

func TestCaptureLeaveEndsStroke(t *testing.T) {
	c, _, events := newTestCapture(nil)

	c.PointerDown(Point{100, 100})
	c.PointerLeave()
	assert.Equal(t, []Event{Start{Point: Point{100, 100}, Style: NewStyleContext("", 0).Freeze()}, End{}}, *events)
}

func TestCaptureMoveOffCanvasEndsStroke(t *testing.T) {
	c, _, events := newTestCapture(nil)

	c.PointerDown(Point{790, 10})
	c.PointerMove(Point{801, 10})
	c.PointerMove(Point{795, 10})

	require.Len(t, *events, 2)
	assert.Equal(t, End{}, (*events)[1])
	assert.False(t, c.Drawing())
}

func TestCaptureDownOutsideCanvasIgnored(t *testing.T) {
	c, _, events := newTestCapture(nil)
	c.PointerDown(Point{-1, 5})
	assert.Empty(t, *events)
	assert.False(t, c.Drawing())
}

func TestCaptureDoubleDownClosesPrevious(t *testing.T) {
	c, _, events := newTestCapture(nil)

	c.PointerDown(Point{1, 1})
	c.PointerDown(Point{2, 2})

	kinds := make([]Kind, 0, len(*events))
	for _, ev := range *events {
		kinds = append(kinds, ev.Kind())
	}
	assert.Equal(t, []Kind{KindStart, KindEnd, KindStart}, kinds)
}

func TestCaptureResumeReannouncesStroke(t *testing.T) {
	styles := NewStyleContext("#123456", 3)
	c, _, events := newTestCapture(styles)

	c.PointerDown(Point{1, 1})
	c.PointerMove(Point{4, 5})
	styles.SetColor("#abcdef")
	c.Resume()

	assert.Equal(t, Start{Point: Point{4, 5}, Style: Style{Color: "#123456", Width: 3}}, (*events)[2])
	assert.True(t, c.Drawing())
}

func TestCaptureCancel(t *testing.T) {
	c, r, events := newTestCapture(nil)
	c.PointerDown(Point{1, 1})
	c.Cancel()
	assert.Equal(t, End{}, (*events)[1])
	assert.Equal(t, "finish", r.calls[1].op)
}
