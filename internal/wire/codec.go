// Package wire converts stroke events to and from the JSON objects that
// travel through the relay, one object per message.
package wire

import (
	"encoding/json"
	"fmt"
	"math"

	"SharedBoard/internal/state"
)

const toolEraser = "eraser"

// Message is one event plus the envelope fields around it. From is set by
// the relay; Seq by the sending participant. Zero values mean absent.
type Message struct {
	From  string
	Seq   uint64
	Event state.Event
}

// frame is the flat JSON shape shared by every event type.
type frame struct {
	Type  string   `json:"type"`
	X     *float64 `json:"x,omitempty"`
	Y     *float64 `json:"y,omitempty"`
	Color *string  `json:"color,omitempty"`
	Size  *float64 `json:"size,omitempty"`
	Tool  string   `json:"tool,omitempty"`
	From  string   `json:"from,omitempty"`
	Seq   uint64   `json:"seq,omitempty"`
}

// Encode serializes a message. It fails only for a nil or foreign event.
func Encode(m Message) ([]byte, error) {
	f := frame{From: m.From, Seq: m.Seq}
	switch ev := m.Event.(type) {
	case state.Start:
		f.Type = string(state.KindStart)
		f.X, f.Y = ptr(ev.Point.X), ptr(ev.Point.Y)
		f.Color, f.Size = ptr(ev.Style.Color), ptr(ev.Style.Width)
		if ev.Style.Erases() {
			f.Tool = toolEraser
		}
	case state.Segment:
		f.Type = string(state.KindSegment)
		f.X, f.Y = ptr(ev.Point.X), ptr(ev.Point.Y)
	case state.End:
		f.Type = string(state.KindEnd)
	case state.ClearAll:
		f.Type = string(state.KindClear)
	default:
		return nil, fmt.Errorf("wire: cannot encode event %T", m.Event)
	}
	return json.Marshal(f)
}

// EncodeEvent is Encode without envelope fields.
func EncodeEvent(ev state.Event) ([]byte, error) {
	return Encode(Message{Event: ev})
}

// Decode parses one message. Any failure is a *DecodeError.
func Decode(data []byte) (Message, error) {
	var f frame
	if err := json.Unmarshal(data, &f); err != nil {
		return Message{}, decodeErr("malformed json", err)
	}

	m := Message{From: f.From, Seq: f.Seq}
	switch state.Kind(f.Type) {
	case state.KindStart:
		p, err := f.point()
		if err != nil {
			return Message{}, err
		}
		st, err := f.style()
		if err != nil {
			return Message{}, err
		}
		m.Event = state.Start{Point: p, Style: st}
	case state.KindSegment:
		p, err := f.point()
		if err != nil {
			return Message{}, err
		}
		m.Event = state.Segment{Point: p}
	case state.KindEnd:
		m.Event = state.End{}
	case state.KindClear:
		m.Event = state.ClearAll{}
	case "":
		return Message{}, decodeErr("missing type", nil)
	default:
		return Message{}, decodeErr(fmt.Sprintf("unknown type %q", f.Type), nil)
	}
	return m, nil
}

func (f frame) point() (state.Point, error) {
	if f.X == nil || f.Y == nil {
		return state.Point{}, decodeErr(f.Type+": missing coordinates", nil)
	}
	x, y := *f.X, *f.Y
	if !finite(x) || !finite(y) || x < 0 || y < 0 {
		return state.Point{}, decodeErr(fmt.Sprintf("%s: invalid point (%v, %v)", f.Type, x, y), nil)
	}
	return state.Point{X: x, Y: y}, nil
}

func (f frame) style() (state.Style, error) {
	if f.Color == nil || *f.Color == "" {
		return state.Style{}, decodeErr("start: missing color", nil)
	}
	if f.Size == nil || !finite(*f.Size) || *f.Size <= 0 {
		return state.Style{}, decodeErr("start: size must be positive", nil)
	}
	st := state.Style{Color: *f.Color, Width: *f.Size}
	switch f.Tool {
	case "", "pen":
	case toolEraser:
		st.Composite = state.CompositeSubtractive
	default:
		return state.Style{}, decodeErr(fmt.Sprintf("start: unknown tool %q", f.Tool), nil)
	}
	return st, nil
}

func ptr[T any](v T) *T { return &v }

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
