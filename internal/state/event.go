package state

// Kind is the discriminator of a stroke event. The values double as the
// wire "type" tags.
type Kind string

const (
	KindStart   Kind = "start"
	KindSegment Kind = "draw"
	KindEnd     Kind = "end"
	KindClear   Kind = "clear"
)

// Event is one of Start, Segment, End or ClearAll.
type Event interface {
	Kind() Kind
	isEvent()
}

// Start begins a stroke. The style travels only here.
type Start struct {
	Point Point
	Style Style
}

// Segment extends the open stroke of the same sender to Point.
type Segment struct {
	Point Point
}

// End terminates the open stroke of the same sender.
type End struct{}

// ClearAll resets the whole canvas for every participant.
type ClearAll struct{}

func (Start) Kind() Kind    { return KindStart }
func (Segment) Kind() Kind  { return KindSegment }
func (End) Kind() Kind      { return KindEnd }
func (ClearAll) Kind() Kind { return KindClear }

func (Start) isEvent()    {}
func (Segment) isEvent()  {}
func (End) isEvent()      {}
func (ClearAll) isEvent() {}
