package ui

import (
	"image/color"
	"sync"

	"SharedBoard/internal/render"
	"SharedBoard/internal/state"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/driver/desktop"
	"fyne.io/fyne/v2/widget"
)

// Input receives the pointer gestures made on the board.
type Input interface {
	PointerDown(p state.Point)
	PointerMove(p state.Point)
	PointerUp()
	PointerLeave()
}

// BoardWidget shows a Scene and turns mouse gestures into Input calls.
// It never draws by itself: what appears is what reached the Scene.
type BoardWidget struct {
	widget.BaseWidget

	scene      *render.Scene
	input      Input
	bounds     state.Bounds
	background color.NRGBA

	mu      sync.Mutex
	pressed bool
}

var _ fyne.Widget = (*BoardWidget)(nil)
var _ fyne.Draggable = (*BoardWidget)(nil)
var _ desktop.Mouseable = (*BoardWidget)(nil)
var _ desktop.Hoverable = (*BoardWidget)(nil)

func NewBoardWidget(scene *render.Scene, input Input, bounds state.Bounds, background string) *BoardWidget {
	b := &BoardWidget{
		scene:      scene,
		input:      input,
		bounds:     bounds,
		background: render.ColorOr(background, color.NRGBA{R: 255, G: 255, B: 255, A: 255}),
	}
	b.ExtendBaseWidget(b)
	scene.OnChange = func() { fyne.Do(b.Refresh) }
	return b
}

func toPoint(p fyne.Position) state.Point {
	return state.Point{X: float64(p.X), Y: float64(p.Y)}
}

func (b *BoardWidget) MouseDown(e *desktop.MouseEvent) {
	if e.Button != desktop.MouseButtonPrimary {
		return
	}
	b.setPressed(true)
	b.input.PointerDown(toPoint(e.Position))
}

func (b *BoardWidget) MouseUp(e *desktop.MouseEvent) {
	if e.Button != desktop.MouseButtonPrimary {
		return
	}
	if b.setPressed(false) {
		b.input.PointerUp()
	}
}

func (b *BoardWidget) Dragged(e *fyne.DragEvent) {
	if b.isPressed() {
		b.input.PointerMove(toPoint(e.Position))
	}
}

func (b *BoardWidget) DragEnd() {
	if b.setPressed(false) {
		b.input.PointerUp()
	}
}

func (b *BoardWidget) MouseOut() {
	if b.setPressed(false) {
		b.input.PointerLeave()
	}
}

func (b *BoardWidget) MouseIn(*desktop.MouseEvent)    {}
func (b *BoardWidget) MouseMoved(*desktop.MouseEvent) {}

// setPressed stores v and reports the previous value.
func (b *BoardWidget) setPressed(v bool) bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	prev := b.pressed
	b.pressed = v
	return prev
}

func (b *BoardWidget) isPressed() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.pressed
}

func (b *BoardWidget) CreateRenderer() fyne.WidgetRenderer {
	r := &boardWidgetRenderer{board: b, background: canvas.NewRectangle(b.background)}
	r.rebuild()
	return r
}

type boardWidgetRenderer struct {
	board      *BoardWidget
	background *canvas.Rectangle
	objects    []fyne.CanvasObject
}

func (r *boardWidgetRenderer) rebuild() {
	b := r.board
	objects := []fyne.CanvasObject{r.background}
	for _, st := range b.scene.Strokes() {
		if len(st.Points) == 0 {
			continue
		}
		var c color.Color = render.ColorOr(st.Style.Color, color.NRGBA{A: 255})
		if st.Style.Erases() {
			c = b.background
		}
		w := float32(st.Style.Width)

		dot := canvas.NewCircle(c)
		p := st.Points[0]
		dot.Move(fyne.NewPos(float32(p.X)-w/2, float32(p.Y)-w/2))
		dot.Resize(fyne.NewSize(w, w))
		objects = append(objects, dot)

		for _, seg := range st.Segments() {
			line := canvas.NewLine(c)
			line.StrokeWidth = w
			line.Position1 = fyne.NewPos(float32(seg[0].X), float32(seg[0].Y))
			line.Position2 = fyne.NewPos(float32(seg[1].X), float32(seg[1].Y))
			objects = append(objects, line)
		}
	}
	r.objects = objects
}

func (r *boardWidgetRenderer) Objects() []fyne.CanvasObject { return r.objects }

func (r *boardWidgetRenderer) Refresh() {
	r.rebuild()
	canvas.Refresh(r.board)
}

// Layout sizes the background to the canvas so its edges stay visible.
func (r *boardWidgetRenderer) Layout(size fyne.Size) {
	if r.board.bounds.Limited() {
		size = r.MinSize()
	}
	r.background.Resize(size)
}

func (r *boardWidgetRenderer) MinSize() fyne.Size {
	if !r.board.bounds.Limited() {
		return fyne.NewSize(300, 300)
	}
	return fyne.NewSize(float32(r.board.bounds.Width), float32(r.board.bounds.Height))
}

func (r *boardWidgetRenderer) Destroy() {}
