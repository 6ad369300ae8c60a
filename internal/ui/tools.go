package ui

import (
	"image/color"

	"SharedBoard/internal/render"
	"SharedBoard/internal/state"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/layout"
	"fyne.io/fyne/v2/theme"
	"fyne.io/fyne/v2/widget"
)

// Controls receives the toolbar's style and clear actions.
type Controls interface {
	SetTool(t state.Tool)
	SetColor(c string)
	SetWidth(w float64)
	Clear()
}

// Palette is the set of swatches offered in the toolbar.
var Palette = []string{"#000000", "#ff0000", "#00ff00", "#0000ff", "#ffff00"}

const (
	minBrushWidth = 1.0
	maxBrushWidth = 50.0
)

type colorSwatch struct {
	widget.BaseWidget
	Color    string
	OnTapped func(string)
}

func newColorSwatch(c string, tapped func(string)) *colorSwatch {
	s := &colorSwatch{Color: c, OnTapped: tapped}
	s.ExtendBaseWidget(s)
	return s
}

func (s *colorSwatch) CreateRenderer() fyne.WidgetRenderer {
	rect := canvas.NewRectangle(render.ColorOr(s.Color, color.NRGBA{A: 255}))
	rect.SetMinSize(fyne.NewSize(32, 32))

	border := canvas.NewRectangle(color.Transparent)
	border.StrokeColor = color.Gray{Y: 150}
	border.StrokeWidth = 1

	return widget.NewSimpleRenderer(container.NewStack(rect, border))
}

func (s *colorSwatch) Tapped(_ *fyne.PointEvent) {
	if s.OnTapped != nil {
		s.OnTapped(s.Color)
	}
}

// NewToolbar builds the tool, color, size, clear and export controls.
// Picking a color switches back to the pen.
func NewToolbar(controls Controls, width float64, onExport func()) fyne.CanvasObject {
	tb := widget.NewToolbar(
		widget.NewToolbarAction(theme.DocumentCreateIcon(), func() {
			controls.SetTool(state.ToolPen)
		}), // Pen
		widget.NewToolbarAction(theme.ContentClearIcon(), func() {
			controls.SetTool(state.ToolEraser)
		}), // Eraser
		widget.NewToolbarSeparator(),
		widget.NewToolbarAction(theme.DeleteIcon(), controls.Clear),
		widget.NewToolbarAction(theme.DocumentSaveIcon(), func() {
			if onExport != nil {
				onExport()
			}
		}),
	)

	onColorTapped := func(c string) {
		controls.SetTool(state.ToolPen)
		controls.SetColor(c)
	}
	colorBox := container.NewHBox()
	for _, c := range Palette {
		colorBox.Add(newColorSwatch(c, onColorTapped))
	}

	strokeSlider := widget.NewSlider(minBrushWidth, maxBrushWidth)
	strokeSlider.SetValue(clampWidth(width))
	strokeSlider.OnChanged = controls.SetWidth
	sliderContainer := container.New(layout.NewGridWrapLayout(fyne.NewSize(150, 35)), strokeSlider)

	return container.NewHBox(
		widget.NewLabel("Tool:"),
		tb,
		widget.NewSeparator(),
		widget.NewLabel("Color:"),
		colorBox,
		widget.NewSeparator(),
		widget.NewLabel("Size:"),
		sliderContainer,
		layout.NewSpacer(),
	)
}

func clampWidth(w float64) float64 {
	switch {
	case w < minBrushWidth:
		return minBrushWidth
	case w > maxBrushWidth:
		return maxBrushWidth
	}
	return w
}
