package render

import (
	"image"
	"image/color"

	"SharedBoard/internal/state"

	"github.com/fogleman/gg"
)

// Raster paints strokes into a pixel buffer. Subtractive strokes paint the
// background color, the closest a flat bitmap gets to clearing.
type Raster struct {
	dc         *gg.Context
	background color.NRGBA
}

func NewRaster(width, height int, background string) *Raster {
	r := &Raster{
		dc:         gg.NewContext(width, height),
		background: ColorOr(background, color.NRGBA{R: 255, G: 255, B: 255, A: 255}),
	}
	r.dc.SetLineCapRound()
	r.dc.SetLineJoinRound()
	r.Clear()
	return r
}

func (r *Raster) Begin(_ string, p state.Point, s state.Style) {
	r.paint(s)
	r.dc.DrawCircle(p.X, p.Y, s.Width/2)
	r.dc.Fill()
}

func (r *Raster) Line(_ string, from, to state.Point, s state.Style) {
	r.paint(s)
	r.dc.SetLineWidth(s.Width)
	r.dc.DrawLine(from.X, from.Y, to.X, to.Y)
	r.dc.Stroke()
}

func (r *Raster) Finish(string) {}

func (r *Raster) Clear() {
	r.dc.SetColor(r.background)
	r.dc.Clear()
}

// Image returns the current pixels.
func (r *Raster) Image() image.Image { return r.dc.Image() }

// SavePNG writes the current pixels to path.
func (r *Raster) SavePNG(path string) error { return r.dc.SavePNG(path) }

func (r *Raster) paint(s state.Style) {
	if s.Erases() {
		r.dc.SetColor(r.background)
		return
	}
	r.dc.SetColor(ColorOr(s.Color, color.NRGBA{A: 255}))
}
