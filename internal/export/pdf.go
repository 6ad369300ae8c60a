// Package export writes a snapshot of the canvas to PDF or PNG.
package export

import (
	"fmt"
	"image/color"
	"math"

	"SharedBoard/internal/render"
	"SharedBoard/internal/state"

	"github.com/jung-kurt/gofpdf"
)

const (
	pageWidthMM  = 297.0
	pageHeightMM = 210.0
	marginMM     = 10.0
)

var white = color.NRGBA{R: 255, G: 255, B: 255, A: 255}

// Options describe the canvas being exported.
type Options struct {
	Width      float64
	Height     float64
	Background string
}

func (o Options) size() (float64, float64) {
	w, h := o.Width, o.Height
	if w <= 0 {
		w = 800
	}
	if h <= 0 {
		h = 600
	}
	return w, h
}

// PDF draws every stroke of the scene onto one A4 page, scaled to fit.
func PDF(path string, scene *render.Scene, opts Options) error {
	w, h := opts.size()
	orientation := "L"
	pw, ph := pageWidthMM, pageHeightMM
	if h > w {
		orientation = "P"
		pw, ph = ph, pw
	}
	scale := math.Min((pw-2*marginMM)/w, (ph-2*marginMM)/h)
	ox := (pw - w*scale) / 2
	oy := (ph - h*scale) / 2

	p := gofpdf.New(orientation, "mm", "A4", "")
	p.SetTitle("SharedBoard", true)
	p.AddPage()
	p.SetLineCapStyle("round")
	p.SetLineJoinStyle("round")

	bg := render.ColorOr(opts.Background, white)
	p.SetFillColor(int(bg.R), int(bg.G), int(bg.B))
	p.SetDrawColor(200, 200, 200)
	p.SetLineWidth(0.2)
	p.Rect(ox, oy, w*scale, h*scale, "FD")

	at := func(pt state.Point) (float64, float64) {
		return ox + pt.X*scale, oy + pt.Y*scale
	}
	for _, st := range scene.Strokes() {
		if len(st.Points) == 0 {
			continue
		}
		c := render.ColorOr(st.Style.Color, color.NRGBA{A: 255})
		if st.Style.Erases() {
			c = bg
		}
		p.SetDrawColor(int(c.R), int(c.G), int(c.B))
		p.SetFillColor(int(c.R), int(c.G), int(c.B))
		p.SetLineWidth(st.Style.Width * scale)

		x, y := at(st.Points[0])
		p.Circle(x, y, st.Style.Width*scale/2, "F")
		for _, seg := range st.Segments() {
			x1, y1 := at(seg[0])
			x2, y2 := at(seg[1])
			p.Line(x1, y1, x2, y2)
		}
	}

	if err := p.OutputFileAndClose(path); err != nil {
		return fmt.Errorf("write pdf %s: %w", path, err)
	}
	return nil
}

// PNG replays the scene into a raster of the canvas size.
func PNG(path string, scene *render.Scene, opts Options) error {
	w, h := opts.size()
	r := render.NewRaster(int(math.Ceil(w)), int(math.Ceil(h)), opts.Background)
	scene.Replay(r)
	if err := r.SavePNG(path); err != nil {
		return fmt.Errorf("write png %s: %w", path, err)
	}
	return nil
}
