package export

import (
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"SharedBoard/internal/render"
	"SharedBoard/internal/state"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleScene() *render.Scene {
	s := render.NewScene()
	red := state.Style{Color: "#ff0000", Width: 6}
	s.Begin("a", state.Point{X: 10, Y: 10}, red)
	s.Line("a", state.Point{X: 10, Y: 10}, state.Point{X: 90, Y: 10}, red)
	s.Finish("a")
	s.Begin("b", state.Point{X: 50, Y: 50}, state.Style{Color: "#0000ff", Width: 8})
	s.Finish("b")
	return s
}

func TestPDF(t *testing.T) {
	path := filepath.Join(t.TempDir(), "board.pdf")
	require.NoError(t, PDF(path, sampleScene(), Options{Width: 100, Height: 80}))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.True(t, len(data) > 4 && string(data[:5]) == "%PDF-")
}

func TestPDFPortraitAndEmpty(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tall.pdf")
	require.NoError(t, PDF(path, render.NewScene(), Options{Width: 300, Height: 900, Background: "#eeeeee"}))
	_, err := os.Stat(path)
	assert.NoError(t, err)
}

func TestPDFBadPath(t *testing.T) {
	err := PDF(filepath.Join(t.TempDir(), "missing", "x.pdf"), sampleScene(), Options{})
	assert.Error(t, err)
}

func TestPNG(t *testing.T) {
	path := filepath.Join(t.TempDir(), "board.png")
	require.NoError(t, PNG(path, sampleScene(), Options{Width: 100, Height: 80}))

	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()
	img, err := png.Decode(f)
	require.NoError(t, err)
	assert.Equal(t, 100, img.Bounds().Dx())
	assert.Equal(t, 80, img.Bounds().Dy())

	r, g, b, _ := img.At(50, 10).RGBA()
	assert.Equal(t, [3]uint32{0xffff, 0, 0}, [3]uint32{r, g, b})
	r, g, b, _ = img.At(50, 50).RGBA()
	assert.Equal(t, [3]uint32{0, 0, 0xffff}, [3]uint32{r, g, b})
	r, g, b, _ = img.At(5, 70).RGBA()
	assert.Equal(t, [3]uint32{0xffff, 0xffff, 0xffff}, [3]uint32{r, g, b})
}
