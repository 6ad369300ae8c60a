package ui

import (
	"fmt"
	"path/filepath"
	"strings"

	"SharedBoard/internal/export"
	pkglog "SharedBoard/internal/log"
	"SharedBoard/internal/render"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/storage"
)

// exportTo writes the scene to path. A .png suffix selects PNG, anything
// else PDF.
func exportTo(path string, scene *render.Scene, opts export.Options) error {
	if strings.EqualFold(filepath.Ext(path), ".png") {
		return export.PNG(path, scene, opts)
	}
	return export.PDF(path, scene, opts)
}

// showExportDialog asks for a destination and exports the scene there.
// report receives a one-line outcome for the status bar.
func showExportDialog(w fyne.Window, scene *render.Scene, opts export.Options, report func(string)) {
	d := dialog.NewFileSave(func(writer fyne.URIWriteCloser, err error) {
		if err != nil {
			dialog.ShowError(err, w)
			return
		}
		if writer == nil {
			return
		}
		path := writer.URI().Path()
		// The exporters create the file themselves.
		if err := writer.Close(); err != nil {
			l := pkglog.L()
			l.Warn().Err(err).Msg("close export target")
		}

		if err := exportTo(path, scene, opts); err != nil {
			l := pkglog.L()
			l.Error().Err(err).Str("path", path).Msg("export failed")
			dialog.ShowError(err, w)
			return
		}
		l := pkglog.L()
		l.Info().Str("path", path).Msg("canvas exported")
		report(fmt.Sprintf("Exported to %s", filepath.Base(path)))
	}, w)
	d.SetFileName("board.pdf")
	d.SetFilter(storage.NewExtensionFileFilter([]string{".pdf", ".png"}))
	d.Show()
}
