// Package ui is the desktop front end: a board that mirrors the Scene, a
// toolbar and a status bar.
package ui

import (
	"SharedBoard/internal/export"
	"SharedBoard/internal/render"
	"SharedBoard/internal/state"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/app"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/widget"
)

// Session is what the window drives: pointer input and toolbar actions.
type Session interface {
	Input
	Controls
}

// Options configure the window.
type Options struct {
	Title      string
	ShareLink  string
	BrushWidth float64
	Export     export.Options
}

// App is the main window.
type App struct {
	fyneApp fyne.App
	window  fyne.Window
	board   *BoardWidget
	status  *widget.Label
	link    *widget.Entry
}

// NewApp builds the window around scene. It must run on the main goroutine.
func NewApp(scene *render.Scene, sess Session, opts Options) *App {
	a := &App{fyneApp: app.New()}
	a.window = a.fyneApp.NewWindow(opts.Title)
	a.window.Resize(fyne.NewSize(float32(opts.Export.Width)+40, float32(opts.Export.Height)+120))

	a.board = NewBoardWidget(scene, sess, boundsOf(opts.Export), opts.Export.Background)
	toolbar := NewToolbar(sess, opts.BrushWidth, func() {
		showExportDialog(a.window, scene, opts.Export, a.SetStatus)
	})

	a.status = widget.NewLabel("Offline")
	a.link = widget.NewEntry()
	a.link.SetText(opts.ShareLink)
	a.link.Disable()
	if opts.ShareLink == "" {
		a.link.Hide()
	}
	statusBar := container.NewBorder(nil, nil, a.status, nil, a.link)

	content := container.NewBorder(toolbar, statusBar, nil, nil, container.NewScroll(a.board))
	a.window.SetContent(content)
	return a
}

func boundsOf(o export.Options) state.Bounds {
	return state.Bounds{Width: o.Width, Height: o.Height}
}

// SetStatus may be called from any goroutine.
func (a *App) SetStatus(text string) {
	fyne.Do(func() { a.status.SetText(text) })
}

// Run shows the window and blocks until it is closed.
func (a *App) Run() {
	a.window.ShowAndRun()
}

// Quit closes the window from any goroutine.
func (a *App) Quit() {
	fyne.Do(a.fyneApp.Quit)
}
