// Package desktop is the fyne editing surface. The Board widget forwards
// pointer input to the engine and paints the frames it returns.
package desktop

import (
	"context"
	"image"
	"log/slog"
	"sync"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/driver/desktop"
	"fyne.io/fyne/v2/widget"

	"github.com/linguameet/whiteboard/internal/document"
	"github.com/linguameet/whiteboard/internal/engine"
	"github.com/linguameet/whiteboard/internal/geom"
	"github.com/linguameet/whiteboard/internal/render"
)

// answerSlot hands the text typed into the entry dialog to the tool
// session, which asks for it synchronously on pointer-down.
type answerSlot struct {
	text string
}

func (s *answerSlot) PromptText(geom.Point) string {
	text := s.text
	s.text = ""
	return text
}

type Board struct {
	widget.BaseWidget

	// mu guards engine; autosave reads it from another goroutine.
	mu     sync.Mutex
	engine *engine.Engine
	answer *answerSlot

	raster *render.Raster
	logger *slog.Logger
	window fyne.Window

	pressed bool

	// panning with the secondary or middle button
	panning bool
	panFrom fyne.Position

	// OnChange runs after anything that may change the document or view.
	OnChange func()
}

var _ fyne.Widget = (*Board)(nil)
var _ fyne.Draggable = (*Board)(nil)
var _ fyne.Scrollable = (*Board)(nil)
var _ desktop.Mouseable = (*Board)(nil)
var _ desktop.Hoverable = (*Board)(nil)

// NewBoard creates the widget around a fresh engine for doc. opts.Prompt is
// replaced by the widget's entry dialog.
func NewBoard(doc document.Document, opts engine.Options, raster *render.Raster) *Board {
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	answer := &answerSlot{}
	opts.Prompt = answer
	b := &Board{
		engine: engine.New(doc, opts),
		answer: answer,
		raster: raster,
		logger: opts.Logger,
	}
	b.ExtendBaseWidget(b)
	return b
}

// SetWindow sets the parent for dialogs.
func (b *Board) SetWindow(w fyne.Window) { b.window = w }

// Edit runs fn with exclusive access to the engine and repaints.
func (b *Board) Edit(fn func(e *engine.Engine) error) error {
	b.mu.Lock()
	err := fn(b.engine)
	b.mu.Unlock()
	b.changed()
	return err
}

// View runs fn with exclusive access to the engine without repainting.
func (b *Board) View(fn func(e *engine.Engine)) {
	b.mu.Lock()
	defer b.mu.Unlock()
	fn(b.engine)
}

func (b *Board) changed() {
	b.Refresh()
	if b.OnChange != nil {
		b.OnChange()
	}
}

func (b *Board) report(err error) {
	if err == nil {
		return
	}
	b.logger.Debug("edit rejected", "error", err)
	if b.window != nil {
		dialog.ShowError(err, b.window)
	}
}

func toPoint(p fyne.Position) geom.Point {
	return geom.Pt(float64(p.X), float64(p.Y))
}

func panButton(b desktop.MouseButton) bool {
	return b == desktop.MouseButtonSecondary || b == desktop.MouseButtonTertiary
}

func (b *Board) MouseDown(e *desktop.MouseEvent) {
	if panButton(e.Button) {
		b.panning = true
		b.panFrom = e.Position
		return
	}
	if e.Button != desktop.MouseButtonPrimary {
		return
	}
	p := toPoint(e.Position)

	var tool document.Tool
	b.View(func(e *engine.Engine) { tool = e.Document().Options.Tool })
	if tool == document.ToolText {
		b.askText(p)
		return
	}

	b.pressed = true
	err := b.Edit(func(e *engine.Engine) error { return e.PointerDown(p) })
	if err != nil {
		b.logger.Debug("pointer down rejected", "error", err)
	}
}

// askText shows the entry dialog and places the text where the user
// clicked once confirmed.
func (b *Board) askText(p geom.Point) {
	if b.window == nil {
		return
	}
	entry := widget.NewEntry()
	entry.SetPlaceHolder("Text")
	items := []*widget.FormItem{widget.NewFormItem("Text", entry)}
	dialog.ShowForm("Add text", "Add", "Cancel", items, func(ok bool) {
		if !ok || entry.Text == "" {
			return
		}
		b.report(b.Edit(func(e *engine.Engine) error {
			b.answer.text = entry.Text
			defer func() { b.answer.text = "" }()
			return e.PointerDown(p)
		}))
	}, b.window)
}

func (b *Board) MouseUp(e *desktop.MouseEvent) {
	if panButton(e.Button) {
		b.panning = false
		return
	}
	if e.Button != desktop.MouseButtonPrimary || !b.pressed {
		return
	}
	b.pressed = false
	b.report(b.Edit(func(e *engine.Engine) error { return e.PointerUp() }))
}

func (b *Board) Dragged(e *fyne.DragEvent) {
	if !b.pressed {
		return
	}
	p := toPoint(e.Position)
	b.Edit(func(e *engine.Engine) error {
		e.PointerMove(p)
		return nil
	})
}

func (b *Board) DragEnd() {}

func (b *Board) MouseIn(*desktop.MouseEvent) {}

// MouseMoved pans while the secondary or middle button is held, and drives
// the laser pointer and shape drafts while the primary button is held
// without a drag gesture.
func (b *Board) MouseMoved(e *desktop.MouseEvent) {
	if b.panning {
		d := e.Position.Subtract(b.panFrom)
		b.panFrom = e.Position
		b.Edit(func(eng *engine.Engine) error {
			eng.Pan(float64(d.X), float64(d.Y))
			return nil
		})
		return
	}
	if !b.pressed {
		return
	}
	p := toPoint(e.Position)
	b.Edit(func(e *engine.Engine) error {
		e.PointerMove(p)
		return nil
	})
}

func (b *Board) MouseOut() {
	b.pressed = false
	b.panning = false
	b.Edit(func(e *engine.Engine) error {
		e.PointerLeave()
		return nil
	})
}

// Scrolled zooms around the cursor.
func (b *Board) Scrolled(e *fyne.ScrollEvent) {
	p := toPoint(e.Position)
	b.Edit(func(eng *engine.Engine) error {
		if e.Scrolled.DY > 0 {
			eng.ZoomIn(p)
		} else if e.Scrolled.DY < 0 {
			eng.ZoomOut(p)
		}
		return nil
	})
}

// paint renders the current frame at the raster's pixel size.
func (b *Board) paint(w, h int) image.Image {
	size := b.Size()
	var frame engine.Frame
	b.View(func(e *engine.Engine) { frame = e.RenderVisible(float64(size.Width), float64(size.Height)) })

	if size.Width > 0 {
		frame = scaleFrame(frame, float64(w)/float64(size.Width))
	}
	img, err := b.raster.RenderFrame(context.Background(), frame, w, h)
	if err != nil {
		b.logger.Warn("paint board", "error", err)
		return image.NewRGBA(image.Rect(0, 0, max(w, 1), max(h, 1)))
	}
	return img
}

// scaleFrame maps widget units to device pixels.
func scaleFrame(f engine.Frame, s float64) engine.Frame {
	if s == 1 {
		return f
	}
	px := geom.Scale(s, s)
	cmds := make([]engine.DrawCommand, len(f.Commands))
	for i, cmd := range f.Commands {
		m := geom.Identity()
		if len(cmd.Transform) == 6 {
			copy(m[:], cmd.Transform)
		}
		cmd.Transform = px.Multiply(m).ToSlice()
		cmds[i] = cmd
	}
	f.Commands = cmds
	return f
}

func (b *Board) CreateRenderer() fyne.WidgetRenderer {
	raster := canvas.NewRaster(b.paint)
	raster.SetMinSize(fyne.NewSize(300, 300))
	return widget.NewSimpleRenderer(raster)
}
