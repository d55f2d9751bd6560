package desktop

import (
	"testing"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/driver/desktop"
	"fyne.io/fyne/v2/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/linguameet/whiteboard/internal/document"
	"github.com/linguameet/whiteboard/internal/element"
	"github.com/linguameet/whiteboard/internal/engine"
	"github.com/linguameet/whiteboard/internal/geom"
	"github.com/linguameet/whiteboard/internal/render"
)

func newTestBoard(t *testing.T) *Board {
	t.Helper()
	test.NewTempApp(t)
	n := 0
	b := NewBoard(document.New("P1", ""), engine.Options{
		NewElementID: func() string {
			n++
			return "el" + string(rune('0'+n))
		},
	}, &render.Raster{Fonts: render.MustFonts()})
	b.Resize(fyne.NewSize(400, 300))
	return b
}

func mouse(x, y float32) *desktop.MouseEvent {
	return &desktop.MouseEvent{
		PointEvent: fyne.PointEvent{Position: fyne.NewPos(x, y)},
		Button:     desktop.MouseButtonPrimary,
	}
}

func elements(b *Board) element.List {
	var out element.List
	b.View(func(e *engine.Engine) { out = e.Document().ActivePage().Elements })
	return out
}

func TestBoardDrawsRectangle(t *testing.T) {
	b := newTestBoard(t)
	require.NoError(t, b.Edit(func(e *engine.Engine) error { return e.SetTool(document.ToolRectangle) }))

	changes := 0
	b.OnChange = func() { changes++ }

	b.MouseDown(mouse(10, 10))
	b.Dragged(&fyne.DragEvent{PointEvent: fyne.PointEvent{Position: fyne.NewPos(60, 40)}})
	b.MouseUp(mouse(60, 40))

	els := elements(b)
	require.Len(t, els, 1)
	rect, ok := els[0].(element.Rectangle)
	require.True(t, ok)
	assert.Equal(t, 50.0, rect.Width)
	assert.Equal(t, 30.0, rect.Height)
	assert.Equal(t, 3, changes)
}

func TestBoardPansWithSecondaryAndMiddleButtons(t *testing.T) {
	for _, button := range []desktop.MouseButton{desktop.MouseButtonSecondary, desktop.MouseButtonTertiary} {
		b := newTestBoard(t)
		ev := mouse(10, 10)
		ev.Button = button
		b.MouseDown(ev)
		b.MouseMoved(mouse(40, 30))
		b.MouseMoved(mouse(50, 35))
		up := mouse(50, 35)
		up.Button = button
		b.MouseUp(up)
		b.MouseMoved(mouse(90, 90))

		assert.Empty(t, elements(b))
		var offset geom.Point
		b.View(func(e *engine.Engine) { offset = e.Viewport().Offset })
		assert.Equal(t, geom.Pt(40, 25), offset)
	}
}

func TestBoardMouseOutAbortsDraft(t *testing.T) {
	b := newTestBoard(t)
	b.MouseDown(mouse(10, 10))
	b.MouseMoved(mouse(20, 20))
	b.MouseOut()
	b.MouseUp(mouse(20, 20))

	assert.Empty(t, elements(b))
	var draft element.Element
	b.View(func(e *engine.Engine) { draft = e.Draft() })
	assert.Nil(t, draft)
}

func TestBoardScrollZooms(t *testing.T) {
	b := newTestBoard(t)
	b.Scrolled(&fyne.ScrollEvent{
		PointEvent: fyne.PointEvent{Position: fyne.NewPos(100, 100)},
		Scrolled:   fyne.NewDelta(0, 1),
	})
	var scale float64
	b.View(func(e *engine.Engine) { scale = e.Viewport().Scale })
	assert.InDelta(t, 1.2, scale, 1e-9)
}

func TestScaleFrame(t *testing.T) {
	f := engine.Frame{Commands: []engine.DrawCommand{
		{Op: engine.OpPath, Transform: []float64{1.5, 0, 0, 1.5, 10, 0}},
		{Op: engine.OpPath},
	}}
	got := scaleFrame(f, 2)
	assert.Equal(t, []float64{3, 0, 0, 3, 20, 0}, got.Commands[0].Transform)
	assert.Equal(t, []float64{2, 0, 0, 2, 0, 0}, got.Commands[1].Transform)
	// input untouched
	assert.Equal(t, []float64{1.5, 0, 0, 1.5, 10, 0}, f.Commands[0].Transform)

	assert.Equal(t, f, scaleFrame(f, 1))
}

func TestToolbarSync(t *testing.T) {
	b := newTestBoard(t)
	tb, _ := NewToolbar(b, Actions{})
	b.OnChange = tb.Sync

	require.NoError(t, b.Edit(func(e *engine.Engine) error {
		_, err := e.AddPage("")
		return err
	}))
	assert.Equal(t, []string{"1. Page 1", "2. Page 2"}, tb.pages.Options)
	assert.Equal(t, 1, tb.pages.SelectedIndex())
	assert.Equal(t, "pen", tb.tools.Selected)

	tb.tools.SetSelected("circle")
	var tool document.Tool
	b.View(func(e *engine.Engine) { tool = e.Document().Options.Tool })
	assert.Equal(t, document.ToolCircle, tool)
}
