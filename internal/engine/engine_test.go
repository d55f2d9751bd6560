package engine

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/linguameet/whiteboard/internal/document"
	"github.com/linguameet/whiteboard/internal/element"
	"github.com/linguameet/whiteboard/internal/geom"
	"github.com/linguameet/whiteboard/internal/tool"
	"github.com/linguameet/whiteboard/internal/viewport"
)

func sequence(prefix string) func() string {
	n := 0
	return func() string {
		n++
		return fmt.Sprintf("%s%d", prefix, n)
	}
}

func newEngine(t *testing.T, opts Options) *Engine {
	t.Helper()
	if opts.NewElementID == nil {
		opts.NewElementID = sequence("el")
	}
	if opts.NewPageID == nil {
		opts.NewPageID = sequence("page")
	}
	return New(document.New("P1", ""), opts)
}

func drag(t *testing.T, e *Engine, from geom.Point, to ...geom.Point) {
	t.Helper()
	require.NoError(t, e.PointerDown(from))
	for _, p := range to {
		e.PointerMove(p)
	}
	require.NoError(t, e.PointerUp())
}

func TestRectangleThroughViewport(t *testing.T) {
	e := newEngine(t, Options{})
	require.NoError(t, e.SetTool(document.ToolRectangle))
	e.SetViewport(viewport.Viewport{Scale: 2, Offset: geom.Pt(20, 20)})

	drag(t, e, geom.Pt(40, 40), geom.Pt(240, 140))

	elems := e.Document().ActivePage().Elements
	require.Len(t, elems, 1)
	r := elems[0].(element.Rectangle)
	assert.Equal(t, geom.Rect{X: 10, Y: 10, Width: 100, Height: 50}, r.Rect())
	assert.True(t, e.Dirty())
}

func TestLaserLeavesPageUnchanged(t *testing.T) {
	e := newEngine(t, Options{})
	require.NoError(t, e.SetTool(document.ToolLaser))
	rev := e.Revision()

	require.NoError(t, e.PointerDown(geom.Pt(5, 5)))
	e.PointerMove(geom.Pt(50, 50))

	frame := e.Render()
	require.Len(t, frame.Commands, 1)
	assert.Equal(t, OpLaser, frame.Commands[0].Op)

	require.NoError(t, e.PointerUp())
	assert.Empty(t, e.Document().ActivePage().Elements)
	assert.Empty(t, e.Render().Commands)
	assert.Equal(t, rev, e.Revision())
}

func TestPointerLeaveDiscardsDraft(t *testing.T) {
	e := newEngine(t, Options{})
	require.NoError(t, e.PointerDown(geom.Pt(5, 5)))
	e.PointerMove(geom.Pt(9, 9))
	e.PointerLeave()
	require.NoError(t, e.PointerUp())
	assert.Empty(t, e.Document().ActivePage().Elements)
}

func TestTextPrompt(t *testing.T) {
	e := newEngine(t, Options{Prompt: tool.PromptFunc(func(geom.Point) string { return "salut" })})
	require.NoError(t, e.SetTool(document.ToolText))
	require.NoError(t, e.PointerDown(geom.Pt(10, 40)))
	require.NoError(t, e.PointerUp())

	elems := e.Document().ActivePage().Elements
	require.Len(t, elems, 1)
	assert.Equal(t, "salut", elems[0].(element.Text).Text)
}

func TestUndoRedo(t *testing.T) {
	e := newEngine(t, Options{})
	drag(t, e, geom.Pt(0, 0), geom.Pt(10, 10))
	drag(t, e, geom.Pt(20, 20), geom.Pt(30, 30))
	require.Len(t, e.Document().ActivePage().Elements, 2)

	require.NoError(t, e.SetTool(document.ToolLine))
	require.True(t, e.Undo())
	assert.Len(t, e.Document().ActivePage().Elements, 1)
	assert.Equal(t, document.ToolLine, e.Document().Options.Tool, "options survive undo")

	require.True(t, e.Redo())
	assert.Len(t, e.Document().ActivePage().Elements, 2)
	assert.False(t, e.Redo())

	require.True(t, e.Undo())
	drag(t, e, geom.Pt(40, 40), geom.Pt(50, 50))
	assert.False(t, e.CanRedo(), "new edit clears redo")
}

func TestHistoryLimit(t *testing.T) {
	e := newEngine(t, Options{HistoryLimit: 3})
	for i := range 5 {
		drag(t, e, geom.Pt(float64(i), 0), geom.Pt(float64(i), 10))
	}
	undone := 0
	for e.Undo() {
		undone++
	}
	assert.Equal(t, 3, undone)
	assert.Len(t, e.Document().ActivePage().Elements, 2)
}

func TestRejectedCommandKeepsDocument(t *testing.T) {
	e := newEngine(t, Options{})
	before := e.Document()

	assert.ErrorIs(t, e.DeletePage("P1"), document.ErrLastPage)
	assert.ErrorIs(t, e.SwitchPage("missing"), document.ErrPageNotFound)
	assert.Equal(t, before, e.Document())
	assert.False(t, e.CanUndo())
	assert.False(t, e.Dirty())
}

func TestPages(t *testing.T) {
	e := newEngine(t, Options{})
	id, err := e.AddPage("#fefce8")
	require.NoError(t, err)
	assert.Equal(t, "page1", id)

	frame := e.Render()
	assert.Equal(t, id, frame.PageID)
	assert.Equal(t, "#fefce8", frame.Background)
	assert.Equal(t, "Page 2", frame.PageName)

	require.NoError(t, e.DeletePage(id))
	assert.Equal(t, "P1", e.Document().ActivePageID)
}

func TestDeletingActivePageDropsDraft(t *testing.T) {
	e := newEngine(t, Options{})
	id, err := e.AddPage("")
	require.NoError(t, err)
	require.NoError(t, e.SetTool(document.ToolPen))

	require.NoError(t, e.PointerDown(geom.Pt(10, 10)))
	e.PointerMove(geom.Pt(40, 40))
	require.NotNil(t, e.Draft())

	require.NoError(t, e.DeletePage(id))
	assert.Nil(t, e.Draft())
	require.NoError(t, e.PointerUp())
	assert.Empty(t, e.Document().ActivePage().Elements)
}

func TestSelectMoveAndDelete(t *testing.T) {
	e := newEngine(t, Options{})
	require.NoError(t, e.Apply(document.AddElement{Element: element.Rectangle{
		ID: "r", X: 10, Y: 10, Width: 20, Height: 20, StrokeColor: "#000000", StrokeWidth: 1,
	}}))
	require.NoError(t, e.SetTool(document.ToolSelect))

	require.NoError(t, e.PointerDown(geom.Pt(20, 20)))
	e.PointerMove(geom.Pt(50, 30))
	box, ok := e.SelectionBounds()
	require.True(t, ok)
	assert.Equal(t, geom.Rect{X: 35, Y: 15, Width: 30, Height: 30}, box, "outline follows the drag")
	assert.Equal(t, 10.0, e.Document().ActivePage().Elements[0].(element.Rectangle).X, "document untouched mid-drag")

	require.NoError(t, e.PointerUp())
	assert.Equal(t, "r", e.Selection())
	moved := e.Document().ActivePage().Elements[0].(element.Rectangle)
	assert.Equal(t, 40.0, moved.X)
	assert.Equal(t, 20.0, moved.Y)

	frame := e.Render()
	last := frame.Commands[len(frame.Commands)-1]
	assert.Equal(t, OpSelection, last.Op)

	require.NoError(t, e.DeleteSelection())
	assert.Empty(t, e.Document().ActivePage().Elements)
	assert.Empty(t, e.Selection())
	assert.ErrorIs(t, e.DeleteSelection(), ErrNothingSelected)
}

func TestSelectEmptySpaceClears(t *testing.T) {
	e := newEngine(t, Options{})
	require.NoError(t, e.Apply(document.AddElement{Element: element.Rectangle{
		ID: "r", X: 10, Y: 10, Width: 20, Height: 20, StrokeColor: "#000000", StrokeWidth: 1,
	}}))
	require.NoError(t, e.Select("r"))
	require.NoError(t, e.SetTool(document.ToolSelect))
	drag(t, e, geom.Pt(300, 300))
	assert.Empty(t, e.Selection())
}

func TestHitTestUsesScreenCoordinates(t *testing.T) {
	e := newEngine(t, Options{})
	require.NoError(t, e.Apply(document.AddElement{Element: element.Circle{
		ID: "c", X: 50, Y: 50, Radius: 20, StrokeColor: "#000000", StrokeWidth: 2,
	}}))
	e.SetViewport(viewport.Viewport{Scale: 2})

	assert.Equal(t, "c", e.HitTest(geom.Pt(130, 100)))
	assert.Equal(t, "", e.HitTest(geom.Pt(65, 50)))
}

func TestRenderOrderAndTransform(t *testing.T) {
	e := newEngine(t, Options{})
	require.NoError(t, e.Apply(document.AddElement{Element: element.Highlighter{
		ID: "h", Points: []geom.Point{{X: 1, Y: 1}}, StrokeColor: "#facc15", StrokeWidth: 6,
	}}))
	require.NoError(t, e.Apply(document.AddElement{Element: element.Image{
		ID: "i", X: 100, Y: 100, Width: 200, Height: 150, Source: "asset_1",
	}}))
	e.Pan(10, 20)

	frame := e.Render()
	require.Len(t, frame.Commands, 2)
	assert.Equal(t, "h", frame.Commands[0].ElementID)
	assert.Equal(t, element.HighlighterOpacity, frame.Commands[0].Opacity)
	assert.Len(t, frame.Commands[0].Path, 2, "single point stroke still paints")
	assert.Equal(t, OpImage, frame.Commands[1].Op)
	assert.Equal(t, []float64{1, 0, 0, 1, 10, 20}, frame.Commands[1].Transform)
}

func TestLoadChecksDocument(t *testing.T) {
	e := newEngine(t, Options{})
	assert.Error(t, e.Load(document.Document{}))

	sample := document.NewSampleDocument()
	require.NoError(t, e.Load(sample))
	assert.Equal(t, sample, e.Document())
	assert.False(t, e.Dirty())
	assert.False(t, e.CanUndo())
}

func TestRenderVisibleCullsOffscreenPaths(t *testing.T) {
	e := newEngine(t, Options{})
	for _, el := range []element.Element{
		element.Rectangle{ID: "near", X: 10, Y: 10, Width: 20, Height: 20, StrokeColor: "#000000", StrokeWidth: 1},
		element.Rectangle{ID: "far", X: 5000, Y: 5000, Width: 20, Height: 20, StrokeColor: "#000000", StrokeWidth: 1},
		element.Line{ID: "edge", X1: -40, Y1: -2, X2: -1, Y2: -2, StrokeColor: "#000000", StrokeWidth: 8},
	} {
		require.NoError(t, e.Apply(document.AddElement{Element: el}))
	}

	assert.Len(t, e.Render().Commands, 3)

	ids := func(f Frame) []string {
		var out []string
		for _, cmd := range f.Commands {
			out = append(out, cmd.ElementID)
		}
		return out
	}
	assert.Equal(t, []string{"near", "edge"}, ids(e.RenderVisible(800, 600)))

	e.SetViewport(viewport.Viewport{Scale: 1, Offset: geom.Pt(-4900, -4900)})
	assert.Equal(t, []string{"far"}, ids(e.RenderVisible(800, 600)))
	assert.Len(t, e.RenderVisible(0, 0).Commands, 3)
}

func TestPathBounds(t *testing.T) {
	cmd, ok := CompileElement(element.Circle{ID: "c", X: 50, Y: 50, Radius: 20, StrokeColor: "#000000", StrokeWidth: 1})
	require.True(t, ok)
	assert.Equal(t, geom.Rect{X: 30, Y: 30, Width: 40, Height: 40}, PathBounds(cmd.Path))
}
