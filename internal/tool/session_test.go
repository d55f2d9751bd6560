package tool

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/linguameet/whiteboard/internal/document"
	"github.com/linguameet/whiteboard/internal/element"
	"github.com/linguameet/whiteboard/internal/geom"
)

func counterIDs() func() string {
	n := 0
	return func() string {
		n++
		return fmt.Sprintf("el%d", n)
	}
}

func options(tool document.Tool) document.DrawingOptions {
	return document.DrawingOptions{Tool: tool, StrokeColor: "#000000", StrokeWidth: 2, FontSize: 24, FontFamily: "serif"}
}

// gesture runs down, moves and up and applies whatever the session returns.
func gesture(t *testing.T, s *Session, doc document.Document, pts ...geom.Point) document.Document {
	t.Helper()
	apply := func(cmd document.Command) {
		if cmd == nil {
			return
		}
		var err error
		doc, err = document.Apply(doc, cmd)
		require.NoError(t, err)
	}
	apply(s.Down(doc.Options, pts[0]))
	for _, p := range pts[1:] {
		s.Move(p)
	}
	apply(s.Up())
	return doc
}

func docWith(tool document.Tool) document.Document {
	doc := document.New("P1", "")
	doc.Options = options(tool)
	return doc
}

func TestRectangleGesture(t *testing.T) {
	s := NewSession(Config{NewID: counterIDs()})
	doc := gesture(t, s, docWith(document.ToolRectangle), geom.Pt(10, 10), geom.Pt(110, 60))

	require.Len(t, doc.ActivePage().Elements, 1)
	assert.Equal(t, element.Rectangle{
		ID: "el1", X: 10, Y: 10, Width: 100, Height: 50, StrokeColor: "#000000", StrokeWidth: 2,
	}, doc.ActivePage().Elements[0])
	assert.Equal(t, Idle, s.State())
}

func TestRectangleDraggedBackwardsIsNormalized(t *testing.T) {
	s := NewSession(Config{NewID: counterIDs()})
	doc := gesture(t, s, docWith(document.ToolRectangle), geom.Pt(110, 60), geom.Pt(10, 10))

	r := doc.ActivePage().Elements[0].(element.Rectangle)
	assert.Equal(t, geom.Rect{X: 10, Y: 10, Width: 100, Height: 50}, r.Rect())
	assert.Equal(t, 100.0, r.Width)
}

func TestShapeGestures(t *testing.T) {
	tests := []struct {
		tool document.Tool
		pts  []geom.Point
		want element.Element
	}{
		{
			document.ToolPen,
			[]geom.Point{{X: 1, Y: 1}, {X: 2, Y: 3}, {X: 4, Y: 4}},
			element.Freehand{ID: "el1", Points: []geom.Point{{X: 1, Y: 1}, {X: 2, Y: 3}, {X: 4, Y: 4}}, StrokeColor: "#000000", StrokeWidth: 2},
		},
		{
			document.ToolPen,
			[]geom.Point{{X: 7, Y: 7}},
			element.Freehand{ID: "el1", Points: []geom.Point{{X: 7, Y: 7}}, StrokeColor: "#000000", StrokeWidth: 2},
		},
		{
			document.ToolLine,
			[]geom.Point{{X: 0, Y: 0}, {X: 5, Y: 5}, {X: 30, Y: 40}},
			element.Line{ID: "el1", X2: 30, Y2: 40, StrokeColor: "#000000", StrokeWidth: 2},
		},
		{
			document.ToolCircle,
			[]geom.Point{{X: 50, Y: 50}, {X: 80, Y: 90}},
			element.Circle{ID: "el1", X: 50, Y: 50, Radius: 50, StrokeColor: "#000000", StrokeWidth: 2},
		},
	}
	for _, tt := range tests {
		t.Run(string(tt.tool), func(t *testing.T) {
			s := NewSession(Config{NewID: counterIDs()})
			doc := gesture(t, s, docWith(tt.tool), tt.pts...)
			require.Len(t, doc.ActivePage().Elements, 1)
			assert.Equal(t, tt.want, doc.ActivePage().Elements[0])
		})
	}
}

func TestHighlighterTriplesWidth(t *testing.T) {
	for _, w := range []float64{1, 2.5, 8} {
		s := NewSession(Config{NewID: counterIDs()})
		doc := docWith(document.ToolHighlighter)
		doc.Options.StrokeWidth = w
		doc = gesture(t, s, doc, geom.Pt(0, 0), geom.Pt(10, 0))

		h := doc.ActivePage().Elements[0].(element.Highlighter)
		assert.Equal(t, 3*w, h.StrokeWidth)
	}
}

func TestLaserNeverCommits(t *testing.T) {
	s := NewSession(Config{NewID: counterIDs()})
	doc := docWith(document.ToolLaser)

	require.Nil(t, s.Down(doc.Options, geom.Pt(5, 5)))
	s.Move(geom.Pt(40, 20))
	assert.Equal(t, element.Laser{X: 40, Y: 20, StrokeColor: "#000000"}, s.Draft())
	assert.Nil(t, s.Up())
	assert.Nil(t, s.Draft())
	assert.Empty(t, doc.ActivePage().Elements)
}

func TestText(t *testing.T) {
	t.Run("non-empty answer commits", func(t *testing.T) {
		var asked geom.Point
		s := NewSession(Config{NewID: counterIDs(), Prompt: PromptFunc(func(at geom.Point) string {
			asked = at
			return "bonjour"
		})})
		doc := gesture(t, s, docWith(document.ToolText), geom.Pt(30, 60))

		assert.Equal(t, geom.Pt(30, 60), asked)
		assert.Equal(t, element.List{element.Text{
			ID: "el1", X: 30, Y: 60, Text: "bonjour", StrokeColor: "#000000", FontSize: 24, FontFamily: "serif",
		}}, doc.ActivePage().Elements)
		assert.Equal(t, Idle, s.State())
	})

	t.Run("empty answer discards", func(t *testing.T) {
		s := NewSession(Config{Prompt: PromptFunc(func(geom.Point) string { return "" })})
		doc := gesture(t, s, docWith(document.ToolText), geom.Pt(30, 60))
		assert.Empty(t, doc.ActivePage().Elements)
	})

	t.Run("defaults font", func(t *testing.T) {
		s := NewSession(Config{NewID: counterIDs(), Prompt: PromptFunc(func(geom.Point) string { return "x" })})
		opts := options(document.ToolText)
		opts.FontSize, opts.FontFamily = 0, ""
		cmd := s.Down(opts, geom.Pt(0, 20))
		add := cmd.(document.AddElement)
		assert.Equal(t, 20.0, add.Element.(element.Text).FontSize)
		assert.Equal(t, "sans-serif", add.Element.(element.Text).FontFamily)
	})
}

func TestEraserErasesOnDown(t *testing.T) {
	doc := docWith(document.ToolEraser)
	doc, err := document.Apply(doc, document.AddElement{Element: element.Circle{
		ID: "c", X: 50, Y: 50, Radius: 20, StrokeColor: "#000000", StrokeWidth: 2,
	}})
	require.NoError(t, err)

	s := NewSession(Config{})
	cmd := s.Down(doc.Options, geom.Pt(65, 50))
	require.NotNil(t, cmd)
	assert.Equal(t, Idle, s.State())

	doc, err = document.Apply(doc, cmd)
	require.NoError(t, err)
	assert.Empty(t, doc.ActivePage().Elements)
}

func TestUnknownToolStaysIdle(t *testing.T) {
	s := NewSession(Config{})
	assert.Nil(t, s.Down(options("spray"), geom.Pt(1, 1)))
	assert.Equal(t, Idle, s.State())
	s.Move(geom.Pt(2, 2))
	assert.Nil(t, s.Up())
}

func TestAbortAndRestart(t *testing.T) {
	s := NewSession(Config{NewID: counterIDs()})
	s.Down(options(document.ToolPen), geom.Pt(1, 1))
	s.Move(geom.Pt(2, 2))
	s.Abort()
	assert.Equal(t, Idle, s.State())
	assert.Nil(t, s.Up())

	s.Down(options(document.ToolPen), geom.Pt(1, 1))
	s.Down(options(document.ToolLine), geom.Pt(9, 9))
	assert.Equal(t, document.ToolLine, s.Tool())
	assert.Equal(t, element.Line{X1: 9, Y1: 9, X2: 9, Y2: 9, StrokeColor: "#000000", StrokeWidth: 2}, s.Draft())
}
