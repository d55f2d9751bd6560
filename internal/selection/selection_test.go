package selection

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/linguameet/whiteboard/internal/document"
	"github.com/linguameet/whiteboard/internal/element"
	"github.com/linguameet/whiteboard/internal/geom"
)

type fixedMeasurer float64

func (m fixedMeasurer) MeasureText(text, _ string, _ float64) float64 {
	return float64(m) * float64(len([]rune(text)))
}

const black = "#000000"

func withElements(t *testing.T, elems ...element.Element) document.Document {
	t.Helper()
	doc := document.New("P1", "")
	for _, e := range elems {
		var err error
		doc, err = document.Apply(doc, document.AddElement{Element: e})
		require.NoError(t, err)
	}
	return doc
}

func ids(doc document.Document) []string {
	var out []string
	for _, e := range doc.ActivePage().Elements {
		out = append(out, e.ElementID())
	}
	return out
}

func TestHit(t *testing.T) {
	m := fixedMeasurer(10)
	tests := []struct {
		name string
		el   element.Element
		p    geom.Point
		want bool
	}{
		{"stroke near point", element.Freehand{ID: "f", Points: []geom.Point{{X: 0, Y: 0}, {X: 50, Y: 0}}, StrokeColor: black, StrokeWidth: 1}, geom.Pt(50, 9), true},
		{"stroke between points", element.Freehand{ID: "f", Points: []geom.Point{{X: 0, Y: 0}, {X: 50, Y: 0}}, StrokeColor: black, StrokeWidth: 1}, geom.Pt(25, 0), false},
		{"highlighter", element.Highlighter{ID: "h", Points: []geom.Point{{X: 5, Y: 5}}, StrokeColor: black, StrokeWidth: 6}, geom.Pt(10, 10), true},
		{"line near", element.Line{ID: "l", X2: 100, StrokeColor: black, StrokeWidth: 1}, geom.Pt(50, 9.9), true},
		{"line far", element.Line{ID: "l", X2: 100, StrokeColor: black, StrokeWidth: 1}, geom.Pt(50, 10), false},
		{"line past end", element.Line{ID: "l", X2: 100, StrokeColor: black, StrokeWidth: 1}, geom.Pt(115, 0), false},
		{"rectangle margin", element.Rectangle{ID: "r", X: 10, Y: 10, Width: 20, Height: 20, StrokeColor: black, StrokeWidth: 1}, geom.Pt(0, 0), true},
		{"rectangle outside", element.Rectangle{ID: "r", X: 10, Y: 10, Width: 20, Height: 20, StrokeColor: black, StrokeWidth: 1}, geom.Pt(41, 20), false},
		{"image", element.Image{ID: "i", X: 100, Y: 100, Width: 200, Height: 150, Source: "a.png"}, geom.Pt(305, 255), true},
		{"circle edge", element.Circle{ID: "c", X: 50, Y: 50, Radius: 20, StrokeColor: black, StrokeWidth: 1}, geom.Pt(80, 50), true},
		{"circle outside", element.Circle{ID: "c", X: 50, Y: 50, Radius: 20, StrokeColor: black, StrokeWidth: 1}, geom.Pt(81, 50), false},
		{"text box", element.Text{ID: "t", X: 10, Y: 40, Text: "hello", StrokeColor: black, FontSize: 20, FontFamily: "sans-serif"}, geom.Pt(65, 45), true},
		{"text right of box", element.Text{ID: "t", X: 10, Y: 40, Text: "hello", StrokeColor: black, FontSize: 20, FontFamily: "sans-serif"}, geom.Pt(71, 30), false},
		{"laser never hits", element.Laser{X: 1, Y: 1, StrokeColor: black}, geom.Pt(1, 1), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Hit(tt.el, tt.p, m))
		})
	}
}

func TestEraseRemovesTopmost(t *testing.T) {
	a := element.Rectangle{ID: "A", X: 500, Y: 500, Width: 10, Height: 10, StrokeColor: black, StrokeWidth: 1}
	b := element.Rectangle{ID: "B", X: 0, Y: 0, Width: 100, Height: 100, StrokeColor: black, StrokeWidth: 1}
	c := element.Circle{ID: "C", X: 50, Y: 50, Radius: 10, StrokeColor: black, StrokeWidth: 1}
	doc := withElements(t, a, b, c)

	doc, err := document.Apply(doc, EraseAt{Point: geom.Pt(50, 50)})
	require.NoError(t, err)
	assert.Equal(t, []string{"A", "B"}, ids(doc))

	doc, err = document.Apply(doc, EraseAt{Point: geom.Pt(50, 50)})
	require.NoError(t, err)
	assert.Equal(t, []string{"A"}, ids(doc))
}

func TestEraseCircleWithinTolerance(t *testing.T) {
	doc := withElements(t, element.Circle{ID: "c", X: 50, Y: 50, Radius: 20, StrokeColor: black, StrokeWidth: 2})

	doc, err := document.Apply(doc, EraseAt{Point: geom.Pt(65, 50)})
	require.NoError(t, err)
	assert.Empty(t, doc.ActivePage().Elements)
}

func TestEraseMissIsNoop(t *testing.T) {
	doc := withElements(t, element.Circle{ID: "c", X: 50, Y: 50, Radius: 20, StrokeColor: black, StrokeWidth: 2})

	next, err := document.Apply(doc, EraseAt{Point: geom.Pt(400, 400)})
	assert.ErrorIs(t, err, ErrNoHit)
	assert.Equal(t, doc, next)
}

func TestPickAtUsesBoundsWithoutTolerance(t *testing.T) {
	elems := []element.Element{
		element.Rectangle{ID: "r", X: 10, Y: 10, Width: 20, Height: 20, StrokeColor: black, StrokeWidth: 1},
	}
	assert.Equal(t, 0, PickAt(elems, geom.Pt(6, 6), nil))
	assert.Equal(t, -1, PickAt(elems, geom.Pt(2, 2), nil))
	assert.Equal(t, 0, Topmost(elems, geom.Pt(2, 2), nil))

	box, ok := Highlight(elems[0], nil)
	require.True(t, ok)
	assert.Equal(t, geom.Rect{X: 5, Y: 5, Width: 30, Height: 30}, box)
}
