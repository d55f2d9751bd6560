package element

import (
	"slices"
	"unicode/utf8"

	"github.com/linguameet/whiteboard/internal/geom"
)

// BoundsPadding is added on every side of a computed bounding box.
const BoundsPadding = 5.0

// TextMeasurer reports the rendered advance width of a string. It is
// provided by the rendering side.
type TextMeasurer interface {
	MeasureText(text, fontFamily string, fontSize float64) float64
}

// measure falls back to a rough average glyph width when no measurer is wired.
func measure(m TextMeasurer, text, fontFamily string, fontSize float64) float64 {
	if m == nil {
		return 0.6 * fontSize * float64(utf8.RuneCountInString(text))
	}
	return m.MeasureText(text, fontFamily, fontSize)
}

// TextBox is the unpadded measured box of a label: the baseline sits at
// the bottom edge.
func TextBox(t Text, m TextMeasurer) geom.Rect {
	return geom.Rect{
		X:      t.X,
		Y:      t.Y - t.FontSize,
		Width:  measure(m, t.Text, t.FontFamily, t.FontSize),
		Height: t.FontSize,
	}
}

// Bounds returns the padded bounding box of e. It reports false for Laser,
// which has no persisted geometry.
func Bounds(e Element, m TextMeasurer) (geom.Rect, bool) {
	var r geom.Rect
	switch e := e.(type) {
	case Freehand:
		r = geom.BoundsOf(e.Points)
	case Highlighter:
		r = geom.BoundsOf(e.Points)
	case Line:
		r = geom.BoundsOf([]geom.Point{e.Start(), e.End()})
	case Rectangle:
		r = e.Rect()
	case Image:
		r = e.Rect()
	case Circle:
		r = geom.Rect{X: e.X - e.Radius, Y: e.Y - e.Radius, Width: 2 * e.Radius, Height: 2 * e.Radius}
	case Text:
		r = TextBox(e, m)
	default:
		return geom.Rect{}, false
	}
	return r.Expand(BoundsPadding), true
}

// Translate returns e moved by (dx, dy). Point slices are copied so the
// result shares no memory with e.
func Translate(e Element, dx, dy float64) Element {
	d := geom.Pt(dx, dy)
	switch e := e.(type) {
	case Freehand:
		e.Points = translatePoints(e.Points, d)
		return e
	case Highlighter:
		e.Points = translatePoints(e.Points, d)
		return e
	case Line:
		e.X1, e.Y1, e.X2, e.Y2 = e.X1+dx, e.Y1+dy, e.X2+dx, e.Y2+dy
		return e
	case Rectangle:
		e.X, e.Y = e.X+dx, e.Y+dy
		return e
	case Circle:
		e.X, e.Y = e.X+dx, e.Y+dy
		return e
	case Text:
		e.X, e.Y = e.X+dx, e.Y+dy
		return e
	case Image:
		e.X, e.Y = e.X+dx, e.Y+dy
		return e
	case Laser:
		e.X, e.Y = e.X+dx, e.Y+dy
		return e
	}
	return e
}

func translatePoints(pts []geom.Point, d geom.Point) []geom.Point {
	out := slices.Clone(pts)
	for i := range out {
		out[i] = out[i].Add(d)
	}
	return out
}
