// Package selection hit-tests the elements of a page against a cursor
// point. Elements are scanned topmost first, so the last inserted element
// wins when several overlap.
package selection

import (
	"errors"

	"github.com/linguameet/whiteboard/internal/document"
	"github.com/linguameet/whiteboard/internal/element"
	"github.com/linguameet/whiteboard/internal/geom"
)

// Tolerance is how far, in document units, a point may be from an element
// and still hit it when erasing.
const Tolerance = 10.0

var ErrNoHit = errors.New("no element at point")

// Hit reports whether p touches e within Tolerance.
func Hit(e element.Element, p geom.Point, m element.TextMeasurer) bool {
	switch e := e.(type) {
	case element.Freehand:
		return nearAny(e.Points, p)
	case element.Highlighter:
		return nearAny(e.Points, p)
	case element.Line:
		return geom.DistancePointToSegment(p, e.Start(), e.End()) < Tolerance
	case element.Rectangle:
		return e.Rect().Expand(Tolerance).Contains(p)
	case element.Image:
		return e.Rect().Expand(Tolerance).Contains(p)
	case element.Circle:
		return p.Distance(e.Center()) <= e.Radius+Tolerance
	case element.Text:
		return element.TextBox(e, m).Expand(Tolerance).Contains(p)
	default:
		return false
	}
}

func nearAny(pts []geom.Point, p geom.Point) bool {
	for _, q := range pts {
		if p.Distance(q) < Tolerance {
			return true
		}
	}
	return false
}

// Topmost returns the index of the last element in elems that Hit accepts,
// or -1.
func Topmost(elems []element.Element, p geom.Point, m element.TextMeasurer) int {
	for i := len(elems) - 1; i >= 0; i-- {
		if Hit(elems[i], p, m) {
			return i
		}
	}
	return -1
}

// PickAt returns the index of the topmost element whose padded bounding box
// contains p, or -1. Unlike Topmost it applies no erase tolerance.
func PickAt(elems []element.Element, p geom.Point, m element.TextMeasurer) int {
	for i := len(elems) - 1; i >= 0; i-- {
		if b, ok := element.Bounds(elems[i], m); ok && b.Contains(p) {
			return i
		}
	}
	return -1
}

// Highlight is the box drawn around a selected element.
func Highlight(e element.Element, m element.TextMeasurer) (geom.Rect, bool) {
	return element.Bounds(e, m)
}

// EraseAt deletes the topmost element of the active page hit by Point.
type EraseAt struct {
	Point    geom.Point
	Measurer element.TextMeasurer
}

func (c EraseAt) Apply(doc document.Document) (document.Document, error) {
	page := doc.ActivePage()
	i := Topmost(page.Elements, c.Point, c.Measurer)
	if i < 0 {
		return doc, ErrNoHit
	}
	return document.Apply(doc, document.DeleteElement{ID: page.Elements[i].ElementID()})
}
