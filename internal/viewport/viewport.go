// Package viewport maps between screen and document coordinates.
//
// screen = document*Scale + Offset
package viewport

import "github.com/linguameet/whiteboard/internal/geom"

const (
	MinScale = 0.5
	MaxScale = 3.0
	// ZoomStep is the factor applied by ZoomIn and ZoomOut.
	ZoomStep = 1.2
)

// Viewport is presentation state; it is never stored with the document.
type Viewport struct {
	Scale  float64    `json:"scale"`
	Offset geom.Point `json:"offset"`
}

// New returns the identity viewport.
func New() Viewport {
	return Viewport{Scale: 1}
}

func clampScale(s float64) float64 {
	return max(MinScale, min(MaxScale, s))
}

// Matrix returns the document -> screen transform.
func (v Viewport) Matrix() geom.Matrix2D {
	return geom.Translate(v.Offset.X, v.Offset.Y).Multiply(geom.Scale(v.Scale, v.Scale))
}

// ToDocument converts a screen position (pointer event) to document space.
func (v Viewport) ToDocument(p geom.Point) geom.Point {
	return v.Matrix().Invert().Apply(p)
}

// ToScreen converts a document position to screen space.
func (v Viewport) ToScreen(p geom.Point) geom.Point {
	return v.Matrix().Apply(p)
}

// Pan moves the view by a screen-space delta.
func (v Viewport) Pan(dx, dy float64) Viewport {
	v.Offset = v.Offset.Add(geom.Pt(dx, dy))
	return v
}

// ZoomAt multiplies the scale by factor, clamped to [MinScale, MaxScale],
// keeping the document point under the screen-space anchor fixed.
func (v Viewport) ZoomAt(factor float64, anchor geom.Point) Viewport {
	if factor <= 0 {
		return v
	}
	docAnchor := v.ToDocument(anchor)
	v.Scale = clampScale(v.Scale * factor)
	v.Offset = geom.Pt(anchor.X-docAnchor.X*v.Scale, anchor.Y-docAnchor.Y*v.Scale)
	return v
}

func (v Viewport) ZoomIn(anchor geom.Point) Viewport  { return v.ZoomAt(ZoomStep, anchor) }
func (v Viewport) ZoomOut(anchor geom.Point) Viewport { return v.ZoomAt(1/ZoomStep, anchor) }

// Normalize repairs a viewport decoded from outside (zero or out of range
// scale).
func (v Viewport) Normalize() Viewport {
	if v.Scale == 0 {
		v.Scale = 1
	}
	v.Scale = clampScale(v.Scale)
	return v
}

// Visible returns the document-space rect shown on a surface of the given
// screen size.
func (v Viewport) Visible(width, height float64) geom.Rect {
	return v.Matrix().Invert().ApplyRect(geom.Rect{Width: width, Height: height})
}
