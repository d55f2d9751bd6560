// Package element defines the drawable objects of a whiteboard page.
//
// Element is a closed sum type: the only implementations are the structs in
// this file, so a type switch over them is exhaustive. Every kind except
// Laser is persisted on a page under a page-unique id.
package element

import "github.com/linguameet/whiteboard/internal/geom"

type Kind string

const (
	KindFreehand    Kind = "freehand"
	KindHighlighter Kind = "highlighter"
	KindLine        Kind = "line"
	KindRectangle   Kind = "rectangle"
	KindCircle      Kind = "circle"
	KindText        Kind = "text"
	KindImage       Kind = "image"
	KindLaser       Kind = "laser"
)

const (
	// HighlighterOpacity is the fixed alpha highlighter strokes are painted with.
	HighlighterOpacity = 0.4
	// HighlighterWidthFactor multiplies the tool's base width for highlighter strokes.
	HighlighterWidthFactor = 3
)

// Element is one drawable object.
type Element interface {
	Kind() Kind
	// ElementID is empty for drafts that have not been committed and for Laser.
	ElementID() string
	// WithID returns a copy carrying id. Laser ignores it.
	WithID(id string) Element

	isElement()
}

type Freehand struct {
	ID          string       `json:"id" validate:"required"`
	Points      []geom.Point `json:"points" validate:"min=1"`
	StrokeColor string       `json:"strokeColor" validate:"required,hexcolor"`
	StrokeWidth float64      `json:"strokeWidth" validate:"gt=0"`
}

// Highlighter has the shape of Freehand; it is painted translucent and its
// StrokeWidth already includes HighlighterWidthFactor.
type Highlighter struct {
	ID          string       `json:"id" validate:"required"`
	Points      []geom.Point `json:"points" validate:"min=1"`
	StrokeColor string       `json:"strokeColor" validate:"required,hexcolor"`
	StrokeWidth float64      `json:"strokeWidth" validate:"gt=0"`
}

type Line struct {
	ID          string  `json:"id" validate:"required"`
	X1          float64 `json:"x1"`
	Y1          float64 `json:"y1"`
	X2          float64 `json:"x2"`
	Y2          float64 `json:"y2"`
	StrokeColor string  `json:"strokeColor" validate:"required,hexcolor"`
	StrokeWidth float64 `json:"strokeWidth" validate:"gt=0"`
}

type Rectangle struct {
	ID          string  `json:"id" validate:"required"`
	X           float64 `json:"x"`
	Y           float64 `json:"y"`
	Width       float64 `json:"width" validate:"gte=0"`
	Height      float64 `json:"height" validate:"gte=0"`
	StrokeColor string  `json:"strokeColor" validate:"required,hexcolor"`
	StrokeWidth float64 `json:"strokeWidth" validate:"gt=0"`
	FillColor   string  `json:"fillColor,omitempty" validate:"omitempty,hexcolor"`
}

// Circle is centred on (X, Y).
type Circle struct {
	ID          string  `json:"id" validate:"required"`
	X           float64 `json:"x"`
	Y           float64 `json:"y"`
	Radius      float64 `json:"radius" validate:"gte=0"`
	StrokeColor string  `json:"strokeColor" validate:"required,hexcolor"`
	StrokeWidth float64 `json:"strokeWidth" validate:"gt=0"`
	FillColor   string  `json:"fillColor,omitempty" validate:"omitempty,hexcolor"`
}

// Text is anchored at its baseline-left corner.
type Text struct {
	ID          string  `json:"id" validate:"required"`
	X           float64 `json:"x"`
	Y           float64 `json:"y"`
	Text        string  `json:"text" validate:"required"`
	StrokeColor string  `json:"strokeColor" validate:"required,hexcolor"`
	FontSize    float64 `json:"fontSize" validate:"gt=0"`
	FontFamily  string  `json:"fontFamily" validate:"required"`
}

type Image struct {
	ID     string  `json:"id" validate:"required"`
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Width  float64 `json:"width" validate:"gte=0"`
	Height float64 `json:"height" validate:"gte=0"`
	Source string  `json:"sourceLocator" validate:"required"`
}

// Laser is the pointer annotation. It only ever lives in a draft slot.
type Laser struct {
	X           float64 `json:"x"`
	Y           float64 `json:"y"`
	StrokeColor string  `json:"strokeColor" validate:"required,hexcolor"`
}

func (Freehand) Kind() Kind    { return KindFreehand }
func (Highlighter) Kind() Kind { return KindHighlighter }
func (Line) Kind() Kind        { return KindLine }
func (Rectangle) Kind() Kind   { return KindRectangle }
func (Circle) Kind() Kind      { return KindCircle }
func (Text) Kind() Kind        { return KindText }
func (Image) Kind() Kind       { return KindImage }
func (Laser) Kind() Kind       { return KindLaser }

func (e Freehand) ElementID() string    { return e.ID }
func (e Highlighter) ElementID() string { return e.ID }
func (e Line) ElementID() string        { return e.ID }
func (e Rectangle) ElementID() string   { return e.ID }
func (e Circle) ElementID() string      { return e.ID }
func (e Text) ElementID() string        { return e.ID }
func (e Image) ElementID() string       { return e.ID }
func (Laser) ElementID() string         { return "" }

func (e Freehand) WithID(id string) Element    { e.ID = id; return e }
func (e Highlighter) WithID(id string) Element { e.ID = id; return e }
func (e Line) WithID(id string) Element        { e.ID = id; return e }
func (e Rectangle) WithID(id string) Element   { e.ID = id; return e }
func (e Circle) WithID(id string) Element      { e.ID = id; return e }
func (e Text) WithID(id string) Element        { e.ID = id; return e }
func (e Image) WithID(id string) Element       { e.ID = id; return e }
func (e Laser) WithID(string) Element          { return e }

func (Freehand) isElement()    {}
func (Highlighter) isElement() {}
func (Line) isElement()        {}
func (Rectangle) isElement()   {}
func (Circle) isElement()      {}
func (Text) isElement()        {}
func (Image) isElement()       {}
func (Laser) isElement()       {}

// IsEphemeral reports whether e must never be stored on a page.
func IsEphemeral(e Element) bool {
	return e.Kind() == KindLaser
}

// Rect returns the rectangle with non-negative extents.
func (e Rectangle) Rect() geom.Rect {
	return geom.Rect{X: e.X, Y: e.Y, Width: e.Width, Height: e.Height}.Normalize()
}

// Rect returns the image frame with non-negative extents.
func (e Image) Rect() geom.Rect {
	return geom.Rect{X: e.X, Y: e.Y, Width: e.Width, Height: e.Height}.Normalize()
}

func (e Circle) Center() geom.Point { return geom.Pt(e.X, e.Y) }

func (e Line) Start() geom.Point { return geom.Pt(e.X1, e.Y1) }
func (e Line) End() geom.Point   { return geom.Pt(e.X2, e.Y2) }
