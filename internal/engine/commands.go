package engine

import (
	"encoding/json"
)

// Draw operations.
const (
	OpPath      = "path"
	OpText      = "text"
	OpImage     = "image"
	OpLaser     = "laser"
	OpSelection = "selection"
)

// DrawCommand represents a single drawing operation for a surface to execute.
// Path, text and image coordinates are in document space; Transform maps
// them to the screen.
type DrawCommand struct {
	Op          string        `json:"op"`
	ElementID   string        `json:"elementId,omitempty"` // For hit correlation
	Transform   []float64     `json:"transform,omitempty"` // [a, b, c, d, e, f] affine matrix
	Path        []PathCommand `json:"path,omitempty"`
	Fill        string        `json:"fill,omitempty"`
	Stroke      string        `json:"stroke,omitempty"`
	StrokeWidth float64       `json:"strokeWidth,omitempty"`
	LineDash    []float64     `json:"lineDash,omitempty"`
	Opacity     float64       `json:"opacity,omitempty"`
	Text        string        `json:"text,omitempty"`
	FontSize    float64       `json:"fontSize,omitempty"`
	FontFamily  string        `json:"fontFamily,omitempty"`
	X           float64       `json:"x,omitempty"`
	Y           float64       `json:"y,omitempty"`
	Width       float64       `json:"width,omitempty"`
	Height      float64       `json:"height,omitempty"`
	Source      string        `json:"source,omitempty"` // Image locator
}

// PathCommand represents a single path segment for rendering.
// Format matches Canvas2D: ["M", x, y], ["L", x, y], ["C", x1, y1, x2, y2, x, y], ["Z"].
type PathCommand []any

// Op returns the segment verb.
func (c PathCommand) Op() string {
	if len(c) == 0 {
		return ""
	}
	op, _ := c[0].(string)
	return op
}

// Args returns the numeric operands of the segment.
func (c PathCommand) Args() []float64 {
	if len(c) < 2 {
		return nil
	}
	out := make([]float64, len(c)-1)
	for i, v := range c[1:] {
		out[i] = toFloat64(v)
	}
	return out
}

// toFloat64 converts a decoded operand to float64.
func toFloat64(v any) float64 {
	switch n := v.(type) {
	case float64:
		return n
	case int:
		return float64(n)
	case int64:
		return float64(n)
	default:
		return 0
	}
}

// Frame is everything a surface needs to paint the active page.
type Frame struct {
	PageID     string        `json:"pageId"`
	PageName   string        `json:"pageName"`
	Background string        `json:"background"`
	Scale      float64       `json:"scale"`
	Commands   []DrawCommand `json:"commands"`
}

// FrameToJSON serializes a frame to JSON.
func FrameToJSON(f Frame) (string, error) {
	data, err := json.Marshal(f)
	if err != nil {
		return "{}", err
	}
	return string(data), nil
}
