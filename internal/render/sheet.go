// Package render paints compiled draw commands onto raster images and PDF
// pages, and measures text for the editor.
package render

import (
	"image"
	"image/color"
	"strconv"
	"strings"

	"github.com/linguameet/whiteboard/internal/document"
	"github.com/linguameet/whiteboard/internal/element"
	"github.com/linguameet/whiteboard/internal/engine"
	"github.com/linguameet/whiteboard/internal/geom"
)

// Sheet is one page prepared for output: the document-space area to paint,
// its background and its draw commands in painter's order.
type Sheet struct {
	Name       string
	Background string
	Bounds     geom.Rect
	Commands   []engine.DrawCommand
}

// PageSheet prepares p for output. The sheet covers at least width x height
// from the origin and grows to include every element.
func PageSheet(p document.Page, m element.TextMeasurer, width, height float64) Sheet {
	bounds := geom.Rect{Width: width, Height: height}
	for _, el := range p.Elements {
		if b, ok := element.Bounds(el, m); ok {
			bounds = bounds.Union(b)
		}
	}
	return Sheet{
		Name:       p.DisplayName,
		Background: p.BackgroundColor,
		Bounds:     bounds,
		Commands:   engine.CompileElements(p.Elements),
	}
}

// ImageSource opens the bitmap behind an image element's locator.
type ImageSource interface {
	OpenImage(source string) (image.Image, error)
}

// parseHex parses #rgb or #rrggbb. Anything else yields opaque black.
func parseHex(s string) color.NRGBA {
	s = strings.TrimPrefix(s, "#")
	if len(s) == 3 {
		s = string([]byte{s[0], s[0], s[1], s[1], s[2], s[2]})
	}
	v, err := strconv.ParseUint(s, 16, 32)
	if len(s) != 6 || err != nil {
		return color.NRGBA{A: 0xff}
	}
	return color.NRGBA{R: uint8(v >> 16), G: uint8(v >> 8), B: uint8(v), A: 0xff}
}

// rgba returns the colour components in [0,1] with opacity applied.
func rgba(hex string, opacity float64) (r, g, b, a float64) {
	c := parseHex(hex)
	if opacity <= 0 {
		opacity = 1
	}
	return float64(c.R) / 255, float64(c.G) / 255, float64(c.B) / 255, opacity
}
