package engine

import (
	"github.com/linguameet/whiteboard/internal/element"
	"github.com/linguameet/whiteboard/internal/geom"
)

const (
	// LaserRadius is the radius of the laser dot in document units.
	LaserRadius   = 6.0
	laserOpacity  = 0.8
	selectionBlue = "#2563eb"
)

// CompileElements generates draw commands for elems in painter's order
// (back to front), in document coordinates.
func CompileElements(elems []element.Element) []DrawCommand {
	commands := make([]DrawCommand, 0, len(elems))
	for _, el := range elems {
		if cmd, ok := CompileElement(el); ok {
			commands = append(commands, cmd)
		}
	}
	return commands
}

// CompileElement generates the draw command for a single element.
func CompileElement(el element.Element) (DrawCommand, bool) {
	switch e := el.(type) {
	case element.Freehand:
		return strokeCommand(e.ID, e.Points, e.StrokeColor, e.StrokeWidth, 1), true
	case element.Highlighter:
		return strokeCommand(e.ID, e.Points, e.StrokeColor, e.StrokeWidth, element.HighlighterOpacity), true
	case element.Line:
		return DrawCommand{
			Op:          OpPath,
			ElementID:   e.ID,
			Path:        []PathCommand{{"M", e.X1, e.Y1}, {"L", e.X2, e.Y2}},
			Stroke:      e.StrokeColor,
			StrokeWidth: e.StrokeWidth,
			Opacity:     1,
		}, true
	case element.Rectangle:
		return DrawCommand{
			Op:          OpPath,
			ElementID:   e.ID,
			Path:        generateRectPath(e.Rect()),
			Fill:        e.FillColor,
			Stroke:      e.StrokeColor,
			StrokeWidth: e.StrokeWidth,
			Opacity:     1,
		}, true
	case element.Circle:
		return DrawCommand{
			Op:          OpPath,
			ElementID:   e.ID,
			Path:        generateEllipsePath(e.Center(), e.Radius, e.Radius),
			Fill:        e.FillColor,
			Stroke:      e.StrokeColor,
			StrokeWidth: e.StrokeWidth,
			Opacity:     1,
		}, true
	case element.Text:
		return DrawCommand{
			Op:         OpText,
			ElementID:  e.ID,
			Text:       e.Text,
			Fill:       e.StrokeColor,
			FontSize:   e.FontSize,
			FontFamily: e.FontFamily,
			X:          e.X,
			Y:          e.Y,
			Opacity:    1,
		}, true
	case element.Image:
		r := e.Rect()
		return DrawCommand{
			Op:        OpImage,
			ElementID: e.ID,
			X:         r.X,
			Y:         r.Y,
			Width:     r.Width,
			Height:    r.Height,
			Source:    e.Source,
			Opacity:   1,
		}, true
	case element.Laser:
		return DrawCommand{
			Op:      OpLaser,
			Path:    generateEllipsePath(geom.Pt(e.X, e.Y), LaserRadius, LaserRadius),
			Fill:    e.StrokeColor,
			X:       e.X,
			Y:       e.Y,
			Opacity: laserOpacity,
		}, true
	default:
		return DrawCommand{}, false
	}
}

// SelectionCommand outlines a selected element's bounding box.
func SelectionCommand(id string, box geom.Rect) DrawCommand {
	return DrawCommand{
		Op:          OpSelection,
		ElementID:   id,
		Path:        generateRectPath(box),
		Stroke:      selectionBlue,
		StrokeWidth: 1,
		LineDash:    []float64{4, 4},
		Opacity:     1,
	}
}

// strokeCommand draws a polyline through pts. A single point becomes a
// zero-length segment so round caps still paint a dot.
func strokeCommand(id string, pts []geom.Point, color string, width, opacity float64) DrawCommand {
	path := make([]PathCommand, 0, len(pts)+1)
	for i, p := range pts {
		op := "L"
		if i == 0 {
			op = "M"
		}
		path = append(path, PathCommand{op, p.X, p.Y})
	}
	if len(pts) == 1 {
		path = append(path, PathCommand{"L", pts[0].X, pts[0].Y})
	}
	return DrawCommand{
		Op:          OpPath,
		ElementID:   id,
		Path:        path,
		Stroke:      color,
		StrokeWidth: width,
		Opacity:     opacity,
	}
}

// generateRectPath generates path commands for a rectangle.
func generateRectPath(r geom.Rect) []PathCommand {
	x0, y0 := r.X, r.Y
	x1, y1 := r.X+r.Width, r.Y+r.Height
	return []PathCommand{
		{"M", x0, y0},
		{"L", x1, y0},
		{"L", x1, y1},
		{"L", x0, y1},
		{"Z"},
	}
}

// generateEllipsePath generates path commands for an ellipse centred on c
// using bezier curves.
func generateEllipsePath(c geom.Point, rx, ry float64) []PathCommand {
	// k = 4 * (sqrt(2) - 1) / 3
	k := 0.5522847498
	kx, ky := rx*k, ry*k
	x, y := c.X, c.Y

	return []PathCommand{
		{"M", x + rx, y},
		{"C", x + rx, y + ky, x + kx, y + ry, x, y + ry},
		{"C", x - kx, y + ry, x - rx, y + ky, x - rx, y},
		{"C", x - rx, y - ky, x - kx, y - ry, x, y - ry},
		{"C", x + kx, y - ry, x + rx, y - ky, x + rx, y},
		{"Z"},
	}
}

// PathBounds computes the axis-aligned bounding box of a path, control
// points included.
func PathBounds(path []PathCommand) geom.Rect {
	var pts []geom.Point
	for _, cmd := range path {
		args := cmd.Args()
		for i := 0; i+1 < len(args); i += 2 {
			pts = append(pts, geom.Pt(args[i], args[i+1]))
		}
	}
	return geom.BoundsOf(pts)
}
