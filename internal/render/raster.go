package render

import (
	"context"
	"fmt"
	"image"
	"image/png"
	"io"
	"log/slog"
	"math"

	"github.com/fogleman/gg"

	"github.com/linguameet/whiteboard/internal/engine"
	"github.com/linguameet/whiteboard/internal/geom"
)

// DefaultMaxPixels bounds the area of a rendered sheet when Raster.MaxPixels
// is unset.
const DefaultMaxPixels = 16 << 20

// Raster paints sheets into RGBA images with gg. It is safe for concurrent
// use.
type Raster struct {
	Fonts  *Fonts
	Images ImageSource
	Logger *slog.Logger

	// MaxPixels caps width*height of a sheet image. Larger sheets are
	// scaled down uniformly to fit.
	MaxPixels int
}

// RenderImage paints the sheet at one pixel per document unit, or smaller
// when the sheet exceeds MaxPixels.
func (r *Raster) RenderImage(ctx context.Context, s Sheet) (image.Image, error) {
	w, h, scale, err := r.sheetSize(s.Bounds)
	if err != nil {
		return nil, fmt.Errorf("render %q: %w", s.Name, err)
	}
	if scale < 1 && r.Logger != nil {
		r.Logger.Debug("sheet scaled down", "sheet", s.Name, "width", w, "height", h, "scale", scale)
	}

	dc := gg.NewContext(w, h)
	dc.SetRGB(rgb(s.Background))
	dc.Clear()
	dc.Scale(scale, scale)
	dc.Translate(-s.Bounds.X, -s.Bounds.Y)
	dc.SetLineCapRound()
	dc.SetLineJoinRound()

	faces := newFaceSet(r.Fonts)
	for _, cmd := range s.Commands {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		r.draw(dc, cmd, faces)
	}
	return dc.Image(), nil
}

// sheetSize returns the pixel size for bounds and the scale that fits it
// under the pixel cap. Neither side exceeds the cap even when the other
// collapses to one pixel.
func (r *Raster) sheetSize(b geom.Rect) (w, h int, scale float64, err error) {
	fw, fh := math.Ceil(b.Width), math.Ceil(b.Height)
	if !(fw > 0 && fh > 0) || math.IsInf(fw, 0) || math.IsInf(fh, 0) {
		return 0, 0, 0, fmt.Errorf("empty or unbounded sheet %vx%v", b.Width, b.Height)
	}
	limit := float64(r.MaxPixels)
	if limit <= 0 {
		limit = DefaultMaxPixels
	}
	scale = min(1, math.Sqrt(limit/(fw*fh)), limit/fw, limit/fh)
	w = max(1, int(fw*scale))
	h = max(1, int(fh*scale))
	return w, h, scale, nil
}

func rgb(hex string) (float64, float64, float64) {
	r, g, b, _ := rgba(hex, 1)
	return r, g, b
}

func (r *Raster) draw(dc *gg.Context, cmd engine.DrawCommand, faces *faceSet) {
	switch cmd.Op {
	case engine.OpPath, engine.OpLaser, engine.OpSelection:
		tracePath(dc, cmd.Path)
		if cmd.Fill != "" {
			dc.SetRGBA(rgba(cmd.Fill, cmd.Opacity))
			if cmd.Stroke != "" {
				dc.FillPreserve()
			} else {
				dc.Fill()
			}
		}
		if cmd.Stroke != "" {
			dc.SetRGBA(rgba(cmd.Stroke, cmd.Opacity))
			dc.SetLineWidth(cmd.StrokeWidth)
			dc.SetDash(cmd.LineDash...)
			dc.Stroke()
			dc.SetDash()
		}
		dc.ClearPath()

	case engine.OpText:
		face := faces.face(cmd.FontFamily, cmd.FontSize)
		if face == nil {
			return
		}
		dc.SetFontFace(face)
		dc.SetRGBA(rgba(cmd.Fill, cmd.Opacity))
		dc.DrawString(cmd.Text, cmd.X, cmd.Y)

	case engine.OpImage:
		r.drawImage(dc, cmd)
	}
}

func (r *Raster) drawImage(dc *gg.Context, cmd engine.DrawCommand) {
	var img image.Image
	if r.Images != nil {
		var err error
		img, err = r.Images.OpenImage(cmd.Source)
		if err != nil && r.Logger != nil {
			r.Logger.Warn("image unavailable", "source", cmd.Source, "error", err)
		}
	}
	if img == nil {
		// Placeholder frame.
		dc.DrawRectangle(cmd.X, cmd.Y, cmd.Width, cmd.Height)
		dc.SetRGB(0.6, 0.6, 0.6)
		dc.SetLineWidth(1)
		dc.Stroke()
		return
	}

	b := img.Bounds()
	if b.Dx() == 0 || b.Dy() == 0 {
		return
	}
	dc.Push()
	dc.Translate(cmd.X, cmd.Y)
	dc.Scale(cmd.Width/float64(b.Dx()), cmd.Height/float64(b.Dy()))
	dc.DrawImage(img, -b.Min.X, -b.Min.Y)
	dc.Pop()
}

// tracePath replays path commands onto the context.
func tracePath(dc *gg.Context, path []engine.PathCommand) {
	for _, seg := range path {
		a := seg.Args()
		switch seg.Op() {
		case "M":
			if len(a) >= 2 {
				dc.MoveTo(a[0], a[1])
			}
		case "L":
			if len(a) >= 2 {
				dc.LineTo(a[0], a[1])
			}
		case "C":
			if len(a) >= 6 {
				dc.CubicTo(a[0], a[1], a[2], a[3], a[4], a[5])
			}
		case "Z":
			dc.ClosePath()
		}
	}
}

// EncodePNG writes img as PNG.
func EncodePNG(w io.Writer, img image.Image) error {
	return png.Encode(w, img)
}
